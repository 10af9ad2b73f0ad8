// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	noop := defaultNoopMetrics()
	server := httptest.NewServer(noop.GetOrCreateHandler())
	t.Cleanup(server.Close)

	noop.GetOrCreateCountMeter("count1").Add(1)
	noop.GetOrCreateCountVecMeter("countVec1", []string{"kind"}).AddWithLabel(1, map[string]string{"nonsense": "ok"})
	noop.GetOrCreateGaugeMeter("gauge1").Set(1)
	noop.GetOrCreateGaugeVecMeter("gaugeVec1", nil).SetWithLabel(1, nil)
	noop.GetOrCreateHistogramMeter("hist1", nil).Observe(1)
	noop.GetOrCreateHistogramVecMeter("hist2", nil, nil).ObserveWithLabels(1, nil)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
