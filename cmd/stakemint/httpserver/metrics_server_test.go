// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/metrics"
)

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("httpserver_test_count").Add(1)

	url, closeFn, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFn()

	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "stakemint_httpserver_test_count 1"))
}
