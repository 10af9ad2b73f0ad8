// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count1 := Counter("count1")
	countVec := CounterVec("countVec1", []string{"zeroOrOne"})
	hist := Histogram("hist1", nil)
	gauge1 := Gauge("gauge1")
	gaugeVec := GaugeVec("gaugeVec1", []string{"zeroOrOne"})
	lazy := LazyLoadCounter("count2")

	count1.Add(1)
	randCount2 := rand.N(100) + 1
	for range randCount2 {
		lazy().Add(1)
	}

	histTotal := 0
	totalCountVec := 0
	for i := range rand.N(100) + 2 {
		zeroOrOne := strconv.Itoa(i % 2)
		hist.Observe(int64(i))
		countVec.AddWithLabel(int64(i), map[string]string{"zeroOrOne": zeroOrOne})
		gaugeVec.SetWithLabel(int64(i), map[string]string{"zeroOrOne": zeroOrOne})
		histTotal += i
		totalCountVec += i
	}
	gauge1.Set(7)
	gauge1.Add(3)

	// same name returns the same meter
	require.Same(t, Counter("count1"), count1)

	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	metrics := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		metrics[mf.GetName()] = mf
	}

	require.Equal(t, float64(1), metrics["stakemint_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(randCount2), metrics["stakemint_count2"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(histTotal), metrics["stakemint_hist1"].Metric[0].GetHistogram().GetSampleSum())
	require.Equal(t, float64(10), metrics["stakemint_gauge1"].Metric[0].GetGauge().GetValue())

	sumCountVec := 0.0
	for _, m := range metrics["stakemint_countVec1"].Metric {
		sumCountVec += m.GetCounter().GetValue()
	}
	require.Equal(t, float64(totalCountVec), sumCountVec)
	require.Len(t, metrics["stakemint_gaugeVec1"].Metric, 2)
}
