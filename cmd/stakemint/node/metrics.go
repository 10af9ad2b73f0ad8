// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/stakemint/metrics"
)

var (
	metricFulfillCount    = metrics.LazyLoadCounterVec("fulfill_count", []string{"outcome"})
	metricFulfillDuration = metrics.LazyLoad(func() metrics.HistogramMeter {
		return metrics.Histogram("fulfill_duration_ms", metrics.BucketHTTPReqs)
	})
	// seconds between the request and its fulfillment
	metricFulfillDelay = metrics.LazyLoad(func() metrics.HistogramMeter {
		return metrics.Histogram("fulfill_delay_seconds", []int64{10, 30, 60, 120, 300, 600, 1800, 3600})
	})
)
