// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/stakemint/metrics"

var (
	metricExecCount    = metrics.LazyLoadCounterVec("runtime_exec_count", []string{"outcome"})
	metricExecDuration = metrics.LazyLoadHistogramVec("runtime_exec_duration_ms", []string{"outcome"}, metrics.BucketHTTPReqs)
)
