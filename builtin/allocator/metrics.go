// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import "github.com/vechain/stakemint/metrics"

var (
	metricOpsCounter = metrics.LazyLoadCounterVec("allocator_ops_count", []string{"op", "outcome"})
	metricPoolSize   = metrics.LazyLoadGauge("allocator_pool_size")
)
