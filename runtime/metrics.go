// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/pocm/metrics"

var (
	metricOperations = metrics.LazyLoadCounterVec("runtime_operations_count", []string{"op", "result"})
	metricMinted     = metrics.LazyLoadCounter("runtime_minted_base_units_count")
	metricMints      = metrics.LazyLoadCounter("runtime_mint_events_count")
	metricDepositors = metrics.LazyLoadGauge("runtime_active_depositors")
	metricTranches   = metrics.LazyLoadHistogramVec("runtime_settled_tranches", []string{"op"}, metrics.BucketTranches)
)
