// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import "github.com/vechain/pocm/metrics"

var (
	metricBatchOps           = metrics.LazyLoadCounter("lvldb_batch_ops_count")
	metricBatchWriteDuration = metrics.LazyLoadHistogramVec("lvldb_batch_write_ms", nil, metrics.BucketHTTPReqs)
)
