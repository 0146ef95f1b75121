// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/pocm/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrder      = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket     = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricInserted = metrics.LazyLoadCounter("logdb_inserted_transfers_count")
)

func metricsHandleTransferFilter(filter *TransferFilter) {
	order := string(ASC)
	if filter.Order == DESC {
		order = string(DESC)
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		metricLimitBucket().ObserveWithLabels(int64(filter.Options.Limit), map[string]string{"type": "transfer"})
	}

	used := make([]string, 0, 3)
	if filter.Range != nil {
		used = append(used, "range")
	}
	if filter.Sender != nil {
		used = append(used, "sender")
	}
	if filter.Recipient != nil {
		used = append(used, "recipient")
	}
	metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(used, ",")})
}
