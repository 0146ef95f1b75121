// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/pocm/thor"
)

// Transfer is a token movement recorded at a height.
// Mints carry the zero address as sender.
type Transfer struct {
	Height    uint32
	Index     uint32
	Sender    thor.Address
	Recipient thor.Address
	Amount    *big.Int
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive height range. A To lower than From is open-ended.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type TransferFilter struct {
	Range     *Range
	Sender    *thor.Address
	Recipient *thor.Address
	Order     Order
	Options   *Options
}
