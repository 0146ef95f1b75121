// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/thor"
)

type LogMeta struct {
	Height uint32 `json:"height"`
	Index  uint32 `json:"index"`
}

type FilteredTransfer struct {
	Sender    thor.Address          `json:"sender"`
	Recipient thor.Address          `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta               `json:"meta"`
}

// ConvertTransfer converts a stored transfer into its api form.
func ConvertTransfer(transfer *logdb.Transfer) *FilteredTransfer {
	v := math.HexOrDecimal256(*new(big.Int).Set(transfer.Amount))
	return &FilteredTransfer{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    &v,
		Meta: LogMeta{
			Height: transfer.Height,
			Index:  transfer.Index,
		},
	}
}

type Range struct {
	From *uint32 `json:"from,omitempty"`
	To   *uint32 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type TransferFilter struct {
	Range     *Range        `json:"range,omitempty"`
	Sender    *thor.Address `json:"sender,omitempty"`
	Recipient *thor.Address `json:"recipient,omitempty"`
	Options   *Options      `json:"options,omitempty"`
	Order     logdb.Order   `json:"order,omitempty"`
}
