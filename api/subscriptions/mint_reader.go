// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"math"

	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/thor"
)

// mintReader reads stored mint events past a position.
type mintReader struct {
	db        *logdb.LogDB
	recipient *thor.Address
	height    uint32
	index     uint32 // next unread index at height
}

func newMintReader(db *logdb.LogDB, from uint32, recipient *thor.Address) *mintReader {
	return &mintReader{
		db:        db,
		recipient: recipient,
		height:    from,
	}
}

// Read returns the mint events not read yet, in order.
func (r *mintReader) Read(ctx context.Context) ([]*logdb.Transfer, error) {
	all, err := r.db.FilterTransfers(ctx, &logdb.TransferFilter{
		Range:     &logdb.Range{From: r.height, To: math.MaxUint32},
		Sender:    &thor.Address{},
		Recipient: r.recipient,
		Order:     logdb.ASC,
	})
	if err != nil {
		return nil, err
	}
	var unread []*logdb.Transfer
	for _, tr := range all {
		if tr.Height == r.height && tr.Index < r.index {
			continue
		}
		unread = append(unread, tr)
	}
	if n := len(unread); n > 0 {
		last := unread[n-1]
		r.height, r.index = last.Height, last.Index+1
	}
	return unread, nil
}
