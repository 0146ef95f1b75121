// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/utils"
	"github.com/vechain/pocm/logdb"
)

type Transfers struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Transfers {
	return &Transfers{
		db:    db,
		limit: logsLimit,
	}
}

func (t *Transfers) filter(ctx context.Context, filter *TransferFilter) ([]*FilteredTransfer, error) {
	f, err := t.convertFilter(filter)
	if err != nil {
		return nil, err
	}
	transfers, err := t.db.FilterTransfers(ctx, f)
	if err != nil {
		return nil, err
	}
	result := make([]*FilteredTransfer, 0, len(transfers))
	for _, transfer := range transfers {
		result = append(result, ConvertTransfer(transfer))
	}
	return result, nil
}

func (t *Transfers) convertFilter(filter *TransferFilter) (*logdb.TransferFilter, error) {
	f := &logdb.TransferFilter{
		Sender:    filter.Sender,
		Recipient: filter.Recipient,
		Order:     filter.Order,
		Options:   &logdb.Options{Limit: t.limit},
	}
	switch filter.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, utils.BadRequest(fmt.Errorf("unknown order %q", filter.Order))
	}
	if filter.Options != nil {
		if filter.Options.Limit > t.limit {
			return nil, utils.BadRequest(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", t.limit))
		}
		f.Options = &logdb.Options{Offset: filter.Options.Offset, Limit: filter.Options.Limit}
	}
	if filter.Range != nil {
		r := &logdb.Range{To: math.MaxUint32}
		if filter.Range.From != nil {
			r.From = *filter.Range.From
		}
		if filter.Range.To != nil {
			r.To = *filter.Range.To
		}
		if r.From > r.To {
			return nil, utils.BadRequest(errors.New("filter.Range.From must be less than or equal to filter.Range.To"))
		}
		f.Range = r
	}
	return f, nil
}

func (t *Transfers) handleFilterTransferLogs(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	tLogs, err := t.filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, tLogs)
}

func (t *Transfers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleFilterTransferLogs))
}
