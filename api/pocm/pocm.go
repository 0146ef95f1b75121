// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/utils"
	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/runtime"
	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

type Pocm struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pocm {
	return &Pocm{rt}
}

func (p *Pocm) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info, err := p.rt.Info()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertInfo(p.rt.Address(), p.rt.Config(), info))
}

func (p *Pocm) handleGetRate(w http.ResponseWriter, req *http.Request) error {
	height := p.rt.Clock().Height()
	if s := req.URL.Query().Get("height"); s != "" {
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "height"))
		}
		height = uint32(n)
	}
	rate, err := p.rt.Rate(height)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Rate{Height: height, Rate: rate})
}

func (p *Pocm) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := p.rt.Account(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertAccount(acc))
}

func (p *Pocm) handleExecute(w http.ResponseWriter, req *http.Request) error {
	op, err := runtime.ParseOperation(mux.Vars(req)["op"])
	if err != nil {
		return utils.NotFound(err)
	}
	var body ExecuteRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("body: caller required"))
	}
	var value *big.Int
	if body.Value != nil {
		value = (*big.Int)(body.Value)
	}

	receipt, err := p.rt.Execute(op, *body.Caller, value)
	if err != nil {
		if isRejection(err) {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

// isRejection reports whether err is a rejected call rather than a host failure.
func isRejection(err error) bool {
	if _, ok := reverts.As(err); ok {
		return true
	}
	return errors.Is(err, xenv.ErrOutOfGas) || errors.Is(err, xenv.ErrInsufficientBalance)
}

func (p *Pocm) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pocm").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetInfo))
	sub.Path("/rate").
		Methods(http.MethodGet).
		Name("GET /pocm/rate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetRate))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /pocm/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	sub.Path("/{op}").
		Methods(http.MethodPost).
		Name("POST /pocm/{op}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleExecute))
}
