// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/api/transfers"
	"github.com/vechain/pocm/builtin/pocm"
	"github.com/vechain/pocm/runtime"
	"github.com/vechain/pocm/thor"
)

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	h := math.HexOrDecimal256(*new(big.Int).Set(v))
	return &h
}

type Info struct {
	Address      thor.Address `json:"address"`
	Name         string       `json:"name"`
	Symbol       string       `json:"symbol"`
	Decimals     uint8        `json:"decimals"`
	Curve        string       `json:"curve"`
	QuitPolicy   string       `json:"quitPolicy"`
	CreateHeight uint32       `json:"createHeight"`
	BestHeight   uint32       `json:"bestHeight"`

	AwardingCycle              uint32                `json:"awardingCycle"`
	RewardHalvingCycle         uint32                `json:"rewardHalvingCycle"`
	MinimumDeposit             *math.HexOrDecimal256 `json:"minimumDeposit"`
	MinimumLocked              uint32                `json:"minimumLocked"`
	MaximumDepositAddressCount uint32                `json:"maximumDepositAddressCount"`
	MaxSupply                  *math.HexOrDecimal256 `json:"maxSupply,omitempty"`

	InitialRate       decimal.Decimal       `json:"initialRate"`
	CurrentRate       decimal.Decimal       `json:"currentRate"`
	TotalDeposit      *math.HexOrDecimal256 `json:"totalDeposit"`
	TotalDepositHuman string                `json:"totalDepositHuman"`
	DepositCount      uint32                `json:"depositCount"`
	TotalSupply       *math.HexOrDecimal256 `json:"totalSupply"`
}

func convertInfo(addr thor.Address, cfg *pocm.Config, info *runtime.Info) *Info {
	out := &Info{
		Address:                    addr,
		Name:                       cfg.Name,
		Symbol:                     cfg.Symbol,
		Decimals:                   cfg.Decimals,
		Curve:                      cfg.Curve.String(),
		QuitPolicy:                 cfg.QuitPolicy.String(),
		CreateHeight:               info.CreateHeight,
		BestHeight:                 info.BestHeight,
		AwardingCycle:              cfg.AwardingCycle,
		RewardHalvingCycle:         cfg.RewardHalvingCycle,
		MinimumDeposit:             hexOrDecimal(cfg.MinimumDeposit),
		MinimumLocked:              cfg.MinimumLocked,
		MaximumDepositAddressCount: cfg.MaximumDepositAddressCount,
		InitialRate:                info.InitialRate,
		CurrentRate:                info.CurrentRate,
		TotalDeposit:               hexOrDecimal(info.TotalDeposit),
		TotalDepositHuman:          info.TotalDepositHuman,
		DepositCount:               info.DepositCount,
		TotalSupply:                hexOrDecimal(info.TotalSupply),
	}
	if cfg.Capped() {
		out.MaxSupply = hexOrDecimal(cfg.MaxSupply)
	}
	return out
}

type Rate struct {
	Height uint32          `json:"height"`
	Rate   decimal.Decimal `json:"rate"`
}

type StakeRecord struct {
	DepositAmount     *math.HexOrDecimal256 `json:"depositAmount"`
	DepositHeight     uint32                `json:"depositHeight"`
	NextAccrualHeight *uint32               `json:"nextAccrualHeight"`
	AccrualCount      uint32                `json:"accrualCount"`
	TotalMined        *math.HexOrDecimal256 `json:"totalMined"`
	ReceivedMined     *math.HexOrDecimal256 `json:"receivedMined"`
	Withdrawn         bool                  `json:"withdrawn"`
}

func convertRecord(rec *pocm.StakeRecord) *StakeRecord {
	if rec == nil {
		return nil
	}
	return &StakeRecord{
		DepositAmount:     hexOrDecimal(rec.DepositAmount),
		DepositHeight:     rec.DepositHeight,
		NextAccrualHeight: rec.NextAccrualHeight,
		AccrualCount:      rec.AccrualCount,
		TotalMined:        hexOrDecimal(rec.TotalMined),
		ReceivedMined:     hexOrDecimal(rec.ReceivedMined),
		Withdrawn:         rec.Withdrawn,
	}
}

type Account struct {
	Height       uint32                `json:"height"`
	Balance      *math.HexOrDecimal256 `json:"balance"`
	TokenBalance *math.HexOrDecimal256 `json:"tokenBalance"`
	Stake        *StakeRecord          `json:"stake"`
	Preview      *StakeRecord          `json:"preview"`
}

func convertAccount(acc *runtime.Account) *Account {
	return &Account{
		Height:       acc.Height,
		Balance:      hexOrDecimal(acc.BaseBalance),
		TokenBalance: hexOrDecimal(acc.TokenBalance),
		Stake:        convertRecord(acc.Stored),
		Preview:      convertRecord(acc.Preview),
	}
}

// ExecuteRequest is the body of an operation call.
type ExecuteRequest struct {
	Caller *thor.Address         `json:"caller"`
	Value  *math.HexOrDecimal256 `json:"value,omitempty"`
}

type Receipt struct {
	Operation runtime.Operation             `json:"operation"`
	Caller    thor.Address                  `json:"caller"`
	Height    uint32                        `json:"height"`
	GasUsed   uint64                        `json:"gasUsed"`
	Tranches  uint64                        `json:"tranches"`
	Record    *StakeRecord                  `json:"record"`
	Transfers []*transfers.FilteredTransfer `json:"transfers"`
}

func convertReceipt(r *runtime.Receipt) *Receipt {
	out := &Receipt{
		Operation: r.Operation,
		Caller:    r.Caller,
		Height:    r.Height,
		GasUsed:   r.GasUsed,
		Tranches:  r.Tranches,
		Record:    convertRecord(r.Record),
		Transfers: make([]*transfers.FilteredTransfer, 0, len(r.Transfers)),
	}
	for _, tr := range r.Transfers {
		out.Transfers = append(out.Transfers, transfers.ConvertTransfer(tr))
	}
	return out
}
