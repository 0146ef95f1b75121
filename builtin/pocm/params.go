// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/thor"
)

var (
	errNegativeAmount = errors.New("negative amount")
	errBasePrecision  = errors.New("precision exceeds base unit")
)

// Params are the deployment parameters in human units, as written in a deployment file.
type Params struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`

	Curve        CurveKind        `json:"curve" yaml:"curve"`
	PriceSeed    *decimal.Decimal `json:"priceSeed,omitempty" yaml:"priceSeed,omitempty"`
	InitialPrice *decimal.Decimal `json:"initialPrice,omitempty" yaml:"initialPrice,omitempty"`

	AwardingCycle      uint32 `json:"awardingCycle" yaml:"awardingCycle"`
	RewardHalvingCycle uint32 `json:"rewardHalvingCycle" yaml:"rewardHalvingCycle"`

	MinimumDeposit             decimal.Decimal  `json:"minimumDeposit" yaml:"minimumDeposit"`
	MinimumLocked              uint32           `json:"minimumLocked" yaml:"minimumLocked"`
	MaximumDepositAddressCount uint32           `json:"maximumDepositAddressCount" yaml:"maximumDepositAddressCount"`
	MaxSupply                  *decimal.Decimal `json:"maxSupply,omitempty" yaml:"maxSupply,omitempty"`
	QuitPolicy                 QuitPolicy       `json:"quitPolicy" yaml:"quitPolicy"`
}

// Config converts the parameters into a validated configuration.
func (p *Params) Config() (*Config, error) {
	cfg := &Config{
		Name:                       p.Name,
		Symbol:                     p.Symbol,
		Decimals:                   p.Decimals,
		Curve:                      p.Curve,
		AwardingCycle:              p.AwardingCycle,
		RewardHalvingCycle:         p.RewardHalvingCycle,
		MinimumLocked:              p.MinimumLocked,
		MaximumDepositAddressCount: p.MaximumDepositAddressCount,
		QuitPolicy:                 p.QuitPolicy,
	}

	switch p.Curve {
	case Divisor:
		if p.PriceSeed == nil {
			return nil, invalidConfig("priceSeed", "required by %v curve", p.Curve)
		}
		if fractionDigits(*p.PriceSeed) > int32(p.Decimals) {
			return nil, invalidConfig("priceSeed", "precision exceeds %d decimals", p.Decimals)
		}
		seed, err := ToBaseUnits(*p.PriceSeed)
		if err != nil {
			return nil, invalidConfig("priceSeed", "%v", err)
		}
		cfg.PriceSeed = seed
	case Multiplier:
		if p.InitialPrice == nil {
			return nil, invalidConfig("initialPrice", "required by %v curve", p.Curve)
		}
		cfg.InitialPrice = *p.InitialPrice
	}

	minimum, err := ToBaseUnits(p.MinimumDeposit)
	if err != nil {
		return nil, invalidConfig("minimumDeposit", "%v", err)
	}
	cfg.MinimumDeposit = minimum

	if p.MaxSupply != nil {
		if fractionDigits(*p.MaxSupply) > int32(p.Decimals) {
			return nil, invalidConfig("maxSupply", "precision exceeds %d decimals", p.Decimals)
		}
		cfg.MaxSupply = p.MaxSupply.Shift(int32(p.Decimals)).BigInt()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fractionDigits(d decimal.Decimal) int32 {
	// trailing zeros don't count
	if d.IsInteger() {
		return 0
	}
	return -d.Exponent() - trailingZeros(d)
}

func trailingZeros(d decimal.Decimal) int32 {
	var n int32
	coef := new(big.Int).Abs(d.Coefficient())
	ten := big.NewInt(10)
	mod := new(big.Int)
	for coef.Sign() > 0 {
		coef.QuoRem(coef, ten, mod)
		if mod.Sign() != 0 {
			break
		}
		n++
	}
	return n
}

// ToBaseUnits converts an amount of base coin into base units.
func ToBaseUnits(d decimal.Decimal) (*big.Int, error) {
	if d.IsNegative() {
		return nil, errNegativeAmount
	}
	if fractionDigits(d) > thor.BaseDecimals {
		return nil, errBasePrecision
	}
	return d.Shift(thor.BaseDecimals).BigInt(), nil
}

// FormatBaseUnits renders base units as an unscaled base coin amount.
func FormatBaseUnits(v *big.Int) string {
	return decimal.NewFromBigInt(v, -thor.BaseDecimals).String()
}
