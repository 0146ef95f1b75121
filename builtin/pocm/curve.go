// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/thor"
)

// maxHalvings bounds the curve. Rate and Tranche hold at the last halving past it,
// where a tranche is far below one token unit.
const maxHalvings = 255

var five = big.NewInt(5)

// Curve is the halving reward curve of a deployment.
type Curve struct {
	kind         CurveKind
	seed         *big.Int
	price        decimal.Decimal
	createHeight uint32
	halvingCycle uint32
}

// NewCurve creates the curve anchored at createHeight.
func NewCurve(cfg *Config, createHeight uint32) *Curve {
	return &Curve{
		kind:         cfg.Curve,
		seed:         cfg.PriceSeed,
		price:        cfg.InitialPrice,
		createHeight: createHeight,
		halvingCycle: cfg.RewardHalvingCycle,
	}
}

// Kind returns the curve form.
func (c *Curve) Kind() CurveKind { return c.kind }

// halvings counts the halving boundaries createHeight + k*(halvingCycle+1), k >= 1, reached at target,
// clamped to maxHalvings.
func (c *Curve) halvings(target uint32) uint {
	if c.halvingCycle == 0 {
		return 0
	}
	step := uint64(c.halvingCycle) + 1
	first := uint64(c.createHeight) + step
	if uint64(target) < first {
		return 0
	}
	return uint(min((uint64(target)-first)/step+1, maxHalvings))
}

// InitialRate returns the rate before any halving.
func (c *Curve) InitialRate() decimal.Decimal {
	return c.rate(0)
}

// Rate returns the rate in force at the given height.
// For the divisor form it is in base units per token, for the multiplier form in tokens per base coin.
func (c *Curve) Rate(height uint32) decimal.Decimal {
	return c.rate(c.halvings(height))
}

func (c *Curve) rate(h uint) decimal.Decimal {
	if c.kind == Divisor {
		return decimal.NewFromBigInt(new(big.Int).Lsh(c.seed, h), 0)
	}
	// price / 2^h == price * 5^h / 10^h, exact
	scale := new(big.Int).Exp(five, big.NewInt(int64(h)), nil)
	coef := new(big.Int).Mul(c.price.Coefficient(), scale)
	return decimal.NewFromBigInt(coef, c.price.Exponent()-int32(h))
}

// Tranche returns the unscaled amount one tranche triggered at height mints for the deposit.
func (c *Curve) Tranche(deposit *big.Int, height uint32) decimal.Decimal {
	h := c.halvings(height)
	if c.kind == Divisor {
		// floor(floor(d / 2^h) / seed) == floor(d / (seed * 2^h))
		q := new(big.Int).Rsh(deposit, h)
		return decimal.NewFromBigInt(q.Quo(q, c.seed), 0)
	}
	return decimal.NewFromBigInt(deposit, -thor.BaseDecimals).Mul(c.rate(h))
}

// Scale converts an unscaled amount into the smallest token unit, truncating.
func Scale(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).BigInt()
}
