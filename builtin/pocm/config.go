// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/thor"
)

// CurveKind selects how the reward rate converts deposits into tokens.
type CurveKind uint8

const (
	// Divisor mints floor(deposit / rate) per tranche; the rate doubles at each halving.
	Divisor CurveKind = iota
	// Multiplier mints deposit * rate per tranche; the rate halves at each halving.
	Multiplier
)

func (k CurveKind) String() string {
	switch k {
	case Divisor:
		return "divisor"
	case Multiplier:
		return "multiplier"
	default:
		return fmt.Sprintf("CurveKind(%d)", uint8(k))
	}
}

func (k CurveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CurveKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "divisor", "":
		*k = Divisor
	case "multiplier":
		*k = Multiplier
	default:
		return fmt.Errorf("unknown curve %q", text)
	}
	return nil
}

// QuitPolicy decides what happens to a stake record on quit.
type QuitPolicy uint8

const (
	// QuitDelete removes the record, so the address may deposit again.
	QuitDelete QuitPolicy = iota
	// QuitRetain keeps the record marked as withdrawn. A later deposit is rejected as duplicate.
	QuitRetain
)

func (p QuitPolicy) String() string {
	switch p {
	case QuitDelete:
		return "delete"
	case QuitRetain:
		return "retain"
	default:
		return fmt.Sprintf("QuitPolicy(%d)", uint8(p))
	}
}

func (p QuitPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *QuitPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "delete", "":
		*p = QuitDelete
	case "retain":
		*p = QuitRetain
	default:
		return fmt.Errorf("unknown quit policy %q", text)
	}
	return nil
}

// Config is the immutable configuration of a deployment. Amounts are in base units.
type Config struct {
	Name     string
	Symbol   string
	Decimals uint8

	Curve        CurveKind
	PriceSeed    *big.Int        // divisor form, base units
	InitialPrice decimal.Decimal // multiplier form, tokens per base coin

	AwardingCycle      uint32
	RewardHalvingCycle uint32 // 0 disables halving

	MinimumDeposit             *big.Int
	MinimumLocked              uint32
	MaximumDepositAddressCount uint32   // 0 means no cap
	MaxSupply                  *big.Int // nil or 0 means uncapped
	QuitPolicy                 QuitPolicy
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return invalidConfig("name", "empty")
	}
	if c.Symbol == "" {
		return invalidConfig("symbol", "empty")
	}
	if c.Decimals > thor.MaxTokenDecimals {
		return invalidConfig("decimals", "%d exceeds %d", c.Decimals, thor.MaxTokenDecimals)
	}
	switch c.Curve {
	case Divisor:
		if c.PriceSeed == nil || c.PriceSeed.Sign() <= 0 {
			return invalidConfig("priceSeed", "must be positive")
		}
	case Multiplier:
		if !c.InitialPrice.IsPositive() {
			return invalidConfig("initialPrice", "must be positive")
		}
		if fractionDigits(c.InitialPrice) > int32(c.Decimals) {
			return invalidConfig("initialPrice", "precision exceeds %d decimals", c.Decimals)
		}
	default:
		return invalidConfig("curve", "unknown %v", c.Curve)
	}
	if c.MinimumDeposit == nil || c.MinimumDeposit.Sign() < 0 {
		return invalidConfig("minimumDeposit", "must not be negative")
	}
	if c.MaxSupply != nil && c.MaxSupply.Sign() < 0 {
		return invalidConfig("maxSupply", "must not be negative")
	}
	if c.QuitPolicy > QuitRetain {
		return invalidConfig("quitPolicy", "unknown %v", c.QuitPolicy)
	}
	return nil
}

// Capped reports whether the total supply is capped.
func (c *Config) Capped() bool {
	return c.MaxSupply != nil && c.MaxSupply.Sign() > 0
}

// HasAddressCap reports whether the number of depositors is capped.
func (c *Config) HasAddressCap() bool {
	return c.MaximumDepositAddressCount > 0
}
