// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// Constants of the settlement host.
const (
	BlockInterval uint64 = 10 // default time interval (seconds) between two consecutive heights in solo mode.

	// BaseDecimals is the precision of the base asset, 1 coin = 10^8 units.
	BaseDecimals int32 = 8

	// MaxTokenDecimals bounds the declared precision of a minted token.
	MaxTokenDecimals uint8 = 18

	SloadGas       uint64 = params.SloadGasEIP2200
	SstoreSetGas   uint64 = params.SstoreSetGasEIP2200
	SstoreResetGas uint64 = params.SstoreResetGasEIP2200
	GetBalanceGas  uint64 = params.BalanceGasEIP1884
	TrancheGas     uint64 = 200 // charged per settled tranche

	// CallGasLimit is the default gas budget of a single engine call.
	CallGasLimit uint64 = 50_000_000
)

// BaseUnit is 10^BaseDecimals.
var BaseUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(BaseDecimals)), nil)
