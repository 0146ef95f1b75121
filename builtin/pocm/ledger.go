// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"math/big"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/thor"
)

// TransferTopic is the topic of Transfer(address,address,uint256).
var TransferTopic = thor.Keccak256([]byte("Transfer(address,address,uint256)"))

// Ledger tracks the minted token supply and balances. There is no debit path.
type Ledger struct {
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *big.Int]
}

func newLedger(ctx *solidity.Context) *Ledger {
	return &Ledger{
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
	}
}

// TotalSupply returns the amount of token ever minted.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.totalSupply.Get()
}

// BalanceOf returns the token balance of addr.
func (l *Ledger) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := l.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Credit mints amount to addr. Caps are enforced by the caller.
func (l *Ledger) Credit(addr thor.Address, amount *big.Int) error {
	bal, err := l.balances.Get(addr)
	if err != nil {
		return err
	}
	if err := l.totalSupply.Add(amount); err != nil {
		return err
	}
	if bal == nil {
		return l.balances.Insert(addr, new(big.Int).Set(amount))
	}
	return l.balances.Update(addr, bal.Add(bal, amount))
}

// EncodeTransfer encodes a Transfer event as topics and data.
func EncodeTransfer(from, to thor.Address, amount *big.Int) ([]thor.Bytes32, []byte) {
	topics := []thor.Bytes32{
		TransferTopic,
		thor.BytesToBytes32(from.Bytes()),
		thor.BytesToBytes32(to.Bytes()),
	}
	data := thor.BytesToBytes32(amount.Bytes())
	return topics, data.Bytes()
}

// DecodeTransfer decodes a Transfer event. ok is false if it's not a Transfer event.
func DecodeTransfer(topics []thor.Bytes32, data []byte) (from, to thor.Address, amount *big.Int, ok bool) {
	if len(topics) != 3 || topics[0] != TransferTopic || len(data) != 32 {
		return thor.Address{}, thor.Address{}, nil, false
	}
	return thor.BytesToAddress(topics[1].Bytes()), thor.BytesToAddress(topics[2].Bytes()), new(big.Int).SetBytes(data), true
}
