// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
)

type UseGasFunc func(gas uint64)

// Context binds storage cells to a contract address in a state, charging storage access.
type Context struct {
	address thor.Address
	state   *state.State
	charger UseGasFunc
}

func NewContext(address thor.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

// toWordSize returns the number of charged slots for a value of the given length, capped at 2.
func toWordSize(length int) uint64 {
	if length > 32 {
		return 2
	}
	return 1
}
