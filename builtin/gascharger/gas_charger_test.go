// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

func TestChargerBreakdown(t *testing.T) {
	env := xenv.New(nil, &xenv.BlockContext{}, thor.Address{}, thor.Address{}, nil, thor.CallGasLimit)
	c := New(env)

	c.Charge(2 * thor.SloadGas)
	c.Charge(thor.SstoreSetGas)
	c.Charge(3 * thor.SstoreResetGas)
	c.Charge(0)
	c.Charge(7)
	c.ChargeTranches(4)

	want := 2*thor.SloadGas + thor.SstoreSetGas + 3*thor.SstoreResetGas + 7 + 4*thor.TrancheGas
	assert.Equal(t, want, c.TotalGas())
	assert.Equal(t, want, env.GasUsed())
	assert.Contains(t, c.Breakdown(), "SLOAD: 2 ops")
	assert.Contains(t, c.Breakdown(), "SSTORE_SET: 1 ops")
	assert.Contains(t, c.Breakdown(), "SSTORE_RESET: 3 ops")
	assert.Contains(t, c.Breakdown(), "TRANCHE: 4 ops")
	assert.Contains(t, c.Breakdown(), "CUSTOM: 7 gas")
}

func TestChargerWithoutEnv(t *testing.T) {
	c := New(nil)
	c.ChargeTranches(1)
	assert.Equal(t, thor.TrancheGas, c.TotalGas())
}
