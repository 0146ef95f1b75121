// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"

	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

// Charger charges gas to a call environment and keeps a breakdown by operation.
type Charger struct {
	env            *xenv.Environment
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	trancheOps     uint64
	customGas      uint64
	totalGas       uint64
}

func New(env *xenv.Environment) *Charger {
	return &Charger{env: env}
}

// Charge charges gas for storage access, classified by the gas unit it is a multiple of.
func (c *Charger) Charge(gas uint64) {
	switch {
	case gas == 0:
	case gas%thor.SstoreSetGas == 0:
		c.sstoreSetOps += gas / thor.SstoreSetGas
	case gas%thor.SstoreResetGas == 0:
		c.sstoreResetOps += gas / thor.SstoreResetGas
	case gas%thor.SloadGas == 0:
		c.sloadOps += gas / thor.SloadGas
	default:
		c.customGas += gas
	}
	c.use(gas)
}

// ChargeTranches charges the evaluation of n reward tranches.
func (c *Charger) ChargeTranches(n uint64) {
	c.trancheOps += n
	c.use(n * thor.TrancheGas)
}

func (c *Charger) use(gas uint64) {
	c.totalGas += gas
	if c.env != nil {
		c.env.UseGas(gas)
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | TRANCHE: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*thor.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*thor.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*thor.SstoreResetGas,
		c.trancheOps,
		c.trancheOps*thor.TrancheGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

// Tranches returns the count of reward tranches charged so far.
func (c *Charger) Tranches() uint64 {
	return c.trancheOps
}
