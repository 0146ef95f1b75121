// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/thor"
)

// Registry maps participants to their stake records.
type Registry struct {
	records *solidity.Mapping[thor.Address, *StakeRecord]
}

func newRegistry(ctx *solidity.Context) *Registry {
	return &Registry{
		records: solidity.NewMapping[thor.Address, *StakeRecord](ctx, slotRecords),
	}
}

// Get returns the record of addr, nil if absent.
func (r *Registry) Get(addr thor.Address) (*StakeRecord, error) {
	return r.records.Get(addr)
}

// Insert stores a new record, failing with DuplicateStakeError if one exists.
func (r *Registry) Insert(addr thor.Address, rec *StakeRecord) error {
	existing, err := r.records.Get(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return newDuplicateStakeError(addr)
	}
	return r.records.Insert(addr, rec)
}

// Update overwrites the record of addr.
func (r *Registry) Update(addr thor.Address, rec *StakeRecord) error {
	return r.records.Update(addr, rec)
}

// Remove deletes the record of addr.
func (r *Registry) Remove(addr thor.Address) {
	r.records.Delete(addr)
}
