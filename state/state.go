// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pocm/stackedmap"
	"github.com/vechain/pocm/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type (
	balanceKey thor.Address
	storageKey struct {
		addr thor.Address
		key  thor.Bytes32
	}
)

// State manages base-asset balances and contract storage on top of a committed kv store.
// All changes stay in memory until staged and committed.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap // keeps revisions of uncommitted changes
}

func newState(stater *Stater) *State {
	s := &State{stater: stater}
	s.sm = stackedmap.New(s.getter)
	return s
}

// getter implements stackedmap.MapGetter.
func (s *State) getter(key any) (any, bool, error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.stater.get(balanceDBKey(thor.Address(k)))
		if err != nil {
			return nil, false, err
		}
		bal := new(big.Int)
		if len(raw) > 0 {
			if err := rlp.DecodeBytes(raw, bal); err != nil {
				return nil, false, err
			}
		}
		return bal, true, nil
	case storageKey:
		raw, err := s.stater.get(storageDBKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(raw), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetBalance returns base-asset balance for the given address.
func (s *State) GetBalance(addr thor.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set base-asset balance for the given address.
func (s *State) SetBalance(addr thor.Address, balance *big.Int) {
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to commit all changes made since the state was created
// or last committed.
func (s *State) Stage() *Stage {
	changes := make(map[string][]byte)
	var order [][]byte
	var err error

	s.sm.Journal(func(k, v any) bool {
		var dbKey, val []byte
		switch key := k.(type) {
		case balanceKey:
			dbKey = balanceDBKey(thor.Address(key))
			if bal := v.(*big.Int); bal.Sign() != 0 {
				if val, err = rlp.EncodeToBytes(bal); err != nil {
					return false
				}
			}
		case storageKey:
			dbKey = storageDBKey(key.addr, key.key)
			val = v.(rlp.RawValue)
		default:
			return true
		}
		if _, ok := changes[string(dbKey)]; !ok {
			order = append(order, dbKey)
		}
		changes[string(dbKey)] = val
		return true
	})
	if err != nil {
		return &Stage{err: &Error{err}}
	}

	return &Stage{
		state:   s,
		order:   order,
		changes: changes,
	}
}
