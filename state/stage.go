// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/stackedmap"
)

// Stage abstracts changes to be written into the committed store.
type Stage struct {
	err error

	state   *State
	order   [][]byte
	changes map[string][]byte
}

// Len returns the count of changed keys.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes in one batch, then resets the state journal so the state
// continues on top of the committed data.
func (s *Stage) Commit() error {
	if s.err != nil {
		return s.err
	}
	return s.CommitWith(nil)
}

// CommitWith is like Commit, but also writes extra ops into the same batch.
func (s *Stage) CommitWith(extra func(kv.Putter) error) error {
	if s.err != nil {
		return s.err
	}
	stater := s.state.stater
	batch := stater.db.NewBatch()
	for _, key := range s.order {
		val := s.changes[string(key)]
		if len(val) == 0 {
			if err := batch.Delete(key); err != nil {
				return err
			}
		} else if err := batch.Put(key, val); err != nil {
			return err
		}
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	for _, key := range s.order {
		if val := s.changes[string(key)]; len(val) == 0 {
			stater.cache.Set(key, absent)
		} else {
			stater.cache.Set(key, val)
		}
	}

	s.state.sm = stackedmap.New(s.state.getter)
	return nil
}
