// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/qianbin/directcache"

	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/thor"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")

	defaultCacheSize = 16 * 1024 * 1024
)

// absent marks keys known to be missing in the committed store.
var absent = []byte{}

func balanceDBKey(addr thor.Address) []byte {
	return balanceBucket.Key(addr.Bytes())
}

func storageDBKey(addr thor.Address, key thor.Bytes32) []byte {
	return storageBucket.Key(append(addr.Bytes(), key.Bytes()...))
}

// Stater is the state creator. It owns the committed store and a read cache shared
// by all states created from it.
type Stater struct {
	db    kv.Store
	cache *directcache.Cache
}

// NewStater create a new stater.
func NewStater(db kv.Store) *Stater {
	return &Stater{
		db:    db,
		cache: directcache.New(defaultCacheSize),
	}
}

// NewState create a new state object on top of the latest committed data.
func (s *Stater) NewState() *State {
	return newState(s)
}

func (s *Stater) get(key []byte) (val []byte, err error) {
	if s.cache.AdvGet(key, func(v []byte) {
		val = append([]byte(nil), v...)
	}, false) {
		metricCacheHitMiss().AddWithLabel(1, map[string]string{"event": "hit"})
		return val, nil
	}
	metricCacheHitMiss().AddWithLabel(1, map[string]string{"event": "miss"})

	val, err = s.db.Get(key)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		s.cache.Set(key, absent)
		return nil, nil
	}
	s.cache.Set(key, val)
	return val, nil
}
