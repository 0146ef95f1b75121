// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/pocm/api/transfers"
	"github.com/vechain/pocm/logdb"
)

const maxMessageCacheSize = 1000

// messageKey is the position of a mint event in the log.
type messageKey struct {
	height, index uint32
}

// messageCache keeps encoded mint messages, so a mint delivered to many subscribers
// is encoded once.
type messageCache struct {
	cache *lru.Cache
	mu    sync.Mutex // serializes encoding of a missing entry
}

func newMessageCache(size uint32) *messageCache {
	size = min(max(size, 1), maxMessageCacheSize)
	cache, err := lru.New(int(size))
	if err != nil {
		panic(fmt.Errorf("failed to create message cache: %v", err))
	}
	return &messageCache{cache: cache}
}

// GetOrAdd returns the encoded message of the transfer, and whether it was encoded by this call.
func (mc *messageCache) GetOrAdd(transfer *logdb.Transfer) ([]byte, bool, error) {
	key := messageKey{transfer.Height, transfer.Index}
	if msg, ok := mc.cache.Get(key); ok {
		return msg.([]byte), false, nil
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if msg, ok := mc.cache.Get(key); ok {
		return msg.([]byte), false, nil
	}
	data, err := json.Marshal(transfers.ConvertTransfer(transfer))
	if err != nil {
		return nil, false, err
	}
	mc.cache.Add(key, data)
	return data, true, nil
}
