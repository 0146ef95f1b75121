// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/co"
	"github.com/vechain/pocm/kv"
)

var (
	propsBucket   = kv.Bucket("p")
	bestHeightKey = []byte("best-height")
)

// Clock is the persistent height clock. Height only moves forward.
type Clock struct {
	props kv.GetPutter
	mu    sync.RWMutex
	best  uint32
	tick  co.Signal
}

// NewClock opens the clock stored in db, starting at 0 if absent.
func NewClock(db kv.GetPutter) (*Clock, error) {
	props := struct {
		kv.Getter
		kv.Putter
	}{propsBucket.NewGetter(db), propsBucket.NewPutter(db)}

	c := &Clock{props: props}
	data, err := props.Get(bestHeightKey)
	if err != nil {
		if !props.IsNotFound(err) {
			return nil, errors.Wrap(err, "load best height")
		}
		return c, nil
	}
	if len(data) != 4 {
		return nil, errors.New("corrupted best height")
	}
	c.best = binary.BigEndian.Uint32(data)
	metricBestHeight().Set(int64(c.best))
	return c, nil
}

// Height returns the best height.
func (c *Clock) Height() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.best
}

// Advance moves the best height forward by n and persists it.
func (c *Clock) Advance(n uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.best + n
	if next < c.best {
		return c.best, errors.New("height overflow")
	}
	return next, c.setLocked(next)
}

// AdvanceTo moves the best height to h. Moving backwards is an error.
func (c *Clock) AdvanceTo(h uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h < c.best {
		return errors.Errorf("height %d is behind best height %d", h, c.best)
	}
	return c.setLocked(h)
}

// NewTicker returns a waiter signalled on every height change.
func (c *Clock) NewTicker() co.Waiter {
	return c.tick.NewWaiter()
}

func (c *Clock) setLocked(h uint32) error {
	if h == c.best {
		return nil
	}
	var data [4]byte
	binary.BigEndian.PutUint32(data[:], h)
	if err := c.props.Put(bestHeightKey, data[:]); err != nil {
		return errors.Wrap(err, "save best height")
	}
	c.best = h
	metricBestHeight().Set(int64(h))
	c.tick.Broadcast()
	return nil
}
