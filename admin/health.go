// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"sync"
	"time"
)

type HeightProgress struct {
	BestHeight           uint32     `json:"bestHeight"`
	LastAdvanceTimestamp *time.Time `json:"lastAdvanceTimestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	HeightProgress *HeightProgress `json:"heightProgress"`
	ClockEnabled   bool            `json:"clockEnabled"`
}

// Health tracks the progress of the height clock.
// A zero interval means heights are advanced manually and the clock never goes stale.
type Health struct {
	lock        sync.RWMutex
	interval    time.Duration
	lastAdvance time.Time
	bestHeight  uint32
}

func NewHealth(bestHeight uint32, interval time.Duration) *Health {
	return &Health{
		interval:    interval,
		lastAdvance: time.Now(),
		bestHeight:  bestHeight,
	}
}

func (h *Health) NewHeight(height uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastAdvance = time.Now()
	h.bestHeight = height
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	last := h.lastAdvance
	enabled := h.interval > 0
	healthy := !enabled || time.Since(last) <= 2*h.interval

	return &Status{
		Healthy: healthy,
		HeightProgress: &HeightProgress{
			BestHeight:           h.bestHeight,
			LastAdvanceTimestamp: &last,
		},
		ClockEnabled: enabled,
	}
}
