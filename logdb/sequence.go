// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"

	"github.com/pkg/errors"
)

type sequence int64

func newSequence(height uint32, index uint32) (sequence, error) {
	if (index & math.MaxInt32) != index {
		return 0, errors.New("index out of range")
	}
	return (sequence(height) << 31) | sequence(index), nil
}

func (s sequence) Height() uint32 {
	return uint32(s >> 31)
}

func (s sequence) Index() uint32 {
	return uint32(s & math.MaxInt32)
}
