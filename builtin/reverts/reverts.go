// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"errors"
)

// Kind classifies a rejected call.
type Kind uint8

const (
	// Validation rejects bad input: parameters, amounts, capacity, duplicates.
	Validation Kind = iota
	// State rejects a call the current account state does not allow.
	State
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case State:
		return "state"
	default:
		return "unknown"
	}
}

// errorSelector is the 4-byte selector of Error(string).
var errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// ErrRevert is a synchronous rejection of a call. A rejected call leaves no state change behind.
type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a revert error of the given kind.
func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the category of the rejection.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Bytes returns the reason ABI encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	msg := []byte(e.message)
	padded := (len(msg) + 31) / 32 * 32

	// selector + offset + length + data padded to 32
	encoded := make([]byte, 4+32+32+padded)
	copy(encoded, errorSelector)
	binary.BigEndian.PutUint64(encoded[4+24:], 32)
	binary.BigEndian.PutUint64(encoded[4+32+24:], uint64(len(msg)))
	copy(encoded[4+64:], msg)
	return encoded
}

// As returns the revert error carried by err, if any.
func As(err error) (*ErrRevert, bool) {
	var re *ErrRevert
	if errors.As(err, &re) && re != nil {
		return re, true
	}
	return nil, false
}

// IsRevertErr reports whether err is, or wraps, a revert error.
func IsRevertErr(err any) bool {
	e, ok := err.(error)
	if !ok || e == nil {
		return false
	}
	_, ok = As(e)
	return ok
}
