// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"fmt"
	"math/big"

	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/thor"
)

// ErrInvalidConfig is matched by every construction parameter rejection.
var ErrInvalidConfig = reverts.New(reverts.Validation, "invalid config")

// InvalidConfigError rejects a construction parameter.
type InvalidConfigError struct {
	*reverts.ErrRevert
	Field string
}

func invalidConfig(field, format string, args ...any) error {
	return &InvalidConfigError{
		ErrRevert: reverts.New(reverts.Validation, fmt.Sprintf("invalid config %s: %s", field, fmt.Sprintf(format, args...))),
		Field:     field,
	}
}

func (e *InvalidConfigError) Unwrap() error         { return e.ErrRevert }
func (e *InvalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// DuplicateStakeError rejects a deposit from an address that already holds a record.
type DuplicateStakeError struct {
	*reverts.ErrRevert
	Address thor.Address
}

func newDuplicateStakeError(addr thor.Address) error {
	return &DuplicateStakeError{
		ErrRevert: reverts.New(reverts.Validation, fmt.Sprintf("duplicate stake: %v already deposited", addr)),
		Address:   addr,
	}
}

func (e *DuplicateStakeError) Unwrap() error { return e.ErrRevert }

// BelowMinimumDepositError rejects a deposit not exceeding the minimum.
type BelowMinimumDepositError struct {
	*reverts.ErrRevert
	Value   *big.Int
	Minimum *big.Int
}

func newBelowMinimumDepositError(value, minimum *big.Int) error {
	return &BelowMinimumDepositError{
		ErrRevert: reverts.New(reverts.Validation, fmt.Sprintf("deposit %v must exceed minimum deposit %v", value, minimum)),
		Value:     value,
		Minimum:   minimum,
	}
}

func (e *BelowMinimumDepositError) Unwrap() error { return e.ErrRevert }

// CapacityExceededError rejects a depositor beyond the address count cap.
type CapacityExceededError struct {
	*reverts.ErrRevert
	Maximum uint32
}

func newCapacityExceededError(max uint32) error {
	return &CapacityExceededError{
		ErrRevert: reverts.New(reverts.Validation, fmt.Sprintf("maximum deposit address count %d reached", max)),
		Maximum:   max,
	}
}

func (e *CapacityExceededError) Unwrap() error { return e.ErrRevert }

// NoActiveStakeError rejects an operation from an address without an active stake.
type NoActiveStakeError struct {
	*reverts.ErrRevert
	Address thor.Address
}

func newNoActiveStakeError(addr thor.Address) error {
	return &NoActiveStakeError{
		ErrRevert: reverts.New(reverts.State, fmt.Sprintf("no active stake for %v", addr)),
		Address:   addr,
	}
}

func (e *NoActiveStakeError) Unwrap() error { return e.ErrRevert }

// StillLockedError rejects a quit before the unlock height.
type StillLockedError struct {
	*reverts.ErrRevert
	UnlockHeight uint64
}

func newStillLockedError(unlock uint64) error {
	return &StillLockedError{
		ErrRevert:    reverts.New(reverts.State, fmt.Sprintf("stake is locked until height %d", unlock)),
		UnlockHeight: unlock,
	}
}

func (e *StillLockedError) Unwrap() error { return e.ErrRevert }
