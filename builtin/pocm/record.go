// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// StakeRecord is the mining state of a participant.
type StakeRecord struct {
	DepositAmount *big.Int
	DepositHeight uint32
	// NextAccrualHeight is nil until the first settlement.
	NextAccrualHeight *uint32
	AccrualCount      uint32
	TotalMined        *big.Int
	ReceivedMined     *big.Int
	Withdrawn         bool
}

func newStakeRecord(amount *big.Int, height uint32) *StakeRecord {
	return &StakeRecord{
		DepositAmount: new(big.Int).Set(amount),
		DepositHeight: height,
		TotalMined:    new(big.Int),
		ReceivedMined: new(big.Int),
	}
}

// Active reports whether the record holds a stake.
func (r *StakeRecord) Active() bool {
	return r != nil && !r.Withdrawn
}

// Cursor returns the height of the next payable tranche.
func (r *StakeRecord) Cursor(awardingCycle uint32) uint64 {
	if r.NextAccrualHeight != nil {
		return uint64(*r.NextAccrualHeight)
	}
	return uint64(r.DepositHeight) + uint64(awardingCycle) + 1
}

// Copy returns a deep copy.
func (r *StakeRecord) Copy() *StakeRecord {
	cpy := *r
	cpy.DepositAmount = new(big.Int).Set(r.DepositAmount)
	cpy.TotalMined = new(big.Int).Set(r.TotalMined)
	cpy.ReceivedMined = new(big.Int).Set(r.ReceivedMined)
	if r.NextAccrualHeight != nil {
		next := *r.NextAccrualHeight
		cpy.NextAccrualHeight = &next
	}
	return &cpy
}

// storedRecord is the rlp layout. The cursor carries an explicit presence flag
// so a computed height of zero is not mistaken for an unset cursor.
type storedRecord struct {
	DepositAmount     *big.Int
	DepositHeight     uint32
	HasCursor         bool
	NextAccrualHeight uint32
	AccrualCount      uint32
	TotalMined        *big.Int
	ReceivedMined     *big.Int
	Withdrawn         bool
}

// EncodeRLP implements rlp.Encoder.
func (r *StakeRecord) EncodeRLP(w io.Writer) error {
	s := storedRecord{
		DepositAmount: r.DepositAmount,
		DepositHeight: r.DepositHeight,
		AccrualCount:  r.AccrualCount,
		TotalMined:    r.TotalMined,
		ReceivedMined: r.ReceivedMined,
		Withdrawn:     r.Withdrawn,
	}
	if r.NextAccrualHeight != nil {
		s.HasCursor = true
		s.NextAccrualHeight = *r.NextAccrualHeight
	}
	return rlp.Encode(w, &s)
}

// DecodeRLP implements rlp.Decoder.
func (r *StakeRecord) DecodeRLP(stream *rlp.Stream) error {
	var s storedRecord
	if err := stream.Decode(&s); err != nil {
		return err
	}
	*r = StakeRecord{
		DepositAmount: s.DepositAmount,
		DepositHeight: s.DepositHeight,
		AccrualCount:  s.AccrualCount,
		TotalMined:    s.TotalMined,
		ReceivedMined: s.ReceivedMined,
		Withdrawn:     s.Withdrawn,
	}
	if s.HasCursor {
		next := s.NextAccrualHeight
		r.NextAccrualHeight = &next
	}
	return nil
}
