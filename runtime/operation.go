// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"

	"github.com/vechain/pocm/builtin/pocm"
	"github.com/vechain/pocm/xenv"
)

// Operation names a state changing call of the mining contract.
type Operation string

const (
	OpDeposit         Operation = "deposit"
	OpIncreaseDeposit Operation = "increaseDeposit"
	OpClaim           Operation = "claim"
	OpQuit            Operation = "quit"
)

// ParseOperation parses the name of an operation.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpDeposit, OpIncreaseDeposit, OpClaim, OpQuit:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

func (op Operation) method(engine *pocm.Pocm) func(*xenv.Environment) (*pocm.StakeRecord, error) {
	switch op {
	case OpDeposit:
		return engine.Deposit
	case OpIncreaseDeposit:
		return engine.IncreaseDeposit
	case OpClaim:
		return engine.Claim
	case OpQuit:
		return engine.Quit
	default:
		return nil
	}
}
