// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"math/big"

	ethparams "github.com/ethereum/go-ethereum/params"

	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
)

var (
	// ErrOutOfGas is returned when a call exhausts its gas budget.
	ErrOutOfGas = errors.New("out of gas")
	// ErrInsufficientBalance is returned when a base-asset transfer exceeds the sender balance.
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
)

// BlockContext is the height snapshot a call executes at.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Event is a notification emitted by a contract.
type Event struct {
	Address thor.Address
	Topics  []thor.Bytes32
	Data    []byte
}

// Transfer is a base-asset movement made during a call.
type Transfer struct {
	Sender    thor.Address
	Recipient thor.Address
	Amount    *big.Int
}

type vmError struct {
	cause error
}

// Environment is the host context of a single contract call.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   thor.Address
	to       thor.Address
	value    *big.Int

	gasLimit  uint64
	gasUsed   uint64
	events    []*Event
	transfers []*Transfer
}

// New creates the environment of a call made by caller to the contract at to, with value attached.
func New(
	state *state.State,
	blockCtx *BlockContext,
	caller thor.Address,
	to thor.Address,
	value *big.Int,
	gasLimit uint64,
) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		to:       to,
		value:    value,
		gasLimit: gasLimit,
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() thor.Address        { return env.caller }
func (env *Environment) To() thor.Address            { return env.to }
func (env *Environment) Value() *big.Int             { return new(big.Int).Set(env.value) }
func (env *Environment) GasUsed() uint64             { return env.gasUsed }
func (env *Environment) Events() []*Event            { return env.events }
func (env *Environment) Transfers() []*Transfer      { return env.transfers }

// UseGas charges gas, aborting the call when the budget is exhausted.
func (env *Environment) UseGas(gas uint64) {
	if env.gasLimit-env.gasUsed < gas {
		env.gasUsed = env.gasLimit
		panic(&vmError{ErrOutOfGas})
	}
	env.gasUsed += gas
}

// Log records an event emitted by the called contract.
func (env *Environment) Log(topics []thor.Bytes32, data []byte) {
	env.UseGas(ethparams.LogGas + ethparams.LogTopicGas*uint64(len(topics)) + ethparams.LogDataGas*uint64(len(data)))
	env.events = append(env.events, &Event{
		Address: env.to,
		Topics:  topics,
		Data:    data,
	})
}

// Pay moves base asset held by the called contract to the recipient.
func (env *Environment) Pay(recipient thor.Address, amount *big.Int) error {
	return env.transfer(env.to, recipient, amount)
}

// TakeValue moves the attached value from the caller to the called contract.
func (env *Environment) TakeValue() error {
	return env.transfer(env.caller, env.to, env.value)
}

func (env *Environment) transfer(sender, recipient thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	env.UseGas(2 * thor.GetBalanceGas)
	from, err := env.state.GetBalance(sender)
	if err != nil {
		return err
	}
	if from.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	to, err := env.state.GetBalance(recipient)
	if err != nil {
		return err
	}
	env.state.SetBalance(sender, from.Sub(from, amount))
	env.state.SetBalance(recipient, to.Add(to, amount))
	env.transfers = append(env.transfers, &Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})
	return nil
}

// Stop aborts the call with the given error.
func (env *Environment) Stop(err error) {
	panic(&vmError{err})
}

// Call runs proc, converting an aborted call into an error.
func Call[T any](env *Environment, proc func(env *Environment) (T, error)) (result T, err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				var zero T
				result, err = zero, rec.cause
			} else {
				panic(e)
			}
		}
	}()
	return proc(env)
}
