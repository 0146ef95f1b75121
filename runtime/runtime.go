// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"errors"
	"math/big"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/builtin/gascharger"
	"github.com/vechain/pocm/builtin/pocm"
	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/chain"
	"github.com/vechain/pocm/co"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// Deployment describes the contract run by a Runtime.
type Deployment struct {
	Address thor.Address
	Config  *pocm.Config
	// Alloc funds base-asset balances when the contract is first deployed.
	Alloc map[thor.Address]*big.Int
	// GasLimit is the budget of a single call, thor.CallGasLimit when zero.
	GasLimit uint64
}

// Receipt is the outcome of a successful operation.
type Receipt struct {
	Operation Operation
	Caller    thor.Address
	Height    uint32
	GasUsed   uint64
	Tranches  uint64
	Record    *pocm.StakeRecord
	Transfers []*logdb.Transfer
}

// Runtime executes operations one at a time against the committed state.
type Runtime struct {
	mu       sync.Mutex
	state    *state.State
	clock    *chain.Clock
	logDB    *logdb.LogDB
	addr     thor.Address
	cfg      *pocm.Config
	gasLimit uint64
	minted   co.Signal
}

// New opens the runtime, deploying the contract at the current height if not yet deployed.
func New(db kv.Store, clock *chain.Clock, logDB *logdb.LogDB, dep *Deployment) (*Runtime, error) {
	if err := dep.Config.Validate(); err != nil {
		return nil, err
	}
	gasLimit := dep.GasLimit
	if gasLimit == 0 {
		gasLimit = thor.CallGasLimit
	}
	rt := &Runtime{
		state:    state.NewStater(db).NewState(),
		clock:    clock,
		logDB:    logDB,
		addr:     dep.Address,
		cfg:      dep.Config,
		gasLimit: gasLimit,
	}

	engine := rt.engine(nil)
	deployed, err := engine.IsDeployed()
	if err != nil {
		return nil, err
	}
	if !deployed {
		height := clock.Height()
		if err := engine.Deploy(height); err != nil {
			return nil, err
		}
		for addr, amount := range dep.Alloc {
			rt.state.SetBalance(addr, amount)
		}
		if err := rt.state.Stage().Commit(); err != nil {
			return nil, pkgerrors.WithMessage(err, "commit deployment")
		}
		logger.Info("contract deployed", "addr", rt.addr, "height", height, "funded", len(dep.Alloc))
	}

	count, err := engine.TotalDepositAddressCount()
	if err != nil {
		return nil, err
	}
	metricDepositors().Set(int64(count))
	return rt, nil
}

func (rt *Runtime) engine(charger *gascharger.Charger) *pocm.Pocm {
	return pocm.New(rt.addr, rt.cfg, rt.state, charger)
}

// Address returns the contract address.
func (rt *Runtime) Address() thor.Address { return rt.addr }

// Config returns the deployment configuration.
func (rt *Runtime) Config() *pocm.Config { return rt.cfg }

// Clock returns the height clock.
func (rt *Runtime) Clock() *chain.Clock { return rt.clock }

// LogDB returns the mint event store.
func (rt *Runtime) LogDB() *logdb.LogDB { return rt.logDB }

// NewMintWaiter returns a waiter signalled after mint events are stored.
func (rt *Runtime) NewMintWaiter() co.Waiter { return rt.minted.NewWaiter() }

// Execute runs op for caller with value attached at the best height.
// On any error the state is left as it was before the call.
func (rt *Runtime) Execute(op Operation, caller thor.Address, value *big.Int) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, reverts.New(reverts.Validation, "negative value")
	}

	height := rt.clock.Height()
	env := xenv.New(
		rt.state,
		&xenv.BlockContext{Number: height, Time: uint64(time.Now().Unix())},
		caller,
		rt.addr,
		value,
		rt.gasLimit,
	)
	charger := gascharger.New(env)
	engine := rt.engine(charger)
	method := op.method(engine)
	if method == nil {
		return nil, reverts.New(reverts.Validation, "unknown operation "+string(op))
	}

	checkpoint := rt.state.NewCheckpoint()
	rec, err := xenv.Call(env, func(env *xenv.Environment) (*pocm.StakeRecord, error) {
		if err := env.TakeValue(); err != nil {
			return nil, err
		}
		return method(env)
	})
	if err != nil {
		rt.state.RevertTo(checkpoint)
		rt.observe(op, err)
		logger.Debug("operation reverted", "op", op, "caller", caller, "height", height, "err", err)
		return nil, err
	}

	if err := rt.state.Stage().Commit(); err != nil {
		rt.state.RevertTo(checkpoint)
		rt.observe(op, err)
		return nil, pkgerrors.WithMessage(err, "commit state")
	}
	rt.observe(op, nil)

	receipt := &Receipt{
		Operation: op,
		Caller:    caller,
		Height:    height,
		GasUsed:   env.GasUsed(),
		Tranches:  charger.Tranches(),
		Record:    rec,
		Transfers: rt.mints(env),
	}
	metricTranches().ObserveWithLabels(int64(receipt.Tranches), map[string]string{"op": string(op)})
	if count, err := engine.TotalDepositAddressCount(); err == nil {
		metricDepositors().Set(int64(count))
	}

	if len(receipt.Transfers) > 0 {
		// state is already committed, a failed insert only loses the notification
		if err := rt.logDB.Insert(height, receipt.Transfers); err != nil {
			logger.Error("failed to store mint events", "height", height, "err", err)
		} else {
			rt.minted.Broadcast()
		}
	}
	logger.Debug("operation executed", "op", op, "caller", caller, "height", height, "gas", receipt.GasUsed)
	return receipt, nil
}

func (rt *Runtime) observe(op Operation, err error) {
	result := "success"
	if err != nil {
		result = "reverted"
		if _, ok := reverts.As(err); !ok && !errors.Is(err, xenv.ErrOutOfGas) && !errors.Is(err, xenv.ErrInsufficientBalance) {
			result = "failed"
		}
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": string(op), "result": result})
}

func (rt *Runtime) mints(env *xenv.Environment) []*logdb.Transfer {
	var transfers []*logdb.Transfer
	for _, ev := range env.Events() {
		if ev.Address != rt.addr {
			continue
		}
		from, to, amount, ok := pocm.DecodeTransfer(ev.Topics, ev.Data)
		if !ok {
			continue
		}
		transfers = append(transfers, &logdb.Transfer{Sender: from, Recipient: to, Amount: amount})
		metricMints().Add(1)
		if amount.IsInt64() {
			metricMinted().Add(amount.Int64())
		}
	}
	return transfers
}

// Info is a snapshot of the global counters of the contract.
type Info struct {
	BestHeight        uint32
	CreateHeight      uint32
	InitialRate       decimal.Decimal
	CurrentRate       decimal.Decimal
	TotalDeposit      *big.Int
	TotalDepositHuman string
	DepositCount      uint32
	TotalSupply       *big.Int
}

// Info reads the global counters at the best height.
func (rt *Runtime) Info() (*Info, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var (
		engine = rt.engine(nil)
		info   = &Info{BestHeight: rt.clock.Height()}
		err    error
	)
	if info.CreateHeight, err = engine.CreateHeight(); err != nil {
		return nil, err
	}
	if info.InitialRate, err = engine.InitialRate(); err != nil {
		return nil, err
	}
	if info.CurrentRate, err = engine.CurrentRate(info.BestHeight); err != nil {
		return nil, err
	}
	if info.TotalDeposit, err = engine.TotalDeposit(); err != nil {
		return nil, err
	}
	if info.TotalDepositHuman, err = engine.TotalDepositHuman(); err != nil {
		return nil, err
	}
	if info.DepositCount, err = engine.TotalDepositAddressCount(); err != nil {
		return nil, err
	}
	if info.TotalSupply, err = engine.TotalSupply(); err != nil {
		return nil, err
	}
	return info, nil
}

// Rate returns the reward rate in force at height.
func (rt *Runtime) Rate(height uint32) (decimal.Decimal, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.engine(nil).CurrentRate(height)
}

// Account is the view of a participant at the best height.
type Account struct {
	Height       uint32
	BaseBalance  *big.Int
	TokenBalance *big.Int
	// Preview is the stake settled up to Height without persisting, nil without an active stake.
	Preview *pocm.StakeRecord
	// Stored is the record as persisted, nil if never deposited.
	Stored *pocm.StakeRecord
}

// Account reads the balances and the stake of addr.
func (rt *Runtime) Account(addr thor.Address) (*Account, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	engine := rt.engine(nil)
	acc := &Account{Height: rt.clock.Height()}
	var err error
	if acc.BaseBalance, err = rt.state.GetBalance(addr); err != nil {
		return nil, err
	}
	if acc.TokenBalance, err = engine.BalanceOf(addr); err != nil {
		return nil, err
	}
	if acc.Stored, err = engine.Registry().Get(addr); err != nil {
		return nil, err
	}
	if acc.Stored.Active() {
		if acc.Preview, err = engine.Preview(addr, acc.Height); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
