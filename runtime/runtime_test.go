// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"math/big"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/pocm/builtin/pocm"
	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/chain"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

var (
	contractAddr = thor.BytesToAddress([]byte("pocm"))
	alice        = thor.BytesToAddress([]byte("alice"))
	bob          = thor.BytesToAddress([]byte("bob"))
	carol        = thor.BytesToAddress([]byte("carol"))
)

func coins(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), thor.BaseUnit)
}

func testDeployment() *Deployment {
	return &Deployment{
		Address: contractAddr,
		Config: &pocm.Config{
			Name:                       "Proof of Credit Mining",
			Symbol:                     "POCM",
			Decimals:                   8,
			Curve:                      pocm.Divisor,
			PriceSeed:                  coins(10),
			AwardingCycle:              99,
			MinimumDeposit:             coins(1),
			MinimumLocked:              50,
			MaximumDepositAddressCount: 10,
		},
		Alloc: map[thor.Address]*big.Int{
			alice: coins(1000),
			bob:   coins(1000),
		},
	}
}

type testRuntime struct {
	*Runtime
	t *testing.T
}

func newTestRuntime(t *testing.T, db kv.Store, dep *Deployment) *testRuntime {
	clock, err := chain.NewClock(db)
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	rt, err := New(db, clock, logDB, dep)
	require.NoError(t, err)
	return &testRuntime{rt, t}
}

func (rt *testRuntime) at(height uint32) *testRuntime {
	require.NoError(rt.t, rt.Clock().AdvanceTo(height))
	return rt
}

func (rt *testRuntime) account(addr thor.Address) *Account {
	acc, err := rt.Account(addr)
	require.NoError(rt.t, err)
	return acc
}

func (rt *testRuntime) transfers() []*logdb.Transfer {
	trs, err := rt.LogDB().FilterTransfers(context.Background(), nil)
	require.NoError(rt.t, err)
	return trs
}

func TestParseOperation(t *testing.T) {
	for _, name := range []string{"deposit", "increaseDeposit", "claim", "quit"} {
		op, err := ParseOperation(name)
		require.NoError(t, err)
		assert.Equal(t, Operation(name), op)
	}
	_, err := ParseOperation("withdraw")
	assert.Error(t, err)
}

func TestDeployFundsOnce(t *testing.T) {
	db := lvldb.NewMem()
	rt := newTestRuntime(t, db, testDeployment())
	assert.Equal(t, coins(1000), rt.account(alice).BaseBalance)

	_, err := rt.Execute(OpDeposit, alice, coins(20))
	require.NoError(t, err)

	// reopening does not deploy or fund again
	rt = newTestRuntime(t, db, testDeployment())
	assert.Equal(t, coins(980), rt.account(alice).BaseBalance)

	info, err := rt.Info()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), info.CreateHeight)
	assert.Equal(t, uint32(1), info.DepositCount)
	assert.Equal(t, coins(20), info.TotalDeposit)
	assert.Equal(t, "20", info.TotalDepositHuman)
}

func TestExecuteClaimStoresMints(t *testing.T) {
	rt := newTestRuntime(t, lvldb.NewMem(), testDeployment())

	_, err := rt.at(100).Execute(OpDeposit, alice, coins(20))
	require.NoError(t, err)

	preview := rt.at(300).account(alice).Preview
	require.NotNil(t, preview)

	waiter := rt.NewMintWaiter()
	receipt, err := rt.Execute(OpClaim, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), receipt.Height)
	assert.Equal(t, uint64(2), receipt.Tranches)
	assert.NotZero(t, receipt.GasUsed)
	assert.Equal(t, preview.TotalMined, receipt.Record.TotalMined)

	// two tranches of 20/10 tokens
	minted := new(big.Int).Mul(big.NewInt(4), thor.BaseUnit)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, minted, receipt.Transfers[0].Amount)
	assert.True(t, receipt.Transfers[0].Sender.IsZero())
	assert.Equal(t, alice, receipt.Transfers[0].Recipient)

	select {
	case <-waiter.C():
	case <-time.After(time.Second):
		t.Fatal("mint not signalled")
	}

	stored := rt.transfers()
	require.Len(t, stored, 1)
	assert.Equal(t, uint32(300), stored[0].Height)
	assert.Equal(t, minted, stored[0].Amount)
	assert.Equal(t, minted, rt.account(alice).TokenBalance)

	// settling again at the same height mints nothing
	receipt, err = rt.Execute(OpClaim, alice, nil)
	require.NoError(t, err)
	assert.Empty(t, receipt.Transfers)
	assert.Len(t, rt.transfers(), 1)
}

func TestRevertLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		dep    func(*Deployment)
		op     Operation
		caller thor.Address
		value  *big.Int
		check  func(t *testing.T, err error)
	}{
		{
			"below minimum", nil, OpDeposit, bob, coins(1),
			func(t *testing.T, err error) {
				var target *pocm.BelowMinimumDepositError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			"non payable claim", nil, OpClaim, alice, big.NewInt(5),
			func(t *testing.T, err error) {
				_, ok := reverts.As(err)
				assert.True(t, ok)
			},
		},
		{
			"insufficient balance", nil, OpDeposit, carol, coins(20),
			func(t *testing.T, err error) {
				assert.ErrorIs(t, err, xenv.ErrInsufficientBalance)
			},
		},
		{
			"out of gas", func(d *Deployment) { d.GasLimit = 10_000 }, OpDeposit, alice, coins(20),
			func(t *testing.T, err error) {
				assert.ErrorIs(t, err, xenv.ErrOutOfGas)
			},
		},
		{
			"negative value", nil, OpDeposit, bob, big.NewInt(-1),
			func(t *testing.T, err error) {
				_, ok := reverts.As(err)
				assert.True(t, ok)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := testDeployment()
			if tt.dep != nil {
				tt.dep(dep)
			}
			rt := newTestRuntime(t, lvldb.NewMem(), dep)
			if tt.dep == nil {
				_, err := rt.at(100).Execute(OpDeposit, alice, coins(20))
				require.NoError(t, err)
			}
			rt.at(1000)

			before := map[thor.Address]*Account{}
			for _, addr := range []thor.Address{alice, bob, carol, contractAddr} {
				before[addr] = rt.account(addr)
			}

			_, err := rt.Execute(tt.op, tt.caller, tt.value)
			require.Error(t, err)
			tt.check(t, err)

			for addr, acc := range before {
				after := rt.account(addr)
				assert.Equal(t, acc.BaseBalance, after.BaseBalance)
				assert.Equal(t, acc.TokenBalance, after.TokenBalance)
				assert.Equal(t, acc.Stored, after.Stored)
			}
			assert.Empty(t, rt.transfers())
		})
	}
}

func TestQuitRefunds(t *testing.T) {
	rt := newTestRuntime(t, lvldb.NewMem(), testDeployment())

	_, err := rt.at(100).Execute(OpDeposit, alice, coins(20))
	require.NoError(t, err)

	_, err = rt.at(150).Execute(OpQuit, alice, nil)
	var locked *pocm.StillLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, uint64(151), locked.UnlockHeight)

	receipt, err := rt.at(200).Execute(OpQuit, alice, nil)
	require.NoError(t, err)
	assert.Len(t, receipt.Transfers, 1)

	acc := rt.account(alice)
	assert.Equal(t, coins(1000), acc.BaseBalance)
	assert.Nil(t, acc.Stored)
	assert.Nil(t, acc.Preview)
	assert.Equal(t, big.NewInt(2), new(big.Int).Div(acc.TokenBalance, thor.BaseUnit))

	info, err := rt.Info()
	require.NoError(t, err)
	assert.Zero(t, info.DepositCount)
	assert.Zero(t, info.TotalDeposit.Sign())
	assert.Equal(t, acc.TokenBalance, info.TotalSupply)
}

func TestRate(t *testing.T) {
	dep := testDeployment()
	dep.Config.RewardHalvingCycle = 999
	rt := newTestRuntime(t, lvldb.NewMem(), dep)

	initial, err := rt.Rate(0)
	require.NoError(t, err)
	halved, err := rt.Rate(1000)
	require.NoError(t, err)
	// base units per token double at each halving
	assert.True(t, halved.Equal(initial.Mul(decimal.NewFromInt(2))))

	info, err := rt.Info()
	require.NoError(t, err)
	assert.True(t, info.InitialRate.Equal(initial))
	assert.True(t, info.CurrentRate.Equal(initial))
}

func TestStatePersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.db")

	db, err := lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	rt := newTestRuntime(t, db, testDeployment())
	_, err = rt.at(100).Execute(OpDeposit, alice, coins(20))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()
	rt = newTestRuntime(t, db, testDeployment())

	acc := rt.account(alice)
	assert.Equal(t, uint32(100), acc.Height)
	require.NotNil(t, acc.Stored)
	assert.Equal(t, coins(20), acc.Stored.DepositAmount)
	assert.Equal(t, uint32(100), acc.Stored.DepositHeight)
}

func TestInvalidDeployment(t *testing.T) {
	dep := testDeployment()
	dep.Config.Symbol = ""
	db := lvldb.NewMem()
	clock, err := chain.NewClock(db)
	require.NoError(t, err)
	_, err = New(db, clock, nil, dep)
	assert.ErrorIs(t, err, pocm.ErrInvalidConfig)
}

func TestConcurrentDeposits(t *testing.T) {
	dep := testDeployment()
	for i := range 20 {
		dep.Alloc[thor.BytesToAddress([]byte{'d', byte(i)})] = coins(100)
	}
	rt := newTestRuntime(t, lvldb.NewMem(), dep).at(100)

	var (
		g        errgroup.Group
		accepted atomic.Int32
		rejected atomic.Int32
	)
	for i := range 20 {
		caller := thor.BytesToAddress([]byte{'d', byte(i)})
		g.Go(func() error {
			_, err := rt.Execute(OpDeposit, caller, coins(5))
			if err == nil {
				accepted.Add(1)
				return nil
			}
			if _, ok := reverts.As(err); !ok {
				return err
			}
			rejected.Add(1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// the address cap admits exactly ten depositors
	assert.Equal(t, int32(10), accepted.Load())
	assert.Equal(t, int32(10), rejected.Load())

	info, err := rt.Info()
	require.NoError(t, err)
	assert.Equal(t, uint32(10), info.DepositCount)
	assert.Equal(t, coins(50), info.TotalDeposit)
}
