// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/builtin/gascharger"
	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

var (
	contractAddr = thor.BytesToAddress([]byte("pocm"))
	alice        = thor.BytesToAddress([]byte("alice"))
	bob          = thor.BytesToAddress([]byte("bob"))
	carol        = thor.BytesToAddress([]byte("carol"))
)

type operation func(p *Pocm, env *xenv.Environment) (*StakeRecord, error)

var (
	deposit         operation = (*Pocm).Deposit
	increaseDeposit operation = (*Pocm).IncreaseDeposit
	claim           operation = (*Pocm).Claim
	quit            operation = (*Pocm).Quit
)

type testContract struct {
	t        *testing.T
	cfg      *Config
	st       *state.State
	gasLimit uint64
	events   []*xenv.Event
}

func scenarioConfig() *Config {
	return &Config{
		Name:                       "Proof of Credit Mining",
		Symbol:                     "POCM",
		Decimals:                   8,
		Curve:                      Divisor,
		PriceSeed:                  big.NewInt(1_000_000_000),
		AwardingCycle:              99,
		MinimumDeposit:             big.NewInt(100_000_000),
		MinimumLocked:              50,
		MaximumDepositAddressCount: 10,
	}
}

func newTestContract(t *testing.T, cfg *Config, createHeight uint32) *testContract {
	st := state.NewStater(lvldb.NewMem()).NewState()
	for _, addr := range []thor.Address{alice, bob, carol} {
		st.SetBalance(addr, new(big.Int).Mul(big.NewInt(1_000_000), thor.BaseUnit))
	}
	require.NoError(t, New(contractAddr, cfg, st, nil).Deploy(createHeight))
	return &testContract{t: t, cfg: cfg, st: st, gasLimit: thor.CallGasLimit}
}

func (c *testContract) engine() *Pocm {
	return New(contractAddr, c.cfg, c.st, nil)
}

// call executes op atomically, the way the runtime does.
func (c *testContract) call(op operation, caller thor.Address, value int64, height uint32) (*StakeRecord, error) {
	rev := c.st.NewCheckpoint()
	env := xenv.New(c.st, &xenv.BlockContext{Number: height}, caller, contractAddr, big.NewInt(value), c.gasLimit)
	engine := New(contractAddr, c.cfg, c.st, gascharger.New(env))

	rec, err := xenv.Call(env, func(env *xenv.Environment) (*StakeRecord, error) {
		if err := env.TakeValue(); err != nil {
			return nil, err
		}
		return op(engine, env)
	})
	if err != nil {
		c.st.RevertTo(rev)
		return nil, err
	}
	c.events = append(c.events, env.Events()...)
	return rec, nil
}

func (c *testContract) mustCall(op operation, caller thor.Address, value int64, height uint32) *StakeRecord {
	rec, err := c.call(op, caller, value, height)
	require.NoError(c.t, err)
	return rec
}

func (c *testContract) balanceOf(addr thor.Address) *big.Int {
	bal, err := c.engine().BalanceOf(addr)
	require.NoError(c.t, err)
	return bal
}

func (c *testContract) totalSupply() *big.Int {
	supply, err := c.engine().TotalSupply()
	require.NoError(c.t, err)
	return supply
}

func (c *testContract) totalDeposit() *big.Int {
	total, err := c.engine().TotalDeposit()
	require.NoError(c.t, err)
	return total
}

func (c *testContract) record(addr thor.Address) *StakeRecord {
	rec, err := c.engine().Registry().Get(addr)
	require.NoError(c.t, err)
	return rec
}

// assertBigEqual compares by value, a zero may carry a nil or an empty word slice.
func assertBigEqual(t *testing.T, want, got *big.Int, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want.String(), got.String(), msgAndArgs...)
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000))
}

func TestScenarioSingleTranche(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)

	rec := c.mustCall(deposit, alice, 2_000_000_000, 100)
	assert.Nil(t, rec.NextAccrualHeight)
	assert.Equal(t, uint32(100), rec.DepositHeight)

	// nothing due before height 200
	rec = c.mustCall(claim, alice, 0, 199)
	assert.Zero(t, rec.TotalMined.Sign())
	require.NotNil(t, rec.NextAccrualHeight)
	assert.Equal(t, uint32(200), *rec.NextAccrualHeight)
	assert.Empty(t, c.events)

	rec = c.mustCall(claim, alice, 0, 200)
	assert.Equal(t, tokens(2), rec.TotalMined)
	assert.Equal(t, tokens(2), rec.ReceivedMined)
	assert.Equal(t, uint32(1), rec.AccrualCount)
	assert.Equal(t, uint32(300), *rec.NextAccrualHeight)
	assert.Equal(t, tokens(2), c.balanceOf(alice))
	assert.Equal(t, tokens(2), c.totalSupply())

	require.Len(t, c.events, 1)
	from, to, amount, ok := DecodeTransfer(c.events[0].Topics, c.events[0].Data)
	require.True(t, ok)
	assert.True(t, from.IsZero())
	assert.Equal(t, alice, to)
	assert.Equal(t, tokens(2), amount)
}

func TestScenarioSkippedTranches(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)
	c.mustCall(deposit, bob, 2_000_000_000, 100)

	// tranches at 200 and 300
	rec := c.mustCall(claim, alice, 0, 399)
	assert.Equal(t, tokens(4), rec.ReceivedMined)
	assert.Equal(t, uint32(2), rec.AccrualCount)
	assert.Equal(t, uint32(400), *rec.NextAccrualHeight)

	// the tranche at 400 is due at 400
	rec = c.mustCall(claim, bob, 0, 400)
	assert.Equal(t, tokens(6), rec.ReceivedMined)
	assert.Equal(t, uint32(3), rec.AccrualCount)
	assert.Equal(t, uint32(500), *rec.NextAccrualHeight)
}

func TestScenarioHalving(t *testing.T) {
	for _, kind := range []CurveKind{Divisor, Multiplier} {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := scenarioConfig()
			cfg.Curve = kind
			cfg.InitialPrice = decimal.RequireFromString("0.5")
			cfg.AwardingCycle = 49
			cfg.RewardHalvingCycle = 99
			c := newTestContract(t, cfg, 0)

			c.mustCall(deposit, alice, 4_000_000_000, 0)

			rec := c.mustCall(claim, alice, 0, 50)
			first := new(big.Int).Set(rec.ReceivedMined)
			// tranches at 100 and 150 are past the first halving
			rec = c.mustCall(claim, alice, 0, 150)
			later := new(big.Int).Sub(rec.ReceivedMined, first)

			assert.Equal(t, first, later, "two halved tranches equal one full tranche")
			switch kind {
			case Divisor:
				assert.Equal(t, tokens(4), first)
			case Multiplier:
				assert.Equal(t, tokens(20), first)
			}
		})
	}
}

func TestMultiplierScaling(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Curve = Multiplier
	cfg.Decimals = 4
	cfg.InitialPrice = decimal.RequireFromString("0.5")
	c := newTestContract(t, cfg, 0)

	c.mustCall(deposit, alice, 300_000_000, 0)
	rec := c.mustCall(claim, alice, 0, 100)
	// 3 coins * 0.5 = 1.5 tokens
	assert.Equal(t, big.NewInt(15_000), rec.ReceivedMined)
}

func TestMultiplierSettlementFrequency(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Curve = Multiplier
	cfg.Decimals = 2
	cfg.InitialPrice = decimal.RequireFromString("0.01")
	cfg.MinimumDeposit = big.NewInt(10_000_000)

	tests := []struct {
		name    string
		deposit int64
		want    int64
	}{
		// 0.5 coin * 0.01 = 0.005 token, below one unit each tranche
		{"dust per tranche", 50_000_000, 0},
		// 1.5 coin * 0.01 = 0.015 token, 1 unit each tranche
		{"fraction per tranche", 150_000_000, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContract(t, cfg, 0)
			c.mustCall(deposit, alice, tt.deposit, 100)
			c.mustCall(deposit, bob, tt.deposit, 100)

			c.mustCall(claim, alice, 0, 200)
			eager := c.mustCall(claim, alice, 0, 300)
			lazy := c.mustCall(claim, bob, 0, 300)

			assert.Equal(t, uint32(2), eager.AccrualCount)
			assert.Equal(t, uint32(2), lazy.AccrualCount)
			assertBigEqual(t, big.NewInt(tt.want), eager.TotalMined)
			assertBigEqual(t, big.NewInt(tt.want), lazy.TotalMined)
			assertBigEqual(t, c.balanceOf(alice), c.balanceOf(bob))
		})
	}
}

func TestIdempotentAccrual(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)

	first := c.mustCall(claim, alice, 0, 500)
	events := len(c.events)
	second := c.mustCall(claim, alice, 0, 500)

	assert.Equal(t, first, second)
	assert.Len(t, c.events, events)
	assert.Equal(t, first.ReceivedMined, c.totalSupply())
}

func TestDepositRejections(t *testing.T) {
	cfg := scenarioConfig()
	cfg.MaximumDepositAddressCount = 2
	c := newTestContract(t, cfg, 0)

	_, err := c.call(deposit, alice, 100_000_000, 1)
	var below *BelowMinimumDepositError
	require.ErrorAs(t, err, &below)
	assert.Equal(t, reverts.Validation, below.Kind())

	c.mustCall(deposit, alice, 100_000_001, 1)

	_, err = c.call(deposit, alice, 200_000_000, 2)
	var dup *DuplicateStakeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, alice, dup.Address)

	c.mustCall(deposit, bob, 200_000_000, 2)

	_, err = c.call(deposit, carol, 200_000_000, 3)
	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.True(t, reverts.IsRevertErr(err))

	count, err := c.engine().TotalDepositAddressCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
	assert.Equal(t, big.NewInt(300_000_001), c.totalDeposit())

	// rejected deposits keep the attached value with the caller
	bal, err := c.st.GetBalance(carol)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(1_000_000), thor.BaseUnit), bal)
}

func TestNoActiveStake(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	for i, op := range []operation{claim, quit, increaseDeposit} {
		_, err := c.call(op, alice, int64(i/2), 100)
		var noStake *NoActiveStakeError
		require.ErrorAs(t, err, &noStake)
		assert.Equal(t, reverts.State, noStake.Kind())
	}
	_, err := c.engine().Preview(alice, 100)
	assert.ErrorAs(t, err, new(*NoActiveStakeError))
}

func TestNonPayable(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)

	for _, op := range []operation{claim, quit} {
		_, err := c.call(op, alice, 1, 200)
		assert.ErrorIs(t, err, errNonPayable)
	}
}

func TestIncreaseDeposit(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)

	// nothing due yet
	rec := c.mustCall(increaseDeposit, alice, 0, 150)
	assertBigEqual(t, big.NewInt(2_000_000_000), rec.DepositAmount)
	assert.Zero(t, rec.ReceivedMined.Sign())

	// settles the tranche at 200 with the old amount first
	rec = c.mustCall(increaseDeposit, alice, 2_000_000_000, 250)
	assert.Equal(t, tokens(2), rec.ReceivedMined)
	assert.Equal(t, big.NewInt(4_000_000_000), rec.DepositAmount)
	assert.Equal(t, big.NewInt(4_000_000_000), c.totalDeposit())

	rec = c.mustCall(claim, alice, 0, 300)
	assert.Equal(t, tokens(6), rec.ReceivedMined)

	// a zero top-up settles like a claim
	events := len(c.events)
	rec = c.mustCall(increaseDeposit, alice, 0, 400)
	assert.Equal(t, tokens(10), rec.ReceivedMined)
	assertBigEqual(t, big.NewInt(4_000_000_000), rec.DepositAmount)
	assertBigEqual(t, big.NewInt(4_000_000_000), c.totalDeposit())
	assert.Len(t, c.events, events+1)
}

func TestLockEnforcement(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)
	before := c.record(alice)

	// unlock at 100 + 50 + 1
	_, err := c.call(quit, alice, 0, 150)
	var locked *StillLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, uint64(151), locked.UnlockHeight)
	assert.Contains(t, err.Error(), "151")
	assert.Equal(t, before, c.record(alice))

	balBefore, _ := c.st.GetBalance(alice)
	rec := c.mustCall(quit, alice, 0, 151)
	assert.Zero(t, rec.ReceivedMined.Sign())

	balAfter, _ := c.st.GetBalance(alice)
	assert.Equal(t, big.NewInt(2_000_000_000), new(big.Int).Sub(balAfter, balBefore))
	assert.Nil(t, c.record(alice))
	assert.Zero(t, c.totalDeposit().Sign())

	// the address may deposit again
	c.mustCall(deposit, alice, 2_000_000_000, 160)
}

func TestQuitSettlesFirst(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)

	rec := c.mustCall(quit, alice, 0, 300)
	assert.Equal(t, tokens(4), rec.ReceivedMined)
	assert.Equal(t, tokens(4), c.balanceOf(alice))
}

func TestQuitRetainPolicy(t *testing.T) {
	cfg := scenarioConfig()
	cfg.QuitPolicy = QuitRetain
	c := newTestContract(t, cfg, 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)
	c.mustCall(quit, alice, 0, 200)

	rec := c.record(alice)
	require.NotNil(t, rec)
	assert.True(t, rec.Withdrawn)
	assert.Zero(t, c.totalDeposit().Sign())

	_, err := c.call(deposit, alice, 2_000_000_000, 300)
	assert.ErrorAs(t, err, new(*DuplicateStakeError))

	_, err = c.call(claim, alice, 0, 300)
	assert.ErrorAs(t, err, new(*NoActiveStakeError))
}

func TestSupplyCap(t *testing.T) {
	cfg := scenarioConfig()
	cfg.MaxSupply = tokens(3)
	c := newTestContract(t, cfg, 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)
	c.mustCall(deposit, bob, 2_000_000_000, 100)

	rec := c.mustCall(claim, alice, 0, 200)
	assert.Equal(t, tokens(2), rec.ReceivedMined)

	rec = c.mustCall(claim, bob, 0, 200)
	assert.Equal(t, tokens(2), rec.TotalMined)
	assert.Equal(t, tokens(1), rec.ReceivedMined)

	events := len(c.events)
	rec = c.mustCall(claim, alice, 0, 300)
	assert.Equal(t, tokens(4), rec.TotalMined)
	assert.Equal(t, tokens(2), rec.ReceivedMined)
	assert.Len(t, c.events, events)

	assert.Equal(t, tokens(3), c.totalSupply())
}

func TestPreview(t *testing.T) {
	c := newTestContract(t, scenarioConfig(), 0)
	c.mustCall(deposit, alice, 2_000_000_000, 100)
	c.mustCall(claim, alice, 0, 200)

	journal := c.st.Stage().Len()
	p1, err := c.engine().Preview(alice, 450)
	require.NoError(t, err)
	p2, err := c.engine().Preview(alice, 450)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, journal, c.st.Stage().Len())

	// tranches at 300 and 400
	assert.Equal(t, tokens(6), p1.TotalMined)
	assert.Equal(t, tokens(2), p1.ReceivedMined)
	assert.Equal(t, uint32(3), p1.AccrualCount)

	claimed := c.mustCall(claim, alice, 0, 450)
	assert.Equal(t, p1.TotalMined, claimed.TotalMined)
	assert.Equal(t, p1.NextAccrualHeight, claimed.NextAccrualHeight)
	assert.Equal(t, p1.AccrualCount, claimed.AccrualCount)
}

func TestOutOfGasReverts(t *testing.T) {
	cfg := scenarioConfig()
	cfg.AwardingCycle = 0
	c := newTestContract(t, cfg, 0)
	c.mustCall(deposit, alice, 2_000_000_000, 0)
	before := c.record(alice)

	c.gasLimit = 100_000
	_, err := c.call(claim, alice, 0, 1_000_000)
	assert.ErrorIs(t, err, xenv.ErrOutOfGas)
	assert.Equal(t, before, c.record(alice))
	assert.Zero(t, c.totalSupply().Sign())
}

func TestConservation(t *testing.T) {
	cfg := scenarioConfig()
	cfg.RewardHalvingCycle = 299
	cfg.AwardingCycle = 9
	cfg.MinimumLocked = 20
	c := newTestContract(t, cfg, 0)

	accounts := []thor.Address{alice, bob, carol}
	ops := []operation{deposit, increaseDeposit, claim, quit}
	rng := rand.New(rand.NewPCG(7, 11)) //#nosec G404

	var height uint32
	for range 300 {
		height += uint32(rng.IntN(15))
		caller := accounts[rng.IntN(len(accounts))]
		op := rng.IntN(len(ops))
		var value int64
		if op < 2 {
			value = int64(100_000_001 + rng.IntN(5_000_000_000))
		}
		if _, err := c.call(ops[op], caller, value, height); err != nil {
			require.True(t, reverts.IsRevertErr(err), "unexpected error %v", err)
		}

		minted := new(big.Int)
		for _, ev := range c.events {
			_, _, amount, ok := DecodeTransfer(ev.Topics, ev.Data)
			require.True(t, ok)
			minted.Add(minted, amount)
		}
		assertBigEqual(t, minted, c.totalSupply(), "supply at %d", height)

		balances := new(big.Int)
		active := new(big.Int)
		var count uint32
		for _, addr := range accounts {
			balances.Add(balances, c.balanceOf(addr))
			if rec := c.record(addr); rec.Active() {
				active.Add(active, rec.DepositAmount)
				count++
			}
		}
		assertBigEqual(t, minted, balances, "balances at %d", height)
		assertBigEqual(t, active, c.totalDeposit(), "deposit at %d", height)
		n, err := c.engine().TotalDepositAddressCount()
		require.NoError(t, err)
		assert.Equal(t, count, n)
	}
}

func TestQueries(t *testing.T) {
	cfg := scenarioConfig()
	cfg.RewardHalvingCycle = 99
	c := newTestContract(t, cfg, 1000)
	c.mustCall(deposit, alice, 2_050_000_000, 1000)

	p := c.engine()
	createHeight, err := p.CreateHeight()
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), createHeight)

	rate, err := p.InitialRate()
	require.NoError(t, err)
	assert.Equal(t, "1000000000", rate.String())

	rate, err = p.CurrentRate(1100)
	require.NoError(t, err)
	assert.Equal(t, "2000000000", rate.String())

	human, err := p.TotalDepositHuman()
	require.NoError(t, err)
	assert.Equal(t, "20.5", human)

	assert.ErrorIs(t, p.Deploy(0), errAlreadyDeployed)

	_, err = New(contractAddr, cfg, state.NewStater(lvldb.NewMem()).NewState(), nil).CreateHeight()
	assert.ErrorIs(t, err, errNotDeployed)
}
