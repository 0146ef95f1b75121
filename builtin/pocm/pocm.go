// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/builtin/gascharger"
	"github.com/vechain/pocm/builtin/reverts"
	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
	"github.com/vechain/pocm/xenv"
)

var logger = log.WithContext("pkg", "pocm")

var (
	slotCreateHeight = thor.BytesToBytes32([]byte("create-height"))
	slotDeployed     = thor.BytesToBytes32([]byte("deployed"))
	slotTotalDeposit = thor.BytesToBytes32([]byte("total-deposit"))
	slotDepositCount = thor.BytesToBytes32([]byte("deposit-count"))
	slotTotalSupply  = thor.BytesToBytes32([]byte("total-supply"))
	slotRecords      = thor.BytesToBytes32([]byte("records"))
	slotBalances     = thor.BytesToBytes32([]byte("balances"))

	errNonPayable       = reverts.New(reverts.Validation, "operation does not accept value")
	errNotDeployed      = errors.New("pocm: not deployed")
	errAlreadyDeployed  = errors.New("pocm: already deployed")
	errDepositUnderflow = errors.New("pocm: total deposit underflow")
)

// Pocm binds the mining engine to the contract storage of a state.
type Pocm struct {
	addr     thor.Address
	cfg      *Config
	charger  *gascharger.Charger
	registry *Registry
	ledger   *Ledger

	createHeight *solidity.Uint256
	deployed     *solidity.Uint256
	totalDeposit *solidity.Uint256
	depositCount *solidity.Uint256

	curve *Curve
}

// New creates the engine of the contract at addr. The charger may be nil.
func New(addr thor.Address, cfg *Config, state *state.State, charger *gascharger.Charger) *Pocm {
	var useGas solidity.UseGasFunc
	if charger != nil {
		useGas = charger.Charge
	}
	ctx := solidity.NewContext(addr, state, useGas)
	return &Pocm{
		addr:         addr,
		cfg:          cfg,
		charger:      charger,
		registry:     newRegistry(ctx),
		ledger:       newLedger(ctx),
		createHeight: solidity.NewUint256(ctx, slotCreateHeight),
		deployed:     solidity.NewUint256(ctx, slotDeployed),
		totalDeposit: solidity.NewUint256(ctx, slotTotalDeposit),
		depositCount: solidity.NewUint256(ctx, slotDepositCount),
	}
}

// Address returns the contract address.
func (p *Pocm) Address() thor.Address { return p.addr }

// Config returns the deployment configuration.
func (p *Pocm) Config() *Config { return p.cfg }

// Registry returns the account registry.
func (p *Pocm) Registry() *Registry { return p.registry }

// Ledger returns the supply ledger.
func (p *Pocm) Ledger() *Ledger { return p.ledger }

// Deploy anchors the halving schedule at createHeight. It can be done once.
func (p *Pocm) Deploy(createHeight uint32) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	deployed, err := p.IsDeployed()
	if err != nil {
		return err
	}
	if deployed {
		return errAlreadyDeployed
	}
	p.deployed.Set(big.NewInt(1))
	p.createHeight.Set(new(big.Int).SetUint64(uint64(createHeight)))
	logger.Info("deployed", "name", p.cfg.Name, "symbol", p.cfg.Symbol, "curve", p.cfg.Curve, "createHeight", createHeight)
	return nil
}

// IsDeployed reports whether Deploy was done.
func (p *Pocm) IsDeployed() (bool, error) {
	v, err := p.deployed.Get()
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// CreateHeight returns the height the contract was deployed at.
func (p *Pocm) CreateHeight() (uint32, error) {
	deployed, err := p.IsDeployed()
	if err != nil {
		return 0, err
	}
	if !deployed {
		return 0, errNotDeployed
	}
	v, err := p.createHeight.Get()
	if err != nil {
		return 0, err
	}
	return uint32(v.Uint64()), nil
}

// Curve returns the reward curve.
func (p *Pocm) Curve() (*Curve, error) {
	if p.curve == nil {
		createHeight, err := p.CreateHeight()
		if err != nil {
			return nil, err
		}
		p.curve = NewCurve(p.cfg, createHeight)
	}
	return p.curve, nil
}

// CurrentRate returns the rate in force at height.
func (p *Pocm) CurrentRate(height uint32) (decimal.Decimal, error) {
	curve, err := p.Curve()
	if err != nil {
		return decimal.Zero, err
	}
	return curve.Rate(height), nil
}

// InitialRate returns the anchor rate.
func (p *Pocm) InitialRate() (decimal.Decimal, error) {
	curve, err := p.Curve()
	if err != nil {
		return decimal.Zero, err
	}
	return curve.InitialRate(), nil
}

// TotalDeposit returns the sum of active deposits in base units.
func (p *Pocm) TotalDeposit() (*big.Int, error) {
	return p.totalDeposit.Get()
}

// TotalDepositHuman returns the sum of active deposits in base coin.
func (p *Pocm) TotalDepositHuman() (string, error) {
	total, err := p.totalDeposit.Get()
	if err != nil {
		return "", err
	}
	return FormatBaseUnits(total), nil
}

// TotalDepositAddressCount returns the number of active stakes.
func (p *Pocm) TotalDepositAddressCount() (uint32, error) {
	v, err := p.depositCount.Get()
	if err != nil {
		return 0, err
	}
	return uint32(v.Uint64()), nil
}

// TotalSupply returns the amount of token ever minted.
func (p *Pocm) TotalSupply() (*big.Int, error) {
	return p.ledger.TotalSupply()
}

// BalanceOf returns the token balance of addr.
func (p *Pocm) BalanceOf(addr thor.Address) (*big.Int, error) {
	return p.ledger.BalanceOf(addr)
}

// Deposit creates the stake of the caller with the attached value.
func (p *Pocm) Deposit(env *xenv.Environment) (*StakeRecord, error) {
	caller, value, height := env.Caller(), env.Value(), env.BlockContext().Number

	count, err := p.TotalDepositAddressCount()
	if err != nil {
		return nil, err
	}
	if p.cfg.HasAddressCap() && uint64(count)+1 > uint64(p.cfg.MaximumDepositAddressCount) {
		return nil, newCapacityExceededError(p.cfg.MaximumDepositAddressCount)
	}
	existing, err := p.registry.Get(caller)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newDuplicateStakeError(caller)
	}
	if value.Cmp(p.cfg.MinimumDeposit) <= 0 {
		return nil, newBelowMinimumDepositError(value, p.cfg.MinimumDeposit)
	}

	rec := newStakeRecord(value, height)
	if err := p.registry.Insert(caller, rec); err != nil {
		return nil, err
	}
	if err := p.totalDeposit.Add(value); err != nil {
		return nil, err
	}
	if err := p.depositCount.Add(big.NewInt(1)); err != nil {
		return nil, err
	}
	logger.Debug("deposited", "addr", caller, "amount", value, "height", height)
	return rec, nil
}

// IncreaseDeposit settles the caller's stake, then adds the attached value to it.
func (p *Pocm) IncreaseDeposit(env *xenv.Environment) (*StakeRecord, error) {
	caller, value := env.Caller(), env.Value()

	rec, err := p.activeRecord(caller)
	if err != nil {
		return nil, err
	}
	if _, err := p.settle(env, caller, rec); err != nil {
		return nil, err
	}
	// a zero top-up only settles
	rec.DepositAmount.Add(rec.DepositAmount, value)
	if err := p.registry.Update(caller, rec); err != nil {
		return nil, err
	}
	if value.Sign() > 0 {
		if err := p.totalDeposit.Add(value); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Claim credits all tranches due up to the current height to the caller.
func (p *Pocm) Claim(env *xenv.Environment) (*StakeRecord, error) {
	caller := env.Caller()
	if env.Value().Sign() != 0 {
		return nil, errNonPayable
	}

	rec, err := p.activeRecord(caller)
	if err != nil {
		return nil, err
	}
	if _, err := p.settle(env, caller, rec); err != nil {
		return nil, err
	}
	if err := p.registry.Update(caller, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Quit settles the caller's stake and pays the deposit back once unlocked.
func (p *Pocm) Quit(env *xenv.Environment) (*StakeRecord, error) {
	caller, height := env.Caller(), env.BlockContext().Number
	if env.Value().Sign() != 0 {
		return nil, errNonPayable
	}

	rec, err := p.activeRecord(caller)
	if err != nil {
		return nil, err
	}
	unlock := uint64(rec.DepositHeight) + uint64(p.cfg.MinimumLocked) + 1
	if uint64(height) < unlock {
		return nil, newStillLockedError(unlock)
	}
	if _, err := p.settle(env, caller, rec); err != nil {
		return nil, err
	}

	deposit := new(big.Int).Set(rec.DepositAmount)
	if err := p.totalDeposit.Sub(deposit); err != nil {
		return nil, errDepositUnderflow
	}
	if err := p.depositCount.Sub(big.NewInt(1)); err != nil {
		return nil, errDepositUnderflow
	}
	if err := env.Pay(caller, deposit); err != nil {
		return nil, err
	}

	switch p.cfg.QuitPolicy {
	case QuitRetain:
		rec.Withdrawn = true
		if err := p.registry.Update(caller, rec); err != nil {
			return nil, err
		}
	default:
		p.registry.Remove(caller)
	}
	logger.Debug("quit", "addr", caller, "deposit", deposit, "height", height)
	return rec, nil
}

// Preview runs the accrual of addr's stake up to height without persisting anything.
// The returned record has TotalMined advanced, ReceivedMined is left as is.
func (p *Pocm) Preview(addr thor.Address, height uint32) (*StakeRecord, error) {
	rec, err := p.activeRecord(addr)
	if err != nil {
		return nil, err
	}
	acc, err := p.accrue(rec, height)
	if err != nil {
		return nil, err
	}
	preview := rec.Copy()
	acc.apply(preview)
	preview.TotalMined.Add(preview.TotalMined, acc.mined)
	return preview, nil
}

func (p *Pocm) activeRecord(addr thor.Address) (*StakeRecord, error) {
	rec, err := p.registry.Get(addr)
	if err != nil {
		return nil, err
	}
	if !rec.Active() {
		return nil, newNoActiveStakeError(addr)
	}
	return rec, nil
}

type accrual struct {
	next     uint32
	tranches uint32
	mined    *big.Int
}

func (a *accrual) apply(rec *StakeRecord) {
	next := a.next
	rec.NextAccrualHeight = &next
	rec.AccrualCount += a.tranches
}

// accrue evaluates every tranche due up to height, each at the rate in force at its own trigger height
// and scaled to token units before summing.
func (p *Pocm) accrue(rec *StakeRecord, height uint32) (*accrual, error) {
	curve, err := p.Curve()
	if err != nil {
		return nil, err
	}
	var (
		step     = uint64(p.cfg.AwardingCycle) + 1
		cursor   = rec.Cursor(p.cfg.AwardingCycle)
		mined    = new(big.Int)
		tranches uint32
	)
	for cursor <= uint64(height) {
		if p.charger != nil {
			p.charger.ChargeTranches(1)
		}
		// truncated per tranche
		mined.Add(mined, Scale(curve.Tranche(rec.DepositAmount, uint32(cursor)), p.cfg.Decimals))
		cursor += step
		tranches++
	}
	if cursor > math.MaxUint32 {
		cursor = math.MaxUint32
	}
	return &accrual{
		next:     uint32(cursor),
		tranches: tranches,
		mined:    mined,
	}, nil
}

// settle advances the accrual cursor of rec to the current height and credits the mined amount,
// clamped to the remaining supply when capped. It returns the credited amount.
func (p *Pocm) settle(env *xenv.Environment, addr thor.Address, rec *StakeRecord) (*big.Int, error) {
	height := env.BlockContext().Number
	acc, err := p.accrue(rec, height)
	if err != nil {
		return nil, err
	}
	acc.apply(rec)
	if acc.mined.Sign() == 0 {
		return new(big.Int), nil
	}

	credit := acc.mined
	if p.cfg.Capped() {
		supply, err := p.ledger.TotalSupply()
		if err != nil {
			return nil, err
		}
		remaining := new(big.Int).Sub(p.cfg.MaxSupply, supply)
		if remaining.Sign() <= 0 {
			credit = new(big.Int)
		} else if remaining.Cmp(credit) < 0 {
			credit = remaining
		}
	}

	rec.TotalMined.Add(rec.TotalMined, acc.mined)
	rec.ReceivedMined.Add(rec.ReceivedMined, credit)
	if credit.Sign() == 0 {
		logger.Debug("supply cap reached", "addr", addr, "mined", acc.mined)
		return credit, nil
	}
	if err := p.ledger.Credit(addr, credit); err != nil {
		return nil, err
	}
	env.Log(EncodeTransfer(thor.Address{}, addr, credit))
	logger.Debug("mined", "addr", addr, "tranches", acc.tranches, "amount", credit, "height", height)
	return credit, nil
}
