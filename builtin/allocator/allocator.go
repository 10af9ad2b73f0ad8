// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package allocator implements the stake-to-mint allocation engine.
//
// A participant locks the stake amount and gets a request handle. The oracle
// later delivers randomness for the handle, and the participant claims: the
// random value picks an identifier out of the pool which is minted to them, or
// the stake is refunded when the pool ran dry in the meantime. Requests that
// never receive randomness can be unwound after a cooldown, and minted items
// can be burned for the stake after a wait period.
package allocator

import (
	"math/big"

	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/allocator/pool"
	"github.com/vechain/stakemint/builtin/allocator/requests"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/builtin/params"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	logger = log.WithContext("pkg", "allocator")

	// NoRandomnessCooldown is the minimum age in seconds of a request before it
	// can be unwound without randomness.
	NoRandomnessCooldown = solidity.NewConfigVariable("allocator-no-randomness-cooldown", thor.InitialNoRandomnessCooldown)

	allocatorABI              = abi.MustNew(gen.MustABI("Allocator"))
	evStakeCreated            = allocatorABI.MustEventByName("StakeCreated")
	evRandomnessRequested     = allocatorABI.MustEventByName("RandomnessRequested")
	evRandomnessFulfilled     = allocatorABI.MustEventByName("RandomnessFulfilled")
	evClaimed                 = allocatorABI.MustEventByName("Claimed")
	evExhaustionRefund        = allocatorABI.MustEventByName("ExhaustionRefund")
	evUnwoundNoRandomness     = allocatorABI.MustEventByName("UnwoundNoRandomness")
	evUnwoundByBurn           = allocatorABI.MustEventByName("UnwoundByBurn")
	evWaitPeriodChanged       = allocatorABI.MustEventByName("WaitPeriodChanged")
	evRandomnessParamsChanged = allocatorABI.MustEventByName("RandomnessParamsChanged")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Ledger is the fungible value ledger the stakes are paid in.
type Ledger interface {
	TransferFrom(spender, from, to thor.Address, amount *big.Int) error
	Transfer(from, to thor.Address, amount *big.Int) error
}

// Registry is the collectible registry. The allocator must be its minter.
type Registry interface {
	Mint(caller, to thor.Address, id uint64) error
	Burn(caller thor.Address, id uint64) error
	OwnerOf(id uint64) (thor.Address, error)
}

// Oracle accepts randomness requests on behalf of the allocator.
type Oracle interface {
	Request(consumer thor.Address, params oracle.Params, now uint64) (thor.Bytes32, error)
}

// Allocator implements native methods of the allocation engine.
type Allocator struct {
	sctx     *solidity.Context
	params   *params.Params
	ledger   Ledger
	registry Registry
	oracle   Oracle
	emitter  tx.Emitter

	pool     *pool.Service
	requests *requests.Service

	locked bool
}

// New creates the binder. emitter may be nil.
func New(
	addr thor.Address,
	state *state.State,
	params *params.Params,
	ledger Ledger,
	registry Registry,
	oracle Oracle,
	emitter tx.Emitter,
) *Allocator {
	sctx := solidity.NewContext(addr, state)
	return &Allocator{
		sctx:     sctx,
		params:   params,
		ledger:   ledger,
		registry: registry,
		oracle:   oracle,
		emitter:  emitter,
		pool:     pool.New(sctx),
		requests: requests.New(sctx),
	}
}

// Address returns the allocator's own address, where stakes are held.
func (a *Allocator) Address() thor.Address {
	return a.sctx.Address()
}

// Cooldown returns the minimum age of a request before it can be unwound
// without randomness.
func (a *Allocator) Cooldown() (uint64, error) {
	return NoRandomnessCooldown.Get(a.sctx)
}

// Initialize fills the pool with the full identifier universe.
func (a *Allocator) Initialize() error {
	if err := a.pool.Init(thor.MaxIdentifier); err != nil {
		return err
	}
	metricPoolSize().Set(int64(thor.MaxIdentifier))
	return nil
}

// call runs fn as one guarded, atomic entry point. Events emitted by fn are
// only forwarded when it succeeds.
func (a *Allocator) call(op string, fn func(events *tx.Events) error) error {
	if a.locked {
		return ErrReentrant
	}
	a.locked = true
	defer func() { a.locked = false }()

	st := a.sctx.State()
	checkpoint := st.NewCheckpoint()

	var events tx.Events
	if err := fn(&events); err != nil {
		st.RevertTo(checkpoint)
		metricOpsCounter().AddWithLabel(1, map[string]string{"op": op, "outcome": "error"})
		return err
	}
	if a.emitter != nil {
		for _, ev := range events {
			a.emitter.Emit(ev)
		}
	}
	metricOpsCounter().AddWithLabel(1, map[string]string{"op": op, "outcome": "ok"})
	return nil
}

func (a *Allocator) emit(events *tx.Events, ev *abi.Event, indexed []any, args ...any) error {
	built, err := ev.Build(a.Address(), indexed, args...)
	if err != nil {
		return err
	}
	*events = append(*events, built)
	return nil
}

func (a *Allocator) updatePoolGauge() {
	if size, err := a.pool.Size(); err == nil {
		metricPoolSize().Set(int64(size))
	}
}

// Stake locks the stake amount from caller and requests randomness for it.
// The caller must have approved the allocator for the amount beforehand.
func (a *Allocator) Stake(caller thor.Address, now uint64) (handle thor.Bytes32, err error) {
	err = a.call("stake", func(events *tx.Events) error {
		size, err := a.pool.Size()
		if err != nil {
			return err
		}
		if size == 0 {
			return ErrPoolExhausted
		}
		amount, err := a.params.Get(thor.KeyStakeAmount)
		if err != nil {
			return err
		}

		logger.Debug("staking", "staker", caller, "amount", amount)
		if err := a.ledger.TransferFrom(a.Address(), caller, a.Address(), amount); err != nil {
			return collaboratorErr(ErrTransferFailed, err)
		}

		rp, err := a.RandomnessParams()
		if err != nil {
			return err
		}
		handle, err = a.oracle.Request(a.Address(), rp, now)
		if err != nil {
			return err
		}

		req := &requests.StakeRequest{
			Staker:      caller,
			CreatedAt:   now,
			Active:      true,
			RandomValue: new(big.Int),
			Amount:      amount,
		}
		if err := a.requests.Create(handle, req); err != nil {
			return err
		}

		if err := a.emit(events, evStakeCreated, []any{handle, caller}, amount, now); err != nil {
			return err
		}
		if err := a.emit(events, evRandomnessRequested, []any{handle}, rp.KeyHash, rp.Confirmations, rp.NumWords); err != nil {
			return err
		}
		logger.Info("stake created", "handle", handle, "staker", caller)
		return nil
	})
	if err != nil {
		logger.Info("stake failed", "staker", caller, "error", err)
		return thor.Bytes32{}, err
	}
	return handle, nil
}

// Fulfill records randomness delivered for handle. It never fails on
// unknown, resolved or already served handles, nor on an empty payload.
// Only storage failures are returned.
func (a *Allocator) Fulfill(handle thor.Bytes32, values []*big.Int) error {
	if a.locked {
		logger.Warn("dropping reentrant randomness delivery", "handle", handle)
		return nil
	}
	return a.call("fulfill", func(events *tx.Events) error {
		if len(values) == 0 || values[0] == nil {
			logger.Debug("ignoring empty randomness payload", "handle", handle)
			return nil
		}
		req, err := a.requests.Get(handle)
		if err != nil {
			return err
		}
		if req == nil || !req.Active || req.RandomReady {
			logger.Debug("ignoring randomness delivery", "handle", handle)
			return nil
		}

		req.RandomReady = true
		req.RandomValue = new(big.Int).Set(values[0])
		if err := a.requests.Update(handle, req); err != nil {
			return err
		}
		if err := a.emit(events, evRandomnessFulfilled, []any{handle}, req.RandomValue); err != nil {
			return err
		}
		logger.Info("randomness delivered", "handle", handle)
		return nil
	})
}

// Claim resolves a request with delivered randomness. It mints the drawn
// identifier to the staker and returns it, or refunds the stake when the
// pool is empty, in which case refunded is true.
func (a *Allocator) Claim(caller thor.Address, handle thor.Bytes32, now uint64) (id uint64, refunded bool, err error) {
	err = a.call("claim", func(events *tx.Events) error {
		req, err := a.requests.Get(handle)
		if err != nil {
			return err
		}
		if req == nil || req.Staker != caller {
			return ErrNotOwner
		}
		if !req.Active {
			return ErrAlreadyResolved
		}
		if !req.RandomReady {
			return ErrRandomNotReady
		}
		if req.Claimed {
			return ErrAlreadyClaimed
		}

		size, err := a.pool.Size()
		if err != nil {
			return err
		}
		if size == 0 {
			logger.Debug("pool exhausted, refunding", "handle", handle, "staker", caller)
			req.Active = false
			req.Claimed = false
			req.RandomReady = false
			if err := a.requests.Update(handle, req); err != nil {
				return err
			}
			if err := a.ledger.Transfer(a.Address(), caller, req.Amount); err != nil {
				return collaboratorErr(ErrTransferFailed, err)
			}
			refunded = true
			if err := a.emit(events, evExhaustionRefund, []any{handle, caller}, req.Amount); err != nil {
				return err
			}
			logger.Info("stake refunded on exhaustion", "handle", handle, "staker", caller, "amount", req.Amount)
			return nil
		}

		index := new(big.Int).Mod(req.RandomValue, new(big.Int).SetUint64(size)).Uint64()
		id, err = a.pool.RemoveAt(index)
		if err != nil {
			return err
		}
		logger.Debug("claiming", "handle", handle, "index", index, "id", id)

		req.Claimed = true
		if err := a.requests.Update(handle, req); err != nil {
			return err
		}
		if err := a.registry.Mint(a.Address(), caller, id); err != nil {
			return collaboratorErr(ErrMintFailed, err)
		}
		if err := a.requests.SetMinted(id, &requests.MintedItem{MintedAt: now, Handle: handle}); err != nil {
			return err
		}
		if err := a.emit(events, evClaimed, []any{handle, caller}, id); err != nil {
			return err
		}
		logger.Info("identifier claimed", "handle", handle, "holder", caller, "id", id)
		return nil
	})
	if err != nil {
		logger.Info("claim failed", "handle", handle, "error", err)
		return 0, false, err
	}
	a.updatePoolGauge()
	return id, refunded, nil
}

// UnwindNoRandomness refunds a request whose randomness never arrived, once
// the cooldown since its creation elapsed.
func (a *Allocator) UnwindNoRandomness(caller thor.Address, handle thor.Bytes32, now uint64) error {
	err := a.call("unwind_no_randomness", func(events *tx.Events) error {
		req, err := a.requests.Get(handle)
		if err != nil {
			return err
		}
		if req == nil || req.Staker != caller {
			return ErrNotOwner
		}
		if !req.Active {
			return ErrAlreadyResolved
		}
		if req.Claimed {
			return ErrAlreadyClaimed
		}
		if req.RandomReady {
			return ErrRandomAlreadyDelivered
		}
		cooldown, err := a.Cooldown()
		if err != nil {
			return err
		}
		if now < req.CreatedAt+cooldown {
			return ErrCooldownNotMet
		}

		logger.Debug("unwinding without randomness", "handle", handle, "staker", caller)
		req.Active = false
		if err := a.requests.Update(handle, req); err != nil {
			return err
		}
		if err := a.ledger.Transfer(a.Address(), caller, req.Amount); err != nil {
			return collaboratorErr(ErrTransferFailed, err)
		}
		if err := a.emit(events, evUnwoundNoRandomness, []any{handle, caller}, req.Amount); err != nil {
			return err
		}
		logger.Info("unwound without randomness", "handle", handle, "staker", caller, "amount", req.Amount)
		return nil
	})
	if err != nil {
		logger.Info("unwind failed", "handle", handle, "error", err)
	}
	return err
}

// UnwindByBurn burns item id held by caller, puts the identifier back into
// the pool and pays the stake to caller. The holder need not be the staker.
func (a *Allocator) UnwindByBurn(caller thor.Address, id uint64, now uint64) error {
	err := a.call("unwind_by_burn", func(events *tx.Events) error {
		owner, err := a.registry.OwnerOf(id)
		if err != nil {
			return collaboratorErr(ErrInvalidIdentifier, err)
		}
		if owner != caller {
			return ErrNotHolder
		}
		rec, err := a.requests.GetMinted(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrInvalidIdentifier
		}
		waitPeriod, err := a.WaitPeriod()
		if err != nil {
			return err
		}
		if now < rec.MintedAt+waitPeriod {
			return ErrWaitPeriodNotMet
		}
		amount, err := a.stakeOf(rec.Handle)
		if err != nil {
			return err
		}

		logger.Debug("unwinding by burn", "id", id, "holder", caller)
		if err := a.registry.Burn(a.Address(), id); err != nil {
			return collaboratorErr(ErrBurnFailed, err)
		}
		if err := a.pool.Insert(id); err != nil {
			return err
		}
		if err := a.ledger.Transfer(a.Address(), caller, amount); err != nil {
			return collaboratorErr(ErrTransferFailed, err)
		}
		if err := a.requests.DeleteMinted(id); err != nil {
			return err
		}
		if err := a.emit(events, evUnwoundByBurn, []any{id, caller}, amount); err != nil {
			return err
		}
		logger.Info("unwound by burn", "id", id, "holder", caller, "amount", amount)
		return nil
	})
	if err != nil {
		logger.Info("burn unwind failed", "id", id, "error", err)
		return err
	}
	a.updatePoolGauge()
	return nil
}

// stakeOf returns the value locked by the request behind handle.
func (a *Allocator) stakeOf(handle thor.Bytes32) (*big.Int, error) {
	req, err := a.requests.Get(handle)
	if err != nil {
		return nil, err
	}
	if req != nil && req.Amount != nil && req.Amount.Sign() > 0 {
		return req.Amount, nil
	}
	return a.params.Get(thor.KeyStakeAmount)
}

//
// Getters - no state change
//

// ListRequestsFor returns the handles created by addr, oldest first.
func (a *Allocator) ListRequestsFor(addr thor.Address) ([]thor.Bytes32, error) {
	return a.requests.ListFor(addr)
}

// ListAvailableIdentifiers returns the pool content in storage order.
func (a *Allocator) ListAvailableIdentifiers() ([]uint64, error) {
	return a.pool.List()
}

// GetRequest returns the request for handle, or nil if unknown.
func (a *Allocator) GetRequest(handle thor.Bytes32) (*requests.StakeRequest, error) {
	return a.requests.Get(handle)
}

// GetMinted returns the minted record of id, or nil if id is not assigned.
func (a *Allocator) GetMinted(id uint64) (*requests.MintedItem, error) {
	return a.requests.GetMinted(id)
}

func (a *Allocator) PoolSize() (uint64, error) {
	return a.pool.Size()
}

func (a *Allocator) MintedCount() (uint64, error) {
	return a.requests.MintedCount()
}

// StakeAmount returns the value locked by each new stake.
func (a *Allocator) StakeAmount() (*big.Int, error) {
	return a.params.Get(thor.KeyStakeAmount)
}
