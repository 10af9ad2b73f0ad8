// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package energy is the fungible value ledger stakes are paid in.
package energy

import (
	"math/big"

	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	ErrInsufficientFunds     = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "insufficient balance")
	ErrInsufficientAllowance = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "insufficient allowance")
	ErrInvalidAmount         = reverts.New("invalid amount")

	energyABI     = abi.MustNew(gen.MustABI("Energy"))
	transferEvent = energyABI.MustEventByName("Transfer")
	approvalEvent = energyABI.MustEventByName("Approval")

	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotAllowances  = thor.BytesToBytes32([]byte("allowances"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
)

// Energy implements the native value ledger.
type Energy struct {
	sctx        *solidity.Context
	emitter     tx.Emitter
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[thor.Bytes32, *big.Int]
	totalSupply *solidity.Uint256
}

// New creates the binder. emitter may be nil.
func New(addr thor.Address, state *state.State, emitter tx.Emitter) *Energy {
	sctx := solidity.NewContext(addr, state)
	return &Energy{
		sctx:        sctx,
		emitter:     emitter,
		balances:    solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[thor.Bytes32, *big.Int](sctx, slotAllowances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), spender.Bytes())
}

func (e *Energy) emit(ev *abi.Event, indexed []any, args ...any) error {
	if e.emitter == nil {
		return nil
	}
	built, err := ev.Build(e.sctx.Address(), indexed, args...)
	if err != nil {
		return err
	}
	e.emitter.Emit(built)
	return nil
}

// BalanceOf returns the balance of addr.
func (e *Energy) BalanceOf(addr thor.Address) (*big.Int, error) {
	return e.balances.Get(addr)
}

// TotalSupply returns the sum of all minted value.
func (e *Energy) TotalSupply() (*big.Int, error) {
	return e.totalSupply.Get()
}

// AddBalance mints amount to addr. Used at genesis.
func (e *Energy) AddBalance(addr thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal, err := e.balances.Get(addr)
	if err != nil {
		return err
	}
	if err := e.balances.Set(addr, bal.Add(bal, amount)); err != nil {
		return err
	}
	if err := e.totalSupply.Add(amount); err != nil {
		return err
	}
	return e.emit(transferEvent, []any{thor.Address{}, addr}, amount)
}

// Allowance returns how much spender may move from owner.
func (e *Energy) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return e.allowances.Get(allowanceKey(owner, spender))
}

// Approve sets the allowance of spender over owner's balance.
func (e *Energy) Approve(owner, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := e.allowances.Set(allowanceKey(owner, spender), amount); err != nil {
		return err
	}
	return e.emit(approvalEvent, []any{owner, spender}, amount)
}

// Transfer moves amount from `from` to `to`.
func (e *Energy) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	fromBal, err := e.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := e.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := e.balances.Get(to)
	if err != nil {
		return err
	}
	if err := e.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return err
	}
	return e.emit(transferEvent, []any{from, to}, amount)
}

// TransferFrom moves amount from `from` to `to` on behalf of spender, consuming allowance.
func (e *Energy) TransferFrom(spender, from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	key := allowanceKey(from, spender)
	allowed, err := e.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := e.Transfer(from, to, amount); err != nil {
		return err
	}
	return e.allowances.Set(key, allowed.Sub(allowed, amount))
}
