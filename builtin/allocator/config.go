// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import (
	"math/big"

	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

func (a *Allocator) requireAdmin(caller thor.Address) error {
	admin, err := a.params.GetAddress(thor.KeyExecutorAddress)
	if err != nil {
		return err
	}
	if admin.IsZero() || admin != caller {
		return ErrNotAdmin
	}
	return nil
}

// WaitPeriod returns the minimum holding time in seconds before a minted
// item can be burned for its stake.
func (a *Allocator) WaitPeriod() (uint64, error) {
	return a.params.GetUint64(thor.KeyBurnWaitPeriod)
}

// SetWaitPeriod changes the burn wait period. Admin only.
func (a *Allocator) SetWaitPeriod(caller thor.Address, seconds uint64) error {
	return a.call("set_wait_period", func(events *tx.Events) error {
		if err := a.requireAdmin(caller); err != nil {
			return err
		}
		old, err := a.WaitPeriod()
		if err != nil {
			return err
		}
		if err := a.params.Set(thor.KeyBurnWaitPeriod, new(big.Int).SetUint64(seconds)); err != nil {
			return err
		}
		logger.Info("wait period changed", "old", old, "new", seconds)
		return a.emit(events, evWaitPeriodChanged, nil, old, seconds)
	})
}

// RandomnessParams returns the parameters passed to the oracle with each request.
func (a *Allocator) RandomnessParams() (oracle.Params, error) {
	var (
		p   oracle.Params
		err error
	)
	if p.KeyHash, err = a.params.GetBytes32(thor.KeyVRFKeyHash); err != nil {
		return p, err
	}
	if p.CallbackGasLimit, err = a.params.GetUint64(thor.KeyCallbackGasLimit); err != nil {
		return p, err
	}
	if p.Confirmations, err = a.params.GetUint64(thor.KeyRequestConfirmations); err != nil {
		return p, err
	}
	if p.NumWords, err = a.params.GetUint64(thor.KeyNumWords); err != nil {
		return p, err
	}
	return p, nil
}

// SetRandomnessParams replaces the oracle request parameters. Admin only.
func (a *Allocator) SetRandomnessParams(caller thor.Address, p oracle.Params) error {
	return a.call("set_randomness_params", func(events *tx.Events) error {
		if err := a.requireAdmin(caller); err != nil {
			return err
		}
		if p.NumWords == 0 {
			return ErrInvalidParams
		}
		if err := a.params.Set(thor.KeyVRFKeyHash, new(big.Int).SetBytes(p.KeyHash.Bytes())); err != nil {
			return err
		}
		if err := a.params.Set(thor.KeyCallbackGasLimit, new(big.Int).SetUint64(p.CallbackGasLimit)); err != nil {
			return err
		}
		if err := a.params.Set(thor.KeyRequestConfirmations, new(big.Int).SetUint64(p.Confirmations)); err != nil {
			return err
		}
		if err := a.params.Set(thor.KeyNumWords, new(big.Int).SetUint64(p.NumWords)); err != nil {
			return err
		}
		logger.Info("randomness params changed", "keyHash", p.KeyHash, "confirmations", p.Confirmations, "numWords", p.NumWords)
		return a.emit(events, evRandomnessParamsChanged, nil, p.KeyHash, p.CallbackGasLimit, p.Confirmations, p.NumWords)
	})
}
