// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/builtin"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/xenv"
)

type Accounts struct {
	rt      utils.Runtime
	signing *cry.Signing
}

func New(rt utils.Runtime, signing *cry.Signing) *Accounts {
	return &Accounts{rt, signing}
}

func (a *Accounts) getAccount(addr thor.Address) (*Account, error) {
	var acc *Account
	err := a.rt.View(func(env *xenv.Environment) error {
		set := env.Builtins()
		balance, err := set.Energy.BalanceOf(addr)
		if err != nil {
			return err
		}
		allowance, err := set.Energy.Allowance(addr, builtin.Allocator.Address)
		if err != nil {
			return err
		}
		items, err := set.Registry.BalanceOf(addr)
		if err != nil {
			return err
		}
		nonce, err := env.Nonce(addr)
		if err != nil {
			return err
		}
		acc = &Account{
			Balance:   (*math.HexOrDecimal256)(balance),
			Allowance: (*math.HexOrDecimal256)(allowance),
			Items:     items,
			Nonce:     nonce,
		}
		return nil
	})
	return acc, err
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func validAmount(amount *math.HexOrDecimal256) error {
	if amount == nil {
		return utils.BadRequest(errors.New("amount: required"))
	}
	if (*big.Int)(amount).Sign() < 0 {
		return utils.BadRequest(errors.New("amount: must not be negative"))
	}
	return nil
}

func (a *Accounts) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := validAmount(body.Amount); err != nil {
		return err
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Energy.Approve(env.Caller(), body.spender(), (*big.Int)(body.Amount))
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := validAmount(body.Amount); err != nil {
		return err
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Energy.Transfer(env.Caller(), body.To, (*big.Int)(body.Amount))
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /accounts/approve").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /accounts/transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
