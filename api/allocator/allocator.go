// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/xenv"
)

type Allocator struct {
	rt      utils.Runtime
	signing *cry.Signing
}

func New(rt utils.Runtime, signing *cry.Signing) *Allocator {
	return &Allocator{rt, signing}
}

func parseIdentifier(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "identifier"))
	}
	return id, nil
}

func (a *Allocator) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var handle thor.Bytes32
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) (err error) {
		handle, err = env.Builtins().Allocator.Stake(env.Caller(), env.Time())
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &StakeResponse{Handle: handle, Receipt: types.ConvertOutput(out)})
}

func (a *Allocator) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var (
		id       uint64
		refunded bool
	)
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) (err error) {
		id, refunded, err = env.Builtins().Allocator.Claim(env.Caller(), body.Handle, env.Time())
		return
	})
	if err != nil {
		return err
	}
	res := &ClaimResponse{Refunded: refunded, Receipt: types.ConvertOutput(out)}
	if !refunded {
		res.Identifier = &id
	}
	return utils.WriteJSON(w, res)
}

func (a *Allocator) handleUnwindNoRandomness(w http.ResponseWriter, req *http.Request) error {
	var body UnwindNoRandomnessCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Allocator.UnwindNoRandomness(env.Caller(), body.Handle, env.Time())
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Allocator) handleUnwindByBurn(w http.ResponseWriter, req *http.Request) error {
	var body UnwindByBurnCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Allocator.UnwindByBurn(env.Caller(), body.Identifier, env.Time())
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Allocator) handleListRequests(w http.ResponseWriter, req *http.Request) error {
	participant, err := thor.ParseAddress(req.URL.Query().Get("participant"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "participant"))
	}
	var list []*StakeRequest
	err = a.rt.View(func(env *xenv.Environment) error {
		alloc := env.Builtins().Allocator
		handles, err := alloc.ListRequestsFor(participant)
		if err != nil {
			return err
		}
		list = make([]*StakeRequest, 0, len(handles))
		for _, handle := range handles {
			r, err := alloc.GetRequest(handle)
			if err != nil {
				return err
			}
			list = append(list, convertRequest(handle, r))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (a *Allocator) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	handle, err := thor.ParseBytes32(mux.Vars(req)["handle"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "handle"))
	}
	var res *StakeRequest
	err = a.rt.View(func(env *xenv.Environment) error {
		r, err := env.Builtins().Allocator.GetRequest(handle)
		if err != nil || r == nil {
			return err
		}
		res = convertRequest(handle, r)
		return nil
	})
	if err != nil {
		return err
	}
	if res == nil {
		return utils.NotFound(errors.New("request not found"))
	}
	return utils.WriteJSON(w, res)
}

func (a *Allocator) handleAvailable(w http.ResponseWriter, _ *http.Request) error {
	var ids []uint64
	err := a.rt.View(func(env *xenv.Environment) (err error) {
		ids, err = env.Builtins().Allocator.ListAvailableIdentifiers()
		return
	})
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return utils.WriteJSON(w, ids)
}

func (a *Allocator) handleGetMinted(w http.ResponseWriter, req *http.Request) error {
	id, err := parseIdentifier(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	var res *MintedItem
	err = a.rt.View(func(env *xenv.Environment) error {
		set := env.Builtins()
		item, err := set.Allocator.GetMinted(id)
		if err != nil || item == nil {
			return err
		}
		holder, err := set.Registry.OwnerOf(id)
		if err != nil {
			return err
		}
		period, err := set.Allocator.WaitPeriod()
		if err != nil {
			return err
		}
		res = &MintedItem{
			Identifier: id,
			Holder:     holder,
			MintedAt:   item.MintedAt,
			Handle:     item.Handle,
			UnlocksAt:  item.MintedAt + period,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if res == nil {
		return utils.NotFound(errors.New("identifier not minted"))
	}
	return utils.WriteJSON(w, res)
}

func (a *Allocator) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	var cfg Config
	err := a.rt.View(func(env *xenv.Environment) error {
		alloc := env.Builtins().Allocator
		amount, err := alloc.StakeAmount()
		if err != nil {
			return err
		}
		if cfg.WaitPeriod, err = alloc.WaitPeriod(); err != nil {
			return err
		}
		p, err := alloc.RandomnessParams()
		if err != nil {
			return err
		}
		if cfg.PoolSize, err = alloc.PoolSize(); err != nil {
			return err
		}
		if cfg.MintedCount, err = alloc.MintedCount(); err != nil {
			return err
		}
		if cfg.Cooldown, err = alloc.Cooldown(); err != nil {
			return err
		}
		cfg.StakeAmount = hexOrDecimal(amount)
		cfg.Randomness = convertParams(p)
		cfg.MaxIdentifier = thor.MaxIdentifier
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &cfg)
}

func (a *Allocator) handleSetWaitPeriod(w http.ResponseWriter, req *http.Request) error {
	var body WaitPeriodCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Allocator.SetWaitPeriod(env.Caller(), body.Seconds)
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Allocator) handleSetRandomnessParams(w http.ResponseWriter, req *http.Request) error {
	var body RandomnessParamsCall
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(a.rt, a.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Allocator.SetRandomnessParams(env.Caller(), body.toOracle())
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (a *Allocator) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /allocator/stake").
		HandlerFunc(utils.WrapHandlerFunc(a.handleStake))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /allocator/claim").
		HandlerFunc(utils.WrapHandlerFunc(a.handleClaim))
	sub.Path("/unwind/no-randomness").
		Methods(http.MethodPost).
		Name("POST /allocator/unwind/no-randomness").
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnwindNoRandomness))
	sub.Path("/unwind/burn").
		Methods(http.MethodPost).
		Name("POST /allocator/unwind/burn").
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnwindByBurn))
	sub.Path("/requests").
		Methods(http.MethodGet).
		Name("GET /allocator/requests").
		HandlerFunc(utils.WrapHandlerFunc(a.handleListRequests))
	sub.Path("/requests/{handle}").
		Methods(http.MethodGet).
		Name("GET /allocator/requests/{handle}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetRequest))
	sub.Path("/identifiers").
		Methods(http.MethodGet).
		Name("GET /allocator/identifiers").
		HandlerFunc(utils.WrapHandlerFunc(a.handleAvailable))
	sub.Path("/minted/{id}").
		Methods(http.MethodGet).
		Name("GET /allocator/minted/{id}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetMinted))
	sub.Path("/config").
		Methods(http.MethodGet).
		Name("GET /allocator/config").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetConfig))
	sub.Path("/config/wait-period").
		Methods(http.MethodPost).
		Name("POST /allocator/config/wait-period").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetWaitPeriod))
	sub.Path("/config/randomness").
		Methods(http.MethodPost).
		Name("POST /allocator/config/randomness").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetRandomnessParams))
}
