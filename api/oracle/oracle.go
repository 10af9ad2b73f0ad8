// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/xenv"
)

type Operator struct {
	PublicKey hexutil.Bytes `json:"publicKey"`
	Address   thor.Address  `json:"address"`
}

type Request struct {
	Handle           thor.Bytes32 `json:"handle"`
	Consumer         thor.Address `json:"consumer"`
	KeyHash          thor.Bytes32 `json:"keyHash"`
	CallbackGasLimit uint64       `json:"callbackGasLimit"`
	NumWords         uint64       `json:"numWords"`
	RequestedAt      uint64       `json:"requestedAt"`
	ReadyAt          uint64       `json:"readyAt"`
	Fulfilled        bool         `json:"fulfilled"`
}

func convertRequest(handle thor.Bytes32, r *oracle.Request) *Request {
	return &Request{
		Handle:           handle,
		Consumer:         r.Consumer,
		KeyHash:          r.KeyHash,
		CallbackGasLimit: r.CallbackGasLimit,
		NumWords:         r.NumWords,
		RequestedAt:      r.RequestedAt,
		ReadyAt:          r.ReadyAt,
		Fulfilled:        r.Fulfilled,
	}
}

type FulfillRequest struct {
	utils.Signed
	Handle thor.Bytes32  `json:"handle"`
	Proof  hexutil.Bytes `json:"proof"`
}

func (r *FulfillRequest) Call() *utils.Call {
	return utils.NewCall("oracle/fulfill", &r.Signed, r.Handle, []byte(r.Proof))
}

type Oracle struct {
	rt      utils.Runtime
	signing *cry.Signing
	limit   uint64
}

func New(rt utils.Runtime, signing *cry.Signing, pendingLimit uint64) *Oracle {
	return &Oracle{rt, signing, pendingLimit}
}

func (o *Oracle) handleGetOperator(w http.ResponseWriter, _ *http.Request) error {
	var op Operator
	err := o.rt.View(func(env *xenv.Environment) (err error) {
		op.PublicKey, op.Address, err = env.Builtins().Oracle.Operator()
		return
	})
	if errors.Is(err, oracle.ErrNoOperator) {
		return utils.NotFound(err)
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &op)
}

func (o *Oracle) handlePending(w http.ResponseWriter, req *http.Request) error {
	limit := o.limit
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "limit"))
		}
		if n > o.limit {
			return utils.Forbidden(errors.Errorf("limit exceeds the maximum allowed value of %d", o.limit))
		}
		limit = n
	}
	list := []*Request{}
	err := o.rt.View(func(env *xenv.Environment) error {
		orc := env.Builtins().Oracle
		handles, err := orc.Pending(limit)
		if err != nil {
			return err
		}
		for _, handle := range handles {
			r, err := orc.Get(handle)
			if err != nil {
				return err
			}
			if r != nil {
				list = append(list, convertRequest(handle, r))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (o *Oracle) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	handle, err := thor.ParseBytes32(mux.Vars(req)["handle"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "handle"))
	}
	var res *Request
	err = o.rt.View(func(env *xenv.Environment) error {
		r, err := env.Builtins().Oracle.Get(handle)
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

func (o *Oracle) handleFulfill(w http.ResponseWriter, req *http.Request) error {
	var body FulfillRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(o.rt, o.signing, body.Call(), func(env *xenv.Environment) error {
		return env.Builtins().Oracle.Fulfill(env.Caller(), body.Handle, body.Proof, env.Time())
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (o *Oracle) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/operator").
		Methods(http.MethodGet).
		Name("GET /oracle/operator").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetOperator))
	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("GET /oracle/pending").
		HandlerFunc(utils.WrapHandlerFunc(o.handlePending))
	sub.Path("/requests/{handle}").
		Methods(http.MethodGet).
		Name("GET /oracle/requests/{handle}").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetRequest))
	sub.Path("/fulfill").
		Methods(http.MethodPost).
		Name("POST /oracle/fulfill").
		HandlerFunc(utils.WrapHandlerFunc(o.handleFulfill))
}
