// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package items

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/builtin/registry"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/xenv"
)

// Item is a minted collectible.
type Item struct {
	Identifier uint64       `json:"identifier"`
	Owner      thor.Address `json:"owner"`
	URI        string       `json:"uri"`
}

type TransferRequest struct {
	utils.Signed
	To thor.Address `json:"to"`
}

// Call binds the request to the item in the path.
func (r *TransferRequest) Call(id uint64) *utils.Call {
	return utils.NewCall("items/transfer", &r.Signed, id, r.To)
}

type Items struct {
	rt      utils.Runtime
	signing *cry.Signing
}

func New(rt utils.Runtime, signing *cry.Signing) *Items {
	return &Items{rt, signing}
}

func parseID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 0, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (i *Items) handleGetItem(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	item := &Item{Identifier: id}
	err = i.rt.View(func(env *xenv.Environment) (err error) {
		reg := env.Builtins().Registry
		if item.Owner, err = reg.OwnerOf(id); err != nil {
			return
		}
		item.URI, err = reg.TokenURI(id)
		return
	})
	if errors.Is(err, registry.ErrNotFound) {
		return utils.NotFound(err)
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, item)
}

func (i *Items) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.ExecSigned(i.rt, i.signing, body.Call(id), func(env *xenv.Environment) error {
		return env.Builtins().Registry.Transfer(env.Caller(), body.To, id)
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertOutput(out))
}

func (i *Items) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /items/{id}").
		HandlerFunc(utils.WrapHandlerFunc(i.handleGetItem))
	sub.Path("/{id}/transfer").
		Methods(http.MethodPost).
		Name("POST /items/{id}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(i.handleTransfer))
}
