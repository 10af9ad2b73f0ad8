// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/xenv"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// RevertStatus maps a revert kind to the status it is responded with.
func RevertStatus(kind reverts.Kind) int {
	switch kind {
	case reverts.ResourceExhaustion:
		return http.StatusConflict
	case reverts.ExternalCollaboratorFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// RevertResponse is the body of a reverted call.
type RevertResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// Reverted calls are responded as RevertResponse, httpError with its status,
// anything else with http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		if kind, ok := reverts.KindOf(err); ok {
			w.Header().Set("Content-Type", JSONContentType)
			w.WriteHeader(RevertStatus(kind))
			_ = json.NewEncoder(w).Encode(&RevertResponse{Error: err.Error(), Kind: kind.String()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// Runtime runs calls against the builtin modules.
type Runtime interface {
	Exec(caller thor.Address, fn func(env *xenv.Environment) error) (*tx.Output, error)
	View(fn func(env *xenv.Environment) error) error
}
