// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/xenv"
)

// HealthStatus reports whether randomness is being delivered. A request
// ready for longer than the grace period means the fulfiller is stuck.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Seq     uint64 `json:"seq"`
	Pending int    `json:"pending"`
	// ready requests older than the grace period
	Overdue int `json:"overdue"`
}

// Health checks the randomness backlog.
type Health struct {
	rt    utils.Runtime
	grace uint64
	clock func() uint64
}

// NewHealth creates the checker. clock defaults to the wall clock.
func NewHealth(rt utils.Runtime, grace time.Duration, clock func() uint64) *Health {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Health{rt, uint64(grace / time.Second), clock}
}

// Status computes the current status.
func (h *Health) Status() (*HealthStatus, error) {
	var status HealthStatus
	now := h.clock()
	err := h.rt.View(func(env *xenv.Environment) error {
		orc := env.Builtins().Oracle
		handles, err := orc.Pending(0)
		if err != nil {
			return err
		}
		status.Seq = env.CallContext().Seq
		status.Pending = len(handles)
		for _, handle := range handles {
			req, err := orc.Get(handle)
			if err != nil {
				return err
			}
			if req != nil && req.ReadyAt+h.grace < now {
				status.Overdue++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	status.Healthy = status.Seq > 0 && status.Overdue == 0
	return &status, nil
}

func (h *Health) handleGet(w http.ResponseWriter, _ *http.Request) error {
	status, err := h.Status()
	if err != nil {
		return err
	}
	if !status.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGet))
}
