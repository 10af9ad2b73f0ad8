// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/logdb"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// Filter query events with option
func (e *Events) filter(ctx context.Context, ef *types.EventFilter) ([]*types.Event, error) {
	events, err := e.db.FilterEvents(ctx, ef.ToLogFilter())
	if err != nil {
		return nil, err
	}
	out := make([]*types.Event, len(events))
	for i, ev := range events {
		out[i] = types.ConvertEvent(ev)
	}
	return out, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter types.EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Range != nil && filter.Range.From != nil && filter.Range.To != nil && *filter.Range.From > *filter.Range.To {
		return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	switch filter.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return utils.BadRequest(fmt.Errorf("order: unknown value %q", filter.Order))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// one more than the limit to detect overflow
		filter.Options = &types.Options{Limit: e.limit + 1}
	}

	evs, err := e.filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if len(evs) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return utils.WriteJSON(w, evs)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
