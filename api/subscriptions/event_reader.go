// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
)

// number of sequences scanned per read
const readWindow = 100

type eventReader struct {
	db       *logdb.LogDB
	criteria *types.EventCriteria
	position uint64 // last sequence delivered
}

func newEventReader(db *logdb.LogDB, position uint64, criteria *types.EventCriteria) *eventReader {
	return &eventReader{
		db:       db,
		criteria: criteria,
		position: position,
	}
}

// Read returns the matching events after the current position. The bool
// result reports whether more sequences are left to read.
func (er *eventReader) Read(ctx context.Context) ([]*types.Event, bool, error) {
	newest, err := er.db.NewestSeq()
	if err != nil {
		return nil, false, err
	}
	if newest <= er.position {
		return nil, false, nil
	}
	to := min(newest, er.position+readWindow)

	filter := &logdb.EventFilter{
		Range: &logdb.Range{Unit: logdb.Seq, From: er.position + 1, To: to},
		Order: logdb.ASC,
	}
	if c := er.criteria; c != nil {
		filter.CriteriaSet = []*logdb.EventCriteria{{
			Address: c.Address,
			Topics:  [logdb.MaxTopics]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3},
		}}
	}
	events, err := er.db.FilterEvents(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	msgs := make([]*types.Event, 0, len(events))
	for _, ev := range events {
		msgs = append(msgs, types.ConvertEvent(ev))
	}
	er.position = to
	return msgs, to < newest, nil
}
