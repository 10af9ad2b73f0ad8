// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math"

	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
)

type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Topic0  *thor.Bytes32 `json:"topic0"`
	Topic1  *thor.Bytes32 `json:"topic1"`
	Topic2  *thor.Bytes32 `json:"topic2"`
	Topic3  *thor.Bytes32 `json:"topic3"`
}

// Match reports whether ev is selected by the criteria.
func (c *EventCriteria) Match(addr thor.Address, topics []thor.Bytes32) bool {
	if c.Address != nil && *c.Address != addr {
		return false
	}
	for i, want := range []*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3} {
		if want == nil {
			continue
		}
		if i >= len(topics) || topics[i] != *want {
			return false
		}
	}
	return true
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

// ToLogFilter converts the request into a logdb query.
func (f *EventFilter) ToLogFilter() *logdb.EventFilter {
	out := &logdb.EventFilter{Order: f.Order}
	if f.Options != nil {
		out.Options = &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	if f.Range != nil {
		r := &logdb.Range{Unit: logdb.Seq, To: math.MaxInt64}
		if f.Range.Unit == logdb.Time {
			r.Unit = logdb.Time
		}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = min(*f.Range.To, math.MaxInt64)
		}
		out.Range = r
	}
	for _, c := range f.CriteriaSet {
		out.CriteriaSet = append(out.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Topics:  [logdb.MaxTopics]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3},
		})
	}
	return out
}
