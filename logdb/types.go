// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

// MaxTopics is the number of topic columns kept per event.
const MaxTopics = 4

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq     uint64
	Index   uint32
	Time    uint64
	Caller  thor.Address // who made the call
	Address thor.Address // always a module address
	Topics  [MaxTopics]*thor.Bytes32
	Data    []byte
}

// newEvent converts tx.Event to Event.
func newEvent(out *tx.Output, index uint32, txEvent *tx.Event) *Event {
	ev := &Event{
		Seq:     out.Seq,
		Index:   index,
		Time:    out.Time,
		Caller:  out.Caller,
		Address: txEvent.Address,
		Data:    txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a module address
	Topics  [MaxTopics]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
