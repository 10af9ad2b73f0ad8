// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/stakemint/builtin"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

// Decoded is the readable form of an event raised by a builtin module.
type Decoded struct {
	Module string         `json:"module"`
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
}

// EventMeta locates an event in the call history.
type EventMeta struct {
	Seq    uint64       `json:"seq"`
	Index  uint32       `json:"index"`
	Time   uint64       `json:"time"`
	Caller thor.Address `json:"caller"`
}

// Event for json marshal
type Event struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Decoded *Decoded        `json:"decoded,omitempty"`
	Meta    *EventMeta      `json:"meta,omitempty"`
}

// decode fills in the readable form. Indexed args are taken from topics[1:],
// the rest from data. Events of unknown modules are left undecoded.
func decode(addr thor.Address, topics []*thor.Bytes32, data []byte) *Decoded {
	if len(topics) == 0 || topics[0] == nil {
		return nil
	}
	ev, module, ok := builtin.EventByID(addr, *topics[0])
	if !ok {
		return nil
	}
	args, err := ev.Decode(data)
	if err != nil {
		return nil
	}
	for i, name := range ev.IndexedNames() {
		if i+1 < len(topics) && topics[i+1] != nil {
			args[name] = topics[i+1]
		}
	}
	return &Decoded{Module: module, Name: ev.Name(), Args: args}
}

// ConvertEvent converts a stored event.
func ConvertEvent(ev *logdb.Event) *Event {
	out := &Event{
		Address: ev.Address,
		Data:    hexutil.Encode(ev.Data),
		Topics:  make([]*thor.Bytes32, 0, logdb.MaxTopics),
		Meta: &EventMeta{
			Seq:    ev.Seq,
			Index:  ev.Index,
			Time:   ev.Time,
			Caller: ev.Caller,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			out.Topics = append(out.Topics, topic)
		}
	}
	out.Decoded = decode(out.Address, out.Topics, ev.Data)
	return out
}

// ConvertTxEvent converts an event of a call that just executed.
func ConvertTxEvent(ev *tx.Event) *Event {
	out := &Event{
		Address: ev.Address,
		Data:    hexutil.Encode(ev.Data),
		Topics:  make([]*thor.Bytes32, 0, len(ev.Topics)),
	}
	for i := range ev.Topics {
		out.Topics = append(out.Topics, &ev.Topics[i])
	}
	out.Decoded = decode(out.Address, out.Topics, ev.Data)
	return out
}

// Receipt is the result of an executed call.
type Receipt struct {
	Seq       uint64       `json:"seq"`
	Time      uint64       `json:"time"`
	Caller    thor.Address `json:"caller"`
	StateRoot thor.Bytes32 `json:"stateRoot"`
	Events    []*Event     `json:"events"`
}

// ConvertOutput converts the output of an executed call.
func ConvertOutput(out *tx.Output) *Receipt {
	r := &Receipt{
		Seq:       out.Seq,
		Time:      out.Time,
		Caller:    out.Caller,
		StateRoot: out.StateRoot,
		Events:    make([]*Event, 0, len(out.Events)),
	}
	for _, ev := range out.Events {
		r.Events = append(r.Events, ConvertTxEvent(ev))
	}
	return r
}
