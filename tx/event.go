// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/stakemint/thor"
)

// Event represents a contract event log.
type Event struct {
	// address of the module that generates the event
	Address thor.Address
	// list of topics provided by the module.
	Topics []thor.Bytes32
	// supplied by the module, usually ABI-encoded
	Data []byte
}

// Events slice of event logs.
type Events []*Event

// Emitter collects events raised by native modules during a call.
type Emitter interface {
	Emit(ev *Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev *Event)

func (f EmitterFunc) Emit(ev *Event) { f(ev) }

// Output is the result of a successfully executed call.
type Output struct {
	// sequence number of the call
	Seq uint64
	// timestamp supplied by the execution environment
	Time uint64
	// caller identity
	Caller thor.Address
	// digest of the storage changes
	StateRoot thor.Bytes32
	Events    Events
}
