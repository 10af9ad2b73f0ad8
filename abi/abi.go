// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"encoding/json"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/thor"
)

// ABI holds information about events of a native module.
type ABI struct {
	nameToEvent map[string]*Event
	events      map[thor.Bytes32]*Event
}

// New create an ABI instance from the json definition.
// Entries other than events are ignored.
func New(data []byte) (*ABI, error) {
	var fields []struct {
		Type      string
		Name      string
		Anonymous bool
		Inputs    []ethabi.Argument
	}

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "unmarshal abi")
	}

	abi := &ABI{
		nameToEvent: make(map[string]*Event),
		events:      make(map[thor.Bytes32]*Event),
	}

	for _, field := range fields {
		if field.Type != "event" {
			continue
		}
		ethEvent := ethabi.NewEvent(field.Name, field.Name, field.Anonymous, field.Inputs)
		event := newEvent(&ethEvent)
		abi.events[event.ID()] = event
		abi.nameToEvent[event.Name()] = event
	}
	return abi, nil
}

// MustNew is New but panics on error.
func MustNew(data []byte) *ABI {
	abi, err := New(data)
	if err != nil {
		panic(err)
	}
	return abi
}

// EventByName find event for the given event name.
func (a *ABI) EventByName(name string) (*Event, bool) {
	e, found := a.nameToEvent[name]
	return e, found
}

// MustEventByName is EventByName but panics if not found.
func (a *ABI) MustEventByName(name string) *Event {
	e, found := a.nameToEvent[name]
	if !found {
		panic(errors.Errorf("event %v not found", name))
	}
	return e
}

// EventByID find event for the given event id.
func (a *ABI) EventByID(id thor.Bytes32) (*Event, bool) {
	e, found := a.events[id]
	return e, found
}
