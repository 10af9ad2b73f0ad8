// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 thor.Bytes32
	event              *ethabi.Event
	indexed            ethabi.Arguments
	argsWithoutIndexed ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var indexed, argsWithoutIndexed ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		} else {
			argsWithoutIndexed = append(argsWithoutIndexed, arg)
		}
	}
	return &Event{
		thor.Bytes32(event.ID),
		event,
		indexed,
		argsWithoutIndexed,
	}
}

// ID returns event id.
func (e *Event) ID() thor.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Topics builds the topic list: the event id followed by the indexed args in order.
func (e *Event) Topics(indexed ...any) ([]thor.Bytes32, error) {
	if len(indexed) != len(e.indexed) {
		return nil, errors.Errorf("event %v: want %d indexed args, got %d", e.Name(), len(e.indexed), len(indexed))
	}
	topics := []thor.Bytes32{e.id}
	for _, v := range indexed {
		topic, err := toTopic(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "event %v", e.Name())
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// Build assembles a log entry raised by the module at addr.
func (e *Event) Build(addr thor.Address, indexed []any, args ...any) (*tx.Event, error) {
	topics, err := e.Topics(indexed...)
	if err != nil {
		return nil, err
	}
	data, err := e.Encode(args...)
	if err != nil {
		return nil, errors.WithMessagef(err, "encode event %v", e.Name())
	}
	return &tx.Event{Address: addr, Topics: topics, Data: data}, nil
}

// Encode encodes non-indexed args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(e.convertArgs(args)...)
}

// Decode decodes event data into a name-keyed map.
func (e *Event) Decode(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if err := e.argsWithoutIndexed.UnpackIntoMap(out, data); err != nil {
		return nil, err
	}
	for k, v := range out {
		if addr, ok := v.(common.Address); ok {
			out[k] = thor.Address(addr)
		}
	}
	return out, nil
}

// IndexedNames returns names of indexed args, matching topics[1:].
func (e *Event) IndexedNames() []string {
	names := make([]string, 0, len(e.indexed))
	for _, arg := range e.indexed {
		names = append(names, arg.Name)
	}
	return names
}

// convertArgs maps thor types to their go-ethereum counterparts, and widens
// uint64 values for uint256 slots.
func (e *Event) convertArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case thor.Address:
			out[i] = common.Address(v)
		case thor.Bytes32:
			out[i] = [32]byte(v)
		case uint64:
			if i < len(e.argsWithoutIndexed) && e.argsWithoutIndexed[i].Type.Size > 64 {
				out[i] = new(big.Int).SetUint64(v)
			} else {
				out[i] = v
			}
		default:
			out[i] = arg
		}
	}
	return out
}

func toTopic(v any) (thor.Bytes32, error) {
	switch v := v.(type) {
	case thor.Address:
		return thor.BytesToBytes32(v.Bytes()), nil
	case thor.Bytes32:
		return v, nil
	case uint64:
		return thor.Uint64ToBytes32(v), nil
	case *big.Int:
		if v.Sign() < 0 || v.BitLen() > 256 {
			return thor.Bytes32{}, errors.New("uint256 out of range")
		}
		return thor.BytesToBytes32(v.Bytes()), nil
	}
	return thor.Bytes32{}, errors.Errorf("unsupported topic type %T", v)
}
