// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakemint/cache"
	"github.com/vechain/stakemint/kv"
	"github.com/vechain/stakemint/stackedmap"
	"github.com/vechain/stakemint/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key[:]...)
}

// State manages the storage of all native modules.
type State struct {
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap
}

func newState(store kv.Store, cache *cache.LRU) *State {
	state := State{
		store: store,
		cache: cache,
	}
	state.sm = stackedmap.New(state.cacheGetter)
	// base level, never reverted, holds writes made outside any checkpoint
	state.sm.Push()
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	k, ok := key.(storageKey)
	if !ok {
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	load := func(any) (any, error) {
		v, err := s.store.Get(k.dbKey())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(v), nil
	}
	var (
		v   any
		err error
	)
	if s.cache != nil {
		v, err = s.cache.GetOrLoad(k, load)
	} else {
		v, err = load(k)
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to commit changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k, v any) bool {
		changes[k.(storageKey)] = v.(rlp.RawValue)
		return true
	})
	return &Stage{
		store:   s.store,
		cache:   s.cache,
		changes: changes,
	}
}
