// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakemint/cache"
	"github.com/vechain/stakemint/kv"
	"github.com/vechain/stakemint/thor"
)

// Stage abstracts changes on the storage.
type Stage struct {
	store   kv.Store
	cache   *cache.LRU
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of changed storage slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

func (s *Stage) sortedKeys() []storageKey {
	keys := make([]storageKey, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].dbKey(), keys[j].dbKey()) < 0
	})
	return keys
}

// Hash computes a digest of the changes.
func (s *Stage) Hash() thor.Bytes32 {
	keys := s.sortedKeys()
	return thor.Blake2bFn(func(w io.Writer) {
		for _, k := range keys {
			w.Write(k.dbKey())
			w.Write(s.changes[k])
		}
	})
}

// Commit writes all changes into the store atomically.
func (s *Stage) Commit() (thor.Bytes32, error) {
	bulk := s.store.Bulk()
	var written, deleted int64
	for _, k := range s.sortedKeys() {
		v := s.changes[k]
		if len(v) == 0 {
			if err := bulk.Delete(k.dbKey()); err != nil {
				return thor.Bytes32{}, &Error{err}
			}
			deleted++
		} else {
			if err := bulk.Put(k.dbKey(), v); err != nil {
				return thor.Bytes32{}, &Error{err}
			}
			written++
		}
	}
	if err := bulk.Write(); err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if s.cache != nil {
		for k, v := range s.changes {
			s.cache.Add(k, v)
		}
	}
	metricStorageCounter().AddWithLabel(written, map[string]string{"type": "write"})
	metricStorageCounter().AddWithLabel(deleted, map[string]string{"type": "delete"})
	return s.Hash(), nil
}
