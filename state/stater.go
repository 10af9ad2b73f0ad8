// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/vechain/stakemint/cache"
	"github.com/vechain/stakemint/kv"
)

const (
	storageBucket    = kv.Bucket("s")
	storageCacheSize = 16384
)

// Stater is the state creator.
type Stater struct {
	store kv.Store
	cache *cache.LRU
}

// NewStater create a new stater.
func NewStater(db kv.Store) *Stater {
	c, _ := cache.NewLRU(storageCacheSize)
	return &Stater{
		store: storageBucket.NewStore(db),
		cache: c,
	}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return newState(s.store, s.cache)
}
