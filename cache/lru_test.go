// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUGetOrLoad(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	assert.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(int) * 10, nil
	}

	v, err := c.GetOrLoad(1, loader)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = c.GetOrLoad(1, loader)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(2, func(any) (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get(2)
	assert.False(t, ok)

	changed, hit, miss := c.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(2), miss)
}

func TestStats(t *testing.T) {
	var s Stats
	changed, hit, miss := s.Stats()
	assert.False(t, changed)
	assert.Zero(t, hit)
	assert.Zero(t, miss)

	s.Hit()
	s.Miss()
	changed, hit, miss = s.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = s.Stats()
	assert.False(t, changed)
}
