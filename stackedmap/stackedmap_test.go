// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := New(func(key any) (any, bool, error) {
		v, r := src[key.(string)]
		return v, r, nil
	})

	tests := []struct {
		f        func()
		depth    int
		putKey   string
		putValue string
	}{
		{func() {}, 0, "", ""},
		{func() { sm.Push() }, 1, "foo", "baz"},
		{func() { sm.Push() }, 2, "foo", "qux"},
		{func() { sm.Pop() }, 1, "", ""},
		{func() { sm.Push() }, 2, "foo", "quux"},
		{func() { sm.PopTo(0) }, 0, "", ""},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(t, sm.Depth(), test.depth)
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
			assert.Equal(t, M(sm.Get(test.putKey)), M(test.putValue, true, nil))
		}
	}
	assert.Equal(t, M(sm.Get("foo")), M("bar", true, nil))
}

func TestStackedMapPutTwiceSameLevel(t *testing.T) {
	sm := New(func(any) (any, bool, error) { return nil, false, nil })

	sm.Push()
	sm.Put("k", 1)
	sm.Push()
	sm.Put("k", 2)
	sm.Put("k", 3)
	assert.Equal(t, M(3, true, nil), M(sm.Get("k")))

	sm.Pop()
	assert.Equal(t, M(1, true, nil), M(sm.Get("k")))

	sm.Pop()
	assert.Equal(t, M(nil, false, nil), M(sm.Get("k")))
}

func TestStackedMapSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := New(func(any) (any, bool, error) { return nil, false, boom })

	_, _, err := sm.Get("missing")
	assert.Equal(t, boom, err)
}

func TestJournal(t *testing.T) {
	sm := New(func(any) (any, bool, error) { return nil, false, nil })

	sm.Push()
	sm.Put("a", 1)
	sm.Put("b", 2)
	sm.Push()
	sm.Put("a", 3)

	var keys []any
	var values []any
	sm.Journal(func(k, v any) bool {
		keys = append(keys, k)
		values = append(values, v)
		return true
	})
	assert.Equal(t, M("a", "b", "a"), keys)
	assert.Equal(t, M(1, 2, 3), values)

	count := 0
	sm.Journal(func(any, any) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)

	sm.PopTo(1)
	keys = nil
	sm.Journal(func(k, _ any) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, M("a", "b"), keys)
}
