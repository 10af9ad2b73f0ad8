// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeccak256(t *testing.T) {
	// keccak256("")
	empty := Keccak256()
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(empty[:]))

	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.Equal(t, Blake2b([]byte("foo")), Blake2bFn(func(w io.Writer) {
		w.Write([]byte("f"))
		w.Write([]byte("oo"))
	}))
	assert.NotEqual(t, Blake2b([]byte("foo")), Keccak256([]byte("foo")))
}

func BenchmarkBlake2b(b *testing.B) {
	data := make([]byte, 10)
	for b.Loop() {
		Blake2b(data)
	}
}
