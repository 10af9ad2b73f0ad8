// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/thor"
)

const testABI = `[
	{"type":"function","name":"ignored","inputs":[]},
	{"type":"event","name":"Claimed","inputs":[
		{"name":"handle","type":"bytes32","indexed":true},
		{"name":"holder","type":"address","indexed":true},
		{"name":"id","type":"uint256","indexed":false},
		{"name":"poolSize","type":"uint256","indexed":false}
	]}
]`

func TestEvent(t *testing.T) {
	abi, err := New([]byte(testABI))
	require.NoError(t, err)

	ev, ok := abi.EventByName("Claimed")
	require.True(t, ok)
	assert.Equal(t, "Claimed", ev.Name())
	assert.Equal(t, thor.Keccak256([]byte("Claimed(bytes32,address,uint256,uint256)")), ev.ID())

	byID, ok := abi.EventByID(ev.ID())
	assert.True(t, ok)
	assert.Same(t, ev, byID)

	_, ok = abi.EventByName("ignored")
	assert.False(t, ok)

	handle := thor.Blake2b([]byte("handle"))
	holder := thor.BytesToAddress([]byte("holder"))
	topics, err := ev.Topics(handle, holder)
	require.NoError(t, err)
	assert.Equal(t, []thor.Bytes32{ev.ID(), handle, thor.BytesToBytes32(holder.Bytes())}, topics)
	assert.Equal(t, []string{"handle", "holder"}, ev.IndexedNames())

	_, err = ev.Topics(handle)
	assert.Error(t, err)
	_, err = ev.Topics(handle, "bad")
	assert.Error(t, err)

	data, err := ev.Encode(uint64(42), big.NewInt(499))
	require.NoError(t, err)
	assert.Len(t, data, 64)

	decoded, err := ev.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), decoded["id"])
	assert.Equal(t, big.NewInt(499), decoded["poolSize"])
}

func TestNewInvalid(t *testing.T) {
	_, err := New([]byte("{"))
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew([]byte("{")) })
}

func TestBuild(t *testing.T) {
	abi := MustNew([]byte(testABI))
	ev := abi.MustEventByName("Claimed")

	addr := thor.BytesToAddress([]byte("allocator"))
	handle := thor.Blake2b([]byte("h"))
	holder := thor.BytesToAddress([]byte("holder"))

	built, err := ev.Build(addr, []any{handle, holder}, uint64(7), uint64(500))
	require.NoError(t, err)
	assert.Equal(t, addr, built.Address)
	assert.Len(t, built.Topics, 3)
	assert.Equal(t, ev.ID(), built.Topics[0])

	_, err = ev.Build(addr, []any{handle, holder}, "bad", uint64(500))
	assert.Error(t, err)
	assert.Panics(t, func() { abi.MustEventByName("Nope") })
}
