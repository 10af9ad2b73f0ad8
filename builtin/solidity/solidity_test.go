// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/test/datagen"
	"github.com/vechain/stakemint/thor"
)

type TestStruct struct {
	Field1 uint64
	Addr1  thor.Address
	Bytes1 thor.Bytes32
	Amount *big.Int
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.NewStater(db).NewState()
	st.NewCheckpoint()
	return NewContext(thor.Address{1}, st)
}

func TestAddress(t *testing.T) {
	ctx := newContext(t)
	address := NewAddress(ctx, thor.Bytes32{1})

	value := datagen.RandAddress()
	address.Set(&value)

	retrieved, err := address.Get()
	assert.NoError(t, err)
	assert.Equal(t, value, retrieved)

	address.Set(nil)
	retrieved, err = address.Get()
	assert.NoError(t, err)
	assert.Equal(t, thor.Address{}, retrieved)

	assert.Equal(t, thor.Address{1}, ctx.Address())
}

func TestAddress_NegativeCases(t *testing.T) {
	ctx := newContext(t)
	slot := thor.BytesToBytes32([]byte("slot"))

	// invalid rlp makes GetStorage fail
	ctx.State().SetRawStorage(ctx.Address(), slot, rlp.RawValue{0xFF})

	addr, err := NewAddress(ctx, slot).Get()
	assert.Equal(t, thor.Address{}, addr)
	assert.Error(t, err)
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, thor.Bytes32{2})

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	u.Set(big.NewInt(10))
	assert.NoError(t, u.Add(big.NewInt(5)))
	assert.NoError(t, u.Sub(big.NewInt(3)))

	v, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(12), v)
}

func TestMapping(t *testing.T) {
	ctx := newContext(t)
	mapping := NewMapping[thor.Bytes32, *TestStruct](ctx, thor.Bytes32{3})

	key := datagen.RandomHash()

	// missing key yields a zero value, never nil
	empty, err := mapping.Get(key)
	assert.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, uint64(0), empty.Field1)

	exists, err := mapping.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)

	value := &TestStruct{
		Field1: 100,
		Addr1:  datagen.RandAddress(),
		Bytes1: datagen.RandomHash(),
		Amount: big.NewInt(77),
	}
	assert.NoError(t, mapping.Set(key, value))

	got, err := mapping.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	exists, err = mapping.Exists(key)
	assert.NoError(t, err)
	assert.True(t, exists)

	mapping.Delete(key)
	exists, err = mapping.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingScalar(t *testing.T) {
	ctx := newContext(t)
	mapping := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{4})

	addr := datagen.RandAddress()
	v, err := mapping.Get(addr)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	assert.NoError(t, mapping.Set(addr, 42))
	v, err = mapping.Get(addr)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestConfigVariable(t *testing.T) {
	config := NewConfigVariable("name", 10)
	assert.Equal(t, uint64(10), config.Default())
	assert.Equal(t, "name", config.Name())
	assert.Equal(t, thor.BytesToBytes32([]byte("name")), config.Slot())

	ctx := newContext(t)
	assertConfig(t, config, ctx, 10)

	config.Override(ctx, 60)
	assertConfig(t, config, ctx, 60)

	// every read observes the slot, the variable itself never changes
	config.Override(ctx, 90)
	assertConfig(t, config, ctx, 90)
	assert.Equal(t, uint64(10), config.Default())

	config.Override(ctx, 0)
	assertConfig(t, config, ctx, 10)

	broken := NewConfigVariable("broken", 10)
	ctx.State().SetRawStorage(ctx.Address(), broken.Slot(), rlp.RawValue{0xFF})
	_, err := broken.Get(ctx)
	assert.Error(t, err)
}

func assertConfig(t *testing.T, config *ConfigVariable, ctx *Context, want uint64) {
	t.Helper()
	v, err := config.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, v)
}
