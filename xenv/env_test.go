// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/builtin/energy"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/test/datagen"
)

func newEnv(t *testing.T) *Environment {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(state.NewStater(db).NewState(), &CallContext{Seq: 1, Time: 100, Caller: datagen.RandAddress()})
}

func TestCall(t *testing.T) {
	env := newEnv(t)
	addr := datagen.RandAddress()

	events, err := env.Call(func(env *Environment) error {
		return env.Builtins().Energy.AddBalance(addr, big.NewInt(1))
	})()
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, uint64(100), env.Time())
	assert.Equal(t, env.CallContext().Caller, env.Caller())
}

func TestCallError(t *testing.T) {
	env := newEnv(t)

	_, err := env.Call(func(env *Environment) error {
		if err := env.Builtins().Energy.AddBalance(datagen.RandAddress(), big.NewInt(1)); err != nil {
			return err
		}
		return env.Builtins().Energy.Transfer(datagen.RandAddress(), datagen.RandAddress(), big.NewInt(1))
	})()
	assert.ErrorIs(t, err, energy.ErrInsufficientFunds)
}

func TestStop(t *testing.T) {
	env := newEnv(t)
	sentinel := errors.New("stopped")

	events, err := env.Call(func(env *Environment) error {
		env.Emit(nil)
		env.Require(true, nil)
		env.Require(false, sentinel)
		return nil
	})()
	assert.Nil(t, events)
	assert.Equal(t, sentinel, err)

	assert.Panics(t, func() {
		_, _ = env.Call(func(env *Environment) error { panic("boom") })()
	})
}

func TestUseNonce(t *testing.T) {
	env := newEnv(t)
	caller := env.Caller()

	assert.Equal(t, M(uint64(0), nil), M(env.Nonce(caller)))
	assert.ErrorIs(t, env.UseNonce(1), ErrNonceMismatch)
	require.NoError(t, env.UseNonce(0))
	assert.Equal(t, M(uint64(1), nil), M(env.Nonce(caller)))

	// replaying the same nonce is refused
	assert.ErrorIs(t, env.UseNonce(0), ErrNonceMismatch)
	require.NoError(t, env.UseNonce(1))

	// other accounts keep their own sequence
	assert.Equal(t, M(uint64(0), nil), M(env.Nonce(datagen.RandAddress())))
}

func M(a ...any) []any {
	return a
}
