// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import (
	"math/big"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/builtin/energy"
	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/builtin/params"
	"github.com/vechain/stakemint/builtin/registry"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	allocatorAddr = thor.BytesToAddress([]byte("Allocator"))
	paramsAddr    = thor.BytesToAddress([]byte("Params"))
	energyAddr    = thor.BytesToAddress([]byte("Energy"))
	registryAddr  = thor.BytesToAddress([]byte("Registry"))
	oracleAddr    = thor.BytesToAddress([]byte("Oracle"))

	stakeAmount = big.NewInt(100)
	waitPeriod  = thor.InitialBurnWaitPeriod
	cooldown    = thor.InitialNoRandomnessCooldown
)

func M(a ...any) []any {
	return a
}

type testEnv struct {
	st       *state.State
	alloc    *Allocator
	params   *params.Params
	energy   *energy.Energy
	registry *registry.Registry
	oracle   *oracle.Oracle
	admin    thor.Address
	events   tx.Events
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		st:    state.NewStater(db).NewState(),
		admin: thor.BytesToAddress([]byte("admin")),
	}
	env.params = params.New(paramsAddr, env.st, nil)
	require.NoError(t, env.params.Set(thor.KeyStakeAmount, stakeAmount))
	require.NoError(t, env.params.SetAddress(thor.KeyExecutorAddress, env.admin))
	require.NoError(t, env.params.Set(thor.KeyBurnWaitPeriod, new(big.Int).SetUint64(waitPeriod)))
	require.NoError(t, env.params.Set(thor.KeyRequestConfirmations, big.NewInt(1)))
	require.NoError(t, env.params.Set(thor.KeyNumWords, big.NewInt(1)))

	env.energy = energy.New(energyAddr, env.st, nil)
	env.registry = registry.New(registryAddr, env.st, nil)
	env.registry.SetMinter(allocatorAddr)

	env.oracle = oracle.New(oracleAddr, env.st, nil, func(addr thor.Address) (oracle.Consumer, bool) {
		return env.alloc, addr == allocatorAddr
	})
	env.alloc = New(allocatorAddr, env.st, env.params, env.energy, env.registry, env.oracle,
		tx.EmitterFunc(func(ev *tx.Event) { env.events = append(env.events, ev) }))
	require.NoError(t, env.alloc.Initialize())
	return env
}

// fund gives addr one stake worth of value and approves the allocator for it.
func (env *testEnv) fund(t *testing.T, addr thor.Address) {
	require.NoError(t, env.energy.AddBalance(addr, stakeAmount))
	allowance, err := env.energy.Allowance(addr, allocatorAddr)
	require.NoError(t, err)
	require.NoError(t, env.energy.Approve(addr, allocatorAddr, allowance.Add(allowance, stakeAmount)))
}

func (env *testEnv) balance(t *testing.T, addr thor.Address) int64 {
	bal, err := env.energy.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func (env *testEnv) request(t *testing.T, handle thor.Bytes32) requestView {
	req, err := env.alloc.GetRequest(handle)
	require.NoError(t, err)
	require.NotNil(t, req)
	return requestView{req.Active, req.RandomReady, req.Claimed}
}

type requestView struct {
	Active, RandomReady, Claimed bool
}

// assertConservation checks that every identifier is either in the pool or
// minted, never both.
func (env *testEnv) assertConservation(t *testing.T) {
	ids, err := env.alloc.ListAvailableIdentifiers()
	require.NoError(t, err)
	minted, err := env.alloc.MintedCount()
	require.NoError(t, err)
	assert.Equal(t, thor.MaxIdentifier, uint64(len(ids))+minted)

	for _, id := range ids {
		rec, err := env.alloc.GetMinted(id)
		require.NoError(t, err)
		assert.Nil(t, rec, "id %d both pooled and minted", id)
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	assert.Equal(t, len(sorted), len(slices.Compact(sorted)), "duplicate id in pool")
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Stake(addr thor.Address, now uint64, handle *thor.Bytes32) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.env.fund(t, addr)
		h, err := ts.env.alloc.Stake(addr, now)
		if err != nil {
			t.Fatalf("failed to stake for %s: %v", addr, err)
		}
		*handle = h
		t.Logf("staked %s, handle %s", addr, h.AbbrevString())
	})
}

func (ts *TestSequence) Fulfill(handle *thor.Bytes32, value int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.env.alloc.Fulfill(*handle, []*big.Int{big.NewInt(value)}); err != nil {
			t.Fatalf("failed to fulfill %s: %v", handle.AbbrevString(), err)
		}
	})
}

func (ts *TestSequence) Claim(addr thor.Address, handle *thor.Bytes32, now uint64, id *uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		got, refunded, err := ts.env.alloc.Claim(addr, *handle, now)
		if err != nil {
			t.Fatalf("failed to claim %s: %v", handle.AbbrevString(), err)
		}
		if refunded {
			t.Fatalf("claim of %s was refunded", handle.AbbrevString())
		}
		if id != nil {
			*id = got
		}
		t.Logf("claimed id %d for %s", got, addr)
	})
}

func (ts *TestSequence) AssertRequest(handle *thor.Bytes32, want requestView) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, want, ts.env.request(t, *handle))
	})
}

func (ts *TestSequence) AssertBalance(addr thor.Address, want int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, want, ts.env.balance(t, addr))
	})
}

func (ts *TestSequence) AssertPoolSize(want uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, M(want, nil), M(ts.env.alloc.PoolSize()))
	})
}

func (ts *TestSequence) AssertConservation() *TestSequence {
	return ts.AddFunc(ts.env.assertConservation)
}

func (ts *TestSequence) Run(t *testing.T) {
	for _, f := range ts.funcs {
		f(t)
	}
}
