// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

func TestParamsGetSet(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.NewStater(db).NewState()
	st.NewCheckpoint()

	var events tx.Events
	p := New(thor.BytesToAddress([]byte("par")), st, tx.EmitterFunc(func(ev *tx.Event) { events = append(events, ev) }))

	v, err := p.Get(thor.KeyBurnWaitPeriod)
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, p.Set(thor.KeyBurnWaitPeriod, big.NewInt(3600)))
	w, err := p.GetUint64(thor.KeyBurnWaitPeriod)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3600), w)

	require.Len(t, events, 1)
	assert.Equal(t, setEvent.ID(), events[0].Topics[0])
	assert.Equal(t, thor.KeyBurnWaitPeriod, events[0].Topics[1])

	admin := thor.BytesToAddress([]byte("admin"))
	require.NoError(t, p.SetAddress(thor.KeyExecutorAddress, admin))
	got, err := p.GetAddress(thor.KeyExecutorAddress)
	assert.NoError(t, err)
	assert.Equal(t, admin, got)

	keyHash := thor.Blake2b([]byte("key"))
	require.NoError(t, p.Set(thor.KeyVRFKeyHash, new(big.Int).SetBytes(keyHash[:])))
	gotHash, err := p.GetBytes32(thor.KeyVRFKeyHash)
	assert.NoError(t, err)
	assert.Equal(t, keyHash, gotHash)

	// nil emitter is allowed
	silent := New(thor.BytesToAddress([]byte("par")), st, nil)
	assert.NoError(t, silent.Set(thor.KeyNumWords, big.NewInt(1)))
	assert.Len(t, events, 3)
}
