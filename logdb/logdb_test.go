// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/test/datagen"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	moduleA = thor.BytesToAddress([]byte("moduleA"))
	moduleB = thor.BytesToAddress([]byte("moduleB"))
	topicX  = thor.BytesToBytes32([]byte("x"))
	topicY  = thor.BytesToBytes32([]byte("y"))
)

func newOutput(seq uint64, caller thor.Address, events ...*tx.Event) *tx.Output {
	return &tx.Output{Seq: seq, Time: seq * 10, Caller: caller, Events: events}
}

func fill(t *testing.T, db *LogDB) thor.Address {
	caller := datagen.RandAddress()
	for seq := uint64(1); seq <= 10; seq++ {
		out := newOutput(seq, caller,
			&tx.Event{Address: moduleA, Topics: []thor.Bytes32{topicX}, Data: []byte{byte(seq)}},
			&tx.Event{Address: moduleB, Topics: []thor.Bytes32{topicY, topicX}},
		)
		batch := db.Prepare(out)
		assert.Equal(t, 2, batch.Len())
		require.NoError(t, batch.Commit())
	}
	return caller
}

func TestEvents(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	caller := fill(t, db)

	seq, err = db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), seq)

	all, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 20)
	assert.Equal(t, &Event{
		Seq:     1,
		Index:   0,
		Time:    10,
		Caller:  caller,
		Address: moduleA,
		Topics:  [MaxTopics]*thor.Bytes32{&topicX},
		Data:    []byte{1},
	}, all[0])
	assert.Equal(t, uint32(1), all[1].Index)

	tests := []struct {
		name   string
		filter *EventFilter
		want   int
		first  uint64
	}{
		{"address", &EventFilter{CriteriaSet: []*EventCriteria{{Address: &moduleA}}}, 10, 1},
		{"topic1", &EventFilter{CriteriaSet: []*EventCriteria{{Topics: [MaxTopics]*thor.Bytes32{nil, &topicX}}}}, 10, 1},
		{"or", &EventFilter{CriteriaSet: []*EventCriteria{{Address: &moduleA}, {Topics: [MaxTopics]*thor.Bytes32{&topicY}}}}, 20, 1},
		{"seq range", &EventFilter{Range: &Range{Unit: Seq, From: 3, To: 4}}, 4, 3},
		{"time range", &EventFilter{Range: &Range{Unit: Time, From: 90, To: 0}}, 4, 9},
		{"desc", &EventFilter{Order: DESC, Options: &Options{Offset: 0, Limit: 3}}, 3, 10},
		{"paging", &EventFilter{Options: &Options{Offset: 18, Limit: 10}}, 2, 10},
		{"no match", &EventFilter{CriteriaSet: []*EventCriteria{{Address: &moduleA, Topics: [MaxTopics]*thor.Bytes32{&topicY}}}}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FilterEvents(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.first, got[0].Seq)
			}
		})
	}
}

func TestCanceled(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	fill(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterEvents(ctx, &EventFilter{})
	assert.Error(t, err)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())
	fill(t, db)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), seq)
}

func TestEmptyBatch(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.Prepare(newOutput(1, thor.Address{}))
	assert.Equal(t, 0, batch.Len())
	require.NoError(t, batch.Commit())
}
