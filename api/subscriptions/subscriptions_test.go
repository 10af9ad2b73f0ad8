// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	moduleA = thor.BytesToAddress([]byte("a"))
	moduleB = thor.BytesToAddress([]byte("b"))
	topic   = thor.BytesToBytes32([]byte("topic"))
)

type fixture struct {
	db     *logdb.LogDB
	signal *co.Signal
	subs   *Subscriptions
	ts     *httptest.Server
	seq    uint64
}

func (f *fixture) NewWaiter() co.Waiter { return f.signal.NewWaiter() }

func newFixture(t *testing.T) *fixture {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, signal: &co.Signal{}}
	f.subs = New(db, f, []string{"*"})
	router := mux.NewRouter()
	f.subs.Mount(router, "/subscriptions")
	f.ts = httptest.NewServer(router)
	t.Cleanup(func() {
		f.subs.Close()
		f.ts.Close()
	})
	return f
}

func (f *fixture) commit(t *testing.T, addrs ...thor.Address) {
	f.seq++
	out := &tx.Output{Seq: f.seq, Time: 1000 + f.seq}
	for _, addr := range addrs {
		out.Events = append(out.Events, &tx.Event{Address: addr, Topics: []thor.Bytes32{topic}})
	}
	require.NoError(t, f.db.Prepare(out).Commit())
	f.signal.Broadcast()
}

func (f *fixture) dial(t *testing.T, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/subscriptions/event?" + query
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	res.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *types.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev types.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestEventSubscription(t *testing.T) {
	f := newFixture(t)
	f.commit(t, moduleA)

	conn := f.dial(t, "addr="+moduleB.String())
	f.commit(t, moduleA, moduleB)
	f.commit(t, moduleB)

	ev := readEvent(t, conn)
	assert.Equal(t, moduleB, ev.Address)
	assert.Equal(t, uint64(2), ev.Meta.Seq)
	assert.Equal(t, uint32(1), ev.Meta.Index)

	ev = readEvent(t, conn)
	assert.Equal(t, uint64(3), ev.Meta.Seq)
}

func TestEventSubscriptionBacklog(t *testing.T) {
	f := newFixture(t)
	for range readWindow + 5 {
		f.commit(t, moduleA)
	}

	conn := f.dial(t, "pos=0&t0="+topic.String())
	for i := range readWindow + 5 {
		ev := readEvent(t, conn)
		assert.Equal(t, uint64(i+1), ev.Meta.Seq)
	}
}

func TestEventSubscriptionBadRequest(t *testing.T) {
	f := newFixture(t)

	for _, query := range []string{"addr=0x01", "t2=zz", "pos=-1"} {
		res, err := http.Get(f.ts.URL + "/subscriptions/event?" + query)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, query)
	}
}
