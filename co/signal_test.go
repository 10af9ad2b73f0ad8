// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakemint/co"
)

func TestSignal_BroadcastBeforeWaiter(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	var n int
	for _, w := range ws {
		select {
		case <-w.C():
		default:
			n++
		}
	}
	assert.Equal(t, 10, n)
}

func TestSignal_BroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	sig.Broadcast()

	for _, w := range ws {
		<-w.C()
	}
}

func TestSignal_NoMissedBroadcast(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	sig.Broadcast()
	<-w.C()

	// a broadcast between two waits is still observed
	sig.Broadcast()
	select {
	case <-w.C():
	case <-time.After(time.Second):
		t.Fatal("missed broadcast")
	}
}

func TestGoes(t *testing.T) {
	var (
		goes co.Goes
		n    atomic.Int32
	)
	ctx, cancel := context.WithCancel(context.Background())

	for range 5 {
		goes.Go(func() { n.Add(1) })
	}
	goes.GoCtx(ctx, func(ctx context.Context) {
		<-ctx.Done()
		n.Add(1)
	})

	select {
	case <-goes.Done():
		t.Fatal("done before cancel")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()
	<-goes.Done()
	goes.Wait()
	assert.Equal(t, int32(6), n.Load())
}
