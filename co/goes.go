// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Goes runs the background loops of the node and waits for them on shutdown.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a go routine.
func (g *Goes) Go(f func()) {
	g.wg.Go(f)
}

// GoCtx runs f in a go routine, handing it ctx.
func (g *Goes) GoCtx(ctx context.Context, f func(ctx context.Context)) {
	g.wg.Go(func() { f(ctx) })
}

// Wait waits for all go routines started by Go or GoCtx.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once all go routines returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
