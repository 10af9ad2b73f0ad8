// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes calls against the builtin modules one at a time.
// Each call runs on a fresh state; its changes and events are committed only
// when it succeeds.
package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/kv"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// the runtime keeps its own counters in the state of this address
	metaAddr = thor.BytesToAddress([]byte("runtime"))
	slotSeq  = thor.BytesToBytes32([]byte("seq"))
	slotTime = thor.BytesToBytes32([]byte("time"))
)

// EventLog receives the events of committed calls.
type EventLog interface {
	Prepare(out *tx.Output) *logdb.Batch
}

// Runtime serializes calls.
type Runtime struct {
	mu     sync.RWMutex
	stater *state.Stater
	logs   EventLog
	clock  func() uint64

	seq    uint64
	time   uint64
	signal co.Signal
}

// New creates a runtime over db. logs may be nil. clock defaults to the
// wall clock in seconds.
func New(db kv.Store, logs EventLog, clock func() uint64) (*Runtime, error) {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	rt := &Runtime{
		stater: state.NewStater(db),
		logs:   logs,
		clock:  clock,
	}
	st := rt.stater.NewState()
	seq, err := st.GetStorage(metaAddr, slotSeq)
	if err != nil {
		return nil, errors.Wrap(err, "load sequence")
	}
	last, err := st.GetStorage(metaAddr, slotTime)
	if err != nil {
		return nil, errors.Wrap(err, "load time")
	}
	rt.seq = bytes32ToUint64(seq)
	rt.time = bytes32ToUint64(last)
	return rt, nil
}

func bytes32ToUint64(b thor.Bytes32) uint64 {
	var n uint64
	for _, v := range b[24:] {
		n = n<<8 | uint64(v)
	}
	return n
}

// Seq returns the sequence number of the last committed call.
func (rt *Runtime) Seq() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.seq
}

// Initialized reports whether any call has been committed, genesis included.
func (rt *Runtime) Initialized() bool {
	return rt.Seq() > 0
}

// NewWaiter returns a waiter woken after every commit.
func (rt *Runtime) NewWaiter() co.Waiter {
	return rt.signal.NewWaiter()
}

// now never goes backwards, even if the clock does.
func (rt *Runtime) now() uint64 {
	return max(rt.clock(), rt.time)
}

// Exec runs fn on behalf of caller and commits its changes if it succeeds.
func (rt *Runtime) Exec(caller thor.Address, fn func(env *xenv.Environment) error) (*tx.Output, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	callCtx := &xenv.CallContext{Seq: rt.seq + 1, Time: rt.now(), Caller: caller}
	st := rt.stater.NewState()
	env := xenv.New(st, callCtx)

	events, err := env.Call(fn)()
	if err != nil {
		metricExecCount().AddWithLabel(1, map[string]string{"outcome": "revert"})
		logger.Debug("call reverted", "seq", callCtx.Seq, "caller", caller, "error", err)
		return nil, err
	}

	st.SetStorage(metaAddr, slotSeq, thor.Uint64ToBytes32(callCtx.Seq))
	st.SetStorage(metaAddr, slotTime, thor.Uint64ToBytes32(callCtx.Time))
	root, err := st.Stage().Commit()
	if err != nil {
		metricExecCount().AddWithLabel(1, map[string]string{"outcome": "error"})
		return nil, errors.Wrap(err, "commit state")
	}
	rt.seq, rt.time = callCtx.Seq, callCtx.Time

	out := &tx.Output{
		Seq:       callCtx.Seq,
		Time:      callCtx.Time,
		Caller:    caller,
		StateRoot: root,
		Events:    events,
	}
	if rt.logs != nil {
		if err := rt.logs.Prepare(out).Commit(); err != nil {
			logger.Error("failed to write event log", "seq", out.Seq, "error", err)
		}
	}
	rt.signal.Broadcast()

	metricExecCount().AddWithLabel(1, map[string]string{"outcome": "ok"})
	metricExecDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"outcome": "ok"})
	logger.Debug("call committed", "seq", out.Seq, "caller", caller, "events", len(events), "root", root.AbbrevString())
	return out, nil
}

// View runs fn on a throwaway state. Nothing it does is committed.
func (rt *Runtime) View(fn func(env *xenv.Environment) error) error {
	rt.mu.RLock()
	callCtx := &xenv.CallContext{Seq: rt.seq, Time: rt.now()}
	rt.mu.RUnlock()

	env := xenv.New(rt.stater.NewState(), callCtx)
	_, err := env.Call(fn)()
	return err
}
