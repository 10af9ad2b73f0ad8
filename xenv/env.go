// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/vechain/stakemint/builtin"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

// CallContext call context.
type CallContext struct {
	Seq    uint64
	Time   uint64
	Caller thor.Address
}

type callError struct {
	cause error
}

// Environment an env to execute native methods in.
type Environment struct {
	state    *state.State
	callCtx  *CallContext
	builtins *builtin.Set
	events   tx.Events
}

// New create a new env with the builtin modules bound to state.
func New(state *state.State, callCtx *CallContext) *Environment {
	env := &Environment{
		state:   state,
		callCtx: callCtx,
	}
	env.builtins = builtin.Bind(state, env)
	return env
}

func (env *Environment) State() *state.State       { return env.state }
func (env *Environment) CallContext() *CallContext { return env.callCtx }
func (env *Environment) Builtins() *builtin.Set    { return env.builtins }
func (env *Environment) Caller() thor.Address      { return env.callCtx.Caller }
func (env *Environment) Time() uint64              { return env.callCtx.Time }
func (env *Environment) Events() tx.Events         { return env.events }

// Emit implements tx.Emitter.
func (env *Environment) Emit(ev *tx.Event) {
	env.events = append(env.events, ev)
}

// Require stops the call with err if cond does not hold.
func (env *Environment) Require(cond bool, err error) {
	if !cond {
		env.Stop(err)
	}
}

// Stop aborts the call with err.
func (env *Environment) Stop(err error) {
	panic(&callError{err})
}

// Call runs proc and turns an abort through Stop into a returned error.
// Events are dropped when proc fails.
func (env *Environment) Call(proc func(env *Environment) error) func() (tx.Events, error) {
	return func() (events tx.Events, err error) {
		defer func() {
			if e := recover(); e != nil {
				if rec, ok := e.(*callError); ok {
					events, err = nil, rec.cause
				} else {
					panic(e)
				}
			}
		}()
		if err := proc(env); err != nil {
			return nil, err
		}
		return env.events, nil
	}
}
