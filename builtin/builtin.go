// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/allocator"
	"github.com/vechain/stakemint/builtin/energy"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/builtin/params"
	"github.com/vechain/stakemint/builtin/registry"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

// Builtin modules binding.
var (
	Params    = &paramsContract{mustLoadContract("Params")}
	Energy    = &energyContract{mustLoadContract("Energy")}
	Registry  = &registryContract{mustLoadContract("Registry")}
	Oracle    = &oracleContract{mustLoadContract("Oracle")}
	Allocator = &allocatorContract{mustLoadContract("Allocator")}
)

type (
	paramsContract    struct{ *contract }
	energyContract    struct{ *contract }
	registryContract  struct{ *contract }
	oracleContract    struct{ *contract }
	allocatorContract struct{ *contract }
)

type contract struct {
	Name    string
	Address thor.Address
	ABI     *abi.ABI
}

func mustLoadContract(name string) *contract {
	return &contract{
		Name:    name,
		Address: thor.BytesToAddress([]byte(name)),
		ABI:     abi.MustNew(gen.MustABI(name)),
	}
}

func (p *paramsContract) WithState(state *state.State, emitter tx.Emitter) *params.Params {
	return params.New(p.Address, state, emitter)
}

func (e *energyContract) WithState(state *state.State, emitter tx.Emitter) *energy.Energy {
	return energy.New(e.Address, state, emitter)
}

func (r *registryContract) WithState(state *state.State, emitter tx.Emitter) *registry.Registry {
	return registry.New(r.Address, state, emitter)
}

// Set is the group of modules bound to one state.
type Set struct {
	Params    *params.Params
	Energy    *energy.Energy
	Registry  *registry.Registry
	Oracle    *oracle.Oracle
	Allocator *allocator.Allocator
}

// Bind binds every module to state, wiring the allocator to its
// collaborators and registering it as an oracle consumer.
func Bind(state *state.State, emitter tx.Emitter) *Set {
	set := &Set{
		Params:   Params.WithState(state, emitter),
		Energy:   Energy.WithState(state, emitter),
		Registry: Registry.WithState(state, emitter),
	}
	set.Oracle = oracle.New(Oracle.Address, state, emitter, func(addr thor.Address) (oracle.Consumer, bool) {
		if addr == Allocator.Address {
			return set.Allocator, true
		}
		return nil, false
	})
	set.Allocator = allocator.New(Allocator.Address, state, set.Params, set.Energy, set.Registry, set.Oracle, emitter)
	return set
}

// EventByID finds the event definition of a log raised by a builtin module.
func EventByID(addr thor.Address, id thor.Bytes32) (*abi.Event, string, bool) {
	for _, c := range []*contract{Params.contract, Energy.contract, Registry.contract, Oracle.contract, Allocator.contract} {
		if c.Address != addr {
			continue
		}
		ev, ok := c.ABI.EventByID(id)
		return ev, c.Name, ok
	}
	return nil, "", false
}
