// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var setEvent = abi.MustNew(gen.MustABI("Params")).MustEventByName("Set")

// Params binder of `Params` module.
type Params struct {
	sctx    *solidity.Context
	emitter tx.Emitter
}

// New creates the binder. emitter may be nil, in which case no event is raised.
func New(addr thor.Address, state *state.State, emitter tx.Emitter) *Params {
	return &Params{solidity.NewContext(addr, state), emitter}
}

// Get native way to get param.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	return solidity.NewUint256(p.sctx, key).Get()
}

// Set native way to set param.
func (p *Params) Set(key thor.Bytes32, value *big.Int) error {
	solidity.NewUint256(p.sctx, key).Set(value)
	if p.emitter == nil {
		return nil
	}
	ev, err := setEvent.Build(p.sctx.Address(), []any{key}, value)
	if err != nil {
		return err
	}
	p.emitter.Emit(ev)
	return nil
}

// GetAddress reads a param holding an address.
func (p *Params) GetAddress(key thor.Bytes32) (thor.Address, error) {
	v, err := p.Get(key)
	if err != nil {
		return thor.Address{}, err
	}
	return thor.BytesToAddress(v.Bytes()), nil
}

// SetAddress stores an address param.
func (p *Params) SetAddress(key thor.Bytes32, addr thor.Address) error {
	return p.Set(key, new(big.Int).SetBytes(addr.Bytes()))
}

// GetBytes32 reads a param holding a 32-byte word.
func (p *Params) GetBytes32(key thor.Bytes32) (thor.Bytes32, error) {
	v, err := p.Get(key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(v.Bytes()), nil
}

// GetUint64 reads a param that fits in 64 bits. Larger values are truncated.
func (p *Params) GetUint64(key thor.Bytes32) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
