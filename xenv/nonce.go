// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"encoding/binary"

	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/thor"
)

var (
	// account nonces live in the state of this address
	nonceAddr = thor.BytesToAddress([]byte("nonce"))

	ErrNonceMismatch = reverts.New("nonce mismatch")
)

// Nonce returns the nonce the next signed call of addr must carry.
func (env *Environment) Nonce(addr thor.Address) (uint64, error) {
	v, err := env.state.GetStorage(nonceAddr, thor.BytesToBytes32(addr.Bytes()))
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v[24:]), nil
}

// UseNonce consumes the caller's nonce. It fails unless nonce is the
// expected one, so every signed call is accepted at most once.
func (env *Environment) UseNonce(nonce uint64) error {
	caller := env.Caller()
	expected, err := env.Nonce(caller)
	if err != nil {
		return err
	}
	if nonce != expected {
		return ErrNonceMismatch
	}
	env.state.SetStorage(nonceAddr, thor.BytesToBytes32(caller.Bytes()), thor.Uint64ToBytes32(expected+1))
	return nil
}
