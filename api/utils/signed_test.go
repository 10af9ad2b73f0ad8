// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/runtime"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/xenv"
)

func TestCallSigningHash(t *testing.T) {
	to := thor.BytesToAddress([]byte("to"))
	base := NewCall("accounts/transfer", &Signed{Nonce: 1}, to, big.NewInt(5)).SigningHash()

	assert.Equal(t, base, NewCall("accounts/transfer", &Signed{Nonce: 1, Signature: []byte{1}}, to, big.NewInt(5)).SigningHash(),
		"signature is not signed over")

	for name, other := range map[string]*Call{
		"op":     NewCall("accounts/approve", &Signed{Nonce: 1}, to, big.NewInt(5)),
		"nonce":  NewCall("accounts/transfer", &Signed{Nonce: 2}, to, big.NewInt(5)),
		"amount": NewCall("accounts/transfer", &Signed{Nonce: 1}, to, big.NewInt(6)),
		"to":     NewCall("accounts/transfer", &Signed{Nonce: 1}, thor.Address{}, big.NewInt(5)),
	} {
		assert.NotEqual(t, base, other.SigningHash(), name)
	}
}

func statusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return 0
}

func TestExecSigned(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	rt, err := runtime.New(db, nil, nil)
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := thor.Address(crypto.PubkeyToAddress(key.PublicKey))
	signing := cry.NewSigning(thor.Blake2b([]byte("domain")))

	var seen []thor.Address
	record := func(env *xenv.Environment) error {
		seen = append(seen, env.Caller())
		return nil
	}

	// unsigned
	_, err = ExecSigned(rt, signing, NewCall("op", &Signed{}), record)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	// malformed
	_, err = ExecSigned(rt, signing, NewCall("op", &Signed{Signature: make([]byte, cry.SignatureLen)}), record)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Empty(t, seen)

	call := NewCall("op", &Signed{Nonce: 0}, uint64(42))
	require.NoError(t, call.Sign(signing, key))
	out, err := ExecSigned(rt, signing, call, record)
	require.NoError(t, err)
	assert.Equal(t, signer, out.Caller)
	assert.Equal(t, []thor.Address{signer}, seen)

	// replay
	_, err = ExecSigned(rt, signing, call, record)
	assert.ErrorIs(t, err, xenv.ErrNonceMismatch)
	assert.Len(t, seen, 1)

	// a failing call leaves the nonce unused
	failing := NewCall("op", &Signed{Nonce: 1})
	require.NoError(t, failing.Sign(signing, key))
	_, err = ExecSigned(rt, signing, failing, func(*xenv.Environment) error { return errors.New("boom") })
	assert.Error(t, err)

	require.NoError(t, rt.View(func(env *xenv.Environment) error {
		nonce, err := env.Nonce(signer)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), nonce)
		return nil
	}))
}
