// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"crypto/ecdsa"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/xenv"
)

// Signed is embedded in the body of every state changing request. The
// caller is the signer of the request, never a field of it.
type Signed struct {
	Nonce     uint64        `json:"nonce"`
	Signature hexutil.Bytes `json:"signature"`
}

// Call is the signed content of a request: the operation, the caller's
// nonce and the arguments of the operation.
type Call struct {
	op     string
	nonce  uint64
	args   []any
	signed *Signed
}

// NewCall binds args of operation op to the envelope s.
func NewCall(op string, s *Signed, args ...any) *Call {
	return &Call{op, s.Nonce, args, s}
}

// SigningHash implements cry.Signable.
func (c *Call) SigningHash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		if err := rlp.Encode(w, []any{c.op, c.nonce, c.args}); err != nil {
			panic(err)
		}
	})
}

// Signature implements cry.Signable.
func (c *Call) Signature() []byte {
	return c.signed.Signature
}

// Sign fills the signature of the envelope.
func (c *Call) Sign(signing *cry.Signing, key *ecdsa.PrivateKey) error {
	sig, err := signing.Sign(c, key)
	if err != nil {
		return err
	}
	c.signed.Signature = sig
	return nil
}

// ExecSigned recovers the caller of call and runs fn on its behalf. The
// nonce is consumed in the same call, so fn's changes and the nonce update
// commit or revert together.
func ExecSigned(rt Runtime, signing *cry.Signing, call *Call, fn func(env *xenv.Environment) error) (*tx.Output, error) {
	if len(call.Signature()) == 0 {
		return nil, BadRequest(errors.New("signature: required"))
	}
	caller, err := signing.Signer(call)
	if err != nil {
		return nil, BadRequest(errors.WithMessage(err, "signature"))
	}
	return rt.Exec(caller, func(env *xenv.Environment) error {
		if err := env.UseNonce(call.nonce); err != nil {
			return err
		}
		return fn(env)
	})
}
