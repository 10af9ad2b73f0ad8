// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry signs calls and recovers their signers.
package cry

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/thor"
)

// SignatureLen is the length of a [R || S || V] signature.
const SignatureLen = crypto.SignatureLength

var ErrInvalidSignature = errors.New("invalid signature")

// ValidateSignature checks the length and the values of sig. The upper range
// of s is rejected, so a signature can not be altered into a second valid one.
func ValidateSignature(sig []byte) error {
	if len(sig) != SignatureLen {
		return errors.Wrapf(ErrInvalidSignature, "want %d bytes, got %d", SignatureLen, len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign signs hash with key. The signature is in the [R || S || V] format
// where V is 0 or 1.
func Sign(hash thor.Bytes32, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash[:], key)
}

// SigToAddress recovers the address of the key that made sig over hash.
func SigToAddress(hash thor.Bytes32, sig []byte) (thor.Address, error) {
	if err := ValidateSignature(sig); err != nil {
		return thor.Address{}, err
	}
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return thor.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return thor.Address(crypto.PubkeyToAddress(*pub)), nil
}
