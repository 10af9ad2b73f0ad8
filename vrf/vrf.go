// Copyright (c) 2022 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vrf wraps the secp256k1 ECVRF used by the randomness oracle.
package vrf

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vechain/go-ecvrf"

	"github.com/vechain/stakemint/thor"
)

// constants
const (
	ProofLen     = 81
	PublicKeyLen = 33
	BetaLen      = 32
)

var errInvalidProofLen = errors.New("invalid VRF proof length, 81 bytes needed")

// GenerateKey creates a new secp256k1 proving key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	sk, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(sk.Serialize())
}

// Prove computes the VRF output (beta) and proof of alpha.
func Prove(sk *ecdsa.PrivateKey, alpha []byte) (beta, proof []byte, err error) {
	return ecvrf.NewSecp256k1Sha256Tai().Prove(sk, alpha)
}

// Verify checks the proof against the public key and returns beta.
func Verify(pub *ecdsa.PublicKey, alpha, proof []byte) ([]byte, error) {
	if len(proof) != ProofLen {
		return nil, errInvalidProofLen
	}
	return ecvrf.NewSecp256k1Sha256Tai().Verify(pub, alpha, proof)
}

// VerifyCompressed is Verify with a 33-byte compressed public key.
func VerifyCompressed(pub, alpha, proof []byte) ([]byte, error) {
	pubkey, err := crypto.DecompressPubkey(pub)
	if err != nil {
		return nil, err
	}
	return Verify(pubkey, alpha, proof)
}

// Signer returns the address of a compressed public key.
func Signer(pub []byte) (thor.Address, error) {
	pubkey, err := crypto.DecompressPubkey(pub)
	if err != nil {
		return thor.Address{}, err
	}
	return thor.Address(crypto.PubkeyToAddress(*pubkey)), nil
}

// Words expands beta into n uniform 256-bit words.
func Words(beta []byte, n uint64) []*big.Int {
	words := make([]*big.Int, 0, n)
	var idx [8]byte
	for i := range n {
		binary.BigEndian.PutUint64(idx[:], i)
		h := thor.Keccak256(beta, idx[:])
		words = append(words, new(big.Int).SetBytes(h[:]))
	}
	return words
}
