// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"crypto/ecdsa"

	"github.com/vechain/stakemint/cache"
	"github.com/vechain/stakemint/thor"
)

var signerCacheSize = 1024

// Signable interface of signable object.
type Signable interface {
	SigningHash() thor.Bytes32
	Signature() []byte
}

// Signing to sign a signable object or extract signer.
type Signing struct {
	domain thor.Bytes32
	cache  *cache.LRU
}

// NewSigning create a signing object.
// The domain keeps signatures made for one deployment from being accepted by another.
func NewSigning(domain thor.Bytes32) *Signing {
	c, _ := cache.NewLRU(signerCacheSize)
	return &Signing{
		domain,
		c,
	}
}

// Domain returns the domain signatures are bound to.
func (s *Signing) Domain() thor.Bytes32 {
	return s.domain
}

// xor signing hash with domain
func (s *Signing) maskHash(signingHash *thor.Bytes32) {
	for i := range signingHash {
		signingHash[i] ^= s.domain[i]
	}
}

// Sign sign the target with given private key.
func (s *Signing) Sign(target Signable, key *ecdsa.PrivateKey) ([]byte, error) {
	signingHash := target.SigningHash()
	s.maskHash(&signingHash)
	return Sign(signingHash, key)
}

// Signer extract signer from signed target.
func (s *Signing) Signer(target Signable) (thor.Address, error) {
	signingHash := target.SigningHash()
	sig := target.Signature()
	key := thor.Blake2b(signingHash[:], sig)
	if addr, ok := s.cache.Get(key); ok {
		return addr.(thor.Address), nil
	}

	s.maskHash(&signingHash)
	addr, err := SigToAddress(signingHash, sig)
	if err != nil {
		return thor.Address{}, err
	}
	s.cache.Add(key, addr)
	return addr, nil
}
