// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/attesta-net/attesta/attesta"
)

var signerCacheSize = 1024

// Signing computes domain-separated signing hashes and extracts signers.
//
// Every hash is bound to the ledger's own address and masked with the
// chain tag, so a signature produced for one deployment or chain can
// never be replayed against another.
type Signing struct {
	ledger   attesta.Address
	chainTag attesta.Bytes32
	cache    *lru.Cache
}

// NewSigning create a signing object.
// The 'chainTag' is to prevent cross-chain replay attack.
func NewSigning(ledger attesta.Address, chainTag attesta.Bytes32) *Signing {
	cache, _ := lru.New(signerCacheSize)
	return &Signing{
		ledger,
		chainTag,
		cache,
	}
}

// xor signing hash with chain tag
func (s *Signing) maskHash(signingHash *attesta.Bytes32) {
	for i := range signingHash {
		signingHash[i] ^= s.chainTag[i]
	}
}

// SigningHash computes the domain-separated hash of the rlp encoding of payload.
func (s *Signing) SigningHash(payload interface{}) (attesta.Bytes32, error) {
	encoded, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return attesta.Bytes32{}, errors.Wrap(err, "encode signing payload")
	}
	hash := attesta.Blake2b(encoded, s.ledger.Bytes())
	s.maskHash(&hash)
	return hash, nil
}

// Signer extract the signer address of the given signature over the
// domain-separated hash of payload.
func (s *Signing) Signer(payload interface{}, sig []byte) (attesta.Address, error) {
	hash, err := s.SigningHash(payload)
	if err != nil {
		return attesta.Address{}, err
	}

	cacheKey := attesta.Blake2b(hash.Bytes(), sig)
	if addr, ok := s.cache.Get(cacheKey); ok {
		return addr.(attesta.Address), nil
	}

	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return attesta.Address{}, errors.Wrap(err, "recover signer")
	}
	addr := attesta.Address(crypto.PubkeyToAddress(*pub))
	s.cache.Add(cacheKey, addr)
	return addr, nil
}
