// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/cry"
)

func TestSignerRecovery(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	signerAddr := cry.PubkeyToAddress(&priv.PublicKey)

	ledger := attesta.BytesToAddress([]byte("ledger"))
	chainTag := attesta.Blake2b([]byte("chain-1"))
	signing := cry.NewSigning(ledger, chainTag)

	payload := []interface{}{[]byte("hello"), uint64(7)}
	hash, err := signing.SigningHash(payload)
	assert.Nil(t, err)

	sig, err := cry.Sign(hash, priv)
	assert.Nil(t, err)

	recovered, err := signing.Signer(payload, sig)
	assert.Nil(t, err)
	assert.Equal(t, signerAddr, recovered)

	// cached path returns the same result
	recovered, err = signing.Signer(payload, sig)
	assert.Nil(t, err)
	assert.Equal(t, signerAddr, recovered)
}

func TestDomainSeparation(t *testing.T) {
	ledger := attesta.BytesToAddress([]byte("ledger"))

	s1 := cry.NewSigning(ledger, attesta.Blake2b([]byte("chain-1")))
	s2 := cry.NewSigning(ledger, attesta.Blake2b([]byte("chain-2")))
	s3 := cry.NewSigning(attesta.BytesToAddress([]byte("other")), attesta.Blake2b([]byte("chain-1")))

	payload := []interface{}{[]byte("hello")}
	h1, _ := s1.SigningHash(payload)
	h2, _ := s2.SigningHash(payload)
	h3, _ := s3.SigningHash(payload)

	assert.NotEqual(t, h1, h2, "different chains must produce different hashes")
	assert.NotEqual(t, h1, h3, "different ledger addresses must produce different hashes")
}
