// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/attesta-net/attesta/attesta"
)

// Sign calculates an ECDSA signature over the given 32-byte hash.
//
// The produced signature is in the [R || S || V] format where V is 0 or 1.
func Sign(hash attesta.Bytes32, priv *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash.Bytes(), priv)
}

// PubkeyToAddress derives the account address of the given public key.
func PubkeyToAddress(pub *ecdsa.PublicKey) attesta.Address {
	return attesta.Address(crypto.PubkeyToAddress(*pub))
}
