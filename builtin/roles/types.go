// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roles

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

var (
	_ state.StorageEncoder = (*membership)(nil)
	_ state.StorageDecoder = (*membership)(nil)
	_ state.StorageEncoder = (*rolePtr)(nil)
	_ state.StorageDecoder = (*rolePtr)(nil)
)

type membership struct {
	Member bool
}

func (m *membership) Encode() ([]byte, error) {
	if !m.Member {
		return nil, nil
	}
	return rlp.EncodeToBytes(m)
}

func (m *membership) Decode(data []byte) error {
	if len(data) == 0 {
		*m = membership{}
		return nil
	}
	return rlp.DecodeBytes(data, m)
}

type rolePtr struct {
	Role attesta.Bytes32
}

func (rp *rolePtr) Encode() ([]byte, error) {
	if rp.Role.IsZero() {
		return nil, nil
	}
	return rlp.EncodeToBytes(rp)
}

func (rp *rolePtr) Decode(data []byte) error {
	if len(data) == 0 {
		*rp = rolePtr{}
		return nil
	}
	return rlp.DecodeBytes(data, rp)
}
