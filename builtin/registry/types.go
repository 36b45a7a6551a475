// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/attesta-net/attesta/state"
)

// Status of a registered user.
type Status uint8

const (
	// StatusRegistered initial status right after registration.
	StatusRegistered Status = iota + 1
	// StatusVerified credentials checked by an admin.
	StatusVerified
	// StatusActive eligible as a task data provider.
	StatusActive
)

var (
	_ state.StorageEncoder = (*User)(nil)
	_ state.StorageDecoder = (*User)(nil)
)

// User contains all data of a registered user.
// A registration time of zero means unregistered.
type User struct {
	PubKey []byte
	BornAt uint64
	Status Status
}

// Encode implements state.StorageEncoder.
func (u *User) Encode() ([]byte, error) {
	if u.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(u)
}

// Decode implements state.StorageDecoder.
func (u *User) Decode(data []byte) error {
	if len(data) == 0 {
		*u = User{}
		return nil
	}
	return rlp.DecodeBytes(data, u)
}

// IsEmpty returns whether the entry can be treated as empty.
func (u *User) IsEmpty() bool {
	return u.BornAt == 0
}
