// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the user (data provider) registry.
package registry

import (
	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Registry binder of the user registry.
type Registry struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Registry {
	return &Registry{addr, state}
}

func userKey(user attesta.Address) attesta.Bytes32 {
	return attesta.Blake2b([]byte("u"), user.Bytes())
}

// Get returns the user entry. Check IsEmpty for existence.
func (r *Registry) Get(user attesta.Address) (*User, error) {
	var entry User
	if err := r.state.GetStorage(r.addr, userKey(user), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Add registers a new user. Returns false if the address is already registered.
// The address is immutable once set; there is no merge or update path.
func (r *Registry) Add(user attesta.Address, pubKey []byte, now uint64) (bool, error) {
	entry, err := r.Get(user)
	if err != nil {
		return false, err
	}
	if !entry.IsEmpty() {
		return false, nil
	}
	entry.PubKey = pubKey
	entry.BornAt = now
	entry.Status = StatusRegistered
	if err := r.state.SetStorage(r.addr, userKey(user), entry); err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus advances the user status. Transitions are monotonic:
// Registered → Verified → Active, never backwards.
// Returns false when the user is unknown or the transition goes backwards.
func (r *Registry) SetStatus(user attesta.Address, status Status) (bool, error) {
	entry, err := r.Get(user)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || status <= entry.Status {
		return false, nil
	}
	entry.Status = status
	if err := r.state.SetStorage(r.addr, userKey(user), entry); err != nil {
		return false, err
	}
	return true, nil
}
