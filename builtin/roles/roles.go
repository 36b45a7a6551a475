// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package roles implements the capability hierarchy of the ledger.
//
// Role membership is a set per role id. Each role has an admin role whose
// members control grant/revoke. The admin-of relation forms a DAG rooted
// at the owner role; a role is never its own admin.
package roles

import (
	"github.com/pkg/errors"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Well-known role ids.
var (
	Owner     = attesta.Blake2b([]byte("role-owner"))
	Admin     = attesta.Blake2b([]byte("role-admin"))
	Scheduler = attesta.Blake2b([]byte("role-scheduler"))
	Node      = attesta.Blake2b([]byte("role-node"))
	Signer    = attesta.Blake2b([]byte("role-signer"))
)

// Roles binder of the role graph.
type Roles struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Roles {
	return &Roles{addr, state}
}

func memberKey(role attesta.Bytes32, account attesta.Address) attesta.Bytes32 {
	return attesta.Blake2b([]byte("m"), role.Bytes(), account.Bytes())
}

func adminKey(role attesta.Bytes32) attesta.Bytes32 {
	return attesta.Blake2b([]byte("a"), role.Bytes())
}

// Has returns whether the account is a member of the role.
func (r *Roles) Has(role attesta.Bytes32, account attesta.Address) (bool, error) {
	var m membership
	if err := r.state.GetStorage(r.addr, memberKey(role, account), &m); err != nil {
		return false, err
	}
	return m.Member, nil
}

// Grant adds the account to the role. Returns false if already a member.
func (r *Roles) Grant(role attesta.Bytes32, account attesta.Address) (bool, error) {
	has, err := r.Has(role, account)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}
	if err := r.state.SetStorage(r.addr, memberKey(role, account), &membership{Member: true}); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes the account from the role. Returns false if not a member.
func (r *Roles) Revoke(role attesta.Bytes32, account attesta.Address) (bool, error) {
	has, err := r.Has(role, account)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	if err := r.state.SetStorage(r.addr, memberKey(role, account), &membership{}); err != nil {
		return false, err
	}
	return true, nil
}

// AdminOf returns the admin role controlling grant/revoke of the role.
func (r *Roles) AdminOf(role attesta.Bytes32) (attesta.Bytes32, error) {
	var rp rolePtr
	if err := r.state.GetStorage(r.addr, adminKey(role), &rp); err != nil {
		return attesta.Bytes32{}, err
	}
	return rp.Role, nil
}

// SetAdmin wires the admin-of edge of a role.
// A role must never be its own admin.
func (r *Roles) SetAdmin(role, adminRole attesta.Bytes32) error {
	if role == adminRole {
		return errors.New("role must not administer itself")
	}
	return r.state.SetStorage(r.addr, adminKey(role), &rolePtr{Role: adminRole})
}
