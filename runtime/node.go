// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin/registry"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/builtin/staker"
	"github.com/attesta-net/attesta/reverts"
	"github.com/attesta-net/attesta/tx"
)

// NodeParams declared identity fields of a registering node. They are
// covered by the attestation signature together with the node address.
type NodeParams struct {
	RewardAddr     attesta.Address
	PubKey         []byte
	Endpoint       string
	AttestationRef attesta.Bytes32
	TEEType        uint8
}

// nodeAttestation is the signed payload authorizing node registration.
type nodeAttestation struct {
	Node           attesta.Address
	RewardAddr     attesta.Address
	PubKey         []byte
	Endpoint       string
	AttestationRef attesta.Bytes32
	TEEType        uint8
}

// userCredential is the signed payload authorizing user registration.
type userCredential struct {
	User   attesta.Address
	PubKey []byte
}

// RegisterNode registers the caller as a TEE node, depositing the
// attached value as stake. The attestation must be signed by a
// credentialed signer over the node's declared identity fields.
func (rt *Runtime) RegisterNode(env *Env, p *NodeParams, attestation []byte) (*tx.Receipt, error) {
	return rt.exec("register_node", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureSigner(&nodeAttestation{
			Node:           env.Caller,
			RewardAddr:     p.RewardAddr,
			PubKey:         p.PubKey,
			Endpoint:       p.Endpoint,
			AttestationRef: p.AttestationRef,
			TEEType:        p.TEEType,
		}, attestation); err != nil {
			return err
		}
		threshold, err := rt.params().stakeAmount()
		if err != nil {
			return err
		}
		if env.value().Cmp(threshold) < 0 {
			return reverts.Newf(reverts.InvalidAmount, "stake %v below threshold %v", env.value(), threshold)
		}
		if err := rt.collect(env); err != nil {
			return err
		}
		added, err := rt.staker().Add(env.Caller, &staker.Node{
			RewardAddr:     p.RewardAddr,
			PubKey:         p.PubKey,
			Endpoint:       p.Endpoint,
			BornAt:         env.Time,
			AttestationRef: p.AttestationRef,
			Status:         staker.StatusRegisteredAndStaked,
			TEEType:        p.TEEType,
			Stake:          env.value(),
		})
		if err != nil {
			return err
		}
		if !added {
			return reverts.Newf(reverts.AlreadyExists, "node %v already registered", env.Caller)
		}
		if _, err := rt.roles().Grant(roles.Node, env.Caller); err != nil {
			return err
		}
		emit(tx.NodeRegistered{Node: env.Caller, RewardAddr: p.RewardAddr, Stake: env.value()})
		return nil
	})
}

// RegisterUser registers the caller as a data provider. The credential
// must be signed by a credentialed signer over the user's declared fields.
func (rt *Runtime) RegisterUser(env *Env, pubKey []byte, credential []byte) (*tx.Receipt, error) {
	return rt.exec("register_user", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureSigner(&userCredential{User: env.Caller, PubKey: pubKey}, credential); err != nil {
			return err
		}
		added, err := rt.registry().Add(env.Caller, pubKey, env.Time)
		if err != nil {
			return err
		}
		if !added {
			return reverts.Newf(reverts.AlreadyExists, "user %v already registered", env.Caller)
		}
		emit(tx.UserRegistered{User: env.Caller})
		return nil
	})
}

// SetUserStatus advances a user in the registry status machine.
// Admin only; transitions are monotonic.
func (rt *Runtime) SetUserStatus(env *Env, user attesta.Address, status registry.Status) (*tx.Receipt, error) {
	return rt.exec("set_user_status", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		entry, err := rt.registry().Get(user)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown user %v", user)
		}
		ok, err := rt.registry().SetStatus(user, status)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.StateConflict, "status %d does not advance %d", status, entry.Status)
		}
		emit(tx.UserStatusUpdated{User: user, Status: uint8(status)})
		return nil
	})
}

// UnstakeRequest starts the unstake delay for the calling node and
// suspends it. A second request while one is pending resets the timer.
func (rt *Runtime) UnstakeRequest(env *Env) (*tx.Receipt, error) {
	return rt.exec("unstake_request", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		entry, err := rt.staker().Get(env.Caller)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown node %v", env.Caller)
		}
		pending, err := rt.staker().PendingUnlock(env.Caller)
		if err != nil {
			return err
		}
		if entry.Stake.Sign() == 0 && pending == 0 {
			return reverts.Newf(reverts.StateConflict, "node %v holds no stake", env.Caller)
		}
		delay, err := rt.params().unstakeDelay()
		if err != nil {
			return err
		}
		unlock := env.Time + delay
		if _, err := rt.staker().RequestUnstake(env.Caller, unlock); err != nil {
			return err
		}
		emit(tx.UnstakeRequested{Node: env.Caller, UnlockTime: unlock})
		return nil
	})
}

// CancelUnstake clears the caller's pending unstake request, restoring
// its status by stake against the current threshold.
func (rt *Runtime) CancelUnstake(env *Env) (*tx.Receipt, error) {
	return rt.exec("cancel_unstake", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		entry, err := rt.staker().Get(env.Caller)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown node %v", env.Caller)
		}
		threshold, err := rt.params().stakeAmount()
		if err != nil {
			return err
		}
		ok, err := rt.staker().CancelUnstake(env.Caller, threshold)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.StateConflict, "node %v has no pending unstake", env.Caller)
		}
		emit(tx.UnstakeCancelled{Node: env.Caller})
		return nil
	})
}

// Unstake withdraws the caller's full stake once the unlock time has
// elapsed, deleting the node record. The stake debit is finalized before
// the payout runs, so a reentrant call sees the node already removed.
func (rt *Runtime) Unstake(env *Env) (*tx.Receipt, error) {
	return rt.exec("unstake", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		entry, err := rt.staker().Get(env.Caller)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown node %v", env.Caller)
		}
		stake, ok, err := rt.staker().Unstake(env.Caller, env.Time)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.StateConflict, "unstake delay not elapsed for %v", env.Caller)
		}
		if _, err := rt.roles().Revoke(roles.Node, env.Caller); err != nil {
			return err
		}
		if err := rt.disburse(env.Caller, stake); err != nil {
			return err
		}
		emit(tx.UnstakeCompleted{Node: env.Caller, Stake: stake})
		return nil
	})
}

// Slash reduces a node's stake by amount. Admin only. Slashed funds are
// retained by the ledger.
func (rt *Runtime) Slash(env *Env, node attesta.Address, amount *big.Int) (*tx.Receipt, error) {
	return rt.exec("slash", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		entry, err := rt.staker().Get(node)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown node %v", node)
		}
		ok, err := rt.staker().Slash(node, amount)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.InvalidAmount, "slash amount %v out of range", amount)
		}
		emit(tx.Slashed{Node: node, Amount: amount})
		return nil
	})
}

// RevokeNodeRole strips a node of its role and deletes its record
// entirely. Admin only. The forfeited stake is retained by the ledger.
func (rt *Runtime) RevokeNodeRole(env *Env, node attesta.Address) (*tx.Receipt, error) {
	return rt.exec("revoke_node_role", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		removed, err := rt.staker().Remove(node)
		if err != nil {
			return err
		}
		if !removed {
			return reverts.Newf(reverts.NotFound, "unknown node %v", node)
		}
		if _, err := rt.roles().Revoke(roles.Node, node); err != nil {
			return err
		}
		emit(tx.RoleRevoked{Role: roles.Node, Account: node})
		return nil
	})
}
