// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/reverts"
	"github.com/attesta-net/attesta/tx"
)

func (rt *Runtime) setParam(env *Env, name string, key attesta.Bytes32, value *big.Int, validate func() error) (*tx.Receipt, error) {
	return rt.exec(name, func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		if validate != nil {
			if err := validate(); err != nil {
				return err
			}
		}
		if err := rt.params().Set(key, value); err != nil {
			return err
		}
		emit(tx.ParamUpdated{Key: key, Value: value})
		return nil
	})
}

// SetStakeAmount updates the minimum node collateral. Admin only.
func (rt *Runtime) SetStakeAmount(env *Env, amount *big.Int) (*tx.Receipt, error) {
	return rt.setParam(env, "set_stake_amount", attesta.KeyStakeAmount, amount, func() error {
		if amount.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "stake amount must be positive")
		}
		return nil
	})
}

// SetUnstakeDelay updates the unstake delay in seconds. Admin only.
func (rt *Runtime) SetUnstakeDelay(env *Env, delay uint64) (*tx.Receipt, error) {
	return rt.setParam(env, "set_unstake_delay", attesta.KeyUnstakeDelay, new(big.Int).SetUint64(delay), func() error {
		if delay < attesta.MinUnstakeDelay {
			return reverts.Newf(reverts.InvalidAmount, "delay %d below floor %d", delay, attesta.MinUnstakeDelay)
		}
		return nil
	})
}

// SetTaskTimeout updates the minimum task timeout in seconds. Admin only.
func (rt *Runtime) SetTaskTimeout(env *Env, timeout uint64) (*tx.Receipt, error) {
	return rt.setParam(env, "set_task_timeout", attesta.KeyMinTaskTimeout, new(big.Int).SetUint64(timeout), func() error {
		if timeout < attesta.MinTaskTimeoutFloor {
			return reverts.Newf(reverts.InvalidAmount, "timeout %d below floor %d", timeout, attesta.MinTaskTimeoutFloor)
		}
		return nil
	})
}

// SetMaxRewardAmount updates the per-task reward cap. Admin only.
func (rt *Runtime) SetMaxRewardAmount(env *Env, amount *big.Int) (*tx.Receipt, error) {
	return rt.setParam(env, "set_max_reward_amount", attesta.KeyMaxRewardAmount, amount, func() error {
		if amount.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "max reward must be positive")
		}
		return nil
	})
}

// SetRewardToken records the address of the fungible token used for
// reward payouts. Admin only. The record is informational; the transfer
// collaborator itself is bound at daemon wiring via SetToken.
func (rt *Runtime) SetRewardToken(env *Env, token attesta.Address) (*tx.Receipt, error) {
	return rt.setParam(env, "set_reward_token", attesta.KeyRewardToken, new(big.Int).SetBytes(token.Bytes()), nil)
}

// SetRewardTokenStatus toggles reward payout between native funds and
// the configured token. Admin only.
func (rt *Runtime) SetRewardTokenStatus(env *Env, enabled bool) (*tx.Receipt, error) {
	v := big.NewInt(0)
	if enabled {
		v = big.NewInt(1)
	}
	return rt.setParam(env, "set_reward_token_status", attesta.KeyRewardTokenEnabled, v, nil)
}

// Pause flips the emergency switch, blocking every mutating entry point
// except Unpause. Admin only.
func (rt *Runtime) Pause(env *Env) (*tx.Receipt, error) {
	return rt.exec("pause", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		if err := rt.params().Set(attesta.KeyPaused, big.NewInt(1)); err != nil {
			return err
		}
		emit(tx.ParamUpdated{Key: attesta.KeyPaused, Value: big.NewInt(1)})
		return nil
	})
}

// Unpause lifts the emergency switch. Admin only; the only entry point
// allowed while paused.
func (rt *Runtime) Unpause(env *Env) (*tx.Receipt, error) {
	return rt.exec("unpause", func(emit func(tx.Event)) error {
		if err := rt.ensureRole(roles.Admin, env.Caller); err != nil {
			return err
		}
		paused, err := rt.params().paused()
		if err != nil {
			return err
		}
		if !paused {
			return reverts.New(reverts.StateConflict, "not paused")
		}
		if err := rt.params().Set(attesta.KeyPaused, big.NewInt(0)); err != nil {
			return err
		}
		emit(tx.ParamUpdated{Key: attesta.KeyPaused, Value: big.NewInt(0)})
		return nil
	})
}

// GrantRole adds an account to a role. The caller must hold the role's
// configured admin role.
func (rt *Runtime) GrantRole(env *Env, role attesta.Bytes32, account attesta.Address) (*tx.Receipt, error) {
	return rt.exec("grant_role", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRoleAdmin(role, env.Caller); err != nil {
			return err
		}
		granted, err := rt.roles().Grant(role, account)
		if err != nil {
			return err
		}
		if !granted {
			return reverts.Newf(reverts.AlreadyExists, "%v already holds the role", account)
		}
		emit(tx.RoleGranted{Role: role, Account: account})
		return nil
	})
}

// RevokeRole removes an account from a role. The caller must hold the
// role's configured admin role.
func (rt *Runtime) RevokeRole(env *Env, role attesta.Bytes32, account attesta.Address) (*tx.Receipt, error) {
	return rt.exec("revoke_role", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRoleAdmin(role, env.Caller); err != nil {
			return err
		}
		revoked, err := rt.roles().Revoke(role, account)
		if err != nil {
			return err
		}
		if !revoked {
			return reverts.Newf(reverts.NotFound, "%v does not hold the role", account)
		}
		emit(tx.RoleRevoked{Role: role, Account: account})
		return nil
	})
}

// ensureRoleAdmin checks that the account holds the admin role of role.
func (rt *Runtime) ensureRoleAdmin(role attesta.Bytes32, account attesta.Address) error {
	adminRole, err := rt.roles().AdminOf(role)
	if err != nil {
		return err
	}
	if adminRole.IsZero() {
		adminRole = roles.Owner
	}
	return rt.ensureRole(adminRole, account)
}

// TransferOwnership moves the owner role to a new account. Owner only.
func (rt *Runtime) TransferOwnership(env *Env, newOwner attesta.Address) (*tx.Receipt, error) {
	return rt.exec("transfer_ownership", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Owner, env.Caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return reverts.New(reverts.InvalidAmount, "new owner is the zero address")
		}
		if _, err := rt.roles().Revoke(roles.Owner, env.Caller); err != nil {
			return err
		}
		if _, err := rt.roles().Grant(roles.Owner, newOwner); err != nil {
			return err
		}
		emit(tx.OwnershipTransferred{Previous: env.Caller, New: newOwner})
		return nil
	})
}

// WithdrawToken drains token funds held by the ledger. Owner only.
func (rt *Runtime) WithdrawToken(env *Env, token, recipient attesta.Address, amount *big.Int) (*tx.Receipt, error) {
	return rt.exec("withdraw_token", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Owner, env.Caller); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "withdraw amount must be positive")
		}
		if rt.token == nil {
			return reverts.New(reverts.TransferFailure, "token not available")
		}
		sent, err := rt.token.Transfer(recipient, amount)
		if err != nil || !sent {
			return reverts.New(reverts.TransferFailure, "token transfer rejected")
		}
		emit(tx.TokenWithdrawn{Token: token, Recipient: recipient, Amount: amount})
		return nil
	})
}

// AuthorizeUpgrade records the owner's authorization of a new logic
// implementation. The upgrade itself is performed by an external loader.
func (rt *Runtime) AuthorizeUpgrade(env *Env, implementation attesta.Address) (*tx.Receipt, error) {
	return rt.exec("authorize_upgrade", func(emit func(tx.Event)) error {
		if err := rt.ensureRole(roles.Owner, env.Caller); err != nil {
			return err
		}
		emit(tx.UpgradeAuthorized{Implementation: implementation})
		return nil
	})
}
