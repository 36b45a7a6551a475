// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/registry"
	"github.com/attesta-net/attesta/builtin/staker"
	"github.com/attesta-net/attesta/builtin/tasks"
)

// Read-only queries. None of them mutates state.

// Node returns the node record, or an empty record if unknown.
func (rt *Runtime) Node(node attesta.Address) (*staker.Node, error) {
	return rt.staker().Get(node)
}

// PendingUnlock returns the unlock time of a node's pending unstake
// request, or zero when none is pending.
func (rt *Runtime) PendingUnlock(node attesta.Address) (uint64, error) {
	return rt.staker().PendingUnlock(node)
}

// User returns the user record, or an empty record if unknown.
func (rt *Runtime) User(user attesta.Address) (*registry.User, error) {
	return rt.registry().Get(user)
}

// Task returns the task record, or an empty record if unknown.
func (rt *Runtime) Task(id attesta.Bytes32) (*tasks.Task, error) {
	return rt.tasks().Get(id)
}

// Batch returns the attestation batch stored under digest.
func (rt *Runtime) Batch(digest attesta.Bytes32) (*tasks.Batch, error) {
	return rt.tasks().GetBatch(digest)
}

// RewardBalance returns an account's claimable reward balance.
func (rt *Runtime) RewardBalance(account attesta.Address) (*big.Int, error) {
	return builtin.Rewards.Native(rt.state).Get(account)
}

// RewardTotals returns the cumulative allocated and claimed amounts.
func (rt *Runtime) RewardTotals() (allocated, claimed *big.Int, err error) {
	rewards := builtin.Rewards.Native(rt.state)
	if allocated, err = rewards.TotalAllocated(); err != nil {
		return nil, nil, err
	}
	if claimed, err = rewards.TotalClaimed(); err != nil {
		return nil, nil, err
	}
	return allocated, claimed, nil
}

// HasRole returns whether the account holds the role.
func (rt *Runtime) HasRole(role attesta.Bytes32, account attesta.Address) (bool, error) {
	return rt.roles().Has(role, account)
}

// StakeAmount returns the configured minimum node collateral.
func (rt *Runtime) StakeAmount() (*big.Int, error) {
	return rt.params().stakeAmount()
}

// UnstakeDelay returns the configured unstake delay in seconds.
func (rt *Runtime) UnstakeDelay() (uint64, error) {
	return rt.params().unstakeDelay()
}

// MinTaskTimeout returns the configured minimum task timeout in seconds.
func (rt *Runtime) MinTaskTimeout() (uint64, error) {
	return rt.params().minTaskTimeout()
}

// MaxRewardAmount returns the configured per-task reward cap.
func (rt *Runtime) MaxRewardAmount() (*big.Int, error) {
	return rt.params().maxRewardAmount()
}

// RewardToken returns the configured reward token address.
func (rt *Runtime) RewardToken() (attesta.Address, error) {
	return rt.params().rewardToken()
}

// RewardTokenEnabled returns whether token payout mode is enabled.
func (rt *Runtime) RewardTokenEnabled() (bool, error) {
	return rt.params().rewardTokenEnabled()
}

// Paused returns whether the emergency switch is on.
func (rt *Runtime) Paused() (bool, error) {
	return rt.params().paused()
}
