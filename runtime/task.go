// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/builtin/tasks"
	"github.com/attesta-net/attesta/reverts"
	"github.com/attesta-net/attesta/tx"
)

// taskProof is the signed payload authorizing a single-task proof.
type taskProof struct {
	TaskID   attesta.Bytes32
	DataHash attesta.Bytes32
	Node     attesta.Address
}

// RegisterTask creates a task with an escrowed reward. Scheduler only.
// The attached value funds the escrow and must equal the reward.
func (rt *Runtime) RegisterTask(
	env *Env,
	id attesta.Bytes32,
	timeout uint64,
	provider attesta.Address,
	nodes []attesta.Address,
	reward *big.Int,
) (*tx.Receipt, error) {
	return rt.exec("register_task", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Scheduler, env.Caller); err != nil {
			return err
		}
		maxReward, err := rt.params().maxRewardAmount()
		if err != nil {
			return err
		}
		if reward.Sign() <= 0 || reward.Cmp(maxReward) > 0 {
			return reverts.Newf(reverts.InvalidAmount, "reward %v out of (0, %v]", reward, maxReward)
		}
		if env.value().Cmp(reward) != 0 {
			return reverts.Newf(reverts.InvalidAmount, "attached value %v does not fund reward %v", env.value(), reward)
		}
		minTimeout, err := rt.params().minTaskTimeout()
		if err != nil {
			return err
		}
		if timeout < minTimeout {
			return reverts.Newf(reverts.InvalidAmount, "timeout %d below minimum %d", timeout, minTimeout)
		}
		user, err := rt.registry().Get(provider)
		if err != nil {
			return err
		}
		if user.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown provider %v", provider)
		}
		if len(nodes) == 0 {
			return reverts.New(reverts.InvalidAmount, "no nodes assigned")
		}
		for _, node := range nodes {
			hasRole, err := rt.roles().Has(roles.Node, node)
			if err != nil {
				return err
			}
			entry, err := rt.staker().Get(node)
			if err != nil {
				return err
			}
			if entry.IsEmpty() {
				return reverts.Newf(reverts.NotFound, "unknown node %v", node)
			}
			if !hasRole || !entry.Staked() {
				return reverts.Newf(reverts.StateConflict, "node %v not eligible for assignment", node)
			}
		}
		if err := rt.collect(env); err != nil {
			return err
		}
		added, err := rt.tasks().Add(id, &tasks.Task{
			Provider: provider,
			BornAt:   env.Time,
			Deadline: env.Time + timeout,
			Status:   tasks.StatusCreated,
			Nodes:    nodes,
			Reward:   reward,
		})
		if err != nil {
			return err
		}
		if !added {
			return reverts.Newf(reverts.AlreadyExists, "task id %v already used", id)
		}
		emit(tx.TaskRegistered{TaskID: id, Provider: provider, Reward: reward, Deadline: env.Time + timeout})
		return nil
	})
}

// SubmitProof records the calling node's proof for one task. The proof
// signature covers {task id, data hash, node} and must recover to a
// credentialed signer. The task status is left unchanged.
func (rt *Runtime) SubmitProof(env *Env, taskID, dataHash attesta.Bytes32, proof []byte) (*tx.Receipt, error) {
	return rt.exec("submit_proof", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Node, env.Caller); err != nil {
			return err
		}
		task, err := rt.tasks().Get(taskID)
		if err != nil {
			return err
		}
		if task.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown task %v", taskID)
		}
		if !task.Valid(env.Time) {
			return reverts.Newf(reverts.StateConflict, "task %v not open for proofs", taskID)
		}
		if !task.Assigned(env.Caller) {
			return reverts.Newf(reverts.AccessDenied, "node %v not assigned to task %v", env.Caller, taskID)
		}
		if err := rt.ensureSigner(&taskProof{TaskID: taskID, DataHash: dataHash, Node: env.Caller}, proof); err != nil {
			return err
		}
		if _, err := rt.tasks().AddProof(taskID, env.Caller, proof, env.Time); err != nil {
			return err
		}
		emit(tx.ProofSubmitted{TaskID: taskID, Node: env.Caller, Digest: dataHash})
		return nil
	})
}

// SubmitBatchProof records one attestation blob for a batch of tasks,
// keyed by its digest, and flips every referenced task to Completed
// atomically. Any invalid task fails the whole submission.
func (rt *Runtime) SubmitBatchProof(env *Env, taskIDs []attesta.Bytes32, digest attesta.Bytes32, blob []byte) (*tx.Receipt, error) {
	return rt.exec("submit_batch_proof", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Node, env.Caller); err != nil {
			return err
		}
		if len(taskIDs) == 0 {
			return reverts.New(reverts.InvalidAmount, "empty batch")
		}
		for _, id := range taskIDs {
			task, err := rt.tasks().Get(id)
			if err != nil {
				return err
			}
			if task.IsEmpty() {
				return reverts.Newf(reverts.NotFound, "unknown task %v", id)
			}
			if !task.Valid(env.Time) {
				return reverts.Newf(reverts.StateConflict, "task %v not open for proofs", id)
			}
			if !task.Assigned(env.Caller) {
				return reverts.Newf(reverts.AccessDenied, "node %v not assigned to task %v", env.Caller, id)
			}
			if _, err := rt.tasks().AddProof(id, env.Caller, blob, env.Time); err != nil {
				return err
			}
			if _, err := rt.tasks().SetStatus(id, tasks.StatusCompleted); err != nil {
				return err
			}
			emit(tx.TaskStatusUpdated{TaskID: id, Status: uint8(tasks.StatusCompleted)})
		}
		stored, err := rt.tasks().AddBatch(digest, taskIDs, blob)
		if err != nil {
			return err
		}
		if !stored {
			return reverts.Newf(reverts.AlreadyExists, "batch digest %v already used", digest)
		}
		emit(tx.ProofSubmitted{Node: env.Caller, Digest: digest})
		return nil
	})
}

// ValidateTasks accepts completed tasks and accrues their rewards,
// half to the data provider and half to the assigned node's payout
// address. Validator (signer role) only.
func (rt *Runtime) ValidateTasks(env *Env, taskIDs []attesta.Bytes32) (*tx.Receipt, error) {
	return rt.exec("validate_tasks", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Signer, env.Caller); err != nil {
			return err
		}
		for _, id := range taskIDs {
			task, err := rt.tasks().Get(id)
			if err != nil {
				return err
			}
			if task.IsEmpty() {
				return reverts.Newf(reverts.NotFound, "unknown task %v", id)
			}
			if task.Status != tasks.StatusCompleted {
				return reverts.Newf(reverts.StateConflict, "task %v not completed", id)
			}
			rewarded, err := rt.tasks().MarkRewarded(id)
			if err != nil {
				return err
			}
			if !rewarded {
				return reverts.Newf(reverts.StateConflict, "task %v already rewarded", id)
			}
			half := new(big.Int).Rsh(task.Reward, 1)
			if err := rt.accrue(id, task.Provider, half, emit); err != nil {
				return err
			}
			if err := rt.accrue(id, rt.payoutAddress(task.Nodes[0]), half, emit); err != nil {
				return err
			}
			emit(tx.TaskValidated{TaskID: id})
		}
		return nil
	})
}

// UpdateTaskStatus moves a task to a terminal status. Scheduler only.
// Completing a task requires at least one recorded proof and splits the
// reward evenly among the provider and each contributing node's payout
// address; Timeout and Failed perform no payout.
func (rt *Runtime) UpdateTaskStatus(env *Env, id attesta.Bytes32, status tasks.Status) (*tx.Receipt, error) {
	return rt.exec("update_task_status", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if err := rt.ensureRole(roles.Scheduler, env.Caller); err != nil {
			return err
		}
		if !status.Terminal() {
			return reverts.Newf(reverts.StateConflict, "status %d is not terminal", status)
		}
		task, err := rt.tasks().Get(id)
		if err != nil {
			return err
		}
		if task.IsEmpty() {
			return reverts.Newf(reverts.NotFound, "unknown task %v", id)
		}
		if task.Status != tasks.StatusCreated {
			return reverts.Newf(reverts.StateConflict, "task %v already terminal", id)
		}
		if status == tasks.StatusCompleted {
			contributors := contributingNodes(task)
			if len(contributors) == 0 {
				return reverts.Newf(reverts.StateConflict, "task %v has no recorded proof", id)
			}
			rewarded, err := rt.tasks().MarkRewarded(id)
			if err != nil {
				return err
			}
			if !rewarded {
				return reverts.Newf(reverts.StateConflict, "task %v already rewarded", id)
			}
			share := new(big.Int).Div(task.Reward, big.NewInt(int64(len(contributors)+1)))
			if err := rt.accrue(id, task.Provider, share, emit); err != nil {
				return err
			}
			for _, node := range contributors {
				if err := rt.accrue(id, rt.payoutAddress(node), share, emit); err != nil {
					return err
				}
			}
		}
		if _, err := rt.tasks().SetStatus(id, status); err != nil {
			return err
		}
		emit(tx.TaskStatusUpdated{TaskID: id, Status: uint8(status)})
		return nil
	})
}

// ClaimReward withdraws amount from an account's claimable balance to
// the caller. The caller must be the account itself or, for a node
// account, its configured payout address. The balance is debited before
// the funds move, so a reentrant call cannot double-spend.
func (rt *Runtime) ClaimReward(env *Env, account attesta.Address, amount *big.Int) (*tx.Receipt, error) {
	return rt.exec("claim_reward", func(emit func(tx.Event)) error {
		if err := rt.ensureNotPaused(); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return reverts.New(reverts.InvalidAmount, "claim amount must be positive")
		}
		if env.Caller != account {
			entry, err := rt.staker().Get(account)
			if err != nil {
				return err
			}
			if entry.IsEmpty() || entry.RewardAddr != env.Caller {
				return reverts.Newf(reverts.AccessDenied, "caller %v may not claim for %v", env.Caller, account)
			}
		}
		ok, err := builtin.Rewards.Native(rt.state).Sub(account, amount)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.Newf(reverts.InsufficientBalance, "claim %v exceeds balance", amount)
		}
		useToken, err := rt.params().rewardTokenEnabled()
		if err != nil {
			return err
		}
		if useToken {
			if rt.token == nil {
				return reverts.New(reverts.TransferFailure, "reward token not available")
			}
			sent, err := rt.token.Transfer(env.Caller, amount)
			if err != nil || !sent {
				return reverts.New(reverts.TransferFailure, "token transfer rejected")
			}
		} else {
			if err := rt.disburse(env.Caller, amount); err != nil {
				return err
			}
		}
		emit(tx.RewardClaimed{Account: account, Recipient: env.Caller, Amount: amount})
		return nil
	})
}

// accrue credits amount of a task's escrow to the account's claimable
// balance. A zero share is neither credited nor reported.
func (rt *Runtime) accrue(id attesta.Bytes32, account attesta.Address, amount *big.Int, emit func(tx.Event)) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := builtin.Rewards.Native(rt.state).Add(account, amount); err != nil {
		return err
	}
	emit(tx.RewardAllocated{TaskID: id, Account: account, Amount: amount})
	return nil
}

// payoutAddress resolves a node's configured reward address, falling
// back to the node address when the record is gone.
func (rt *Runtime) payoutAddress(node attesta.Address) attesta.Address {
	entry, err := rt.staker().Get(node)
	if err != nil || entry.IsEmpty() || entry.RewardAddr.IsZero() {
		return node
	}
	return entry.RewardAddr
}

// contributingNodes returns the distinct nodes with a recorded proof,
// in first-submission order.
func contributingNodes(task *tasks.Task) []attesta.Address {
	seen := make(map[attesta.Address]bool)
	var nodes []attesta.Address
	for _, p := range task.Proofs {
		if !seen[p.Node] {
			seen[p.Node] = true
			nodes = append(nodes, p.Node)
		}
	}
	return nodes
}
