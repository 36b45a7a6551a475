// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
)

// Event a durable record emitted by a successfully committed operation.
type Event interface {
	EventName() string
}

// Events slice of event records.
type Events []Event

// NodeRegistered a compute node joined with stake deposited.
type NodeRegistered struct {
	Node       attesta.Address
	RewardAddr attesta.Address
	Stake      *big.Int
}

// UserRegistered a data provider registered.
type UserRegistered struct {
	User attesta.Address
}

// UnstakeRequested a node started the unstake delay.
type UnstakeRequested struct {
	Node       attesta.Address
	UnlockTime uint64
}

// UnstakeCancelled a node cancelled its pending unstake request.
type UnstakeCancelled struct {
	Node attesta.Address
}

// UnstakeCompleted a node withdrew its stake and was removed.
type UnstakeCompleted struct {
	Node  attesta.Address
	Stake *big.Int
}

// Slashed a node's stake was reduced by the admin.
type Slashed struct {
	Node   attesta.Address
	Amount *big.Int
}

// TaskRegistered a task was created with an escrowed reward.
type TaskRegistered struct {
	TaskID   attesta.Bytes32
	Provider attesta.Address
	Reward   *big.Int
	Deadline uint64
}

// ProofSubmitted a node recorded a proof for one task or a batch digest.
type ProofSubmitted struct {
	TaskID attesta.Bytes32
	Node   attesta.Address
	Digest attesta.Bytes32
}

// TaskValidated a validator accepted a completed task.
type TaskValidated struct {
	TaskID attesta.Bytes32
}

// TaskStatusUpdated a task moved to a terminal status.
type TaskStatusUpdated struct {
	TaskID attesta.Bytes32
	Status uint8
}

// RewardAllocated escrowed funds were credited to a participant's balance.
type RewardAllocated struct {
	TaskID  attesta.Bytes32
	Account attesta.Address
	Amount  *big.Int
}

// RewardClaimed a participant withdrew from its reward balance.
type RewardClaimed struct {
	Account   attesta.Address
	Recipient attesta.Address
	Amount    *big.Int
}

// UserStatusUpdated a user advanced in the registry status machine.
type UserStatusUpdated struct {
	User   attesta.Address
	Status uint8
}

// RoleGranted role membership added.
type RoleGranted struct {
	Role    attesta.Bytes32
	Account attesta.Address
}

// RoleRevoked role membership removed.
type RoleRevoked struct {
	Role    attesta.Bytes32
	Account attesta.Address
}

// ParamUpdated a governance parameter changed.
type ParamUpdated struct {
	Key   attesta.Bytes32
	Value *big.Int
}

// OwnershipTransferred the owner role moved to a new account.
type OwnershipTransferred struct {
	Previous attesta.Address
	New      attesta.Address
}

// UpgradeAuthorized the owner authorized a new logic implementation.
type UpgradeAuthorized struct {
	Implementation attesta.Address
}

// TokenWithdrawn the owner drained token funds held by the ledger.
type TokenWithdrawn struct {
	Token     attesta.Address
	Recipient attesta.Address
	Amount    *big.Int
}

func (NodeRegistered) EventName() string       { return "NodeRegistered" }
func (UserRegistered) EventName() string       { return "UserRegistered" }
func (UnstakeRequested) EventName() string     { return "UnstakeRequested" }
func (UnstakeCancelled) EventName() string     { return "UnstakeCancelled" }
func (UnstakeCompleted) EventName() string     { return "UnstakeCompleted" }
func (Slashed) EventName() string              { return "Slashed" }
func (TaskRegistered) EventName() string       { return "TaskRegistered" }
func (ProofSubmitted) EventName() string       { return "ProofSubmitted" }
func (TaskValidated) EventName() string        { return "TaskValidated" }
func (TaskStatusUpdated) EventName() string    { return "TaskStatusUpdated" }
func (RewardAllocated) EventName() string      { return "RewardAllocated" }
func (RewardClaimed) EventName() string        { return "RewardClaimed" }
func (UserStatusUpdated) EventName() string    { return "UserStatusUpdated" }
func (RoleGranted) EventName() string          { return "RoleGranted" }
func (RoleRevoked) EventName() string          { return "RoleRevoked" }
func (ParamUpdated) EventName() string         { return "ParamUpdated" }
func (OwnershipTransferred) EventName() string { return "OwnershipTransferred" }
func (UpgradeAuthorized) EventName() string    { return "UpgradeAuthorized" }
func (TokenWithdrawn) EventName() string       { return "TokenWithdrawn" }
