// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tasks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Status of a task. One-way state machine:
//
//	Created → Completed | Timeout | Failed
//
// Created becomes implicitly invalid once the deadline passes.
type Status uint8

const (
	// StatusCreated open for proof submission until the deadline.
	StatusCreated Status = iota + 1
	// StatusCompleted proven and accepted.
	StatusCompleted
	// StatusTimeout closed without a proof in time.
	StatusTimeout
	// StatusFailed closed by the scheduler as failed.
	StatusFailed
)

// Terminal returns whether the status ends the task lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusTimeout || s == StatusFailed
}

var (
	_ state.StorageEncoder = (*Task)(nil)
	_ state.StorageDecoder = (*Task)(nil)
	_ state.StorageEncoder = (*Batch)(nil)
	_ state.StorageDecoder = (*Batch)(nil)
)

// Proof a contributing node's proof material for a task.
type Proof struct {
	Node attesta.Address
	Blob []byte
}

// Task contains all data of a unit of verifiable work.
// A creation time of zero means unknown.
type Task struct {
	Provider attesta.Address
	BornAt   uint64
	Deadline uint64
	Status   Status
	Nodes    []attesta.Address
	Reward   *big.Int
	Proofs   []Proof
	Rewarded bool
}

// Encode implements state.StorageEncoder.
func (t *Task) Encode() ([]byte, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(t)
}

// Decode implements state.StorageDecoder.
func (t *Task) Decode(data []byte) error {
	if len(data) == 0 {
		*t = Task{Reward: &big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(data, t)
}

// IsEmpty returns whether the entry can be treated as empty.
func (t *Task) IsEmpty() bool {
	return t.BornAt == 0
}

// Valid returns whether the task accepts proof submissions:
// still Created and before its deadline.
func (t *Task) Valid(now uint64) bool {
	return t.Status == StatusCreated && now < t.Deadline
}

// Assigned returns whether the node is among the task's assigned nodes.
func (t *Task) Assigned(node attesta.Address) bool {
	for _, n := range t.Nodes {
		if n == node {
			return true
		}
	}
	return false
}

// Batch an attestation blob covering a set of simultaneously-proven
// tasks, keyed by its digest (e.g. a merkle root).
type Batch struct {
	TaskIDs []attesta.Bytes32
	Blob    []byte
}

// Encode implements state.StorageEncoder.
func (b *Batch) Encode() ([]byte, error) {
	if b.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(b)
}

// Decode implements state.StorageDecoder.
func (b *Batch) Decode(data []byte) error {
	if len(data) == 0 {
		*b = Batch{}
		return nil
	}
	return rlp.DecodeBytes(data, b)
}

// IsEmpty returns whether the entry can be treated as empty.
func (b *Batch) IsEmpty() bool {
	return len(b.TaskIDs) == 0 && len(b.Blob) == 0
}
