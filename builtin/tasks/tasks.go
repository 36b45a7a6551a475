// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tasks implements the task record table of the lifecycle engine.
//
// Task ids are globally unique for the life of the ledger: terminal tasks
// are kept forever and ids are never reused.
package tasks

import (
	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Tasks binder of the task table.
type Tasks struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Tasks {
	return &Tasks{addr, state}
}

func taskKey(id attesta.Bytes32) attesta.Bytes32 {
	return attesta.Blake2b([]byte("t"), id.Bytes())
}

func batchKey(digest attesta.Bytes32) attesta.Bytes32 {
	return attesta.Blake2b([]byte("b"), digest.Bytes())
}

// Get returns the task entry. Check IsEmpty for existence.
func (t *Tasks) Get(id attesta.Bytes32) (*Task, error) {
	var entry Task
	if err := t.state.GetStorage(t.addr, taskKey(id), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (t *Tasks) set(id attesta.Bytes32, entry *Task) error {
	return t.state.SetStorage(t.addr, taskKey(id), entry)
}

// Add creates a new task. Returns false if the id was ever used.
func (t *Tasks) Add(id attesta.Bytes32, entry *Task) (bool, error) {
	existing, err := t.Get(id)
	if err != nil {
		return false, err
	}
	if !existing.IsEmpty() {
		return false, nil
	}
	if err := t.set(id, entry); err != nil {
		return false, err
	}
	return true, nil
}

// AddProof appends a contributing node's proof to a task that is still
// valid for submission. The task status is left unchanged.
// Returns false when the task is unknown, expired or already terminal.
func (t *Tasks) AddProof(id attesta.Bytes32, node attesta.Address, blob []byte, now uint64) (bool, error) {
	entry, err := t.Get(id)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || !entry.Valid(now) {
		return false, nil
	}
	entry.Proofs = append(entry.Proofs, Proof{Node: node, Blob: blob})
	if err := t.set(id, entry); err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus moves a task from Created to the given terminal status.
// Returns false when the task is unknown or not in Created.
func (t *Tasks) SetStatus(id attesta.Bytes32, status Status) (bool, error) {
	entry, err := t.Get(id)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || entry.Status != StatusCreated || !status.Terminal() {
		return false, nil
	}
	entry.Status = status
	if err := t.set(id, entry); err != nil {
		return false, err
	}
	return true, nil
}

// MarkRewarded flags a task's escrow as paid out.
// Returns false when the task is unknown or already rewarded.
func (t *Tasks) MarkRewarded(id attesta.Bytes32) (bool, error) {
	entry, err := t.Get(id)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || entry.Rewarded {
		return false, nil
	}
	entry.Rewarded = true
	if err := t.set(id, entry); err != nil {
		return false, err
	}
	return true, nil
}

// GetBatch returns the attestation batch stored under digest.
// Check IsEmpty for existence.
func (t *Tasks) GetBatch(digest attesta.Bytes32) (*Batch, error) {
	var entry Batch
	if err := t.state.GetStorage(t.addr, batchKey(digest), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// AddBatch stores an attestation batch under its digest for later audit.
// Returns false if the digest is already taken.
func (t *Tasks) AddBatch(digest attesta.Bytes32, taskIDs []attesta.Bytes32, blob []byte) (bool, error) {
	existing, err := t.GetBatch(digest)
	if err != nil {
		return false, err
	}
	if !existing.IsEmpty() {
		return false, nil
	}
	if err := t.state.SetStorage(t.addr, batchKey(digest), &Batch{TaskIDs: taskIDs, Blob: blob}); err != nil {
		return false, err
	}
	return true, nil
}
