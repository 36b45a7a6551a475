// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tasks

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/lvldb"
	"github.com/attesta-net/attesta/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

func newTestTasks() *Tasks {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return New(attesta.BytesToAddress([]byte("tasks")), st)
}

func newTask(deadline uint64, nodes ...attesta.Address) *Task {
	return &Task{
		Provider: attesta.BytesToAddress([]byte("provider")),
		BornAt:   1000,
		Deadline: deadline,
		Status:   StatusCreated,
		Nodes:    nodes,
		Reward:   big.NewInt(100),
	}
}

func TestAdd(t *testing.T) {
	tt := newTestTasks()
	id := attesta.Blake2b([]byte("task-1"))

	assert.Equal(t, M(true, nil), M(tt.Add(id, newTask(2000))))
	// ids are never reused
	assert.Equal(t, M(false, nil), M(tt.Add(id, newTask(9000))))
}

func TestValidity(t *testing.T) {
	task := newTask(2000)
	assert.True(t, task.Valid(1999))
	assert.False(t, task.Valid(2000), "deadline itself is expired")

	task.Status = StatusCompleted
	assert.False(t, task.Valid(1500))
}

func TestAddProof(t *testing.T) {
	tt := newTestTasks()
	id := attesta.Blake2b([]byte("task-1"))
	n1 := attesta.BytesToAddress([]byte("n1"))
	n2 := attesta.BytesToAddress([]byte("n2"))

	_, err := tt.Add(id, newTask(2000, n1))
	assert.Nil(t, err)

	assert.Equal(t, M(true, nil), M(tt.AddProof(id, n1, []byte{1}, 1500)))
	assert.Equal(t, M(true, nil), M(tt.AddProof(id, n2, []byte{2}, 1600)))

	entry, _ := tt.Get(id)
	assert.Len(t, entry.Proofs, 2)
	assert.Equal(t, StatusCreated, entry.Status, "proof submission does not change status")

	// past the deadline: always rejected, never silently ignored
	assert.Equal(t, M(false, nil), M(tt.AddProof(id, n1, []byte{3}, 2000)))

	// after completion: always rejected
	_, err = tt.SetStatus(id, StatusCompleted)
	assert.Nil(t, err)
	assert.Equal(t, M(false, nil), M(tt.AddProof(id, n1, []byte{4}, 1700)))
}

func TestSetStatus(t *testing.T) {
	tt := newTestTasks()
	id := attesta.Blake2b([]byte("task-1"))

	// unknown task
	assert.Equal(t, M(false, nil), M(tt.SetStatus(id, StatusCompleted)))

	_, err := tt.Add(id, newTask(2000))
	assert.Nil(t, err)

	// non-terminal target is rejected
	assert.Equal(t, M(false, nil), M(tt.SetStatus(id, StatusCreated)))

	assert.Equal(t, M(true, nil), M(tt.SetStatus(id, StatusTimeout)))
	// one-way: no transition out of a terminal status
	assert.Equal(t, M(false, nil), M(tt.SetStatus(id, StatusCompleted)))
}

func TestMarkRewarded(t *testing.T) {
	tt := newTestTasks()
	id := attesta.Blake2b([]byte("task-1"))

	_, err := tt.Add(id, newTask(2000))
	assert.Nil(t, err)

	assert.Equal(t, M(true, nil), M(tt.MarkRewarded(id)))
	// double payout is impossible
	assert.Equal(t, M(false, nil), M(tt.MarkRewarded(id)))
}

func TestBatch(t *testing.T) {
	tt := newTestTasks()
	digest := attesta.Blake2b([]byte("root"))
	ids := []attesta.Bytes32{attesta.Blake2b([]byte("t1")), attesta.Blake2b([]byte("t2"))}

	got, err := tt.GetBatch(digest)
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())

	assert.Equal(t, M(true, nil), M(tt.AddBatch(digest, ids, []byte{0xca, 0xfe})))
	assert.Equal(t, M(false, nil), M(tt.AddBatch(digest, ids, []byte{0xff})))

	got, err = tt.GetBatch(digest)
	assert.Nil(t, err)
	assert.Equal(t, ids, got.TaskIDs)
	assert.Equal(t, []byte{0xca, 0xfe}, got.Blob)
}
