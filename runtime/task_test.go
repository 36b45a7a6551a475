// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/tasks"
	"github.com/attesta-net/attesta/reverts"
)

// taskFixture wires a provider, two staked nodes and a funded scheduler
// (the owner) ready to register tasks.
type taskFixture struct {
	*testLedger
	provider attesta.Address
	node1    attesta.Address
	payout1  attesta.Address
	node2    attesta.Address
	payout2  attesta.Address
}

func newTaskFixture(t *testing.T) *taskFixture {
	tl := newTestLedger(t)
	f := &taskFixture{
		testLedger: tl,
		provider:   attesta.BytesToAddress([]byte("provider")),
		node1:      attesta.BytesToAddress([]byte("node1")),
		payout1:    attesta.BytesToAddress([]byte("payout1")),
		node2:      attesta.BytesToAddress([]byte("node2")),
		payout2:    attesta.BytesToAddress([]byte("payout2")),
	}
	f.registerUser(t, f.provider, 10)
	f.registerNode(t, f.node1, f.payout1, 1000, 10)
	f.registerNode(t, f.node2, f.payout2, 1000, 10)
	f.fund(tl.owner, 100000)
	return f
}

func (f *taskFixture) registerTask(t *testing.T, id attesta.Bytes32, reward int64, now uint64, nodes ...attesta.Address) {
	_, err := f.rt.RegisterTask(env(f.owner, now, reward), id, 600, f.provider, nodes, big.NewInt(reward))
	assert.Nil(t, err)
}

func (f *taskFixture) submitProof(t *testing.T, id attesta.Bytes32, node attesta.Address, now uint64) {
	dataHash := attesta.Blake2b([]byte("data"))
	sig := f.sign(t, &taskProof{TaskID: id, DataHash: dataHash, Node: node})
	_, err := f.rt.SubmitProof(&Env{Caller: node, Time: now}, id, dataHash, sig)
	assert.Nil(t, err)
}

func TestRegisterTask(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))

	// non-scheduler
	_, err := f.rt.RegisterTask(env(f.provider, 100, 500), id, 600, f.provider, []attesta.Address{f.node1}, big.NewInt(500))
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))

	// reward above the configured maximum
	f.fund(f.owner, 100000)
	_, err = f.rt.RegisterTask(env(f.owner, 100, 1001), id, 600, f.provider, []attesta.Address{f.node1}, big.NewInt(1001))
	assert.Equal(t, reverts.InvalidAmount, codeOf(t, err))

	// timeout below the configured minimum
	_, err = f.rt.RegisterTask(env(f.owner, 100, 500), id, 599, f.provider, []attesta.Address{f.node1}, big.NewInt(500))
	assert.Equal(t, reverts.InvalidAmount, codeOf(t, err))

	// attached value must fund the escrow
	_, err = f.rt.RegisterTask(env(f.owner, 100, 499), id, 600, f.provider, []attesta.Address{f.node1}, big.NewInt(500))
	assert.Equal(t, reverts.InvalidAmount, codeOf(t, err))

	// unknown provider
	_, err = f.rt.RegisterTask(env(f.owner, 100, 500), id, 600, attesta.BytesToAddress([]byte("ghost")), []attesta.Address{f.node1}, big.NewInt(500))
	assert.Equal(t, reverts.NotFound, codeOf(t, err))

	// unknown node
	_, err = f.rt.RegisterTask(env(f.owner, 100, 500), id, 600, f.provider, []attesta.Address{attesta.BytesToAddress([]byte("ghost"))}, big.NewInt(500))
	assert.Equal(t, reverts.NotFound, codeOf(t, err))

	f.registerTask(t, id, 500, 100, f.node1)
	task, err := f.rt.Task(id)
	assert.Nil(t, err)
	assert.Equal(t, tasks.StatusCreated, task.Status)
	assert.Equal(t, uint64(700), task.Deadline)

	// id reuse, even with different fields
	f.fund(f.owner, 100000)
	_, err = f.rt.RegisterTask(env(f.owner, 101, 400), id, 600, f.provider, []attesta.Address{f.node2}, big.NewInt(400))
	assert.Equal(t, reverts.AlreadyExists, codeOf(t, err))
}

func TestRegisterTaskUnstakedNode(t *testing.T) {
	f := newTaskFixture(t)

	// a node mid-unstake is not eligible for assignment
	_, err := f.rt.UnstakeRequest(&Env{Caller: f.node1, Time: 50})
	assert.Nil(t, err)

	id := attesta.Blake2b([]byte("task-1"))
	_, err = f.rt.RegisterTask(env(f.owner, 100, 500), id, 600, f.provider, []attesta.Address{f.node1}, big.NewInt(500))
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))
}

func TestSingleProofFlow(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)

	f.submitProof(t, id, f.node1, 200)

	task, _ := f.rt.Task(id)
	assert.Equal(t, tasks.StatusCreated, task.Status, "proof does not complete the task")
	assert.Len(t, task.Proofs, 1)

	// scheduler completes: reward split /(N+1) with one contributor
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	provBal, _ := f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(250), provBal)
	nodeBal, _ := f.rt.RewardBalance(f.payout1)
	assert.Equal(t, big.NewInt(250), nodeBal)

	// the validator path cannot pay the same task again
	_, err = f.rt.ValidateTasks(&Env{Caller: f.owner, Time: 301}, []attesta.Bytes32{id})
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))
}

func TestProofRejections(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)

	dataHash := attesta.Blake2b([]byte("data"))

	// not the assigned node
	sig := f.sign(t, &taskProof{TaskID: id, DataHash: dataHash, Node: f.node2})
	_, err := f.rt.SubmitProof(&Env{Caller: f.node2, Time: 200}, id, dataHash, sig)
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))

	// unknown task
	sig = f.sign(t, &taskProof{TaskID: attesta.Blake2b([]byte("ghost")), DataHash: dataHash, Node: f.node1})
	_, err = f.rt.SubmitProof(&Env{Caller: f.node1, Time: 200}, attesta.Blake2b([]byte("ghost")), dataHash, sig)
	assert.Equal(t, reverts.NotFound, codeOf(t, err))

	// past the deadline: rejected, never silently ignored
	sig = f.sign(t, &taskProof{TaskID: id, DataHash: dataHash, Node: f.node1})
	_, err = f.rt.SubmitProof(&Env{Caller: f.node1, Time: 700}, id, dataHash, sig)
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))

	// after completion: rejected
	f.submitProof(t, id, f.node1, 200)
	_, err = f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)
	_, err = f.rt.SubmitProof(&Env{Caller: f.node1, Time: 400}, id, dataHash, sig)
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)

	// completing without a recorded proof
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 200}, id, tasks.StatusCompleted)
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))

	// non-terminal target
	_, err = f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 200}, id, tasks.StatusCreated)
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))

	// timeout pays nothing
	_, err = f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 800}, id, tasks.StatusTimeout)
	assert.Nil(t, err)
	provBal, _ := f.rt.RewardBalance(f.provider)
	assert.Zero(t, provBal.Sign())

	// terminal is final
	_, err = f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 801}, id, tasks.StatusCompleted)
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))
}

func TestMultiNodeSplit(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1, f.node2)

	f.submitProof(t, id, f.node1, 200)
	f.submitProof(t, id, f.node2, 210)

	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	// 500 / (2+1) = 166 each, remainder 2 retained by the ledger
	for _, account := range []attesta.Address{f.provider, f.payout1, f.payout2} {
		bal, _ := f.rt.RewardBalance(account)
		assert.Equal(t, big.NewInt(166), bal)
	}
	allocated, _, err := f.rt.RewardTotals()
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(498), allocated)
}

func TestBatchProofFlow(t *testing.T) {
	f := newTaskFixture(t)
	id1 := attesta.Blake2b([]byte("task-1"))
	id2 := attesta.Blake2b([]byte("task-2"))
	f.registerTask(t, id1, 400, 100, f.node1)
	f.registerTask(t, id2, 600, 100, f.node1)

	digest := attesta.Blake2b([]byte("merkle-root"))
	ids := []attesta.Bytes32{id1, id2}

	_, err := f.rt.SubmitBatchProof(&Env{Caller: f.node1, Time: 200}, ids, digest, []byte("blob"))
	assert.Nil(t, err)

	// both flipped to Completed atomically
	for _, id := range ids {
		task, _ := f.rt.Task(id)
		assert.Equal(t, tasks.StatusCompleted, task.Status)
	}

	// the blob is stored for audit under its digest
	batch, err := f.rt.Batch(digest)
	assert.Nil(t, err)
	assert.Equal(t, ids, batch.TaskIDs)
	assert.Equal(t, []byte("blob"), batch.Blob)

	// validator accrues rewards 50/50 per task
	_, err = f.rt.ValidateTasks(&Env{Caller: f.owner, Time: 300}, ids)
	assert.Nil(t, err)
	provBal, _ := f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(200+300), provBal)
	nodeBal, _ := f.rt.RewardBalance(f.payout1)
	assert.Equal(t, big.NewInt(200+300), nodeBal)
}

func TestBatchProofAtomicity(t *testing.T) {
	f := newTaskFixture(t)
	id1 := attesta.Blake2b([]byte("task-1"))
	id2 := attesta.Blake2b([]byte("task-2"))
	f.registerTask(t, id1, 400, 100, f.node1)
	f.registerTask(t, id2, 600, 100, f.node2) // assigned to the other node

	digest := attesta.Blake2b([]byte("merkle-root"))
	_, err := f.rt.SubmitBatchProof(&Env{Caller: f.node1, Time: 200}, []attesta.Bytes32{id1, id2}, digest, []byte("blob"))
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))

	// no partial application: the first task is untouched
	task, _ := f.rt.Task(id1)
	assert.Equal(t, tasks.StatusCreated, task.Status)
	assert.Empty(t, task.Proofs)
	batch, _ := f.rt.Batch(digest)
	assert.True(t, batch.IsEmpty())

	// digest reuse is rejected
	_, err = f.rt.SubmitBatchProof(&Env{Caller: f.node1, Time: 201}, []attesta.Bytes32{id1}, digest, []byte("blob"))
	assert.Nil(t, err)
	f.fund(f.owner, 100000)
	id3 := attesta.Blake2b([]byte("task-3"))
	f.registerTask(t, id3, 400, 300, f.node1)
	_, err = f.rt.SubmitBatchProof(&Env{Caller: f.node1, Time: 301}, []attesta.Bytes32{id3}, digest, []byte("blob"))
	assert.Equal(t, reverts.AlreadyExists, codeOf(t, err))
}

func TestValidateTasksRejections(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)

	// not completed yet
	_, err := f.rt.ValidateTasks(&Env{Caller: f.owner, Time: 200}, []attesta.Bytes32{id})
	assert.Equal(t, reverts.StateConflict, codeOf(t, err))

	// non-validator
	_, err = f.rt.ValidateTasks(&Env{Caller: f.node1, Time: 200}, []attesta.Bytes32{id})
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))

	// unknown id
	_, err = f.rt.ValidateTasks(&Env{Caller: f.owner, Time: 200}, []attesta.Bytes32{attesta.Blake2b([]byte("ghost"))})
	assert.Equal(t, reverts.NotFound, codeOf(t, err))
}

func TestValidateTasksTinyReward(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 1, 100, f.node1)

	digest := attesta.Blake2b([]byte("merkle-root"))
	_, err := f.rt.SubmitBatchProof(&Env{Caller: f.node1, Time: 200}, []attesta.Bytes32{id}, digest, []byte("blob"))
	assert.Nil(t, err)

	// a reward of 1 halves to zero shares; nothing is credited or reported
	receipt, err := f.rt.ValidateTasks(&Env{Caller: f.owner, Time: 300}, []attesta.Bytes32{id})
	assert.Nil(t, err)
	assert.NotNil(t, receipt.Find("TaskValidated"))
	assert.Nil(t, receipt.Find("RewardAllocated"))

	for _, account := range []attesta.Address{f.provider, f.payout1} {
		bal, _ := f.rt.RewardBalance(account)
		assert.Zero(t, bal.Sign())
	}
	allocated, _, err := f.rt.RewardTotals()
	assert.Nil(t, err)
	assert.Zero(t, allocated.Sign())
}

func TestClaimReward(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)
	f.submitProof(t, id, f.node1, 200)
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	// provider claims part of its balance
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(100))
	assert.Nil(t, err)
	bal, _ := f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(150), bal)
	native, _ := f.rt.State().GetBalance(f.provider)
	assert.Equal(t, big.NewInt(100), native)

	// overclaim fails and leaves the balance unchanged
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 401}, f.provider, big.NewInt(151))
	assert.Equal(t, reverts.InsufficientBalance, codeOf(t, err))
	bal, _ = f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(150), bal)

	// zero claim
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 402}, f.provider, big.NewInt(0))
	assert.Equal(t, reverts.InvalidAmount, codeOf(t, err))

	// a stranger may not claim for the provider
	_, err = f.rt.ClaimReward(&Env{Caller: f.node2, Time: 403}, f.provider, big.NewInt(1))
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))
}

func TestClaimRewardPayoutFailure(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)
	f.submitProof(t, id, f.node1, 200)
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	f.rt.SetPayout(func(attesta.Address, *big.Int) error {
		return assert.AnError
	})
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(100))
	assert.Equal(t, reverts.TransferFailure, codeOf(t, err))

	// debit rolled back with the failed transfer
	bal, _ := f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(250), bal)
}

func TestReentrantClaim(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)
	f.submitProof(t, id, f.node1, 200)
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	// a payout that re-enters the claim path sees the balance already
	// debited, so the nested claim cannot double-spend
	var nestedErr error
	f.rt.SetPayout(func(to attesta.Address, amount *big.Int) error {
		f.rt.SetPayout(f.rt.nativePayout)
		_, nestedErr = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(200))
		return f.rt.nativePayout(to, amount)
	})
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(250))
	assert.Nil(t, err)
	assert.Equal(t, reverts.InsufficientBalance, codeOf(t, nestedErr))

	bal, _ := f.rt.RewardBalance(f.provider)
	assert.Zero(t, bal.Sign())
}

func TestClaimByRewardAddress(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)
	f.submitProof(t, id, f.node1, 200)
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	// rewards accrue to the payout address; the payout address claims
	// for itself
	_, err = f.rt.ClaimReward(&Env{Caller: f.payout1, Time: 400}, f.payout1, big.NewInt(250))
	assert.Nil(t, err)

	// the payout address may also claim a balance credited to the node
	// address itself
	assert.Nil(t, builtin.Rewards.Native(f.rt.State()).Add(f.node1, big.NewInt(40)))
	f.rt.State().AddBalance(builtin.LedgerAddress, big.NewInt(40))
	_, err = f.rt.ClaimReward(&Env{Caller: f.payout1, Time: 401}, f.node1, big.NewInt(40))
	assert.Nil(t, err)
}

func TestTokenPayout(t *testing.T) {
	f := newTaskFixture(t)
	id := attesta.Blake2b([]byte("task-1"))
	f.registerTask(t, id, 500, 100, f.node1)
	f.submitProof(t, id, f.node1, 200)
	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id, tasks.StatusCompleted)
	assert.Nil(t, err)

	token := &fakeToken{}
	f.rt.SetToken(token)
	_, err = f.rt.SetRewardTokenStatus(&Env{Caller: f.owner, Time: 301}, true)
	assert.Nil(t, err)

	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(100))
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(100), token.sent[f.provider])

	// failing token transfer rolls back the debit
	token.fail = true
	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 401}, f.provider, big.NewInt(50))
	assert.Equal(t, reverts.TransferFailure, codeOf(t, err))
	bal, _ := f.rt.RewardBalance(f.provider)
	assert.Equal(t, big.NewInt(150), bal)
}

func TestWithdrawToken(t *testing.T) {
	f := newTaskFixture(t)
	token := &fakeToken{}
	f.rt.SetToken(token)
	tokenAddr := attesta.BytesToAddress([]byte("token"))
	sink := attesta.BytesToAddress([]byte("sink"))

	_, err := f.rt.WithdrawToken(&Env{Caller: f.node1, Time: 10}, tokenAddr, sink, big.NewInt(5))
	assert.Equal(t, reverts.AccessDenied, codeOf(t, err))

	_, err = f.rt.WithdrawToken(&Env{Caller: f.owner, Time: 10}, tokenAddr, sink, big.NewInt(5))
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(5), token.sent[sink])
}

func TestFundConservation(t *testing.T) {
	f := newTaskFixture(t)
	id1 := attesta.Blake2b([]byte("task-1"))
	id2 := attesta.Blake2b([]byte("task-2"))
	f.registerTask(t, id1, 500, 100, f.node1, f.node2)
	f.registerTask(t, id2, 301, 100, f.node1)

	f.submitProof(t, id1, f.node1, 200)
	f.submitProof(t, id1, f.node2, 210)
	f.submitProof(t, id2, f.node1, 220)

	_, err := f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id1, tasks.StatusCompleted)
	assert.Nil(t, err)
	_, err = f.rt.UpdateTaskStatus(&Env{Caller: f.owner, Time: 300}, id2, tasks.StatusCompleted)
	assert.Nil(t, err)

	_, err = f.rt.ClaimReward(&Env{Caller: f.provider, Time: 400}, f.provider, big.NewInt(200))
	assert.Nil(t, err)

	// sum of balances plus claims equals everything ever allocated
	allocated, claimed, err := f.rt.RewardTotals()
	assert.Nil(t, err)
	sum := new(big.Int).Set(claimed)
	for _, account := range []attesta.Address{f.provider, f.payout1, f.payout2} {
		bal, err := f.rt.RewardBalance(account)
		assert.Nil(t, err)
		sum.Add(sum, bal)
	}
	assert.Equal(t, allocated, sum)

	// 500/3=166 ×3 + 301/2=150 ×2, remainders 2 and 1 retained
	assert.Equal(t, big.NewInt(166*3+150*2), allocated)
}

type fakeToken struct {
	sent map[attesta.Address]*big.Int
	fail bool
}

func (ft *fakeToken) Transfer(to attesta.Address, amount *big.Int) (bool, error) {
	if ft.fail {
		return false, nil
	}
	if ft.sent == nil {
		ft.sent = make(map[attesta.Address]*big.Int)
	}
	prev := ft.sent[to]
	if prev == nil {
		prev = new(big.Int)
	}
	ft.sent[to] = new(big.Int).Add(prev, amount)
	return true, nil
}
