// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

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

func newTestStaker() *Staker {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return New(attesta.BytesToAddress([]byte("staker")), st)
}

func newNode(stake int64) *Node {
	return &Node{
		RewardAddr: attesta.BytesToAddress([]byte("reward")),
		BornAt:     1000,
		Status:     StatusRegisteredAndStaked,
		Stake:      big.NewInt(stake),
	}
}

func TestAdd(t *testing.T) {
	s := newTestStaker()
	n1 := attesta.BytesToAddress([]byte("n1"))

	assert.Equal(t, M(true, nil), M(s.Add(n1, newNode(100))))
	// duplicate registration deterministically fails
	assert.Equal(t, M(false, nil), M(s.Add(n1, newNode(200))))

	entry, err := s.Get(n1)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(100), entry.Stake)
	assert.True(t, entry.Staked())
}

func TestUnstakeFlow(t *testing.T) {
	s := newTestStaker()
	n1 := attesta.BytesToAddress([]byte("n1"))

	// request before registration fails
	assert.Equal(t, M(false, nil), M(s.RequestUnstake(n1, 5000)))

	_, err := s.Add(n1, newNode(100))
	assert.Nil(t, err)

	assert.Equal(t, M(true, nil), M(s.RequestUnstake(n1, 5000)))
	entry, _ := s.Get(n1)
	assert.Equal(t, StatusSuspended, entry.Status)

	// re-request resets the unlock time
	assert.Equal(t, M(true, nil), M(s.RequestUnstake(n1, 7000)))
	assert.Equal(t, M(uint64(7000), nil), M(s.PendingUnlock(n1)))

	// too early
	_, ok, err := s.Unstake(n1, 6999)
	assert.Nil(t, err)
	assert.False(t, ok)

	stake, ok, err := s.Unstake(n1, 7000)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(100), stake)

	// node record deleted
	entry, _ = s.Get(n1)
	assert.True(t, entry.IsEmpty())
	assert.Equal(t, M(uint64(0), nil), M(s.PendingUnlock(n1)))
}

func TestCancelUnstake(t *testing.T) {
	s := newTestStaker()
	n1 := attesta.BytesToAddress([]byte("n1"))

	// cancel without a pending request fails
	assert.Equal(t, M(false, nil), M(s.CancelUnstake(n1, big.NewInt(50))))

	_, err := s.Add(n1, newNode(100))
	assert.Nil(t, err)
	_, err = s.RequestUnstake(n1, 5000)
	assert.Nil(t, err)

	// stake above threshold restores RegisteredAndStaked
	assert.Equal(t, M(true, nil), M(s.CancelUnstake(n1, big.NewInt(50))))
	entry, _ := s.Get(n1)
	assert.Equal(t, StatusRegisteredAndStaked, entry.Status)
	assert.Equal(t, M(uint64(0), nil), M(s.PendingUnlock(n1)))

	// stake below threshold restores Registered
	_, err = s.RequestUnstake(n1, 5000)
	assert.Nil(t, err)
	assert.Equal(t, M(true, nil), M(s.CancelUnstake(n1, big.NewInt(500))))
	entry, _ = s.Get(n1)
	assert.Equal(t, StatusRegistered, entry.Status)
}

func TestSlash(t *testing.T) {
	s := newTestStaker()
	n1 := attesta.BytesToAddress([]byte("n1"))

	_, err := s.Add(n1, newNode(100))
	assert.Nil(t, err)

	// amount exceeding stake is rejected
	assert.Equal(t, M(false, nil), M(s.Slash(n1, big.NewInt(200))))
	// zero amount is rejected
	assert.Equal(t, M(false, nil), M(s.Slash(n1, big.NewInt(0))))

	assert.Equal(t, M(true, nil), M(s.Slash(n1, big.NewInt(40))))
	entry, _ := s.Get(n1)
	assert.Equal(t, big.NewInt(60), entry.Stake)
	assert.Equal(t, StatusRegisteredAndStaked, entry.Status)

	// slashed to zero suspends the node
	assert.Equal(t, M(true, nil), M(s.Slash(n1, big.NewInt(60))))
	entry, _ = s.Get(n1)
	assert.Equal(t, new(big.Int), entry.Stake)
	assert.Equal(t, StatusSuspended, entry.Status)
}

func TestRemove(t *testing.T) {
	s := newTestStaker()
	n1 := attesta.BytesToAddress([]byte("n1"))

	assert.Equal(t, M(false, nil), M(s.Remove(n1)))

	_, err := s.Add(n1, newNode(100))
	assert.Nil(t, err)
	_, err = s.RequestUnstake(n1, 5000)
	assert.Nil(t, err)

	assert.Equal(t, M(true, nil), M(s.Remove(n1)))
	entry, _ := s.Get(n1)
	assert.True(t, entry.IsEmpty())
	assert.Equal(t, M(uint64(0), nil), M(s.PendingUnlock(n1)))
}
