// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker implements the stake ledger of TEE nodes.
//
// Per-node state machine:
//
//	Unregistered → Registered/RegisteredAndStaked → Suspended(pending unstake) → Removed
//
// with Suspended ↔ RegisteredAndStaked|Registered via cancel, and an
// independent Suspended reachable from zero-stake slashing.
package staker

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/log"
	"github.com/attesta-net/attesta/state"
)

var logger = log.WithContext("pkg", "staker")

// Staker binder of the stake ledger.
type Staker struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Staker {
	return &Staker{addr, state}
}

func nodeKey(node attesta.Address) attesta.Bytes32 {
	return attesta.Blake2b([]byte("n"), node.Bytes())
}

func requestKey(node attesta.Address) attesta.Bytes32 {
	return attesta.Blake2b([]byte("r"), node.Bytes())
}

// Get returns the node entry. Check IsEmpty for existence.
func (s *Staker) Get(node attesta.Address) (*Node, error) {
	var entry Node
	if err := s.state.GetStorage(s.addr, nodeKey(node), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Staker) set(node attesta.Address, entry *Node) error {
	return s.state.SetStorage(s.addr, nodeKey(node), entry)
}

// Add registers a new node with its initial stake.
// Returns false if the address is already registered.
func (s *Staker) Add(node attesta.Address, entry *Node) (bool, error) {
	existing, err := s.Get(node)
	if err != nil {
		return false, err
	}
	if !existing.IsEmpty() {
		return false, nil
	}
	if err := s.set(node, entry); err != nil {
		return false, err
	}
	logger.Info("node added", "node", node, "stake", entry.Stake)
	return true, nil
}

// PendingUnlock returns the unlock time of a pending unstake request,
// or zero when none exists.
func (s *Staker) PendingUnlock(node attesta.Address) (uint64, error) {
	var req unstakeRequest
	if err := s.state.GetStorage(s.addr, requestKey(node), &req); err != nil {
		return 0, err
	}
	return req.UnlockTime, nil
}

// RequestUnstake records an unstake request unlocking at unlockTime and
// suspends the node. A second request while one is pending resets the
// unlock time (idempotent reset).
// Returns false when the node is unknown or holds no stake.
func (s *Staker) RequestUnstake(node attesta.Address, unlockTime uint64) (bool, error) {
	entry, err := s.Get(node)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || entry.Stake.Sign() == 0 {
		return false, nil
	}
	if err := s.state.SetStorage(s.addr, requestKey(node), &unstakeRequest{UnlockTime: unlockTime}); err != nil {
		return false, err
	}
	if entry.Status != StatusSuspended {
		entry.Status = StatusSuspended
		if err := s.set(node, entry); err != nil {
			return false, err
		}
	}
	logger.Info("unstake requested", "node", node, "unlock", unlockTime)
	return true, nil
}

// CancelUnstake clears a pending request and restores the node status
// based on its stake against the given threshold.
// Returns false when no request is pending or the node is not suspended.
func (s *Staker) CancelUnstake(node attesta.Address, threshold *big.Int) (bool, error) {
	entry, err := s.Get(node)
	if err != nil {
		return false, err
	}
	unlock, err := s.PendingUnlock(node)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || unlock == 0 || entry.Status != StatusSuspended {
		return false, nil
	}
	if err := s.state.SetStorage(s.addr, requestKey(node), &unstakeRequest{}); err != nil {
		return false, err
	}
	if entry.Stake.Cmp(threshold) >= 0 {
		entry.Status = StatusRegisteredAndStaked
	} else {
		entry.Status = StatusRegistered
	}
	if err := s.set(node, entry); err != nil {
		return false, err
	}
	logger.Info("unstake cancelled", "node", node)
	return true, nil
}

// Unstake deletes the node and request records once the unlock time has
// elapsed, returning the released stake.
// Returns false when no request is pending or the delay has not elapsed.
func (s *Staker) Unstake(node attesta.Address, now uint64) (*big.Int, bool, error) {
	entry, err := s.Get(node)
	if err != nil {
		return nil, false, err
	}
	unlock, err := s.PendingUnlock(node)
	if err != nil {
		return nil, false, err
	}
	if entry.IsEmpty() || unlock == 0 || now < unlock {
		return nil, false, nil
	}
	stake := entry.Stake
	if err := s.state.SetStorage(s.addr, requestKey(node), &unstakeRequest{}); err != nil {
		return nil, false, err
	}
	if err := s.state.SetStorage(s.addr, nodeKey(node), &Node{}); err != nil {
		return nil, false, err
	}
	logger.Info("unstake completed", "node", node, "stake", stake)
	return stake, true, nil
}

// Remove deletes the node and any pending request entirely (admin revocation).
// Returns false when the node is unknown.
func (s *Staker) Remove(node attesta.Address) (bool, error) {
	entry, err := s.Get(node)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() {
		return false, nil
	}
	if err := s.state.SetStorage(s.addr, requestKey(node), &unstakeRequest{}); err != nil {
		return false, err
	}
	if err := s.state.SetStorage(s.addr, nodeKey(node), &Node{}); err != nil {
		return false, err
	}
	logger.Info("node removed", "node", node)
	return true, nil
}

// Slash decrements the node's stake by amount. The amount must not exceed
// the current stake. A node slashed to zero becomes Suspended.
// Returns false when the node is unknown or the amount is out of range.
func (s *Staker) Slash(node attesta.Address, amount *big.Int) (bool, error) {
	entry, err := s.Get(node)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() || amount.Sign() <= 0 || amount.Cmp(entry.Stake) > 0 {
		return false, nil
	}
	entry.Stake = new(big.Int).Sub(entry.Stake, amount)
	if entry.Stake.Sign() == 0 {
		entry.Status = StatusSuspended
	}
	if err := s.set(node, entry); err != nil {
		return false, err
	}
	logger.Info("node slashed", "node", node, "amount", amount, "remaining", entry.Stake)
	return true, nil
}
