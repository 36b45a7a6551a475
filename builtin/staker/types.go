// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Status of a TEE node.
type Status uint8

const (
	// StatusRegistered record exists, stake below threshold.
	StatusRegistered Status = iota + 1
	// StatusRegisteredAndStaked stake at or above threshold, eligible for tasks.
	StatusRegisteredAndStaked
	// StatusSuspended mid-unstake or fully slashed, not eligible.
	StatusSuspended
	// StatusVerified attestation re-checked by an admin.
	StatusVerified
	// StatusActive serving tasks.
	StatusActive
)

var (
	_ state.StorageEncoder = (*Node)(nil)
	_ state.StorageDecoder = (*Node)(nil)
	_ state.StorageEncoder = (*unstakeRequest)(nil)
	_ state.StorageDecoder = (*unstakeRequest)(nil)
)

// Node contains all data of a registered TEE node.
// A registration time of zero means unregistered.
type Node struct {
	RewardAddr     attesta.Address
	PubKey         []byte
	Endpoint       string
	BornAt         uint64
	AttestationRef attesta.Bytes32
	Status         Status
	TEEType        uint8
	Stake          *big.Int
}

// Encode implements state.StorageEncoder.
func (n *Node) Encode() ([]byte, error) {
	if n.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(n)
}

// Decode implements state.StorageDecoder.
func (n *Node) Decode(data []byte) error {
	if len(data) == 0 {
		*n = Node{Stake: &big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(data, n)
}

// IsEmpty returns whether the entry can be treated as empty.
func (n *Node) IsEmpty() bool {
	return n.BornAt == 0
}

// Staked returns whether the node currently holds positive stake in a
// status eligible for task assignment.
func (n *Node) Staked() bool {
	switch n.Status {
	case StatusRegisteredAndStaked, StatusVerified, StatusActive:
		return n.Stake.Sign() > 0
	}
	return false
}

// unstakeRequest exists only while a node is mid-unstake.
type unstakeRequest struct {
	UnlockTime uint64
}

func (r *unstakeRequest) Encode() ([]byte, error) {
	if r.UnlockTime == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(r)
}

func (r *unstakeRequest) Decode(data []byte) error {
	if len(data) == 0 {
		*r = unstakeRequest{}
		return nil
	}
	return rlp.DecodeBytes(data, r)
}
