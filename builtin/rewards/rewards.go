// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the pull-based reward balance sheet.
//
// Balances are credited by the task lifecycle engine on validated
// completion and debited only by the claim path. Conservation holds at
// all times: sum of balances + total claimed == total allocated.
package rewards

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

var (
	totalAllocatedKey = attesta.Blake2b([]byte("total-allocated"))
	totalClaimedKey   = attesta.Blake2b([]byte("total-claimed"))
)

func accountKey(addr attesta.Address) attesta.Bytes32 {
	return attesta.Blake2b([]byte("a"), addr.Bytes())
}

// Rewards binder of the reward balance sheet.
type Rewards struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Rewards {
	return &Rewards{addr, state}
}

func (r *Rewards) getAmount(key attesta.Bytes32) (*big.Int, error) {
	v := new(big.Int)
	if err := r.state.GetStructuredStorage(r.addr, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Rewards) setAmount(key attesta.Bytes32, v *big.Int) error {
	return r.state.SetStructuredStorage(r.addr, key, v)
}

// Get returns the claimable balance of an account.
func (r *Rewards) Get(account attesta.Address) (*big.Int, error) {
	return r.getAmount(accountKey(account))
}

// Add credits amount to the account's claimable balance.
func (r *Rewards) Add(account attesta.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := r.Get(account)
	if err != nil {
		return err
	}
	if err := r.setAmount(accountKey(account), new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	total, err := r.getAmount(totalAllocatedKey)
	if err != nil {
		return err
	}
	return r.setAmount(totalAllocatedKey, total.Add(total, amount))
}

// Sub debits amount from the account's claimable balance.
// Returns false without mutating when the balance is insufficient.
func (r *Rewards) Sub(account attesta.Address, amount *big.Int) (bool, error) {
	bal, err := r.Get(account)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	if amount.Sign() == 0 {
		return true, nil
	}
	if err := r.setAmount(accountKey(account), new(big.Int).Sub(bal, amount)); err != nil {
		return false, err
	}
	total, err := r.getAmount(totalClaimedKey)
	if err != nil {
		return false, err
	}
	if err := r.setAmount(totalClaimedKey, total.Add(total, amount)); err != nil {
		return false, err
	}
	return true, nil
}

// TotalAllocated returns the sum of all rewards ever credited.
func (r *Rewards) TotalAllocated() (*big.Int, error) {
	return r.getAmount(totalAllocatedKey)
}

// TotalClaimed returns the sum of all rewards ever withdrawn.
func (r *Rewards) TotalClaimed() (*big.Int, error) {
	return r.getAmount(totalClaimedKey)
}
