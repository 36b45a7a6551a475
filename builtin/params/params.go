// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the governance parameter table.
package params

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/state"
)

// Params binder of the governance parameter table.
type Params struct {
	addr  attesta.Address
	state *state.State
}

// New create a new instance.
func New(addr attesta.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get native way to get param.
func (p *Params) Get(key attesta.Bytes32) (*big.Int, error) {
	v := new(big.Int)
	if err := p.state.GetStructuredStorage(p.addr, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Set native way to set param.
func (p *Params) Set(key attesta.Bytes32, value *big.Int) error {
	return p.state.SetStructuredStorage(p.addr, key, value)
}
