// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin assigns the well-known addresses of the ledger's
// builtin components and binds them to a state instance.
package builtin

import (
	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin/params"
	"github.com/attesta-net/attesta/builtin/registry"
	"github.com/attesta-net/attesta/builtin/rewards"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/builtin/staker"
	"github.com/attesta-net/attesta/builtin/tasks"
	"github.com/attesta-net/attesta/state"
)

type (
	rolesComponent    struct{ Address attesta.Address }
	paramsComponent   struct{ Address attesta.Address }
	registryComponent struct{ Address attesta.Address }
	stakerComponent   struct{ Address attesta.Address }
	tasksComponent    struct{ Address attesta.Address }
	rewardsComponent  struct{ Address attesta.Address }
)

// Builtin components at their well-known addresses.
var (
	Roles    = &rolesComponent{attesta.BytesToAddress([]byte("attesta-roles"))}
	Params   = &paramsComponent{attesta.BytesToAddress([]byte("attesta-params"))}
	Registry = &registryComponent{attesta.BytesToAddress([]byte("attesta-registry"))}
	Staker   = &stakerComponent{attesta.BytesToAddress([]byte("attesta-staker"))}
	Tasks    = &tasksComponent{attesta.BytesToAddress([]byte("attesta-tasks"))}
	Rewards  = &rewardsComponent{attesta.BytesToAddress([]byte("attesta-rewards"))}

	// LedgerAddress custody account holding stake deposits, task escrow
	// and retained slash/remainder funds.
	LedgerAddress = attesta.BytesToAddress([]byte("attesta-ledger"))
)

// Native binds the component to the given state.
func (c *rolesComponent) Native(st *state.State) *roles.Roles { return roles.New(c.Address, st) }

// Native binds the component to the given state.
func (c *paramsComponent) Native(st *state.State) *params.Params { return params.New(c.Address, st) }

// Native binds the component to the given state.
func (c *registryComponent) Native(st *state.State) *registry.Registry {
	return registry.New(c.Address, st)
}

// Native binds the component to the given state.
func (c *stakerComponent) Native(st *state.State) *staker.Staker { return staker.New(c.Address, st) }

// Native binds the component to the given state.
func (c *tasksComponent) Native(st *state.State) *tasks.Tasks { return tasks.New(c.Address, st) }

// Native binds the component to the given state.
func (c *rewardsComponent) Native(st *state.State) *rewards.Rewards {
	return rewards.New(c.Address, st)
}
