// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps a fresh ledger state: role graph wiring,
// governance param overrides and initial native allocations.
package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/state"
)

// Allocation funds an address at genesis, so stake deposits and task
// escrows can be paid on a fresh deployment.
type Allocation struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// Params optional overrides of the initial governance params.
// Amounts are decimal strings in the base unit.
type Params struct {
	StakeAmount     string `yaml:"stakeAmount,omitempty"`
	UnstakeDelay    uint64 `yaml:"unstakeDelay,omitempty"`
	MinTaskTimeout  uint64 `yaml:"minTaskTimeout,omitempty"`
	MaxRewardAmount string `yaml:"maxRewardAmount,omitempty"`
}

// Config declares the genesis of one deployment.
type Config struct {
	Name        string       `yaml:"name"`
	Owner       string       `yaml:"owner"`
	Params      Params       `yaml:"params,omitempty"`
	Allocations []Allocation `yaml:"allocations,omitempty"`
}

// LoadConfig reads a genesis config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	if cfg.Owner == "" {
		return nil, errors.New("genesis file declares no owner")
	}
	return &cfg, nil
}

// ID derives the chain tag of this deployment, domain-separating all
// signed credentials from other networks.
func (c *Config) ID() attesta.Bytes32 {
	return attesta.Blake2b([]byte(c.Name), []byte(c.Owner))
}

// Bootstrap applies the genesis config to a fresh state: the owner is
// granted the owner, admin, scheduler and signer roles, admin-of edges
// are wired, param overrides are set and allocations funded.
// The caller commits the state.
func (c *Config) Bootstrap(st *state.State) error {
	owner, err := attesta.ParseAddress(c.Owner)
	if err != nil {
		return errors.Wrap(err, "parse owner address")
	}

	r := builtin.Roles.Native(st)
	for _, edge := range []struct {
		role, admin attesta.Bytes32
	}{
		{roles.Admin, roles.Owner},
		{roles.Scheduler, roles.Admin},
		{roles.Node, roles.Admin},
		{roles.Signer, roles.Admin},
	} {
		if err := r.SetAdmin(edge.role, edge.admin); err != nil {
			return err
		}
	}
	for _, role := range []attesta.Bytes32{roles.Owner, roles.Admin, roles.Scheduler, roles.Signer} {
		if _, err := r.Grant(role, *owner); err != nil {
			return err
		}
	}

	p := builtin.Params.Native(st)
	for _, kv := range []struct {
		key attesta.Bytes32
		raw string
	}{
		{attesta.KeyStakeAmount, c.Params.StakeAmount},
		{attesta.KeyMaxRewardAmount, c.Params.MaxRewardAmount},
	} {
		if kv.raw == "" {
			continue
		}
		v, ok := new(big.Int).SetString(kv.raw, 10)
		if !ok {
			return errors.Errorf("malformed amount %q in genesis params", kv.raw)
		}
		if err := p.Set(kv.key, v); err != nil {
			return err
		}
	}
	if c.Params.UnstakeDelay != 0 {
		if err := p.Set(attesta.KeyUnstakeDelay, new(big.Int).SetUint64(c.Params.UnstakeDelay)); err != nil {
			return err
		}
	}
	if c.Params.MinTaskTimeout != 0 {
		if err := p.Set(attesta.KeyMinTaskTimeout, new(big.Int).SetUint64(c.Params.MinTaskTimeout)); err != nil {
			return err
		}
	}

	for _, alloc := range c.Allocations {
		addr, err := attesta.ParseAddress(alloc.Address)
		if err != nil {
			return errors.Wrapf(err, "parse allocation address %q", alloc.Address)
		}
		balance, ok := new(big.Int).SetString(alloc.Balance, 10)
		if !ok {
			return errors.Errorf("malformed balance %q in genesis allocations", alloc.Balance)
		}
		st.SetBalance(*addr, balance)
	}
	return nil
}

// Devnet builds a throwaway single-operator config for tests and solo
// deployments.
func Devnet(owner attesta.Address) *Config {
	return &Config{
		Name:  "devnet",
		Owner: owner.String(),
	}
}
