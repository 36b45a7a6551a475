// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes ledger operations against the world state.
//
// Every mutating operation runs inside a state checkpoint: pause gate,
// then role/credential gate, then validation, then mutation, then
// events. Any error reverts the checkpoint, so a failed operation has
// zero side effects.
package runtime

import (
	"math/big"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/registry"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/builtin/staker"
	"github.com/attesta-net/attesta/builtin/tasks"
	"github.com/attesta-net/attesta/cry"
	"github.com/attesta-net/attesta/log"
	"github.com/attesta-net/attesta/metrics"
	"github.com/attesta-net/attesta/reverts"
	"github.com/attesta-net/attesta/state"
	"github.com/attesta-net/attesta/tx"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricOpCount = metrics.LazyLoadCounterVec("operation_count", []string{"op", "result"})
)

// Env carries the call environment of one operation.
type Env struct {
	// Caller the externally authenticated sender.
	Caller attesta.Address
	// Time the ledger clock, unix seconds.
	Time uint64
	// Value native funds attached to the call. Nil means zero.
	Value *big.Int
}

func (e *Env) value() *big.Int {
	if e.Value == nil {
		return new(big.Int)
	}
	return e.Value
}

// Token is the narrow fungible-token transfer interface consumed for
// non-native reward payouts. Implementations are external collaborators.
type Token interface {
	Transfer(to attesta.Address, amount *big.Int) (bool, error)
}

// PayoutFunc moves native value out of the custody account to an
// external recipient. Payouts may re-enter the runtime, so every caller
// finalizes balance debits before invoking it.
type PayoutFunc func(to attesta.Address, amount *big.Int) error

// Runtime is the operation engine of the settlement ledger.
type Runtime struct {
	state   *state.State
	signing *cry.Signing
	token   Token
	payout  PayoutFunc
}

// New creates a runtime over the given state. The chain tag
// domain-separates every signed credential from other deployments.
func New(st *state.State, chainTag attesta.Bytes32) *Runtime {
	rt := &Runtime{
		state:   st,
		signing: cry.NewSigning(builtin.LedgerAddress, chainTag),
	}
	rt.payout = rt.nativePayout
	return rt
}

// SetToken installs the fungible-token collaborator used when the
// reward-token payout mode is enabled.
func (rt *Runtime) SetToken(token Token) {
	rt.token = token
}

// SetPayout overrides the native payout path.
func (rt *Runtime) SetPayout(payout PayoutFunc) {
	rt.payout = payout
}

// State returns the underlying state.
func (rt *Runtime) State() *state.State {
	return rt.state
}

// Signing returns the signing domain of this deployment, shared with
// off-ledger credential producers.
func (rt *Runtime) Signing() *cry.Signing {
	return rt.signing
}

func (rt *Runtime) roles() *roles.Roles          { return builtin.Roles.Native(rt.state) }
func (rt *Runtime) params() *paramsReader        { return &paramsReader{builtin.Params.Native(rt.state)} }
func (rt *Runtime) registry() *registry.Registry { return builtin.Registry.Native(rt.state) }
func (rt *Runtime) staker() *staker.Staker       { return builtin.Staker.Native(rt.state) }
func (rt *Runtime) tasks() *tasks.Tasks          { return builtin.Tasks.Native(rt.state) }

// nativePayout moves already-debited custody funds to the recipient.
func (rt *Runtime) nativePayout(to attesta.Address, amount *big.Int) error {
	return rt.state.AddBalance(to, amount)
}

// exec runs op inside a checkpoint, reverting all state changes on error.
func (rt *Runtime) exec(name string, op func(emit func(tx.Event)) error) (*tx.Receipt, error) {
	checkpoint := rt.state.NewCheckpoint()
	var events tx.Events
	emit := func(ev tx.Event) { events = append(events, ev) }
	if err := op(emit); err != nil {
		rt.state.RevertTo(checkpoint)
		metricOpCount().AddWithLabel(1, map[string]string{"op": name, "result": "reverted"})
		logger.Debug("operation reverted", "op", name, "err", err)
		return nil, err
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": name, "result": "committed"})
	return &tx.Receipt{Events: events}, nil
}

// ensureNotPaused gates every mutating entry point except Unpause.
func (rt *Runtime) ensureNotPaused() error {
	paused, err := rt.params().paused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.New(reverts.Paused, "ledger is paused")
	}
	return nil
}

// ensureRole gates an operation on role membership.
func (rt *Runtime) ensureRole(role attesta.Bytes32, account attesta.Address) error {
	has, err := rt.roles().Has(role, account)
	if err != nil {
		return err
	}
	if !has {
		return reverts.Newf(reverts.AccessDenied, "caller %v lacks required role", account)
	}
	return nil
}

// ensureSigner checks that sig over the domain-separated hash of payload
// recovers to a member of the signer role.
func (rt *Runtime) ensureSigner(payload interface{}, sig []byte) error {
	signer, err := rt.signing.Signer(payload, sig)
	if err != nil {
		return reverts.Newf(reverts.InvalidSignature, "%v", err)
	}
	has, err := rt.roles().Has(roles.Signer, signer)
	if err != nil {
		return err
	}
	if !has {
		return reverts.Newf(reverts.InvalidSignature, "recovered signer %v lacks signer role", signer)
	}
	return nil
}

// collect moves attached call value into the custody account.
func (rt *Runtime) collect(env *Env) error {
	ok, err := rt.state.SubBalance(env.Caller, env.value())
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.TransferFailure, "insufficient funds for attached value")
	}
	return rt.state.AddBalance(builtin.LedgerAddress, env.value())
}

// disburse pays already-earmarked custody funds out to the recipient,
// debiting custody before the external payout runs.
func (rt *Runtime) disburse(to attesta.Address, amount *big.Int) error {
	ok, err := rt.state.SubBalance(builtin.LedgerAddress, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.TransferFailure, "custody balance underflow")
	}
	if err := rt.payout(to, amount); err != nil {
		return reverts.Newf(reverts.TransferFailure, "%v", err)
	}
	return nil
}
