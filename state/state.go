// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the world state of the settlement ledger.
//
// The state is a flat key-value layout: native balances per address and
// raw storage slots per (ledger, key) pair, stacked on a save/restore map
// so that every operation can be checkpointed and reverted as a whole.
package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/kv"
	"github.com/attesta-net/attesta/stackedmap"
)

var (
	balanceTable = []byte("b")
	storageTable = []byte("s")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

type (
	balanceKey attesta.Address
	storageKey struct {
		addr attesta.Address
		key  attesta.Bytes32
	}
)

// State manages the world state.
type State struct {
	kv kv.GetPutter
	sm *stackedmap.StackedMap
}

// New create a state object backed by the given kv store.
func New(kv kv.GetPutter) *State {
	state := State{kv: kv}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.cacheGetter(key)
	})
	// base level, never popped
	state.sm.Push()
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key interface{}) (value interface{}, exist bool, err error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.kvGet(makeBalanceKey(attesta.Address(k)))
		if err != nil {
			return nil, false, err
		}
		bal := new(big.Int)
		if len(raw) > 0 {
			if err := rlp.DecodeBytes(raw, bal); err != nil {
				return nil, false, err
			}
		}
		return bal, true, nil
	case storageKey:
		raw, err := s.kvGet(makeStorageKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(raw), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) kvGet(key []byte) ([]byte, error) {
	raw, err := s.kv.Get(key)
	if err != nil {
		if s.kv.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func makeBalanceKey(addr attesta.Address) []byte {
	return append(append([]byte(nil), balanceTable...), addr[:]...)
}

func makeStorageKey(addr attesta.Address, key attesta.Bytes32) []byte {
	k := append(append([]byte(nil), storageTable...), addr[:]...)
	return append(k, key[:]...)
}

// GetBalance returns native balance for the given address.
func (s *State) GetBalance(addr attesta.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*big.Int), nil
}

// SetBalance set native balance for the given address.
func (s *State) SetBalance(addr attesta.Address, balance *big.Int) {
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
}

// AddBalance adds amount to the balance of the given address.
func (s *State) AddBalance(addr attesta.Address, amount *big.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	s.SetBalance(addr, new(big.Int).Add(bal, amount))
	return nil
}

// SubBalance subtracts amount from the balance of the given address.
// Returns false without mutating when the balance is insufficient.
func (s *State) SubBalance(addr attesta.Address, amount *big.Int) (bool, error) {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	s.SetBalance(addr, new(big.Int).Sub(bal, amount))
	return true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr attesta.Address, key attesta.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr attesta.Address, key attesta.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr attesta.Address, key attesta.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr attesta.Address, key attesta.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetStructuredStorage get and rlp-decode storage value into val.
// Empty storage leaves val untouched.
func (s *State) GetStructuredStorage(addr attesta.Address, key attesta.Bytes32, val interface{}) error {
	return s.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, val)
	})
}

// SetStructuredStorage rlp-encode val and set as storage value.
func (s *State) SetStructuredStorage(addr attesta.Address, key attesta.Bytes32, val interface{}) error {
	return s.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(val)
	})
}

// StorageEncoder defines the interface of storage value encoding.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder defines the interface of storage value decoding.
type StorageDecoder interface {
	Decode([]byte) error
}

// GetStorage get and decode storage value via its StorageDecoder.
func (s *State) GetStorage(addr attesta.Address, key attesta.Bytes32, dec StorageDecoder) error {
	return s.DecodeStorage(addr, key, dec.Decode)
}

// SetStorage encode storage value via its StorageEncoder and set it.
// An empty encoding deletes the slot.
func (s *State) SetStorage(addr attesta.Address, key attesta.Bytes32, enc StorageEncoder) error {
	return s.EncodeStorage(addr, key, enc.Encode)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes all cumulative changes into the underlying kv store.
func (s *State) Commit() error {
	batch := s.kv.NewBatch()
	var jerr error
	s.sm.Journal(func(k, v interface{}) bool {
		switch key := k.(type) {
		case balanceKey:
			bal := v.(*big.Int)
			if bal.Sign() == 0 {
				jerr = batch.Delete(makeBalanceKey(attesta.Address(key)))
			} else {
				var raw []byte
				if raw, jerr = rlp.EncodeToBytes(bal); jerr == nil {
					jerr = batch.Put(makeBalanceKey(attesta.Address(key)), raw)
				}
			}
		case storageKey:
			raw := v.(rlp.RawValue)
			if len(raw) == 0 {
				jerr = batch.Delete(makeStorageKey(key.addr, key.key))
			} else {
				jerr = batch.Put(makeStorageKey(key.addr, key.key), raw)
			}
		}
		return jerr == nil
	})
	if jerr != nil {
		return &Error{jerr}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
