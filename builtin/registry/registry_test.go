// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/lvldb"
	"github.com/attesta-net/attesta/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestRegistry(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := state.New(db)

	u1 := attesta.BytesToAddress([]byte("u1"))
	reg := New(attesta.BytesToAddress([]byte("registry")), st)

	tests := []struct {
		ret      interface{}
		expected interface{}
	}{
		{M(reg.Add(u1, []byte{1, 2, 3}, 1000)), M(true, nil)},
		// duplicate registration is rejected, never merged
		{M(reg.Add(u1, []byte{9, 9, 9}, 2000)), M(false, nil)},
		{M(reg.Get(u1)), M(&User{PubKey: []byte{1, 2, 3}, BornAt: 1000, Status: StatusRegistered}, nil)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret)
	}
}

func TestStatusMonotonic(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := state.New(db)

	u1 := attesta.BytesToAddress([]byte("u1"))
	reg := New(attesta.BytesToAddress([]byte("registry")), st)

	// unknown user
	assert.Equal(t, M(false, nil), M(reg.SetStatus(u1, StatusVerified)))

	_, err := reg.Add(u1, nil, 1000)
	assert.Nil(t, err)

	assert.Equal(t, M(true, nil), M(reg.SetStatus(u1, StatusVerified)))
	assert.Equal(t, M(true, nil), M(reg.SetStatus(u1, StatusActive)))

	// backwards and repeated transitions are rejected
	assert.Equal(t, M(false, nil), M(reg.SetStatus(u1, StatusVerified)))
	assert.Equal(t, M(false, nil), M(reg.SetStatus(u1, StatusActive)))
}
