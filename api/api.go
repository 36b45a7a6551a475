// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the ledger's read-only queries over HTTP.
package api

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin/roles"
	"github.com/attesta-net/attesta/runtime"
)

// New builds the HTTP handler serving ledger queries.
func New(rt *runtime.Runtime) http.Handler {
	router := mux.NewRouter()
	a := &api{rt}

	sub := router.PathPrefix("/").Subrouter()
	sub.Path("/nodes/{address}").Methods(http.MethodGet).HandlerFunc(a.handleGetNode)
	sub.Path("/users/{address}").Methods(http.MethodGet).HandlerFunc(a.handleGetUser)
	sub.Path("/tasks/{id}").Methods(http.MethodGet).HandlerFunc(a.handleGetTask)
	sub.Path("/batches/{digest}").Methods(http.MethodGet).HandlerFunc(a.handleGetBatch)
	sub.Path("/rewards/{address}").Methods(http.MethodGet).HandlerFunc(a.handleGetRewardBalance)
	sub.Path("/rewards").Methods(http.MethodGet).HandlerFunc(a.handleGetRewardTotals)
	sub.Path("/params").Methods(http.MethodGet).HandlerFunc(a.handleGetParams)
	sub.Path("/roles/{role}/{address}").Methods(http.MethodGet).HandlerFunc(a.handleGetRole)

	return handlers.CompressHandler(
		handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet}),
		)(router))
}

type api struct {
	rt *runtime.Runtime
}

var roleIDs = map[string]attesta.Bytes32{
	"owner":     roles.Owner,
	"admin":     roles.Admin,
	"scheduler": roles.Scheduler,
	"node":      roles.Node,
	"signer":    roles.Signer,
}

// Node is the JSON presentation of a node record.
type Node struct {
	Address       attesta.Address `json:"address"`
	RewardAddr    attesta.Address `json:"rewardAddr"`
	Endpoint      string          `json:"endpoint"`
	Status        uint8           `json:"status"`
	TEEType       uint8           `json:"teeType"`
	Stake         *big.Int        `json:"stake"`
	PendingUnlock uint64          `json:"pendingUnlock,omitempty"`
}

// User is the JSON presentation of a user record.
type User struct {
	Address      attesta.Address `json:"address"`
	RegisteredAt uint64          `json:"registeredAt"`
	Status       uint8           `json:"status"`
}

// Task is the JSON presentation of a task record.
type Task struct {
	ID        attesta.Bytes32   `json:"id"`
	Provider  attesta.Address   `json:"provider"`
	CreatedAt uint64            `json:"createdAt"`
	Deadline  uint64            `json:"deadline"`
	Status    uint8             `json:"status"`
	Nodes     []attesta.Address `json:"nodes"`
	Reward    *big.Int          `json:"reward"`
	Proofs    int               `json:"proofs"`
	Rewarded  bool              `json:"rewarded"`
}

// Batch is the JSON presentation of a stored attestation batch.
type Batch struct {
	Digest  attesta.Bytes32   `json:"digest"`
	TaskIDs []attesta.Bytes32 `json:"taskIds"`
	Blob    []byte            `json:"blob"`
}

// Params is the JSON presentation of the governance params.
type Params struct {
	StakeAmount        *big.Int `json:"stakeAmount"`
	UnstakeDelay       uint64   `json:"unstakeDelay"`
	MinTaskTimeout     uint64   `json:"minTaskTimeout"`
	MaxRewardAmount    *big.Int `json:"maxRewardAmount"`
	RewardTokenEnabled bool     `json:"rewardTokenEnabled"`
	Paused             bool     `json:"paused"`
}

func (a *api) handleGetNode(w http.ResponseWriter, req *http.Request) {
	addr, err := attesta.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		http.Error(w, "address: "+err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := a.rt.Node(*addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry.IsEmpty() {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}
	unlock, err := a.rt.PendingUnlock(*addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, &Node{
		Address:       *addr,
		RewardAddr:    entry.RewardAddr,
		Endpoint:      entry.Endpoint,
		Status:        uint8(entry.Status),
		TEEType:       entry.TEEType,
		Stake:         entry.Stake,
		PendingUnlock: unlock,
	})
}

func (a *api) handleGetUser(w http.ResponseWriter, req *http.Request) {
	addr, err := attesta.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		http.Error(w, "address: "+err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := a.rt.User(*addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry.IsEmpty() {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, &User{
		Address:      *addr,
		RegisteredAt: entry.BornAt,
		Status:       uint8(entry.Status),
	})
}

func (a *api) handleGetTask(w http.ResponseWriter, req *http.Request) {
	id, err := attesta.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		http.Error(w, "id: "+err.Error(), http.StatusBadRequest)
		return
	}
	task, err := a.rt.Task(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if task.IsEmpty() {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, &Task{
		ID:        id,
		Provider:  task.Provider,
		CreatedAt: task.BornAt,
		Deadline:  task.Deadline,
		Status:    uint8(task.Status),
		Nodes:     task.Nodes,
		Reward:    task.Reward,
		Proofs:    len(task.Proofs),
		Rewarded:  task.Rewarded,
	})
}

func (a *api) handleGetBatch(w http.ResponseWriter, req *http.Request) {
	digest, err := attesta.ParseBytes32(mux.Vars(req)["digest"])
	if err != nil {
		http.Error(w, "digest: "+err.Error(), http.StatusBadRequest)
		return
	}
	batch, err := a.rt.Batch(digest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if batch.IsEmpty() {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}
	writeJSON(w, &Batch{Digest: digest, TaskIDs: batch.TaskIDs, Blob: batch.Blob})
}

func (a *api) handleGetRewardBalance(w http.ResponseWriter, req *http.Request) {
	addr, err := attesta.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		http.Error(w, "address: "+err.Error(), http.StatusBadRequest)
		return
	}
	balance, err := a.rt.RewardBalance(*addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]*big.Int{"balance": balance})
}

func (a *api) handleGetRewardTotals(w http.ResponseWriter, req *http.Request) {
	allocated, claimed, err := a.rt.RewardTotals()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]*big.Int{"allocated": allocated, "claimed": claimed})
}

func (a *api) handleGetParams(w http.ResponseWriter, _ *http.Request) {
	var (
		p   Params
		err error
	)
	if p.StakeAmount, err = a.rt.StakeAmount(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.UnstakeDelay, err = a.rt.UnstakeDelay(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.MinTaskTimeout, err = a.rt.MinTaskTimeout(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.MaxRewardAmount, err = a.rt.MaxRewardAmount(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.RewardTokenEnabled, err = a.rt.RewardTokenEnabled(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if p.Paused, err = a.rt.Paused(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, &p)
}

func (a *api) handleGetRole(w http.ResponseWriter, req *http.Request) {
	role, ok := roleIDs[mux.Vars(req)["role"]]
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	addr, err := attesta.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		http.Error(w, "address: "+err.Error(), http.StatusBadRequest)
		return
	}
	has, err := a.rt.HasRole(role, *addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"member": has})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
