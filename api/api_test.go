// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/builtin"
	"github.com/attesta-net/attesta/builtin/staker"
	"github.com/attesta-net/attesta/cry"
	"github.com/attesta-net/attesta/genesis"
	"github.com/attesta-net/attesta/lvldb"
	"github.com/attesta-net/attesta/runtime"
	"github.com/attesta-net/attesta/state"
)

func newTestServer(t *testing.T) (*httptest.Server, *runtime.Runtime, attesta.Address) {
	key, err := crypto.GenerateKey()
	assert.Nil(t, err)
	owner := cry.PubkeyToAddress(&key.PublicKey)

	db, _ := lvldb.NewMem()
	st := state.New(db)
	cfg := genesis.Devnet(owner)
	assert.Nil(t, cfg.Bootstrap(st))

	rt := runtime.New(st, cfg.ID())
	srv := httptest.NewServer(New(rt))
	t.Cleanup(srv.Close)
	return srv, rt, owner
}

func get(t *testing.T, url string, v interface{}) int {
	res, err := http.Get(url)
	assert.Nil(t, err)
	defer res.Body.Close()
	if v != nil && res.StatusCode == http.StatusOK {
		assert.Nil(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestGetNode(t *testing.T) {
	srv, rt, _ := newTestServer(t)

	nodeAddr := attesta.BytesToAddress([]byte("node1"))
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/nodes/"+nodeAddr.String(), nil))

	_, err := builtin.Staker.Native(rt.State()).Add(nodeAddr, &staker.Node{
		RewardAddr: attesta.BytesToAddress([]byte("payout")),
		Endpoint:   "tee://node",
		BornAt:     10,
		Status:     staker.StatusRegisteredAndStaked,
		Stake:      big.NewInt(1000),
	})
	assert.Nil(t, err)

	var node Node
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/nodes/"+nodeAddr.String(), &node))
	assert.Equal(t, "tee://node", node.Endpoint)
	assert.Equal(t, big.NewInt(1000), node.Stake)

	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/nodes/not-an-address", nil))
}

func TestGetParams(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var p Params
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/params", &p))
	assert.Equal(t, attesta.InitialStakeAmount, p.StakeAmount)
	assert.Equal(t, attesta.InitialUnstakeDelay.Uint64(), p.UnstakeDelay)
	assert.False(t, p.Paused)
}

func TestGetRole(t *testing.T) {
	srv, _, owner := newTestServer(t)

	var m map[string]bool
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/roles/owner/"+owner.String(), &m))
	assert.True(t, m["member"])

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/roles/node/"+owner.String(), &m))
	assert.False(t, m["member"])

	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/roles/janitor/"+owner.String(), nil))
}

func TestGetRewards(t *testing.T) {
	srv, rt, _ := newTestServer(t)
	account := attesta.BytesToAddress([]byte("acct"))

	assert.Nil(t, builtin.Rewards.Native(rt.State()).Add(account, big.NewInt(77)))

	var bal map[string]*big.Int
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/rewards/"+account.String(), &bal))
	assert.Equal(t, big.NewInt(77), bal["balance"])

	var totals map[string]*big.Int
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/rewards", &totals))
	assert.Equal(t, big.NewInt(77), totals["allocated"])
	assert.Equal(t, big.NewInt(0), totals["claimed"])
}

func TestGetBatchAndTask(t *testing.T) {
	srv, rt, _ := newTestServer(t)

	digest := attesta.Blake2b([]byte("root"))
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/batches/"+digest.String(), nil))

	ids := []attesta.Bytes32{attesta.Blake2b([]byte("t1"))}
	_, err := builtin.Tasks.Native(rt.State()).AddBatch(digest, ids, []byte{1, 2})
	assert.Nil(t, err)

	var batch Batch
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/batches/"+digest.String(), &batch))
	assert.Equal(t, ids, batch.TaskIDs)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/tasks/"+ids[0].String(), nil))
}
