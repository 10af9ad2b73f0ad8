// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/api/accounts"
	"github.com/vechain/stakemint/api/allocator"
	"github.com/vechain/stakemint/api/items"
	"github.com/vechain/stakemint/api/oracle"
	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/genesis"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/runtime"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/vrf"
)

type testNode struct {
	ts      *httptest.Server
	clock   atomic.Uint64
	signing *cry.Signing

	key      *ecdsa.PrivateKey // oracle operator
	executor *ecdsa.PrivateKey
	alice    *ecdsa.PrivateKey
	bob      *ecdsa.PrivateKey
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func addr(key *ecdsa.PrivateKey) thor.Address {
	return thor.Address(crypto.PubkeyToAddress(key.PublicKey))
}

func newTestNode(t *testing.T) *testNode {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)

	n := &testNode{
		executor: newKey(t),
		alice:    newKey(t),
		bob:      newKey(t),
	}
	n.clock.Store(1_700_000_000)
	rt, err := runtime.New(db, logDB, n.clock.Load)
	require.NoError(t, err)

	n.key, err = vrf.GenerateKey()
	require.NoError(t, err)

	cfg := genesis.DevConfig(addr(n.executor), crypto.CompressPubkey(&n.key.PublicKey), addr(n.alice))
	_, err = genesis.Apply(rt, cfg)
	require.NoError(t, err)
	domain, err := cfg.Domain()
	require.NoError(t, err)
	n.signing = cry.NewSigning(domain)

	handler, closer := New(rt, logDB, Options{
		AllowedOrigins: "*",
		LogsLimit:      100,
		Domain:         domain,
	})
	n.ts = httptest.NewServer(handler)
	t.Cleanup(func() {
		closer()
		n.ts.Close()
		logDB.Close()
		db.Close()
	})
	return n
}

// sign fills s with the next nonce of key's account and signs the call.
func (n *testNode) sign(t *testing.T, key *ecdsa.PrivateKey, s *utils.Signed, call func() *utils.Call) {
	var acc accounts.Account
	require.Equal(t, http.StatusOK, n.get(t, "/accounts/"+addr(key).String(), &acc))
	s.Nonce = acc.Nonce
	require.NoError(t, call().Sign(n.signing, key))
}

func (n *testNode) balance(t *testing.T, who thor.Address) *big.Int {
	var acc accounts.Account
	require.Equal(t, http.StatusOK, n.get(t, "/accounts/"+who.String(), &acc))
	return (*big.Int)(acc.Balance)
}

func (n *testNode) post(t *testing.T, path string, body any, out any) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(n.ts.URL+path, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	if r, ok := out.(*utils.RevertResponse); ok && res.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(r))
	}
	return res.StatusCode
}

func (n *testNode) get(t *testing.T, path string, out any) int {
	res, err := http.Get(n.ts.URL + path) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestStakeFulfillClaim(t *testing.T) {
	n := newTestNode(t)
	alice := addr(n.alice)

	var cfg allocator.Config
	require.Equal(t, http.StatusOK, n.get(t, "/allocator/config", &cfg))
	assert.Equal(t, thor.InitialStakeAmount, (*big.Int)(cfg.StakeAmount))
	assert.Equal(t, thor.MaxIdentifier, cfg.PoolSize)

	// no allowance yet
	var revert utils.RevertResponse
	stake := &allocator.StakeCall{}
	n.sign(t, n.alice, &stake.Signed, stake.Call)
	assert.Equal(t, http.StatusUnprocessableEntity, n.post(t, "/allocator/stake", stake, &revert))
	assert.Equal(t, "external collaborator failure", revert.Kind)

	var receipt types.Receipt
	approve := &accounts.ApproveRequest{Amount: (*math.HexOrDecimal256)(thor.InitialStakeAmount)}
	n.sign(t, n.alice, &approve.Signed, approve.Call)
	// the failed stake consumed no nonce
	assert.Equal(t, uint64(0), approve.Nonce)
	require.Equal(t, http.StatusOK, n.post(t, "/accounts/approve", approve, &receipt))
	assert.Equal(t, alice, receipt.Caller)

	var staked allocator.StakeResponse
	n.sign(t, n.alice, &stake.Signed, stake.Call)
	require.Equal(t, http.StatusOK, n.post(t, "/allocator/stake", stake, &staked))
	assert.False(t, staked.Handle.IsZero())
	assert.NotEmpty(t, staked.Receipt.Events)

	// claiming before randomness arrives is rejected
	revert = utils.RevertResponse{}
	claim := &allocator.ClaimCall{Handle: staked.Handle}
	n.sign(t, n.alice, &claim.Signed, claim.Call)
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/allocator/claim", claim, &revert))
	assert.Equal(t, "precondition violation", revert.Kind)

	var pending []*oracle.Request
	require.Equal(t, http.StatusOK, n.get(t, "/oracle/pending", &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, staked.Handle, pending[0].Handle)

	n.clock.Store(pending[0].ReadyAt)
	_, proof, err := vrf.Prove(n.key, staked.Handle.Bytes())
	require.NoError(t, err)
	fulfill := &oracle.FulfillRequest{Handle: staked.Handle, Proof: hexutil.Bytes(proof)}
	n.sign(t, n.key, &fulfill.Signed, fulfill.Call)
	require.Equal(t, http.StatusOK, n.post(t, "/oracle/fulfill", fulfill, &receipt))

	var claimed allocator.ClaimResponse
	n.sign(t, n.alice, &claim.Signed, claim.Call)
	require.Equal(t, http.StatusOK, n.post(t, "/allocator/claim", claim, &claimed))
	assert.False(t, claimed.Refunded)
	require.NotNil(t, claimed.Identifier)
	id := *claimed.Identifier
	assert.True(t, id >= 1 && id <= thor.MaxIdentifier)

	var item items.Item
	require.Equal(t, http.StatusOK, n.get(t, "/items/"+strconv.FormatUint(id, 10), &item))
	assert.Equal(t, alice, item.Owner)
	assert.True(t, strings.HasPrefix(item.URI, "stakemint://item/"))

	var available []uint64
	require.Equal(t, http.StatusOK, n.get(t, "/allocator/identifiers", &available))
	assert.Len(t, available, int(thor.MaxIdentifier)-1)
	assert.NotContains(t, available, id)

	var list []*allocator.StakeRequest
	require.Equal(t, http.StatusOK, n.get(t, "/allocator/requests?participant="+alice.String(), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Claimed)
	assert.True(t, list[0].RandomReady)

	// bob can't claim on alice's behalf
	bobClaim := &allocator.ClaimCall{Handle: staked.Handle}
	n.sign(t, n.bob, &bobClaim.Signed, bobClaim.Call)
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/allocator/claim", bobClaim, nil))

	// alice hands the item over to bob
	transfer := &items.TransferRequest{To: addr(n.bob)}
	n.sign(t, n.alice, &transfer.Signed, func() *utils.Call { return transfer.Call(id) })
	require.Equal(t, http.StatusOK, n.post(t, "/items/"+strconv.FormatUint(id, 10)+"/transfer", transfer, &receipt))
	require.Equal(t, http.StatusOK, n.get(t, "/items/"+strconv.FormatUint(id, 10), &item))
	assert.Equal(t, addr(n.bob), item.Owner)

	var evs []*types.Event
	require.Equal(t, http.StatusOK, n.post(t, "/logs/event", &types.EventFilter{}, &evs))
	assert.NotEmpty(t, evs)
}

func TestNotFound(t *testing.T) {
	n := newTestNode(t)

	assert.Equal(t, http.StatusNotFound, n.get(t, "/items/1", nil))
	assert.Equal(t, http.StatusNotFound, n.get(t, "/allocator/minted/1", nil))
	assert.Equal(t, http.StatusNotFound, n.get(t, "/allocator/requests/"+thor.Bytes32{}.String(), nil))
	assert.Equal(t, http.StatusBadRequest, n.get(t, "/allocator/requests?participant=0x", nil))
}

func TestAdminConfigCalls(t *testing.T) {
	n := newTestNode(t)

	byAlice := &allocator.WaitPeriodCall{Seconds: 10}
	n.sign(t, n.alice, &byAlice.Signed, byAlice.Call)
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/allocator/config/wait-period", byAlice, nil))

	byExecutor := &allocator.WaitPeriodCall{Seconds: 10}
	n.sign(t, n.executor, &byExecutor.Signed, byExecutor.Call)
	require.Equal(t, http.StatusOK, n.post(t, "/allocator/config/wait-period", byExecutor, nil))

	// executor's signature over a different value does not carry over
	byExecutor.Seconds = 20
	assert.NotEqual(t, http.StatusOK, n.post(t, "/allocator/config/wait-period", byExecutor, nil))

	params := &allocator.RandomnessParamsCall{RandomnessParams: allocator.RandomnessParams{
		CallbackGasLimit: 200_000,
		Confirmations:    5,
		NumWords:         1,
	}}
	n.sign(t, n.alice, &params.Signed, params.Call)
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/allocator/config/randomness", params, nil))

	var cfg allocator.Config
	require.Equal(t, http.StatusOK, n.get(t, "/allocator/config", &cfg))
	assert.Equal(t, uint64(10), cfg.WaitPeriod)
}

func TestUnsignedCalls(t *testing.T) {
	n := newTestNode(t)
	alice := addr(n.alice)
	before := n.balance(t, alice)

	// the caller is never taken from the body
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/accounts/transfer", map[string]any{
		"caller": alice,
		"to":     addr(n.bob),
		"amount": "1",
	}, nil))
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/accounts/transfer", &accounts.TransferRequest{
		To:     addr(n.bob),
		Amount: (*math.HexOrDecimal256)(big.NewInt(1)),
	}, nil))

	garbage := &accounts.TransferRequest{
		Signed: utils.Signed{Signature: bytes.Repeat([]byte{1}, 10)},
		To:     addr(n.bob),
		Amount: (*math.HexOrDecimal256)(big.NewInt(1)),
	}
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/accounts/transfer", garbage, nil))

	assert.Equal(t, before, n.balance(t, alice))
	assert.Equal(t, 0, n.balance(t, addr(n.bob)).Sign())
}

func TestForgedCalls(t *testing.T) {
	n := newTestNode(t)
	alice, bob := addr(n.alice), addr(n.bob)
	before := n.balance(t, alice)

	// bob signs a transfer to himself, which moves bob's funds, not alice's
	drain := &accounts.TransferRequest{To: bob, Amount: (*math.HexOrDecimal256)(before)}
	n.sign(t, n.bob, &drain.Signed, drain.Call)
	assert.NotEqual(t, http.StatusOK, n.post(t, "/accounts/transfer", drain, nil))

	// alice signs a small transfer, the amount is raised after signing
	tampered := &accounts.TransferRequest{To: bob, Amount: (*math.HexOrDecimal256)(big.NewInt(1))}
	n.sign(t, n.alice, &tampered.Signed, tampered.Call)
	tampered.Amount = (*math.HexOrDecimal256)(before)
	assert.NotEqual(t, http.StatusOK, n.post(t, "/accounts/transfer", tampered, nil))

	// signed for another deployment
	foreign := &accounts.TransferRequest{To: bob, Amount: (*math.HexOrDecimal256)(big.NewInt(1))}
	n.sign(t, n.alice, &foreign.Signed, foreign.Call)
	require.NoError(t, foreign.Call().Sign(cry.NewSigning(thor.Blake2b([]byte("elsewhere"))), n.alice))
	assert.NotEqual(t, http.StatusOK, n.post(t, "/accounts/transfer", foreign, nil))

	assert.Equal(t, before, n.balance(t, alice))
	assert.Equal(t, 0, n.balance(t, bob).Sign())
}

func TestReplayedCall(t *testing.T) {
	n := newTestNode(t)
	alice, bob := addr(n.alice), addr(n.bob)
	before := n.balance(t, alice)

	transfer := &accounts.TransferRequest{To: bob, Amount: (*math.HexOrDecimal256)(big.NewInt(7))}
	n.sign(t, n.alice, &transfer.Signed, transfer.Call)
	require.Equal(t, http.StatusOK, n.post(t, "/accounts/transfer", transfer, nil))

	var revert utils.RevertResponse
	assert.Equal(t, http.StatusBadRequest, n.post(t, "/accounts/transfer", transfer, &revert))
	assert.Equal(t, "precondition violation", revert.Kind)
	assert.Contains(t, revert.Error, "nonce mismatch")

	var acc accounts.Account
	require.Equal(t, http.StatusOK, n.get(t, "/accounts/"+alice.String(), &acc))
	assert.Equal(t, uint64(1), acc.Nonce)
	assert.Equal(t, new(big.Int).Sub(before, big.NewInt(7)), (*big.Int)(acc.Balance))
	assert.Equal(t, big.NewInt(7), n.balance(t, bob))
}
