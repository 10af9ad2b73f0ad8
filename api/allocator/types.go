// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/builtin/allocator/requests"
	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/thor"
)

// StakeCall stakes on behalf of its signer.
type StakeCall struct {
	utils.Signed
}

func (c *StakeCall) Call() *utils.Call {
	return utils.NewCall("allocator/stake", &c.Signed)
}

type ClaimCall struct {
	utils.Signed
	Handle thor.Bytes32 `json:"handle"`
}

func (c *ClaimCall) Call() *utils.Call {
	return utils.NewCall("allocator/claim", &c.Signed, c.Handle)
}

type UnwindNoRandomnessCall struct {
	utils.Signed
	Handle thor.Bytes32 `json:"handle"`
}

func (c *UnwindNoRandomnessCall) Call() *utils.Call {
	return utils.NewCall("allocator/unwind/no-randomness", &c.Signed, c.Handle)
}

type UnwindByBurnCall struct {
	utils.Signed
	Identifier uint64 `json:"identifier"`
}

func (c *UnwindByBurnCall) Call() *utils.Call {
	return utils.NewCall("allocator/unwind/burn", &c.Signed, c.Identifier)
}

type WaitPeriodCall struct {
	utils.Signed
	Seconds uint64 `json:"seconds"`
}

func (c *WaitPeriodCall) Call() *utils.Call {
	return utils.NewCall("allocator/config/wait-period", &c.Signed, c.Seconds)
}

type RandomnessParams struct {
	KeyHash          thor.Bytes32 `json:"keyHash"`
	CallbackGasLimit uint64       `json:"callbackGasLimit"`
	Confirmations    uint64       `json:"confirmations"`
	NumWords         uint64       `json:"numWords"`
}

type RandomnessParamsCall struct {
	utils.Signed
	RandomnessParams
}

func (c *RandomnessParamsCall) Call() *utils.Call {
	return utils.NewCall("allocator/config/randomness", &c.Signed,
		c.KeyHash, c.CallbackGasLimit, c.Confirmations, c.NumWords)
}

func (p *RandomnessParams) toOracle() oracle.Params {
	return oracle.Params{
		KeyHash:          p.KeyHash,
		CallbackGasLimit: p.CallbackGasLimit,
		Confirmations:    p.Confirmations,
		NumWords:         p.NumWords,
	}
}

func convertParams(p oracle.Params) RandomnessParams {
	return RandomnessParams{
		KeyHash:          p.KeyHash,
		CallbackGasLimit: p.CallbackGasLimit,
		Confirmations:    p.Confirmations,
		NumWords:         p.NumWords,
	}
}

type StakeResponse struct {
	Handle  thor.Bytes32   `json:"handle"`
	Receipt *types.Receipt `json:"receipt"`
}

type ClaimResponse struct {
	Identifier *uint64        `json:"identifier"`
	Refunded   bool           `json:"refunded"`
	Receipt    *types.Receipt `json:"receipt"`
}

type StakeRequest struct {
	Handle      thor.Bytes32          `json:"handle"`
	Staker      thor.Address          `json:"staker"`
	CreatedAt   uint64                `json:"createdAt"`
	Active      bool                  `json:"active"`
	RandomReady bool                  `json:"randomReady"`
	Claimed     bool                  `json:"claimed"`
	RandomValue *math.HexOrDecimal256 `json:"randomValue"`
	Amount      *math.HexOrDecimal256 `json:"amount"`
}

func convertRequest(handle thor.Bytes32, req *requests.StakeRequest) *StakeRequest {
	return &StakeRequest{
		Handle:      handle,
		Staker:      req.Staker,
		CreatedAt:   req.CreatedAt,
		Active:      req.Active,
		RandomReady: req.RandomReady,
		Claimed:     req.Claimed,
		RandomValue: hexOrDecimal(req.RandomValue),
		Amount:      hexOrDecimal(req.Amount),
	}
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

type MintedItem struct {
	Identifier uint64       `json:"identifier"`
	Holder     thor.Address `json:"holder"`
	MintedAt   uint64       `json:"mintedAt"`
	Handle     thor.Bytes32 `json:"handle"`
	// earliest time the item can be burned for its stake
	UnlocksAt uint64 `json:"unlocksAt"`
}

type Config struct {
	StakeAmount   *math.HexOrDecimal256 `json:"stakeAmount"`
	WaitPeriod    uint64                `json:"waitPeriod"`
	Cooldown      uint64                `json:"noRandomnessCooldown"`
	Randomness    RandomnessParams      `json:"randomness"`
	PoolSize      uint64                `json:"poolSize"`
	MintedCount   uint64                `json:"mintedCount"`
	MaxIdentifier uint64                `json:"maxIdentifier"`
}
