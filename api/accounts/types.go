// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/builtin"
	"github.com/vechain/stakemint/thor"
)

// Account for marshal account
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	// amount the allocator may still pull for stakes
	Allowance *math.HexOrDecimal256 `json:"allowance"`
	Items     uint64                `json:"items"`
	// next nonce a signed request of this account must carry
	Nonce uint64 `json:"nonce"`
}

// ApproveRequest sets the allowance of spender. A missing spender means the allocator.
type ApproveRequest struct {
	utils.Signed
	Spender *thor.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

func (r *ApproveRequest) spender() thor.Address {
	if r.Spender != nil {
		return *r.Spender
	}
	return builtin.Allocator.Address
}

func (r *ApproveRequest) Call() *utils.Call {
	return utils.NewCall("accounts/approve", &r.Signed, r.spender(), (*big.Int)(r.Amount))
}

type TransferRequest struct {
	utils.Signed
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func (r *TransferRequest) Call() *utils.Call {
	return utils.NewCall("accounts/transfer", &r.Signed, r.To, (*big.Int)(r.Amount))
}
