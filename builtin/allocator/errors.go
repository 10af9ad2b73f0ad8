// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocator

import (
	"github.com/vechain/stakemint/builtin/reverts"
)

var (
	ErrNotOwner               = reverts.New("caller is not the staker")
	ErrAlreadyResolved        = reverts.New("request already resolved")
	ErrRandomNotReady         = reverts.New("randomness not delivered")
	ErrAlreadyClaimed         = reverts.New("request already claimed")
	ErrRandomAlreadyDelivered = reverts.New("randomness already delivered")
	ErrCooldownNotMet         = reverts.New("no-randomness cooldown not elapsed")
	ErrNotHolder              = reverts.New("caller is not the item holder")
	ErrInvalidIdentifier      = reverts.New("identifier is not minted")
	ErrWaitPeriodNotMet       = reverts.New("burn wait period not elapsed")
	ErrNotAdmin               = reverts.New("caller is not the admin")
	ErrReentrant              = reverts.New("reentrant call")
	ErrInvalidParams          = reverts.New("randomness params must request at least one word")

	ErrPoolExhausted = reverts.NewWithKind(reverts.ResourceExhaustion, "identifier pool exhausted")

	ErrTransferFailed = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "value transfer failed")
	ErrMintFailed     = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "mint failed")
	ErrBurnFailed     = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "burn failed")
)

// collaboratorErr maps a rejection by a collaborator onto sentinel.
// Storage failures pass through untouched.
func collaboratorErr(sentinel *reverts.ErrRevert, err error) error {
	if reverts.IsRevertErr(err) {
		return sentinel.Wrap(err)
	}
	return err
}
