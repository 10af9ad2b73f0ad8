// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry tracks ownership of the collectible items.
package registry

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
)

var (
	ErrNotMinter        = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "caller is not the minter")
	ErrAlreadyMinted    = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "item already minted")
	ErrInvalidRecipient = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "invalid recipient")
	ErrNotFound         = reverts.New("item not found")
	ErrNotHolder        = reverts.New("caller is not the holder")

	transferEvent = abi.MustNew(gen.MustABI("Registry")).MustEventByName("Transfer")

	slotMinter      = thor.BytesToBytes32([]byte("minter"))
	slotOwners      = thor.BytesToBytes32([]byte("owners"))
	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
	slotBaseURI     = thor.BytesToBytes32([]byte("base-uri"))
)

type itemID uint64

func (i itemID) Bytes() []byte {
	b := thor.Uint64ToBytes32(uint64(i))
	return b[:]
}

// Registry implements the native collectible registry.
type Registry struct {
	sctx        *solidity.Context
	emitter     tx.Emitter
	minter      *solidity.Address
	owners      *solidity.Mapping[itemID, thor.Address]
	balances    *solidity.Mapping[thor.Address, uint64]
	totalSupply *solidity.Uint256
}

// New creates the binder. emitter may be nil.
func New(addr thor.Address, state *state.State, emitter tx.Emitter) *Registry {
	sctx := solidity.NewContext(addr, state)
	return &Registry{
		sctx:        sctx,
		emitter:     emitter,
		minter:      solidity.NewAddress(sctx, slotMinter),
		owners:      solidity.NewMapping[itemID, thor.Address](sctx, slotOwners),
		balances:    solidity.NewMapping[thor.Address, uint64](sctx, slotBalances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (r *Registry) emitTransfer(from, to thor.Address, id uint64) error {
	if r.emitter == nil {
		return nil
	}
	ev, err := transferEvent.Build(r.sctx.Address(), []any{from, to, id})
	if err != nil {
		return err
	}
	r.emitter.Emit(ev)
	return nil
}

// SetMinter grants the mint/burn right. Used at genesis.
func (r *Registry) SetMinter(minter thor.Address) {
	r.minter.Set(&minter)
}

// Minter returns the address allowed to mint and burn.
func (r *Registry) Minter() (thor.Address, error) {
	return r.minter.Get()
}

func (r *Registry) requireMinter(caller thor.Address) error {
	minter, err := r.minter.Get()
	if err != nil {
		return err
	}
	if minter.IsZero() || minter != caller {
		return ErrNotMinter
	}
	return nil
}

func (r *Registry) addBalance(addr thor.Address, delta int64) error {
	bal, err := r.balances.Get(addr)
	if err != nil {
		return err
	}
	return r.balances.Set(addr, uint64(int64(bal)+delta))
}

// OwnerOf returns the current holder of id.
func (r *Registry) OwnerOf(id uint64) (thor.Address, error) {
	owner, err := r.owners.Get(itemID(id))
	if err != nil {
		return thor.Address{}, err
	}
	if owner.IsZero() {
		return thor.Address{}, ErrNotFound
	}
	return owner, nil
}

// BalanceOf returns how many items addr holds.
func (r *Registry) BalanceOf(addr thor.Address) (uint64, error) {
	return r.balances.Get(addr)
}

// TotalSupply returns the count of outstanding items.
func (r *Registry) TotalSupply() (uint64, error) {
	v, err := r.totalSupply.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Mint assigns a new item id to `to`. Only the minter may call it.
func (r *Registry) Mint(caller, to thor.Address, id uint64) error {
	if err := r.requireMinter(caller); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	owner, err := r.owners.Get(itemID(id))
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrAlreadyMinted
	}
	if err := r.owners.Set(itemID(id), to); err != nil {
		return err
	}
	if err := r.addBalance(to, 1); err != nil {
		return err
	}
	if err := r.totalSupply.Add(big.NewInt(1)); err != nil {
		return err
	}
	return r.emitTransfer(thor.Address{}, to, id)
}

// Burn destroys item id. Only the minter may call it.
func (r *Registry) Burn(caller thor.Address, id uint64) error {
	if err := r.requireMinter(caller); err != nil {
		return err
	}
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	r.owners.Delete(itemID(id))
	if err := r.addBalance(owner, -1); err != nil {
		return err
	}
	if err := r.totalSupply.Sub(big.NewInt(1)); err != nil {
		return err
	}
	return r.emitTransfer(owner, thor.Address{}, id)
}

// Transfer moves item id from the caller to `to`.
func (r *Registry) Transfer(caller, to thor.Address, id uint64) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotHolder
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if err := r.owners.Set(itemID(id), to); err != nil {
		return err
	}
	if err := r.addBalance(owner, -1); err != nil {
		return err
	}
	if err := r.addBalance(to, 1); err != nil {
		return err
	}
	return r.emitTransfer(owner, to, id)
}

// SetBaseURI sets the prefix of item metadata URIs.
func (r *Registry) SetBaseURI(uri string) error {
	return r.sctx.State().EncodeStorage(r.sctx.Address(), slotBaseURI, func() ([]byte, error) {
		return rlp.EncodeToBytes(uri)
	})
}

// TokenURI returns the metadata URI of an outstanding item.
func (r *Registry) TokenURI(id uint64) (string, error) {
	if _, err := r.OwnerOf(id); err != nil {
		return "", err
	}
	var base string
	err := r.sctx.State().DecodeStorage(r.sctx.Address(), slotBaseURI, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &base)
	})
	if err != nil {
		return "", err
	}
	return base + strconv.FormatUint(id, 10), nil
}
