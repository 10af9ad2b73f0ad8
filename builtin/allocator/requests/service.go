// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package requests

import (
	"math/big"

	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/thor"
)

var (
	ErrDuplicateHandle = reverts.New("request handle already used")

	slotRequests      = thor.BytesToBytes32([]byte("requests"))
	slotParticipants  = thor.BytesToBytes32([]byte("participant-count"))
	slotParticipantAt = thor.BytesToBytes32([]byte("participant-at"))
	slotMinted        = thor.BytesToBytes32([]byte("minted"))
	slotMintedCount   = thor.BytesToBytes32([]byte("minted-count"))
)

// StakeRequest tracks one stake from creation to its terminal resolution.
type StakeRequest struct {
	Staker      thor.Address
	CreatedAt   uint64
	Active      bool
	RandomReady bool
	Claimed     bool
	RandomValue *big.Int
	// value locked by this request
	Amount *big.Int
}

// MintedItem is present for an identifier while it is assigned.
type MintedItem struct {
	MintedAt uint64
	Handle   thor.Bytes32
}

type itemKey uint64

func (k itemKey) Bytes() []byte {
	b := thor.Uint64ToBytes32(uint64(k))
	return b[:]
}

// Service stores stake requests, the per participant index and minted item records.
type Service struct {
	requests      *solidity.Mapping[thor.Bytes32, *StakeRequest]
	participants  *solidity.Mapping[thor.Address, uint64]
	participantAt *solidity.Mapping[thor.Bytes32, thor.Bytes32]
	minted        *solidity.Mapping[itemKey, *MintedItem]
	mintedCount   *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		requests:      solidity.NewMapping[thor.Bytes32, *StakeRequest](sctx, slotRequests),
		participants:  solidity.NewMapping[thor.Address, uint64](sctx, slotParticipants),
		participantAt: solidity.NewMapping[thor.Bytes32, thor.Bytes32](sctx, slotParticipantAt),
		minted:        solidity.NewMapping[itemKey, *MintedItem](sctx, slotMinted),
		mintedCount:   solidity.NewUint256(sctx, slotMintedCount),
	}
}

func participantKey(addr thor.Address, i uint64) thor.Bytes32 {
	return thor.Blake2b(addr.Bytes(), thor.Uint64ToBytes32(i).Bytes())
}

// Create stores a new request and appends its handle to the staker's index.
func (s *Service) Create(handle thor.Bytes32, req *StakeRequest) error {
	exists, err := s.requests.Exists(handle)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateHandle
	}
	if err := s.requests.Set(handle, req); err != nil {
		return err
	}
	count, err := s.participants.Get(req.Staker)
	if err != nil {
		return err
	}
	if err := s.participantAt.Set(participantKey(req.Staker, count), handle); err != nil {
		return err
	}
	return s.participants.Set(req.Staker, count+1)
}

// Get returns the request for handle, or nil if there is none.
func (s *Service) Get(handle thor.Bytes32) (*StakeRequest, error) {
	exists, err := s.requests.Exists(handle)
	if err != nil || !exists {
		return nil, err
	}
	return s.requests.Get(handle)
}

// Update overwrites an existing request.
func (s *Service) Update(handle thor.Bytes32, req *StakeRequest) error {
	return s.requests.Set(handle, req)
}

// ListFor returns the handles created by addr, oldest first.
func (s *Service) ListFor(addr thor.Address) ([]thor.Bytes32, error) {
	count, err := s.participants.Get(addr)
	if err != nil {
		return nil, err
	}
	handles := make([]thor.Bytes32, 0, count)
	for i := range count {
		h, err := s.participantAt.Get(participantKey(addr, i))
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// GetMinted returns the record of an assigned identifier, or nil.
func (s *Service) GetMinted(id uint64) (*MintedItem, error) {
	exists, err := s.minted.Exists(itemKey(id))
	if err != nil || !exists {
		return nil, err
	}
	return s.minted.Get(itemKey(id))
}

func (s *Service) SetMinted(id uint64, item *MintedItem) error {
	exists, err := s.minted.Exists(itemKey(id))
	if err != nil {
		return err
	}
	if err := s.minted.Set(itemKey(id), item); err != nil {
		return err
	}
	if !exists {
		return s.mintedCount.Add(big.NewInt(1))
	}
	return nil
}

func (s *Service) DeleteMinted(id uint64) error {
	exists, err := s.minted.Exists(itemKey(id))
	if err != nil || !exists {
		return err
	}
	s.minted.Delete(itemKey(id))
	return s.mintedCount.Sub(big.NewInt(1))
}

// MintedCount returns the number of outstanding minted items.
func (s *Service) MintedCount() (uint64, error) {
	n, err := s.mintedCount.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
