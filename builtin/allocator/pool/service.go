// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/thor"
)

var (
	ErrIndexOutOfRange    = reverts.New("pool index out of range")
	ErrAlreadyInitialized = reverts.New("pool already initialized")

	slotSize        = thor.BytesToBytes32([]byte("pool-size"))
	slotItems       = thor.BytesToBytes32([]byte("pool-items"))
	slotInitialized = thor.BytesToBytes32([]byte("pool-initialized"))
)

type position uint64

func (p position) Bytes() []byte {
	b := thor.Uint64ToBytes32(uint64(p))
	return b[:]
}

// Service owns the set of unassigned identifiers, stored as an indexable
// sequence. Removal swaps the target with the last element, so order is
// not preserved.
type Service struct {
	size        *solidity.Uint256
	items       *solidity.Mapping[position, uint64]
	initialized *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		size:        solidity.NewUint256(sctx, slotSize),
		items:       solidity.NewMapping[position, uint64](sctx, slotItems),
		initialized: solidity.NewUint256(sctx, slotInitialized),
	}
}

// Init fills the pool with [1, n]. It may only run once.
func (s *Service) Init(n uint64) error {
	flag, err := s.initialized.Get()
	if err != nil {
		return err
	}
	if flag.Sign() != 0 {
		return ErrAlreadyInitialized
	}
	for i := range n {
		if err := s.items.Set(position(i), i+1); err != nil {
			return err
		}
	}
	s.size.Set(new(big.Int).SetUint64(n))
	s.initialized.Set(big.NewInt(1))
	return nil
}

func (s *Service) Size() (uint64, error) {
	size, err := s.size.Get()
	if err != nil {
		return 0, err
	}
	return size.Uint64(), nil
}

// At returns the identifier stored at index i.
func (s *Service) At(i uint64) (uint64, error) {
	size, err := s.Size()
	if err != nil {
		return 0, err
	}
	if i >= size {
		return 0, ErrIndexOutOfRange
	}
	return s.items.Get(position(i))
}

// RemoveAt takes the identifier at index i out of the pool and returns it.
func (s *Service) RemoveAt(i uint64) (uint64, error) {
	size, err := s.Size()
	if err != nil {
		return 0, err
	}
	if i >= size {
		return 0, ErrIndexOutOfRange
	}
	id, err := s.items.Get(position(i))
	if err != nil {
		return 0, err
	}
	last := size - 1
	if i != last {
		tail, err := s.items.Get(position(last))
		if err != nil {
			return 0, err
		}
		if err := s.items.Set(position(i), tail); err != nil {
			return 0, err
		}
	}
	s.items.Delete(position(last))
	s.size.Set(new(big.Int).SetUint64(last))
	return id, nil
}

// Insert appends id to the pool.
func (s *Service) Insert(id uint64) error {
	size, err := s.Size()
	if err != nil {
		return err
	}
	if err := s.items.Set(position(size), id); err != nil {
		return err
	}
	s.size.Set(new(big.Int).SetUint64(size + 1))
	return nil
}

// List returns the pool in storage order.
func (s *Service) List() ([]uint64, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, size)
	for i := range size {
		id, err := s.items.Get(position(i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
