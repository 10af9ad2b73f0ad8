// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle is the VRF backed randomness service. Consumers submit a
// request and receive the random words through a single callback once the
// operator has proven the request.
package oracle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakemint/abi"
	"github.com/vechain/stakemint/builtin/gen"
	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/builtin/solidity"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/state"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/vrf"
)

var (
	ErrNotOperator      = reverts.New("caller is not the oracle operator")
	ErrNoOperator       = reverts.New("oracle operator not set")
	ErrUnknownRequest   = reverts.New("unknown randomness request")
	ErrAlreadyFulfilled = reverts.New("randomness request already fulfilled")
	ErrNotReady         = reverts.New("randomness request not ready")
	ErrInvalidProof     = reverts.NewWithKind(reverts.ExternalCollaboratorFailure, "invalid randomness proof")

	logger = log.WithContext("pkg", "oracle")

	oracleABI      = abi.MustNew(gen.MustABI("Oracle"))
	requestedEvent = oracleABI.MustEventByName("RandomWordsRequested")
	fulfilledEvent = oracleABI.MustEventByName("RandomWordsFulfilled")

	slotOperator     = thor.BytesToBytes32([]byte("operator"))
	slotNonce        = thor.BytesToBytes32([]byte("nonce"))
	slotRequests     = thor.BytesToBytes32([]byte("requests"))
	slotPendingSize  = thor.BytesToBytes32([]byte("pending-size"))
	slotPendingAt    = thor.BytesToBytes32([]byte("pending-at"))
	slotPendingIndex = thor.BytesToBytes32([]byte("pending-index"))
)

// Params are the per-request knobs a consumer passes through.
type Params struct {
	KeyHash          thor.Bytes32
	CallbackGasLimit uint64
	Confirmations    uint64
	NumWords         uint64
}

// Request is the oracle's own record of a randomness request.
type Request struct {
	Consumer         thor.Address
	KeyHash          thor.Bytes32
	CallbackGasLimit uint64
	NumWords         uint64
	RequestedAt      uint64
	ReadyAt          uint64
	Fulfilled        bool
}

// Consumer receives random words. It is called at most once per handle.
type Consumer interface {
	Fulfill(handle thor.Bytes32, words []*big.Int) error
}

// ConsumerResolver maps a consumer address to its callback target.
type ConsumerResolver func(addr thor.Address) (Consumer, bool)

type index uint64

func (i index) Bytes() []byte {
	b := thor.Uint64ToBytes32(uint64(i))
	return b[:]
}

// Oracle binder of the randomness module.
type Oracle struct {
	sctx         *solidity.Context
	emitter      tx.Emitter
	consumers    ConsumerResolver
	nonce        *solidity.Uint256
	requests     *solidity.Mapping[thor.Bytes32, *Request]
	pendingSize  *solidity.Uint256
	pendingAt    *solidity.Mapping[index, thor.Bytes32]
	pendingIndex *solidity.Mapping[thor.Bytes32, uint64]
}

// New creates the binder. emitter and consumers may be nil.
func New(addr thor.Address, state *state.State, emitter tx.Emitter, consumers ConsumerResolver) *Oracle {
	sctx := solidity.NewContext(addr, state)
	return &Oracle{
		sctx:         sctx,
		emitter:      emitter,
		consumers:    consumers,
		nonce:        solidity.NewUint256(sctx, slotNonce),
		requests:     solidity.NewMapping[thor.Bytes32, *Request](sctx, slotRequests),
		pendingSize:  solidity.NewUint256(sctx, slotPendingSize),
		pendingAt:    solidity.NewMapping[index, thor.Bytes32](sctx, slotPendingAt),
		pendingIndex: solidity.NewMapping[thor.Bytes32, uint64](sctx, slotPendingIndex),
	}
}

// Address returns the oracle's own address.
func (o *Oracle) Address() thor.Address {
	return o.sctx.Address()
}

func (o *Oracle) emit(ev *abi.Event, indexed []any, args ...any) error {
	if o.emitter == nil {
		return nil
	}
	built, err := ev.Build(o.sctx.Address(), indexed, args...)
	if err != nil {
		return err
	}
	o.emitter.Emit(built)
	return nil
}

// SetOperator registers the compressed public key of the proving operator.
func (o *Oracle) SetOperator(pub []byte) error {
	if _, err := vrf.Signer(pub); err != nil {
		return err
	}
	return o.sctx.State().EncodeStorage(o.sctx.Address(), slotOperator, func() ([]byte, error) {
		return rlp.EncodeToBytes(pub)
	})
}

// Operator returns the operator key and its address.
func (o *Oracle) Operator() (pub []byte, addr thor.Address, err error) {
	err = o.sctx.State().DecodeStorage(o.sctx.Address(), slotOperator, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &pub)
	})
	if err != nil {
		return nil, thor.Address{}, err
	}
	if len(pub) == 0 {
		return nil, thor.Address{}, ErrNoOperator
	}
	addr, err = vrf.Signer(pub)
	return
}

// Request records a new randomness request and returns its handle.
func (o *Oracle) Request(consumer thor.Address, params Params, now uint64) (thor.Bytes32, error) {
	nonce, err := o.nonce.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	handle := thor.Blake2b(consumer.Bytes(), thor.BytesToBytes32(nonce.Bytes()).Bytes())
	o.nonce.Set(nonce.Add(nonce, big.NewInt(1)))

	req := &Request{
		Consumer:         consumer,
		KeyHash:          params.KeyHash,
		CallbackGasLimit: params.CallbackGasLimit,
		NumWords:         params.NumWords,
		RequestedAt:      now,
		ReadyAt:          now + params.Confirmations*thor.BlockInterval,
	}
	if err := o.requests.Set(handle, req); err != nil {
		return thor.Bytes32{}, err
	}
	if err := o.pushPending(handle); err != nil {
		return thor.Bytes32{}, err
	}

	logger.Debug("randomness requested", "handle", handle, "consumer", consumer, "readyAt", req.ReadyAt)
	if err := o.emit(requestedEvent, []any{handle, consumer},
		params.KeyHash, params.CallbackGasLimit, params.NumWords, req.ReadyAt); err != nil {
		return thor.Bytes32{}, err
	}
	return handle, nil
}

// Get returns the request record, or nil if unknown.
func (o *Oracle) Get(handle thor.Bytes32) (*Request, error) {
	exists, err := o.requests.Exists(handle)
	if err != nil || !exists {
		return nil, err
	}
	return o.requests.Get(handle)
}

// Pending lists unfulfilled request handles, at most limit if limit > 0.
func (o *Oracle) Pending(limit uint64) ([]thor.Bytes32, error) {
	size, err := o.pendingLen()
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < size {
		size = limit
	}
	handles := make([]thor.Bytes32, 0, size)
	for i := range size {
		h, err := o.pendingAt.Get(index(i))
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Fulfill verifies the operator's proof for handle and delivers the derived
// words to the consumer.
func (o *Oracle) Fulfill(caller thor.Address, handle thor.Bytes32, proof []byte, now uint64) error {
	pub, operator, err := o.Operator()
	if err != nil {
		return err
	}
	if caller != operator {
		return ErrNotOperator
	}
	req, err := o.Get(handle)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrUnknownRequest
	}
	if req.Fulfilled {
		return ErrAlreadyFulfilled
	}
	if now < req.ReadyAt {
		return ErrNotReady
	}
	beta, err := vrf.VerifyCompressed(pub, handle.Bytes(), proof)
	if err != nil {
		return ErrInvalidProof.Wrap(err)
	}

	req.Fulfilled = true
	if err := o.requests.Set(handle, req); err != nil {
		return err
	}
	if err := o.removePending(handle); err != nil {
		return err
	}
	if err := o.emit(fulfilledEvent, []any{handle, req.Consumer}, thor.BytesToBytes32(beta)); err != nil {
		return err
	}

	words := vrf.Words(beta, req.NumWords)
	if o.consumers != nil {
		if consumer, ok := o.consumers(req.Consumer); ok {
			if err := consumer.Fulfill(handle, words); err != nil {
				return err
			}
		}
	}
	logger.Info("randomness fulfilled", "handle", handle, "consumer", req.Consumer, "words", len(words))
	return nil
}

func (o *Oracle) pendingLen() (uint64, error) {
	size, err := o.pendingSize.Get()
	if err != nil {
		return 0, err
	}
	return size.Uint64(), nil
}

func (o *Oracle) pushPending(handle thor.Bytes32) error {
	size, err := o.pendingLen()
	if err != nil {
		return err
	}
	if err := o.pendingAt.Set(index(size), handle); err != nil {
		return err
	}
	if err := o.pendingIndex.Set(handle, size+1); err != nil {
		return err
	}
	o.pendingSize.Set(new(big.Int).SetUint64(size + 1))
	return nil
}

// removePending swaps the entry with the last one and shrinks the queue.
func (o *Oracle) removePending(handle thor.Bytes32) error {
	pos, err := o.pendingIndex.Get(handle)
	if err != nil || pos == 0 {
		return err
	}
	size, err := o.pendingLen()
	if err != nil {
		return err
	}
	last := size - 1
	if pos-1 != last {
		lastHandle, err := o.pendingAt.Get(index(last))
		if err != nil {
			return err
		}
		if err := o.pendingAt.Set(index(pos-1), lastHandle); err != nil {
			return err
		}
		if err := o.pendingIndex.Set(lastHandle, pos); err != nil {
			return err
		}
	}
	o.pendingAt.Delete(index(last))
	o.pendingIndex.Delete(handle)
	o.pendingSize.Set(new(big.Int).SetUint64(last))
	return nil
}
