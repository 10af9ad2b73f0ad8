// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/stakemint/builtin/oracle"
	"github.com/vechain/stakemint/builtin/reverts"
	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/vrf"
	"github.com/vechain/stakemint/xenv"
)

var logger = log.WithContext("pkg", "node")

// Runtime is the subset of the execution runtime the fulfiller drives.
type Runtime interface {
	Exec(caller thor.Address, fn func(env *xenv.Environment) error) (*tx.Output, error)
	View(fn func(env *xenv.Environment) error) error
	NewWaiter() co.Waiter
}

type Options struct {
	// Interval is the longest time between two rounds when nothing wakes the loop.
	Interval time.Duration
	// BatchSize caps the pending requests handled per round. 0 means all.
	BatchSize uint64
}

// Fulfiller answers the oracle's pending randomness requests with VRF
// proofs made by the operator key.
type Fulfiller struct {
	rt      Runtime
	key     *ecdsa.PrivateKey
	pub     []byte
	addr    thor.Address
	options Options
}

func NewFulfiller(rt Runtime, key *ecdsa.PrivateKey, options Options) (*Fulfiller, error) {
	pub := crypto.CompressPubkey(&key.PublicKey)
	addr, err := vrf.Signer(pub)
	if err != nil {
		return nil, err
	}
	if options.Interval <= 0 {
		options.Interval = time.Duration(thor.BlockInterval) * time.Second
	}
	return &Fulfiller{
		rt:      rt,
		key:     key,
		pub:     pub,
		addr:    addr,
		options: options,
	}, nil
}

// Address is the identity fulfillments are submitted as.
func (f *Fulfiller) Address() thor.Address {
	return f.addr
}

// CheckOperator fails unless the key is the one registered with the oracle.
func (f *Fulfiller) CheckOperator() error {
	return f.rt.View(func(env *xenv.Environment) error {
		pub, _, err := env.Builtins().Oracle.Operator()
		if err != nil {
			return err
		}
		if !bytes.Equal(pub, f.pub) {
			return errors.Errorf("oracle key mismatch, registered operator is %x", pub)
		}
		return nil
	})
}

// Run loops until ctx is done. A round runs at start, after every committed
// call, and at least once per interval.
func (f *Fulfiller) Run(ctx context.Context) {
	logger.Info("fulfiller started", "operator", f.addr, "interval", f.options.Interval)
	defer logger.Info("fulfiller stopped")

	ticker := time.NewTicker(f.options.Interval)
	defer ticker.Stop()

	for {
		// taken before the round so that calls committed during it still wake us
		waiter := f.rt.NewWaiter()
		if _, err := f.Round(); err != nil {
			logger.Warn("fulfill round failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-waiter.C():
		case <-ticker.C:
		}
	}
}

type readyRequest struct {
	handle thor.Bytes32
	req    *oracle.Request
	proof  []byte
}

func (f *Fulfiller) ready() ([]readyRequest, error) {
	var list []readyRequest
	err := f.rt.View(func(env *xenv.Environment) error {
		o := env.Builtins().Oracle
		handles, err := o.Pending(f.options.BatchSize)
		if err != nil {
			return err
		}
		for _, handle := range handles {
			req, err := o.Get(handle)
			if err != nil {
				return err
			}
			if req == nil || req.Fulfilled || req.ReadyAt > env.Time() {
				continue
			}
			list = append(list, readyRequest{handle: handle, req: req})
		}
		return nil
	})
	return list, err
}

// Round fulfills every request whose confirmation delay has elapsed and
// returns how many were fulfilled. A request the oracle rejects is skipped
// and retried next round.
func (f *Fulfiller) Round() (int, error) {
	list, err := f.ready()
	if err != nil {
		return 0, errors.Wrap(err, "list pending")
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range list {
		g.Go(func() (err error) {
			_, list[i].proof, err = vrf.Prove(f.key, list[i].handle.Bytes())
			return errors.Wrap(err, "prove")
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, r := range list {
		logger.Debug("fulfilling", "handle", r.handle, "consumer", r.req.Consumer)
		start := time.Now()
		out, err := f.rt.Exec(f.addr, func(env *xenv.Environment) error {
			return env.Builtins().Oracle.Fulfill(env.Caller(), r.handle, r.proof, env.Time())
		})
		if err != nil {
			if reverts.IsRevertErr(err) {
				metricFulfillCount().AddWithLabel(1, map[string]string{"outcome": "rejected"})
				logger.Warn("fulfillment rejected", "handle", r.handle, "err", err)
				continue
			}
			return n, err
		}
		metricFulfillCount().AddWithLabel(1, map[string]string{"outcome": "fulfilled"})
		metricFulfillDuration().Observe(time.Since(start).Milliseconds())
		metricFulfillDelay().Observe(int64(out.Time - r.req.RequestedAt))
		logger.Info("randomness delivered", "handle", r.handle, "consumer", r.req.Consumer)
		n++
	}
	return n, nil
}
