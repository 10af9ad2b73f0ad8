// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides a channel closed by the next broadcast.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces that new state was committed. Unlike sync.Cond it is
// channel based, so waiting can be part of a select.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes every waiter.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.current())
	s.ch = make(chan struct{})
}

// NewWaiter creates a Waiter. Each call to C returns the channel of the
// next broadcast after the previous one was consumed, so no broadcast
// happening between two waits is missed.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	ref := s.current()
	s.mu.Unlock()

	return waiterFunc(func() <-chan struct{} {
		ch := ref

		s.mu.Lock()
		ref = s.current()
		s.mu.Unlock()

		return ch
	})
}

type waiterFunc func() <-chan struct{}

func (w waiterFunc) C() <-chan struct{} {
	return w()
}
