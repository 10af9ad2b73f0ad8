// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"fmt"
	"time"
)

// Eventually polls fn until it succeeds or maxWaitTime elapses, returning the
// value of the first successful call.
func Eventually[T any](fn func() (T, error), retryPeriod, maxWaitTime time.Duration) (T, error) {
	deadline := time.Now().Add(maxWaitTime)
	for {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if time.Now().After(deadline) {
			var zero T
			return zero, fmt.Errorf("retry timeout, latest err: %w", err)
		}
		time.Sleep(retryPeriod)
	}
}
