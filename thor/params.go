// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Constants of the allocation system.
const (
	// MaxIdentifier is the size of the collectible universe, identifiers are [1, MaxIdentifier].
	MaxIdentifier uint64 = 500

	// BlockInterval is the nominal spacing used to convert oracle confirmations into seconds.
	BlockInterval uint64 = 10

	InitialNoRandomnessCooldown uint64 = 60 * 60          // 1 hour
	InitialBurnWaitPeriod       uint64 = 60 * 60 * 24 * 7 // 7 days

	InitialCallbackGasLimit     uint64 = 200000
	InitialRequestConfirmations uint64 = 3
	InitialNumWords             uint64 = 1
)

// Keys of governance params.
var (
	KeyExecutorAddress      = BytesToBytes32([]byte("executor"))
	KeyStakeAmount          = BytesToBytes32([]byte("stake-amount"))
	KeyBurnWaitPeriod       = BytesToBytes32([]byte("burn-wait-period"))
	KeyVRFKeyHash           = BytesToBytes32([]byte("vrf-key-hash"))
	KeyCallbackGasLimit     = BytesToBytes32([]byte("callback-gas-limit"))
	KeyRequestConfirmations = BytesToBytes32([]byte("request-confirmations"))
	KeyNumWords             = BytesToBytes32([]byte("num-words"))

	InitialStakeAmount = new(big.Int).Mul(big.NewInt(10000), big.NewInt(1e18))
)
