// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/thor"
)

// ConfigVariable is a compile time default that can be overridden by a
// non-zero value in the module's storage slot named after the variable.
// It holds no mutable state, so one instance is shared by every binding.
type ConfigVariable struct {
	slot         thor.Bytes32
	name         string
	defaultValue uint64
}

func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		slot:         thor.BytesToBytes32([]byte(name)),
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Default() uint64 {
	return c.defaultValue
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() thor.Bytes32 {
	return c.slot
}

// Get returns the override stored under ctx, or the default when none is set.
func (c *ConfigVariable) Get(ctx *Context) (uint64, error) {
	storage, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		return 0, err
	}
	num := new(big.Int).SetBytes(storage.Bytes())
	if num.Sign() != 0 && num.IsUint64() {
		log.Trace("config override in use", "slot", c.Name(), "value", num.Uint64())
		return num.Uint64(), nil
	}
	return c.defaultValue, nil
}

// Override stores value under ctx. Zero restores the default.
func (c *ConfigVariable) Override(ctx *Context, value uint64) {
	ctx.state.SetStorage(ctx.address, c.slot, thor.Uint64ToBytes32(value))
}
