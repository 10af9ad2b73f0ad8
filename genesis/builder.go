// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/runtime"
	"github.com/vechain/stakemint/thor"
	"github.com/vechain/stakemint/tx"
	"github.com/vechain/stakemint/xenv"
)

// Builder helper to build the genesis state.
type Builder struct {
	procs []func(env *xenv.Environment) error
}

// State adds a state process.
func (b *Builder) State(proc func(env *xenv.Environment) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// Build runs every process in a single call.
func (b *Builder) Build(rt *runtime.Runtime) (*tx.Output, error) {
	if rt.Initialized() {
		return nil, ErrAlreadyInitialized
	}
	out, err := rt.Exec(thor.Address{}, func(env *xenv.Environment) error {
		for i, proc := range b.procs {
			if err := proc(env); err != nil {
				return errors.Wrapf(err, "state process #%d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("genesis built", "root", out.StateRoot, "events", len(out.Events))
	return out, nil
}
