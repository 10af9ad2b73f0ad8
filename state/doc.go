// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the contract storage of the native modules.
// Changes are journaled in memory, reverted through checkpoints, and
// flushed to the underlying kv store through a Stage.
package state
