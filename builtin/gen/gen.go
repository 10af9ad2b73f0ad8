// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gen holds the event ABIs of the native modules.
package gen

import (
	"embed"
	"path"
)

//go:embed abi/*.abi
var abis embed.FS

// MustABI returns the ABI json of the named module, panics if not found.
func MustABI(name string) []byte {
	data, err := abis.ReadFile(path.Join("abi", name+".abi"))
	if err != nil {
		panic(err)
	}
	return data
}

// Names returns names of all embedded ABIs.
func Names() []string {
	entries, _ := abis.ReadDir("abi")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(".abi")])
	}
	return names
}
