// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarshalUnmarshall(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var unmarshaledValue Bytes32

	err := unmarshaledValue.UnmarshalJSON([]byte(originalHex))
	assert.NoError(t, err)

	err = json.Unmarshal([]byte(originalHex), &unmarshaledValue)
	assert.NoError(t, err)

	directMarshallJson, err := unmarshaledValue.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(directMarshallJson))

	marshalVal, err := json.Marshal(unmarshaledValue)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(marshalVal))

	marshalPtr, err := json.Marshal(&unmarshaledValue)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(marshalPtr))
}

func TestParseBytes32(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x0000000000000000000000000000000000000000000000000000000000000001", false},
		{"0000000000000000000000000000000000000000000000000000000000000001", false},
		{"0y0000000000000000000000000000000000000000000000000000000000000001", true},
		{"0x01", true},
		{"0xzz00000000000000000000000000000000000000000000000000000000000001", true},
	}
	for _, tt := range tests {
		_, err := ParseBytes32(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}

	assert.Equal(t, Bytes32{31: 7}, Uint64ToBytes32(7))
	assert.Equal(t, Bytes32{31: 1}, BytesToBytes32([]byte{1}))
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))

	data, err := json.Marshal(addr)
	assert.NoError(t, err)

	var decoded Address
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
	assert.True(t, Address{}.IsZero())
	assert.False(t, addr.IsZero())
}
