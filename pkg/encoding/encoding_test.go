// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/gochip8/pkg/encoding"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		Input  string
		Output uint16
		Valid  bool
	}{
		{"0x200", 0x200, true},
		{"x200", 0x200, true},
		{"0XFF", 0xFF, true},
		{"200", 0, false},
		{"0x", 0, false},
		{"1x20", 0, false},
		{"0x10000", 0, false},
	}

	for _, test := range tests {
		have, err := encoding.DecodeHex(test.Input)

		if test.Valid {
			assert.NoError(t, err, test.Input)
			assert.Equal(t, test.Output, have, test.Input)
		} else {
			assert.Error(t, err, test.Input)
		}
	}
}

func TestDecodeInt(t *testing.T) {
	have, err := encoding.DecodeInt("#123")
	assert.NoError(t, err)
	assert.Equal(t, int16(123), have)

	have, err = encoding.DecodeInt("-4")
	assert.NoError(t, err)
	assert.Equal(t, int16(-4), have)

	_, err = encoding.DecodeInt("abc")
	assert.Error(t, err)
}

func TestDecodeAddr(t *testing.T) {
	have, err := encoding.DecodeAddr("0x2A0")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x2A0), have)

	have, err = encoding.DecodeAddr("512")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200), have)

	_, err = encoding.DecodeAddr("0x1000")
	assert.ErrorIs(t, err, encoding.ErrRange)

	_, err = encoding.DecodeAddr("-1")
	assert.ErrorIs(t, err, encoding.ErrRange)
}

func TestDecodeByte(t *testing.T) {
	have, err := encoding.DecodeByte("xFF")
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xFF), have)

	_, err = encoding.DecodeByte("256")
	assert.ErrorIs(t, err, encoding.ErrRange)
}

func TestDecodeRegister(t *testing.T) {
	have, err := encoding.DecodeRegister("vF")
	assert.NoError(t, err)
	assert.Equal(t, 15, have)

	have, err = encoding.DecodeRegister("V0")
	assert.NoError(t, err)
	assert.Equal(t, 0, have)

	for _, bad := range []string{"VG", "R1", "V10", ""} {
		_, err := encoding.DecodeRegister(bad)
		assert.ErrorIs(t, err, encoding.ErrRegister, bad)
	}
}
