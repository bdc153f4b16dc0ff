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

package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrHex      = errors.New("Invalid hex string")
	ErrRange    = errors.New("Value out of range")
	ErrRegister = errors.New("Invalid register")
)

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, ErrHex
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

// Decodes a memory address in hex or base-10 format, 0x000 through 0xFFF
func DecodeAddr(s string) (uint16, error) {
	value, err := decodeNumber(s)

	if err != nil {
		return 0, err
	}

	if value > 0xFFF {
		return 0, fmt.Errorf("%w: %#x", ErrRange, value)
	}

	return value, nil
}

// Decodes a byte value in hex or base-10 format
func DecodeByte(s string) (uint8, error) {
	value, err := decodeNumber(s)

	if err != nil {
		return 0, err
	}

	if value > 0xFF {
		return 0, fmt.Errorf("%w: %#x", ErrRange, value)
	}

	return uint8(value), nil
}

// Decodes a register name in the formats: V0, vF
func DecodeRegister(s string) (int, error) {
	if len(s) != 2 || (s[0] != 'V' && s[0] != 'v') {
		return 0, fmt.Errorf("%w: %q", ErrRegister, s)
	}

	index, err := strconv.ParseUint(s[1:], 16, 8)

	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrRegister, s)
	}

	return int(index), nil
}

func decodeNumber(s string) (uint16, error) {
	if value, err := DecodeHex(s); err == nil {
		return value, nil
	} else if !errors.Is(err, ErrHex) {
		return 0, err
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	if value < 0 {
		return 0, fmt.Errorf("%w: %d", ErrRange, value)
	}

	return uint16(value), nil
}
