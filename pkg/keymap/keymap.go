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

// Package keymap translates physical key symbols to keypad indices.
package keymap

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/lassandro/gochip8/pkg/machine"
)

var (
	ErrLength    = errors.New("keymap needs exactly 16 symbols")
	ErrDuplicate = errors.New("keymap symbol used twice")
)

// Keymap maps keypad index i to the symbol at position i.
type Keymap [machine.NumKeys]rune

var (
	// Default is a QWERTY layout over the 4x4 block at 1-4 / Z-V.
	Default = MustParse("X123QWEASDZC4RFV")

	// Hex maps every key to its own hex digit.
	Hex = MustParse("0123456789ABCDEF")
)

func Parse(s string) (Keymap, error) {
	var km Keymap

	if utf8.RuneCountInString(s) != machine.NumKeys {
		return km, fmt.Errorf("%w: %q", ErrLength, s)
	}

	i := 0
	for _, r := range s {
		r = unicode.ToUpper(r)

		for j := 0; j < i; j++ {
			if km[j] == r {
				return km, fmt.Errorf("%w: %q", ErrDuplicate, r)
			}
		}

		km[i] = r
		i++
	}

	return km, nil
}

func MustParse(s string) Keymap {
	km, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return km
}

// Lookup returns the keypad index for sym, ignoring case.
func (km Keymap) Lookup(sym rune) (int, bool) {
	sym = unicode.ToUpper(sym)

	for i, r := range km {
		if r == sym {
			return i, true
		}
	}

	return 0, false
}

// Symbol returns the symbol bound to keypad index i.
func (km Keymap) Symbol(i int) rune {
	if i < 0 || i >= machine.NumKeys {
		return utf8.RuneError
	}

	return km[i]
}

func (km Keymap) String() string {
	return string(km[:])
}
