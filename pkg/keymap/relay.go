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

package keymap

// Injector receives keypad input. *engine.Engine satisfies it.
type Injector interface {
	InjectKey(i int, pressed bool) error
	TapKey(i int) error
}

type Mode uint8

const (
	// Press sets the key, release clears it. For sources with key-up events.
	Held Mode = iota

	// Press taps the key, release is ignored. For sources that only report
	// key-down, such as a terminal.
	Transient
)

// Relay forwards physical key events to an Injector through a Keymap.
type Relay struct {
	Keymap Keymap
	Target Injector
	Mode   Mode
}

// Press reports whether sym is mapped. Unmapped symbols are ignored.
func (r *Relay) Press(sym rune) bool {
	i, ok := r.Keymap.Lookup(sym)
	if !ok {
		return false
	}

	if r.Mode == Transient {
		return r.Target.TapKey(i) == nil
	}

	return r.Target.InjectKey(i, true) == nil
}

func (r *Relay) Release(sym rune) bool {
	i, ok := r.Keymap.Lookup(sym)
	if !ok {
		return false
	}

	if r.Mode == Transient {
		return true
	}

	return r.Target.InjectKey(i, false) == nil
}
