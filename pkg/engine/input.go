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

package engine

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/machine"
)

func keyIndex(i int) (uint8, error) {
	if i < 0 || i >= machine.NumKeys {
		return 0, fmt.Errorf("%w: %d", ErrInvalidKey, i)
	}

	return uint8(i), nil
}

// InjectKey queues a held press or release. It takes effect at the start of
// the next cycle. Safe to call from any goroutine.
func (e *Engine) InjectKey(i int, pressed bool) error {
	key, err := keyIndex(i)
	if err != nil {
		return err
	}

	action := machine.KeyRelease
	if pressed {
		action = machine.KeyPress
	}

	e.mc.Keys.Enqueue(machine.KeyOp{Key: key, Action: action})

	return nil
}

// TapKey queues a press that releases itself after Config.TapCycles cycles.
func (e *Engine) TapKey(i int) error {
	key, err := keyIndex(i)
	if err != nil {
		return err
	}

	e.mc.Keys.Enqueue(machine.KeyOp{Key: key, Action: machine.KeyTap})

	return nil
}

// DirectKeys exposes the keypad for immediate writes with Keypad.Set. Such
// writes may land in the middle of a cycle.
func (e *Engine) DirectKeys() *machine.Keypad {
	return &e.mc.Keys
}
