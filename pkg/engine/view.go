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

import "github.com/lassandro/gochip8/pkg/machine"

// The accessors below read the live machine. Results are only consistent
// while the engine is parked in a dispatch or stopped.

func (e *Engine) Pixel(x, y int) bool {
	return e.mc.Pixel(x, y)
}

func (e *Engine) Timers() machine.Timers {
	return e.mc.Timers()
}

func (e *Engine) KeyMask() uint16 {
	return e.mc.KeyMask()
}

func (e *Engine) Registers() machine.Registers {
	return e.mc.Registers()
}

func (e *Engine) Peek(addr uint16) byte {
	return e.mc.Peek(addr)
}
