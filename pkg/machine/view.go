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

package machine

func (mc *Machine) Pixel(x, y int) bool {
	return mc.State.Framebuffer.Pixel(x, y)
}

func (mc *Machine) Timers() Timers {
	return mc.State.Timers
}

func (mc *Machine) KeyMask() uint16 {
	return mc.Keys.Mask()
}

func (mc *Machine) Registers() Registers {
	return mc.State.Registers
}

// Peek reads memory without triggering debugger watchpoints.
func (mc *Machine) Peek(addr uint16) byte {
	return mc.State.Memory[addr&0xFFF]
}

// Snapshot is a detached copy of machine state. It satisfies View and stays
// valid after the machine moves on.
type Snapshot struct {
	regs    Registers
	timers  Timers
	keys    uint16
	memory  [MEMSPACE_END]byte
	display Framebuffer
}

func (mc *Machine) Snapshot() *Snapshot {
	return &Snapshot{
		regs:    mc.State.Registers,
		timers:  mc.State.Timers,
		keys:    mc.Keys.Mask(),
		memory:  mc.State.Memory,
		display: mc.State.Framebuffer,
	}
}

func (s *Snapshot) Pixel(x, y int) bool {
	return s.display.Pixel(x, y)
}

func (s *Snapshot) Timers() Timers {
	return s.timers
}

func (s *Snapshot) KeyMask() uint16 {
	return s.keys
}

func (s *Snapshot) Registers() Registers {
	return s.regs
}

func (s *Snapshot) Peek(addr uint16) byte {
	return s.memory[addr&0xFFF]
}
