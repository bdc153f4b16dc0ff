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

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrProgramSize    = errors.New("program does not fit in memory")
)

type Timers struct {
	Delay uint8
	Sound uint8
}

// Tone reports whether the sound timer is running.
func (t Timers) Tone() bool {
	return t.Sound > 0
}

// Registers is the program-visible register file.
type Registers struct {
	V     [NumRegisters]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackDepth]uint16
}

type MachineState struct {
	Registers
	Timers
	Memory      [MEMSPACE_END]byte
	Framebuffer Framebuffer
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Keys     Keypad
	Debugger MachineDebugger

	// Source for CXNN. A nil Rand uses the global generator.
	Rand *rand.Rand
}

// StepResult describes what the last instruction did that a consumer may
// care about.
type StepResult struct {
	Opcode  uint16
	Drew    bool
	Cleared bool
	Waiting bool
}

// Changed reports whether the framebuffer may have changed.
func (r StepResult) Changed() bool {
	return r.Drew || r.Cleared
}

// View is read access to shared machine state, handed to event handlers.
type View interface {
	Pixel(x, y int) bool
	Timers() Timers
	KeyMask() uint16
	Registers() Registers
	Peek(addr uint16) byte
}
