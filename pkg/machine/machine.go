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
	"fmt"
	"io"
	"math/rand/v2"
)

func (mc *MachineState) Reset() {
	mc.Registers = Registers{}
	mc.Timers = Timers{}

	for i := range mc.Memory {
		mc.Memory[i] = 0x00
	}

	copy(mc.Memory[MEMSPACE_FONT:], font[:])

	mc.Framebuffer = Framebuffer{}

	// Programs are loaded and begin execution at 0x200
	mc.PC = MEMSPACE_PROGRAM
}

// LoadBin resets the machine and copies a program image to 0x200. Returns
// the number of bytes loaded; an empty image is not an error.
func (mc *Machine) LoadBin(reader io.Reader) (int, error) {
	mc.State.Reset()
	mc.Keys.Reset()

	// Read one byte past the limit to detect oversize images
	data, err := io.ReadAll(io.LimitReader(reader, int64(MaxProgramSize)+1))

	if err != nil {
		return 0, err
	}

	if len(data) > MaxProgramSize {
		return 0, fmt.Errorf(
			"%w: more than %d bytes", ErrProgramSize, MaxProgramSize,
		)
	}

	copy(mc.State.Memory[MEMSPACE_PROGRAM:], data)

	return len(data), nil
}

func (mc *Machine) read(addr uint16) byte {
	addr &= 0xFFF

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	addr &= 0xFFF

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) push(value uint16) error {
	if int(mc.State.SP) >= StackDepth {
		return fmt.Errorf("%w at %#04x", ErrStackOverflow, mc.State.PC)
	}

	mc.State.Stack[mc.State.SP] = value
	mc.State.SP++

	return nil
}

func (mc *Machine) pop() (uint16, error) {
	if mc.State.SP == 0 {
		return 0, fmt.Errorf("%w at %#04x", ErrStackUnderflow, mc.State.PC)
	}

	mc.State.SP--

	return mc.State.Stack[mc.State.SP], nil
}

func (mc *Machine) skipIf(cond bool) {
	if cond {
		mc.State.PC = (mc.State.PC + 2) & 0xFFF
	}
}

func (mc *Machine) random() uint8 {
	if mc.Rand != nil {
		return uint8(mc.Rand.UintN(256))
	}

	return uint8(rand.UintN(256))
}

// TickTimers decrements the delay and sound timers. Called at the timer
// rate, independently of Step.
func (mc *Machine) TickTimers() {
	if mc.State.Delay > 0 {
		mc.State.Delay--
	}

	if mc.State.Sound > 0 {
		mc.State.Sound--
	}
}

// Step executes one instruction.
func (mc *Machine) Step() (StepResult, error) {
	instruction := uint16(mc.read(mc.State.PC))<<8 |
		uint16(mc.read(mc.State.PC+1))

	opcode := instruction >> 12
	x := (instruction >> 8) & 0xF
	y := (instruction >> 4) & 0xF
	n := instruction & 0xF
	nn := uint8(instruction & 0xFF)
	nnn := instruction & 0xFFF

	result := StepResult{Opcode: instruction}
	state := &mc.State

	state.PC = (state.PC + 2) & 0xFFF

	switch opcode {
	// CLS  |0000|0000|1110|0000| Clear the display
	// RET  |0000|0000|1110|1110| Return from subroutine
	// SYS  |0000|addr          | Machine code routine (ignored)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SYS:
		switch instruction {
		case 0x00E0:
			state.Framebuffer.Clear()
			result.Cleared = true

		case 0x00EE:
			addr, err := mc.pop()
			if err != nil {
				return result, err
			}

			state.PC = addr
		}

	// JP   |0001|addr          | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP:
		state.PC = nnn

	// CALL |0010|addr          | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CALL:
		if err := mc.push(state.PC); err != nil {
			return result, err
		}

		state.PC = nnn

	// SE   |0011|Vx  |byte     | Skip if Vx == byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SEI:
		mc.skipIf(state.V[x] == nn)

	// SNE  |0100|Vx  |byte     | Skip if Vx != byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNEI:
		mc.skipIf(state.V[x] != nn)

	// SE   |0101|Vx  |Vy  |0000| Skip if Vx == Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SER:
		mc.skipIf(state.V[x] == state.V[y])

	// LD   |0110|Vx  |byte     | Load immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDI:
		state.V[x] = nn

	// ADD  |0111|Vx  |byte     | Add immediate, VF untouched
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADDI:
		state.V[x] += nn

	// LD   |1000|Vx  |Vy  |0000| Vx = Vy
	// OR   |1000|Vx  |Vy  |0001| Vx |= Vy
	// AND  |1000|Vx  |Vy  |0010| Vx &= Vy
	// XOR  |1000|Vx  |Vy  |0011| Vx ^= Vy
	// ADD  |1000|Vx  |Vy  |0100| Vx += Vy, VF = carry
	// SUB  |1000|Vx  |Vy  |0101| Vx -= Vy, VF = !borrow
	// SHR  |1000|Vx  |Vy  |0110| Vx >>= 1, VF = shifted bit
	// SUBN |1000|Vx  |Vy  |0111| Vx = Vy - Vx, VF = !borrow
	// SHL  |1000|Vx  |Vy  |1110| Vx <<= 1, VF = shifted bit
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ALU:
		vx, vy := state.V[x], state.V[y]

		switch n {
		case 0x0:
			state.V[x] = vy
		case 0x1:
			state.V[x] = vx | vy
		case 0x2:
			state.V[x] = vx & vy
		case 0x3:
			state.V[x] = vx ^ vy
		case 0x4:
			sum := uint16(vx) + uint16(vy)
			state.V[x] = uint8(sum)
			state.V[0xF] = uint8(sum >> 8)
		case 0x5:
			state.V[x] = vx - vy
			state.V[0xF] = flag(vx >= vy)
		case 0x6:
			state.V[x] = vx >> 1
			state.V[0xF] = vx & 0x1
		case 0x7:
			state.V[x] = vy - vx
			state.V[0xF] = flag(vy >= vx)
		case 0xE:
			state.V[x] = vx << 1
			state.V[0xF] = vx >> 7
		}

	// SNE  |1001|Vx  |Vy  |0000| Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNER:
		mc.skipIf(state.V[x] != state.V[y])

	// LD   |1010|addr          | I = addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDA:
		state.I = nnn

	// JP   |1011|addr          | Jump to V0 + addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JPV:
		state.PC = (nnn + uint16(state.V[0])) & 0xFFF

	// RND  |1100|Vx  |byte     | Vx = random & byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RND:
		state.V[x] = mc.random() & nn

	// DRW  |1101|Vx  |Vy  |n   | Draw n-byte sprite at I, VF = collision
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_DRW:
		sprite := make([]byte, n)
		for i := range sprite {
			sprite[i] = mc.read(state.I + uint16(i))
		}

		collision := state.Framebuffer.DrawSprite(
			int(state.V[x]), int(state.V[y]), sprite,
		)

		state.V[0xF] = flag(collision)
		result.Drew = true

	// SKP  |1110|Vx  |1001|1110| Skip if key Vx is down
	// SKNP |1110|Vx  |1010|0001| Skip if key Vx is up
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_KEY:
		switch nn {
		case 0x9E:
			mc.skipIf(mc.Keys.IsPressed(state.V[x]))
		case 0xA1:
			mc.skipIf(!mc.Keys.IsPressed(state.V[x]))
		}

	// LD   |1111|Vx  |0000|0111| Vx = delay timer
	// LD   |1111|Vx  |0000|1010| Wait for a key, Vx = key
	// LD   |1111|Vx  |0001|0101| delay timer = Vx
	// LD   |1111|Vx  |0001|1000| sound timer = Vx
	// ADD  |1111|Vx  |0001|1110| I += Vx
	// LD   |1111|Vx  |0010|1001| I = glyph for digit Vx
	// LD   |1111|Vx  |0011|0011| BCD of Vx at I, I+1, I+2
	// LD   |1111|Vx  |0101|0101| Store V0..Vx at I
	// LD   |1111|Vx  |0110|0101| Load V0..Vx from I
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_MISC:
		switch nn {
		case 0x07:
			state.V[x] = state.Delay

		case 0x0A:
			mask := mc.Keys.Mask()

			if mask == 0 {
				// Re-execute this instruction until a key is down
				state.PC = (state.PC - 2) & 0xFFF
				result.Waiting = true
				break
			}

			for key := uint8(0); key < NumKeys; key++ {
				if mask&(1<<key) != 0 {
					state.V[x] = key
					break
				}
			}

		case 0x15:
			state.Delay = state.V[x]

		case 0x18:
			state.Sound = state.V[x]

		case 0x1E:
			state.I = (state.I + uint16(state.V[x])) & 0xFFF

		case 0x29:
			state.I = MEMSPACE_FONT + uint16(state.V[x]&0xF)*GlyphHeight

		case 0x33:
			vx := state.V[x]
			mc.write(state.I, vx/100)
			mc.write(state.I+1, (vx/10)%10)
			mc.write(state.I+2, vx%10)

		case 0x55:
			for i := uint16(0); i <= x; i++ {
				mc.write(state.I+i, state.V[i])
			}

		case 0x65:
			for i := uint16(0); i <= x; i++ {
				state.V[i] = mc.read(state.I + i)
			}
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return result, nil
}

func flag(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}
