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

import "fmt"

// Disassemble returns the mnemonic form of one instruction. Unknown
// encodings print as a data word.
func Disassemble(instruction uint16) string {
	x := (instruction >> 8) & 0xF
	y := (instruction >> 4) & 0xF
	n := instruction & 0xF
	nn := instruction & 0xFF
	nnn := instruction & 0xFFF

	switch instruction >> 12 {
	case OP_SYS:
		switch instruction {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
		return fmt.Sprintf("SYS  %#03x", nnn)

	case OP_JP:
		return fmt.Sprintf("JP   %#03x", nnn)

	case OP_CALL:
		return fmt.Sprintf("CALL %#03x", nnn)

	case OP_SEI:
		return fmt.Sprintf("SE   V%X, %#02x", x, nn)

	case OP_SNEI:
		return fmt.Sprintf("SNE  V%X, %#02x", x, nn)

	case OP_SER:
		if n == 0 {
			return fmt.Sprintf("SE   V%X, V%X", x, y)
		}

	case OP_LDI:
		return fmt.Sprintf("LD   V%X, %#02x", x, nn)

	case OP_ADDI:
		return fmt.Sprintf("ADD  V%X, %#02x", x, nn)

	case OP_ALU:
		names := map[uint16]string{
			0x0: "LD", 0x1: "OR", 0x2: "AND", 0x3: "XOR", 0x4: "ADD",
			0x5: "SUB", 0x6: "SHR", 0x7: "SUBN", 0xE: "SHL",
		}

		if name, ok := names[n]; ok {
			return fmt.Sprintf("%-4s V%X, V%X", name, x, y)
		}

	case OP_SNER:
		if n == 0 {
			return fmt.Sprintf("SNE  V%X, V%X", x, y)
		}

	case OP_LDA:
		return fmt.Sprintf("LD   I, %#03x", nnn)

	case OP_JPV:
		return fmt.Sprintf("JP   V0, %#03x", nnn)

	case OP_RND:
		return fmt.Sprintf("RND  V%X, %#02x", x, nn)

	case OP_DRW:
		return fmt.Sprintf("DRW  V%X, V%X, %d", x, y, n)

	case OP_KEY:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP  V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}

	case OP_MISC:
		formats := map[uint16]string{
			0x07: "LD   V%X, DT",
			0x0A: "LD   V%X, K",
			0x15: "LD   DT, V%X",
			0x18: "LD   ST, V%X",
			0x1E: "ADD  I, V%X",
			0x29: "LD   F, V%X",
			0x33: "LD   B, V%X",
			0x55: "LD   [I], V%X",
			0x65: "LD   V%X, [I]",
		}

		if format, ok := formats[nn]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf("DW   %#04x", instruction)
}
