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

package debugger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break.Load() {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.PC == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Out == nil {
		return os.Stdout
	}

	return dbg.Out
}

func (dbg *Debugger) PrintMem(mc machine.View, addr, count uint16) {
	out := dbg.out()

	for i := addr; i < addr+count; i++ {
		if i == addr {
			fmt.Fprintf(out, "\033[1m[%#03x]\033[0m ", i&0xFFF)
		} else if (i-addr)%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#03x]\033[0m ", i&0xFFF)
		}

		result := mc.Peek(i)

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%#02x ", result)
		}
	}

	fmt.Fprintln(out)
}

func (dbg *Debugger) PrintRegs(mc machine.View) {
	out := dbg.out()
	regs := mc.Registers()
	timers := mc.Timers()

	for i, register := range regs.V {
		fmt.Fprintf(out, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i == (len(regs.V)-1)/2 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(
		out,
		"\033[1mPC:\033[0m %#03x\t\033[1mI:\033[0m %#03x\t"+
			"\033[1mSP:\033[0m %d\t\033[1mDT:\033[0m %#02x\t"+
			"\033[1mST:\033[0m %#02x\t\033[1mK:\033[0m %016b\n",
		regs.PC,
		regs.I,
		regs.SP,
		timers.Delay,
		timers.Sound,
		mc.KeyMask(),
	)
}

// PrintSource disassembles count instructions starting at addr.
func (dbg *Debugger) PrintSource(mc machine.View, addr, count uint16) {
	out := dbg.out()
	pc := mc.Registers().PC

	for i := uint16(0); i < count; i++ {
		at := (addr + i*2) & 0xFFF
		instruction := uint16(mc.Peek(at))<<8 | uint16(mc.Peek(at+1))

		marker := " "
		if at == pc {
			marker = ">"
		}

		fmt.Fprintf(
			out,
			"%s\033[1m[%#03x]\033[0m %04X  %s\n",
			marker,
			at,
			instruction,
			machine.Disassemble(instruction),
		)
	}
}

// PrintScreen draws the framebuffer as text, one character per pixel.
func (dbg *Debugger) PrintScreen(mc machine.View) {
	out := dbg.out()
	border := "+" + strings.Repeat("-", machine.Width) + "+"

	fmt.Fprintln(out, border)

	for y := 0; y < machine.Height; y++ {
		var line strings.Builder

		line.WriteByte('|')

		for x := 0; x < machine.Width; x++ {
			if mc.Pixel(x, y) {
				line.WriteByte('#')
			} else {
				line.WriteByte(' ')
			}
		}

		line.WriteByte('|')
		fmt.Fprintln(out, line.String())
	}

	fmt.Fprintln(out, border)
}
