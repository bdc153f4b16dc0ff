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

package tui

import (
	"fmt"
	"strings"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Instructions shown in the debug panel, starting at PC
const codeLines = 6

// display mirrors what the handlers have been shown. Handlers run from the
// bubbletea update loop, so it is only touched on that goroutine.
type display struct {
	pixels [machine.Height][machine.Width]bool
	tone   bool

	cycle uint64
	tick  uint64

	regs   machine.Registers
	timers machine.Timers
	keys   uint16
	code   [codeLines]string
}

func (d *display) HandleEvent(ev event.Event, st machine.View) error {
	d.cycle = ev.Cycle
	d.tick = ev.Tick
	d.tone = ev.Tone.On

	switch ev.Tag {
	case event.Redraw:
		d.copyRegion(ev.RegionOrFull(), st)

	case event.Cycle:
		d.regs = st.Registers()
		d.timers = st.Timers()
		d.keys = st.KeyMask()

		for i := range d.code {
			addr := d.regs.PC + uint16(2*i)
			opcode := uint16(st.Peek(addr))<<8 | uint16(st.Peek(addr+1))

			d.code[i] = fmt.Sprintf("%03X  %s", addr&0xFFF, machine.Disassemble(opcode))
		}
	}

	return nil
}

func (d *display) copyRegion(r machine.Region, st machine.View) {
	r = r.Clip(machine.Width, machine.Height)

	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			d.pixels[y][x] = st.Pixel(x, y)
		}
	}
}

// screen packs two pixel rows into each line with half blocks.
func (d *display) screen() string {
	var b strings.Builder

	for y := 0; y < machine.Height; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}

		for x := 0; x < machine.Width; x++ {
			top, bottom := d.pixels[y][x], d.pixels[y+1][x]

			switch {
			case top && bottom:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bottom:
				b.WriteString("▄")
			default:
				b.WriteByte(' ')
			}
		}
	}

	return b.String()
}

func (d *display) registers() string {
	var b strings.Builder

	for i := 0; i < machine.NumRegisters; i += 2 {
		fmt.Fprintf(&b, "V%X %02X  V%X %02X\n", i, d.regs.V[i], i+1, d.regs.V[i+1])
	}

	fmt.Fprintf(&b, "PC %03X  I %03X\n", d.regs.PC, d.regs.I)
	fmt.Fprintf(&b, "SP %02X   DT %02X\n", d.regs.SP, d.timers.Delay)
	fmt.Fprintf(&b, "ST %02X   K %04X\n", d.timers.Sound, d.keys)

	b.WriteByte('\n')
	b.WriteString(strings.Join(d.code[:], "\n"))

	return b.String()
}
