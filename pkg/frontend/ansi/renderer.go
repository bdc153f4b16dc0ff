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

// Package ansi draws the framebuffer to a terminal with ANSI escape codes
// and reads keys from a raw-mode stdin.
package ansi

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	// Each pixel is two cells wide to keep it roughly square
	CellsPerPixel = 2

	// Screen plus a border on each side and the status line
	Columns = machine.Width*CellsPerPixel + 2
	Rows    = machine.Height + 3

	pixelOn  = "██"
	pixelOff = "  "
	bell     = "\a"
)

// Renderer is a Redraw handler. Tone transitions arrive as coupled redraws
// and invert the screen while the tone sounds.
type Renderer struct {
	out io.Writer
	buf bytes.Buffer

	tone   bool
	frames uint64
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Init clears the terminal, hides the cursor and draws the border.
func (r *Renderer) Init() error {
	r.buf.Reset()
	r.buf.WriteString("\x1b[2J\x1b[?25l")

	r.moveTo(0, 0)
	r.border()

	for y := 0; y < machine.Height; y++ {
		r.moveTo(y+1, 0)
		r.buf.WriteString("|")
		r.moveTo(y+1, Columns-1)
		r.buf.WriteString("|")
	}

	r.moveTo(machine.Height+1, 0)
	r.border()

	return r.flush()
}

// Close restores the cursor below the screen.
func (r *Renderer) Close() error {
	r.buf.Reset()
	r.buf.WriteString("\x1b[0m\x1b[?25h")
	r.moveTo(Rows, 0)
	r.buf.WriteString("\r\n")

	return r.flush()
}

// Frames reports how many redraws have been written.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

func (r *Renderer) HandleEvent(ev event.Event, st machine.View) error {
	switch ev.Tag {
	case event.Redraw:
		if ev.Noop() && ev.Tone.On == r.tone {
			return nil
		}

		region := ev.RegionOrFull()

		if r.setTone(ev.Tone.On) {
			region = machine.Full()
		}

		r.draw(region, st)
		r.status(ev)

	case event.Tone:
		if !r.setTone(ev.Tone.On) {
			return nil
		}

		r.draw(machine.Full(), st)
		r.status(ev)

	default:
		return nil
	}

	return r.flush()
}

// setTone records the tone state, ringing the bell when it starts. It
// reports whether the state changed.
func (r *Renderer) setTone(on bool) bool {
	if on == r.tone {
		return false
	}

	r.tone = on
	if on {
		r.buf.WriteString(bell)
	}

	return true
}

func (r *Renderer) draw(region machine.Region, st machine.View) {
	region = region.Clip(machine.Width, machine.Height)
	if region.Empty() {
		return
	}

	if r.tone {
		r.buf.WriteString("\x1b[7m")
	}

	for y := region.Y; y < region.Y+region.H; y++ {
		r.moveTo(y+1, 1+region.X*CellsPerPixel)

		for x := region.X; x < region.X+region.W; x++ {
			if st.Pixel(x, y) {
				r.buf.WriteString(pixelOn)
			} else {
				r.buf.WriteString(pixelOff)
			}
		}
	}

	if r.tone {
		r.buf.WriteString("\x1b[27m")
	}

	r.frames++
}

func (r *Renderer) status(ev event.Event) {
	r.moveTo(machine.Height+2, 0)
	fmt.Fprintf(&r.buf, "\x1b[2Kcycle %d  tick %d", ev.Cycle, ev.Tick)

	if r.tone {
		r.buf.WriteString("  ♪")
	}
}

func (r *Renderer) border() {
	r.buf.WriteString("+")
	for i := 0; i < Columns-2; i++ {
		r.buf.WriteString("-")
	}
	r.buf.WriteString("+")
}

// moveTo positions the cursor at a zero-based row and column.
func (r *Renderer) moveTo(row, col int) {
	fmt.Fprintf(&r.buf, "\x1b[%d;%dH", row+1, col+1)
}

func (r *Renderer) flush() error {
	defer r.buf.Reset()

	if _, err := r.out.Write(r.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}
