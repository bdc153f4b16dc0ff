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

// Package window is an ebiten frontend. The game loop serves rendezvous
// handoffs from Update for a bounded time each frame.
package window

import (
	"image/color"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

var (
	Foreground = color.RGBA{0xE8, 0xE8, 0xE8, 0xFF}
	Background = color.RGBA{0x10, 0x10, 0x10, 0xFF}
)

// Frame is an RGBA copy of the framebuffer, updated by Redraw and Tone
// events. Colors are swapped while the tone is on.
type Frame struct {
	pix  []byte
	on   [machine.Height][machine.Width]bool
	tone bool

	Cycle uint64
	Tick  uint64
}

func NewFrame() *Frame {
	f := &Frame{pix: make([]byte, machine.Width*machine.Height*4)}
	f.paint(machine.Full())

	return f
}

// Pix is in the layout expected by ebiten.Image.WritePixels.
func (f *Frame) Pix() []byte {
	return f.pix
}

func (f *Frame) Tone() bool {
	return f.tone
}

func (f *Frame) HandleEvent(ev event.Event, st machine.View) error {
	if ev.Tag == event.Cycle || ev.Noop() && ev.Tone.On == f.tone {
		return nil
	}

	f.Cycle = ev.Cycle
	f.Tick = ev.Tick

	changed := ev.Tone.On != f.tone
	f.tone = ev.Tone.On

	switch {
	case ev.Tag == event.Redraw:
		region := ev.RegionOrFull()
		if changed {
			region = machine.Full()
		}

		r := region.Clip(machine.Width, machine.Height)

		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				f.on[y][x] = st.Pixel(x, y)
			}
		}

		f.paint(region)

	case changed:
		f.paint(machine.Full())
	}

	return nil
}

func (f *Frame) paint(r machine.Region) {
	r = r.Clip(machine.Width, machine.Height)

	fg, bg := Foreground, Background
	if f.tone {
		fg, bg = bg, fg
	}

	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			c := bg
			if f.on[y][x] {
				c = fg
			}

			i := (y*machine.Width + x) * 4
			f.pix[i] = c.R
			f.pix[i+1] = c.G
			f.pix[i+2] = c.B
			f.pix[i+3] = c.A
		}
	}
}
