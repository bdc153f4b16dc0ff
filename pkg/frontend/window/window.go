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

//go:build !headless

package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

const statusHeight = 16

type Options struct {
	Rendezvous *event.Rendezvous
	Frame      *Frame

	// Keys are relayed in Held mode regardless of the relay's own mode
	Relay *keymap.Relay

	Scale int
	Title string

	// Time spent serving handoffs in each Update. Defaults to half a frame.
	Budget time.Duration
}

type game struct {
	ctx    context.Context
	opts   Options
	relay  keymap.Relay
	screen *ebiten.Image
	keys   []ebiten.Key
}

// Run opens the window and blocks until it is closed, Escape is pressed,
// ctx is done or the consumer is detached.
func Run(ctx context.Context, opts Options) error {
	if opts.Budget <= 0 {
		opts.Budget = time.Second / 120
	}

	g := &game{ctx: ctx, opts: opts}

	if opts.Relay != nil {
		g.relay = *opts.Relay
		g.relay.Mode = keymap.Held
	}

	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(opts.Title)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window failed: %w", err)
	}

	if opts.Rendezvous.Detached() {
		return event.ErrConsumerDetached
	}

	return nil
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.relay.Target != nil {
		g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
		for _, k := range g.keys {
			if sym, ok := keyRune(k); ok {
				g.relay.Press(sym)
			}
		}

		g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
		for _, k := range g.keys {
			if sym, ok := keyRune(k); ok {
				g.relay.Release(sym)
			}
		}
	}

	g.opts.Rendezvous.Drain(g.opts.Budget)

	if g.opts.Rendezvous.Detached() {
		return ebiten.Termination
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(machine.Width, machine.Height)
	}

	g.screen.WritePixels(g.opts.Frame.Pix())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
	screen.DrawImage(g.screen, op)

	status := fmt.Sprintf("cycle %d  tick %d", g.opts.Frame.Cycle, g.opts.Frame.Tick)
	if g.opts.Frame.Tone() {
		status += "  tone"
	}

	_, h := g.Layout(0, 0)
	text.Draw(screen, status, basicfont.Face7x13, 4, h-4, color.White)
}

func (g *game) Layout(_, _ int) (int, int) {
	return machine.Width * g.opts.Scale, machine.Height*g.opts.Scale + statusHeight
}

// keyRune maps letter and digit keys to the symbols used by keymaps.
func keyRune(k ebiten.Key) (rune, bool) {
	name := k.String()

	switch {
	case len(name) == 1:
		return rune(name[0]), true
	case len(name) == 6 && strings.HasPrefix(name, "Digit"):
		return rune(name[5]), true
	}

	return 0, false
}
