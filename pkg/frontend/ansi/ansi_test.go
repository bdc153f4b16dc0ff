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

package ansi_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/frontend/ansi"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

type pixels map[[2]int]bool

func (p pixels) Pixel(x, y int) bool          { return p[[2]int{x, y}] }
func (p pixels) Timers() machine.Timers       { return machine.Timers{} }
func (p pixels) KeyMask() uint16              { return 0 }
func (p pixels) Registers() machine.Registers { return machine.Registers{} }
func (p pixels) Peek(addr uint16) byte        { return 0 }

func TestRedrawRegion(t *testing.T) {
	var out bytes.Buffer

	r := ansi.NewRenderer(&out)
	st := pixels{{3, 2}: true}

	require.NoError(t, r.HandleEvent(event.Event{
		Tag:    event.Redraw,
		Cycle:  7,
		Region: machine.Region{X: 3, Y: 2, W: 2, H: 1},
	}, st))

	got := out.String()

	assert.Contains(t, got, "\x1b[4;8H██  ")
	assert.Contains(t, got, "cycle 7")
	assert.NotContains(t, got, "\a")
	assert.Equal(t, 1, strings.Count(got, "H██"))
	assert.Equal(t, uint64(1), r.Frames())
}

func TestRedrawEmptyRegion(t *testing.T) {
	var out bytes.Buffer

	r := ansi.NewRenderer(&out)

	require.NoError(t, r.HandleEvent(event.Event{Tag: event.Redraw, Region: machine.Full()}, pixels{}))

	// One cursor move per row plus the status line
	assert.Equal(t, machine.Height+1, strings.Count(out.String(), "H"))
	out.Reset()

	require.NoError(t, r.HandleEvent(event.Event{Tag: event.Redraw, Cycle: 2}, pixels{}))
	assert.Empty(t, out.String())
	assert.Equal(t, uint64(1), r.Frames())
}

func TestCoupledRedraw(t *testing.T) {
	var out bytes.Buffer

	r := ansi.NewRenderer(&out)
	ev := event.Event{
		Tag:    event.Redraw,
		Tick:   3,
		Region: machine.Region{X: 0, Y: 0, W: 1, H: 1},
		Tone:   event.ToneState{On: true, Changed: true},
	}

	require.NoError(t, r.HandleEvent(ev, pixels{}))

	got := out.String()

	assert.Equal(t, 1, strings.Count(got, "\a"))
	assert.Contains(t, got, "\x1b[7m")
	assert.Contains(t, got, "♪")
	assert.Equal(t, machine.Height+1, strings.Count(got, "H"), "tone change repaints everything")
	assert.Equal(t, uint64(1), r.Frames())

	// Tone ends on an otherwise unchanged frame
	out.Reset()
	require.NoError(t, r.HandleEvent(event.Event{
		Tag:  event.Redraw,
		Tone: event.ToneState{On: false, Changed: true},
	}, pixels{}))

	assert.NotContains(t, out.String(), "\x1b[7m")
	assert.Equal(t, uint64(2), r.Frames())
}

func TestToneEvents(t *testing.T) {
	var out bytes.Buffer

	r := ansi.NewRenderer(&out)
	on := event.Event{Tag: event.Tone, Tone: event.ToneState{On: true, Changed: true}}
	off := event.Event{Tag: event.Tone, Tone: event.ToneState{On: false, Changed: true}}

	require.NoError(t, r.HandleEvent(on, pixels{}))
	assert.Contains(t, out.String(), "\a")
	out.Reset()

	// Sustained tone
	require.NoError(t, r.HandleEvent(event.Event{Tag: event.Tone, Tone: event.ToneState{On: true}}, pixels{}))
	assert.Empty(t, out.String())

	require.NoError(t, r.HandleEvent(off, pixels{}))
	assert.NotContains(t, out.String(), "\a")
	assert.NotContains(t, out.String(), "\x1b[7m")
	assert.Equal(t, uint64(2), r.Frames())
}

func TestInitClose(t *testing.T) {
	var out bytes.Buffer

	r := ansi.NewRenderer(&out)

	require.NoError(t, r.Init())
	assert.True(t, strings.HasPrefix(out.String(), "\x1b[2J\x1b[?25l"))
	out.Reset()

	require.NoError(t, r.Close())
	assert.Contains(t, out.String(), "\x1b[?25h")
}

type taps []int

func (k *taps) InjectKey(i int, pressed bool) error { return nil }
func (k *taps) TapKey(i int) error {
	*k = append(*k, i)
	return nil
}

func TestReadKeys(t *testing.T) {
	var target taps

	relay := &keymap.Relay{Keymap: keymap.Default, Target: &target, Mode: keymap.Transient}

	err := ansi.ReadKeys(context.Background(), strings.NewReader("1pq\x1bz"), relay)
	assert.ErrorIs(t, err, ansi.ErrQuit)
	assert.Equal(t, taps{0x1, 0x4}, target)

	target = nil
	require.NoError(t, ansi.ReadKeys(context.Background(), strings.NewReader("zZ"), relay))
	assert.Equal(t, taps{0xA, 0xA}, target)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, ansi.ReadKeys(ctx, strings.NewReader("1"), relay), context.Canceled)
}
