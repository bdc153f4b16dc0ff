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

package tui_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/frontend/tui"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

func newMachine(t *testing.T) *machine.Machine {
	t.Helper()

	mc := &machine.Machine{}

	// CLS; JP 0x200
	_, err := mc.LoadBin(bytes.NewReader([]byte{0x00, 0xE0, 0x12, 0x00}))
	require.NoError(t, err)

	// Top row of glyph 0 at the origin, one pixel on the second row
	mc.State.Framebuffer.DrawSprite(0, 0, []byte{0xF0, 0x80})

	return mc
}

// serve publishes ev on rv and runs the resulting handoff through m.
func serve(t *testing.T, m *tui.Model, rv *event.Rendezvous, ev event.Event, view machine.View) tea.Cmd {
	t.Helper()

	errc := make(chan error, 1)
	go func() {
		errc <- rv.Deliver(context.Background(), event.Delivery{
			Event:    ev,
			View:     view,
			Handlers: []event.Handler{m.Handler()},
		})
	}()

	_, cmd := m.Update(m.Init()())

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("delivery did not complete")
	}

	return cmd
}

func TestRedraw(t *testing.T) {
	rv := event.NewRendezvous(event.RendezvousOptions{Timeout: time.Second})
	m := tui.New(context.Background(), tui.Options{Rendezvous: rv})

	cmd := serve(t, m, rv, event.Event{Tag: event.Redraw, Cycle: 5, Tick: 2, Region: machine.Full()}, newMachine(t))
	assert.NotNil(t, cmd)

	view := m.View()
	lines := strings.Split(view, "\n")

	// Border, then the first packed row
	require.Greater(t, len(lines), 2)
	assert.Contains(t, lines[1], "█▀▀▀ ")
	assert.Contains(t, view, "cycle 5  tick 2")
	assert.NotContains(t, view, "PC 200")
}

func TestRedrawEmptyRegion(t *testing.T) {
	rv := event.NewRendezvous(event.RendezvousOptions{Timeout: time.Second})
	m := tui.New(context.Background(), tui.Options{Rendezvous: rv})

	mc := newMachine(t)
	serve(t, m, rv, event.Event{Tag: event.Redraw, Cycle: 5, Region: machine.Full()}, mc)

	mc.State.Framebuffer.Clear()
	serve(t, m, rv, event.Event{Tag: event.Redraw, Cycle: 6}, mc)

	lines := strings.Split(m.View(), "\n")

	require.Greater(t, len(lines), 2)
	assert.Contains(t, lines[1], "█▀▀▀ ")
}

func TestDebugPanel(t *testing.T) {
	rv := event.NewRendezvous(event.RendezvousOptions{Timeout: time.Second})
	m := tui.New(context.Background(), tui.Options{Rendezvous: rv, Debug: true})

	serve(t, m, rv, event.Event{Tag: event.Cycle, Cycle: 1}, newMachine(t))

	view := m.View()

	assert.Contains(t, view, "PC 200")
	assert.Contains(t, view, "200  CLS")
	assert.Contains(t, view, "202  JP   0x200")
}

func TestHandlerError(t *testing.T) {
	rv := event.NewRendezvous(event.RendezvousOptions{Timeout: time.Second})
	m := tui.New(context.Background(), tui.Options{Rendezvous: rv})

	errc := make(chan error, 1)
	go func() {
		errc <- rv.Deliver(context.Background(), event.Delivery{
			Event: event.Event{Tag: event.Tone},
			Handlers: []event.Handler{event.HandlerFunc(func(event.Event, machine.View) error {
				panic("broken")
			})},
		})
	}()

	m.Update(m.Init()())

	assert.ErrorIs(t, <-errc, event.ErrHandlerPanic)
	assert.Equal(t, 1, m.Failures())
}

func TestStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rv := event.NewRendezvous(event.RendezvousOptions{})
	m := tui.New(ctx, tui.Options{Rendezvous: rv})

	_, cmd := m.Update(m.Init()())

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.NoError(t, m.Err())
	assert.Empty(t, m.View())
}

type taps []int

func (k *taps) InjectKey(i int, pressed bool) error { return nil }
func (k *taps) TapKey(i int) error {
	*k = append(*k, i)
	return nil
}

func TestKeys(t *testing.T) {
	var target taps

	m := tui.New(context.Background(), tui.Options{
		Rendezvous: event.NewRendezvous(event.RendezvousOptions{}),
		Relay:      &keymap.Relay{Keymap: keymap.Default, Target: &target, Mode: keymap.Held},
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("wp")})
	assert.Nil(t, cmd)
	assert.Equal(t, taps{0x5}, target)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
