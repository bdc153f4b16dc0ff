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

// Package tui is a bubbletea frontend. Handoffs are pulled from a
// Rendezvous by a command and run inside Update, so handlers never race
// with rendering.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/keymap"
)

type Options struct {
	Rendezvous *event.Rendezvous

	// Keys are relayed in Transient mode regardless of the relay's own mode
	Relay *keymap.Relay

	// Show the register and disassembly panel. The handler must also be
	// registered for Cycle events for the panel to update.
	Debug bool
}

type handoffMsg struct {
	handoff *event.Handoff
}

type stoppedMsg struct {
	err error
}

type Model struct {
	ctx   context.Context
	rv    *event.Rendezvous
	relay keymap.Relay
	debug bool
	keys  keyMap

	display  *display
	failures int
	err      error
	quitting bool
}

func New(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:     ctx,
		rv:      opts.Rendezvous,
		debug:   opts.Debug,
		keys:    defaultKeys,
		display: &display{},
	}

	if opts.Relay != nil {
		m.relay = *opts.Relay
		m.relay.Mode = keymap.Transient
	}

	return m
}

// Handler is the Redraw, Tone and Cycle handler backing the view.
func (m *Model) Handler() event.Handler {
	return m.display
}

// Failures counts handoffs whose handlers returned an error.
func (m *Model) Failures() int {
	return m.failures
}

// Err is the reason the handoff stream ended, if not a quit or
// cancellation.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return m.next()
}

func (m *Model) next() tea.Cmd {
	return func() tea.Msg {
		h, err := m.rv.Next(m.ctx)
		if err != nil {
			return stoppedMsg{err: err}
		}

		return handoffMsg{handoff: h}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case handoffMsg:
		if err := msg.handoff.Run(); err != nil {
			m.failures++
		}

		return m, m.next()

	case stoppedMsg:
		if !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}

		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes && m.relay.Target != nil {
			for _, r := range msg.Runes {
				m.relay.Press(r)
			}
		}
	}

	return m, nil
}

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Faint(true)
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	screen := paneStyle.Render(
		lipgloss.NewStyle().Reverse(m.display.tone).Render(m.display.screen()),
	)

	if m.debug {
		screen = lipgloss.JoinHorizontal(
			lipgloss.Top, screen, paneStyle.Render(m.display.registers()),
		)
	}

	status := fmt.Sprintf(
		"cycle %d  tick %d  %s %s",
		m.display.cycle, m.display.tick,
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc,
	)

	if m.display.tone {
		status += "  ♪"
	}

	return lipgloss.JoinVertical(lipgloss.Left, screen, statusStyle.Render(status))
}

// Run drives m until the user quits or ctx is done.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui failed: %w", err)
	}

	return m.Err()
}
