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

// Package event carries engine notifications to presentation consumers.
//
// The engine builds an Event, the Dispatcher resolves it against a Registry
// and hands it to a Strategy, which runs the handlers and returns once they
// are done. The engine goroutine is parked for the whole delivery.
package event

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/machine"
)

type Tag uint8

const (
	Cycle Tag = iota
	Redraw
	Tone

	NumTags
)

func (t Tag) String() string {
	switch t {
	case Cycle:
		return "cycle"
	case Redraw:
		return "redraw"
	case Tone:
		return "tone"
	}

	return fmt.Sprintf("tag(%d)", uint8(t))
}

func (t Tag) Valid() bool {
	return t < NumTags
}

type ToneState struct {
	On bool

	// Set when On differs from the previous tone state. A Redraw carrying
	// a changed tone is delivered to both the Redraw and Tone handlers.
	Changed bool
}

type Event struct {
	Tag Tag

	// Engine counters at emission
	Cycle uint64
	Tick  uint64

	Region machine.Region
	Tone   ToneState
}

// Coupled reports whether ev is a redraw forced by a tone transition.
func (ev Event) Coupled() bool {
	return ev.Tag == Redraw && ev.Tone.Changed
}

// RegionOrFull returns the region a handler should repaint. Redraw events
// report their own region, which is empty when nothing changed; other tags
// cover the whole framebuffer.
func (ev Event) RegionOrFull() machine.Region {
	if ev.Tag != Redraw {
		return machine.Full()
	}

	return ev.Region
}

// Noop reports whether ev is a redraw with nothing to repaint.
func (ev Event) Noop() bool {
	return ev.Tag == Redraw && ev.Region.Empty() && !ev.Tone.Changed
}

func (ev Event) String() string {
	switch ev.Tag {
	case Redraw:
		if ev.Coupled() {
			return fmt.Sprintf("redraw %s tone=%t", ev.Region, ev.Tone.On)
		}

		return fmt.Sprintf("redraw %s", ev.Region)

	case Tone:
		return fmt.Sprintf("tone on=%t tick=%d", ev.Tone.On, ev.Tick)
	}

	return fmt.Sprintf("%s %d", ev.Tag, ev.Cycle)
}
