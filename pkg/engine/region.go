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

package engine

import (
	"fmt"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
)

// RegionPolicy picks the region reported by the next Redraw event. force is
// set for the first redraw and for tone transitions.
type RegionPolicy interface {
	Next(fb *machine.Framebuffer, force bool) machine.Region
}

// FullFrame always reports the whole framebuffer.
type FullFrame struct{}

func (FullFrame) Next(fb *machine.Framebuffer, force bool) machine.Region {
	fb.TakeDirty()
	return machine.Full()
}

// DirtyRect reports the bounding box of cells that differ from the frame it
// last reported. Nothing changed reads as an empty region.
type DirtyRect struct {
	presented machine.Framebuffer
}

func (d *DirtyRect) Next(fb *machine.Framebuffer, force bool) machine.Region {
	touched := fb.TakeDirty()

	region := machine.Full()
	if !force {
		region = fb.Diff(&d.presented, touched)
	}

	d.presented.CopyFrom(fb)

	return region
}

func ParseRegionPolicy(s string) (RegionPolicy, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return FullFrame{}, nil
	case "dirty":
		return &DirtyRect{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}
