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

package machine

import "fmt"

// Region is a rectangle of framebuffer cells. A region with no width or no
// height is empty.
type Region struct {
	X, Y int
	W, H int
}

// Full returns the region covering the whole framebuffer.
func Full() Region {
	return Region{W: Width, H: Height}
}

func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

func (r Region) Contains(x, y int) bool {
	return !r.Empty() && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Clip restricts the region to [0,width) x [0,height). Each axis is clipped
// against its own bound; nothing wraps.
func (r Region) Clip(width, height int) Region {
	x0, x1 := clipSpan(r.X, r.X+r.W, width)
	y0, y1 := clipSpan(r.Y, r.Y+r.H, height)

	if x1 <= x0 || y1 <= y0 {
		return Region{}
	}

	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func clipSpan(lo, hi, bound int) (int, int) {
	lo = max(lo, 0)
	hi = min(hi, bound)
	return lo, hi
}

// Union returns the smallest region containing both r and o.
func (r Region) Union(o Region) Region {
	if r.Empty() {
		return o
	}

	if o.Empty() {
		return r
	}

	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.W, o.X+o.W)
	y1 := max(r.Y+r.H, o.Y+o.H)

	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (r Region) String() string {
	if r.Empty() {
		return "(empty)"
	}

	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
