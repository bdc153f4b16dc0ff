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

// Framebuffer is the monochrome display. It remembers the rectangle touched
// by draw operations since the last call to TakeDirty.
type Framebuffer struct {
	pixels [Width][Height]bool
	dirty  Region
}

// Pixel reports the cell at (x, y). Coordinates outside the grid read as
// unset.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}

	return fb.pixels[x][y]
}

func (fb *Framebuffer) Clear() {
	fb.pixels = [Width][Height]bool{}
	fb.dirty = Full()
}

// DrawSprite XORs an 8-pixel wide sprite at (x, y). The origin wraps around
// the screen, the sprite body is clipped at the right and bottom edges.
// Returns true when a set pixel was erased.
func (fb *Framebuffer) DrawSprite(x, y int, sprite []byte) bool {
	x %= Width
	y %= Height

	collision := false

	for row, bits := range sprite {
		py := y + row
		if py >= Height {
			break
		}

		for col := 0; col < 8; col++ {
			px := x + col
			if px >= Width {
				break
			}

			if bits&(0x80>>col) == 0 {
				continue
			}

			if fb.pixels[px][py] {
				collision = true
			}

			fb.pixels[px][py] = !fb.pixels[px][py]
		}
	}

	touched := Region{X: x, Y: y, W: 8, H: len(sprite)}
	fb.dirty = fb.dirty.Union(touched.Clip(Width, Height))

	return collision
}

// Dirty returns the rectangle touched since the last TakeDirty.
func (fb *Framebuffer) Dirty() Region {
	return fb.dirty
}

// TakeDirty returns the touched rectangle and resets it.
func (fb *Framebuffer) TakeDirty() Region {
	r := fb.dirty
	fb.dirty = Region{}
	return r
}

// Diff returns the bounding box of cells inside r that differ between fb
// and other.
func (fb *Framebuffer) Diff(other *Framebuffer, r Region) Region {
	r = r.Clip(Width, Height)

	x0, y0 := Width, Height
	x1, y1 := -1, -1

	for x := r.X; x < r.X+r.W; x++ {
		for y := r.Y; y < r.Y+r.H; y++ {
			if fb.pixels[x][y] == other.pixels[x][y] {
				continue
			}

			x0 = min(x0, x)
			y0 = min(y0, y)
			x1 = max(x1, x)
			y1 = max(y1, y)
		}
	}

	if x1 < 0 {
		return Region{}
	}

	return Region{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}
}

// CopyFrom copies the cells of other without touching the dirty rectangle.
func (fb *Framebuffer) CopyFrom(other *Framebuffer) {
	fb.pixels = other.pixels
}

func (fb *Framebuffer) Blank() bool {
	for x := range Width {
		for y := range Height {
			if fb.pixels[x][y] {
				return false
			}
		}
	}

	return true
}
