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

package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a Square through the system audio device.
type Beeper struct {
	*Square

	ctx    *oto.Context
	player *oto.Player
}

func NewBeeper(freq, volume float64) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	b := &Beeper{Square: NewSquare(freq, volume), ctx: ctx}
	b.player = ctx.NewPlayer(b.Square)
	b.player.Play()

	return b, nil
}

func (b *Beeper) Close() error {
	if b.player == nil {
		return nil
	}

	err := b.player.Close()
	b.player = nil

	return err
}
