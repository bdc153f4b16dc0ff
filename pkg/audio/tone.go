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

// Package audio turns Tone events into sound. A Square generator is gated
// by the tone state; Beeper plays it and Recorder writes it to a WAV file.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

const SampleRate = 44100

// Square is a gated square wave. SetTone may be called from any goroutine;
// Fill and Read must only be called from one.
type Square struct {
	gate   atomic.Bool
	freq   float64
	volume float32
	phase  float64

	buf []float32
}

func NewSquare(freq, volume float64) *Square {
	return &Square{freq: freq, volume: float32(volume)}
}

func (s *Square) SetTone(on bool) {
	s.gate.Store(on)
}

func (s *Square) On() bool {
	return s.gate.Load()
}

// Fill writes samples at SampleRate. Silence keeps the phase so a tone
// restarts mid-period rather than clicking at zero.
func (s *Square) Fill(out []float32) {
	on := s.gate.Load()
	step := s.freq / SampleRate

	for i := range out {
		switch {
		case !on:
			out[i] = 0
		case s.phase < 0.5:
			out[i] = s.volume
		default:
			out[i] = -s.volume
		}

		s.phase += step
		if s.phase >= 1 {
			s.phase -= math.Floor(s.phase)
		}
	}
}

// Read produces mono float32 little-endian samples.
func (s *Square) Read(p []byte) (int, error) {
	n := len(p) / 4

	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}

	samples := s.buf[:n]
	s.Fill(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}

	return n * 4, nil
}

// HandleEvent gates the wave from Tone and coupled Redraw events.
func (s *Square) HandleEvent(ev event.Event, _ machine.View) error {
	s.SetTone(ev.Tone.On)
	return nil
}
