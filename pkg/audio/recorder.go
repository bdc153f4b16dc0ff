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

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

const bitDepth = 16

var ErrRecorderClosed = errors.New("recorder closed")

// Recorder writes the tone to a 16-bit mono WAV stream. Time is taken from
// the event tick counter, so the output length follows emulated time rather
// than wall time.
//
// Tone events arrive on every tick while the tone is on and on each
// transition, so the state between two events is always the earlier one.
type Recorder struct {
	mu sync.Mutex

	file    *os.File
	encoder *wav.Encoder
	wave    *Square
	timerHz int

	started bool
	tick    uint64
	written uint64
	closed  bool

	samples []float32
	buf     audio.IntBuffer
}

// NewRecorder creates the file at path. Close must be called for the WAV
// header to be valid.
func NewRecorder(path string, freq, volume float64, timerHz int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	r := NewRecorderTo(file, freq, volume, timerHz)
	r.file = file

	return r, nil
}

func NewRecorderTo(ws io.WriteSeeker, freq, volume float64, timerHz int) *Recorder {
	return &Recorder{
		encoder: wav.NewEncoder(ws, SampleRate, bitDepth, 1, 1),
		wave:    NewSquare(freq, volume),
		timerHz: timerHz,
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

func (r *Recorder) HandleEvent(ev event.Event, _ machine.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRecorderClosed
	}

	// Silence before the first event is not recorded
	if !r.started {
		r.started = true
		r.tick = ev.Tick
		r.wave.SetTone(ev.Tone.On)
		return nil
	}

	if ev.Tick > r.tick {
		if err := r.advance(ev.Tick); err != nil {
			return err
		}
	}

	r.wave.SetTone(ev.Tone.On)

	return nil
}

// advance writes the current state up to tick.
func (r *Recorder) advance(tick uint64) error {
	target := (tick - r.tick) * SampleRate / uint64(r.timerHz)
	n := int(target - r.written)

	if n <= 0 {
		return nil
	}

	if cap(r.samples) < n {
		r.samples = make([]float32, n)
		r.buf.Data = make([]int, n)
	}

	samples := r.samples[:n]
	r.wave.Fill(samples)

	data := r.buf.Data[:n]
	for i, v := range samples {
		data[i] = int(math.Round(float64(v) * math.MaxInt16))
	}

	r.buf.Data = data
	if err := r.encoder.Write(&r.buf); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}

	r.buf.Data = r.buf.Data[:cap(r.buf.Data)]
	r.written = target

	return nil
}

// Samples reports how many samples have been written.
func (r *Recorder) Samples() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.written
}

// Close finalizes the WAV header and closes the file if the recorder
// created it.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	err := r.encoder.Close()

	if r.file != nil {
		err = errors.Join(err, r.file.Close())
	}

	return err
}
