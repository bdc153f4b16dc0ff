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

package audio_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/audio"
	"github.com/lassandro/gochip8/pkg/event"
)

// A quarter of the sample rate gives a four sample period with exact phase
// steps.
const testFreq = audio.SampleRate / 4

func TestSquareFill(t *testing.T) {
	sq := audio.NewSquare(testFreq, 0.5)
	out := make([]float32, 8)

	sq.Fill(out)
	assert.Equal(t, make([]float32, 8), out)

	sq.SetTone(true)
	sq.Fill(out)
	assert.Equal(t, []float32{0.5, 0.5, -0.5, -0.5, 0.5, 0.5, -0.5, -0.5}, out)
}

func TestSquareRead(t *testing.T) {
	sq := audio.NewSquare(testFreq, 0.25)
	sq.SetTone(true)

	p := make([]byte, 4*4+3)
	n, err := sq.Read(p)

	require.NoError(t, err)
	require.Equal(t, 16, n)

	var got []float32
	for i := 0; i < n; i += 4 {
		got = append(got, math.Float32frombits(binary.LittleEndian.Uint32(p[i:])))
	}

	assert.Equal(t, []float32{0.25, 0.25, -0.25, -0.25}, got)
}

func TestSquareHandleEvent(t *testing.T) {
	sq := audio.NewSquare(testFreq, 1)

	require.NoError(t, sq.HandleEvent(event.Event{
		Tag:  event.Redraw,
		Tone: event.ToneState{On: true, Changed: true},
	}, nil))
	assert.True(t, sq.On())

	require.NoError(t, sq.HandleEvent(event.Event{
		Tag:  event.Tone,
		Tone: event.ToneState{On: false, Changed: true},
	}, nil))
	assert.False(t, sq.On())
}

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	rec, err := audio.NewRecorder(path, testFreq, 0.5, 60)
	require.NoError(t, err)

	tone := func(tick uint64, on bool) {
		t.Helper()
		require.NoError(t, rec.HandleEvent(event.Event{
			Tag:  event.Tone,
			Tick: tick,
			Tone: event.ToneState{On: on},
		}, nil))
	}

	// Six ticks on, then six ticks off
	tone(10, true)
	for tick := uint64(11); tick < 16; tick++ {
		tone(tick, true)
	}
	tone(16, false)
	tone(22, true)

	perTick := audio.SampleRate / 60
	assert.Equal(t, uint64(12*perTick), rec.Samples())

	require.NoError(t, rec.Close())
	assert.ErrorIs(t, rec.HandleEvent(event.Event{Tag: event.Tone}, nil), audio.ErrRecorderClosed)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())

	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint32(audio.SampleRate), d.SampleRate)
	assert.Equal(t, uint16(16), d.BitDepth)
	assert.Equal(t, uint16(1), d.NumChans)
	require.Len(t, buf.Data, 12*perTick)

	assert.Equal(t, []int{16384, 16384, -16384, -16384}, buf.Data[:4])
	assert.Equal(t, make([]int, perTick*6), buf.Data[perTick*6:])
}
