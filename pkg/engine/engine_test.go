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
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

func newTestEngine(t *testing.T, cfg Config, program []byte) *Engine {
	t.Helper()

	e, err := New(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	_, err = e.LoadProgram(bytes.NewReader(program))
	require.NoError(t, err)

	return e
}

// collect records every event delivered for tag.
func collect(t *testing.T, e *Engine, tag event.Tag) *[]event.Event {
	var events []event.Event

	require.NoError(t, e.Register(tag, event.HandlerFunc(
		func(ev event.Event, st machine.View) error {
			events = append(events, ev)
			return nil
		},
	)))

	return &events
}

func steps(t *testing.T, e *Engine, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, e.step(context.Background()))
	}
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Config{CycleHz: -1})
	assert.ErrorIs(t, err, ErrInitialization)

	_, err = New(Config{TapCycles: -2})
	assert.ErrorIs(t, err, ErrInitialization)

	e, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCycleHz, e.cfg.CycleHz)
	assert.Equal(t, DefaultTimerHz, e.cfg.TimerHz)
	assert.Equal(t, uuid.Version(7), e.ID().Version())
}

func TestEmptyProgram(t *testing.T) {
	e, err := New(Config{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	size, err := e.LoadProgram(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Zero(t, size)

	redraws := collect(t, e, event.Redraw)
	cycles := collect(t, e, event.Cycle)

	e.redraw(context.Background(), true)
	steps(t, e, 100)

	assert.Len(t, *cycles, 100)
	assert.Len(t, *redraws, 1, "only the initial redraw")
	assert.Equal(t, uint64(100), (*cycles)[99].Cycle)

	for x := 0; x < machine.Width; x++ {
		for y := 0; y < machine.Height; y++ {
			require.False(t, e.Pixel(x, y))
		}
	}
}

func TestKeyThroughRelay(t *testing.T) {
	// LD V0, K
	e := newTestEngine(t, Config{}, []byte{0xF0, 0x0A})

	steps(t, e, 3)
	assert.Equal(t, uint16(0x200), e.Registers().PC, "waiting for a key")

	relay := keymap.Relay{Keymap: keymap.Default, Target: e, Mode: keymap.Held}
	require.True(t, relay.Press('1'))

	steps(t, e, 1)

	assert.Equal(t, uint8(0x1), e.Registers().V[0])
	assert.Equal(t, uint16(0x202), e.Registers().PC)
	assert.Equal(t, uint16(1<<0x1), e.KeyMask())
}

func TestTapKeyClears(t *testing.T) {
	e := newTestEngine(t, Config{TapCycles: 2}, nil)

	require.NoError(t, e.TapKey(0xC))

	steps(t, e, 1)
	assert.Equal(t, uint16(1<<0xC), e.KeyMask())

	steps(t, e, 1)
	assert.Equal(t, uint16(1<<0xC), e.KeyMask())

	steps(t, e, 1)
	assert.Zero(t, e.KeyMask())
}

func TestInvalidKey(t *testing.T) {
	e := newTestEngine(t, Config{}, nil)

	assert.ErrorIs(t, e.InjectKey(16, true), ErrInvalidKey)
	assert.ErrorIs(t, e.InjectKey(-1, false), ErrInvalidKey)
	assert.ErrorIs(t, e.TapKey(99), ErrInvalidKey)
}

func TestDirectKeys(t *testing.T) {
	e := newTestEngine(t, Config{}, nil)

	e.DirectKeys().Set(0x4, true)

	assert.Equal(t, uint16(1<<0x4), e.KeyMask())
}

func TestDirtyRectIdenticalFrames(t *testing.T) {
	program := []byte{
		0xA0, 0x50, // LD I, font
		0xD0, 0x05, // DRW V0, V0, 5
		0xD0, 0x05, // DRW V0, V0, 5
		0x00, 0xE0, // CLS
		0x00, 0xE0, // CLS
	}

	e := newTestEngine(t, Config{Region: &DirtyRect{}}, program)
	redraws := collect(t, e, event.Redraw)

	e.redraw(context.Background(), true)
	steps(t, e, 5)

	require.Len(t, *redraws, 5)

	glyph := machine.Region{X: 0, Y: 0, W: 4, H: 5}

	assert.Equal(t, machine.Full(), (*redraws)[0].Region)
	assert.Equal(t, glyph, (*redraws)[1].Region)
	assert.Equal(t, glyph, (*redraws)[2].Region)
	assert.True(t, (*redraws)[3].Region.Empty(), "erased frame equals a clear")
	assert.True(t, (*redraws)[4].Region.Empty())
	assert.True(t, (*redraws)[4].Noop(), "identical frame repaints nothing")
}

func TestRegionWithinBounds(t *testing.T) {
	program := []byte{
		0x60, 0x3E, // LD V0, 62
		0x61, 0x1F, // LD V1, 31
		0xA0, 0x50, // LD I, font
		0xD0, 0x15, // DRW V0, V1, 5
	}

	for _, policy := range []RegionPolicy{FullFrame{}, &DirtyRect{}} {
		e := newTestEngine(t, Config{Region: policy}, program)
		redraws := collect(t, e, event.Redraw)

		steps(t, e, 4)

		require.Len(t, *redraws, 1)

		r := (*redraws)[0].Region
		assert.GreaterOrEqual(t, r.X, 0)
		assert.GreaterOrEqual(t, r.Y, 0)
		assert.LessOrEqual(t, r.X+r.W, machine.Width)
		assert.LessOrEqual(t, r.Y+r.H, machine.Height)
	}
}

func TestToneTransition(t *testing.T) {
	program := []byte{
		0x60, 0x03, // LD V0, 3
		0xF0, 0x18, // LD ST, V0
	}

	e := newTestEngine(t, Config{Region: &DirtyRect{}}, program)
	redraws := collect(t, e, event.Redraw)
	tones := collect(t, e, event.Tone)

	steps(t, e, 2)

	require.Len(t, *redraws, 1)
	require.Len(t, *tones, 1, "coupled redraw reaches the tone handler")

	start := (*redraws)[0]
	assert.Equal(t, event.Redraw, start.Tag)
	assert.Equal(t, machine.Full(), start.Region)
	assert.Equal(t, event.ToneState{On: true, Changed: true}, start.Tone)
	assert.Equal(t, start, (*tones)[0])

	ctx := context.Background()

	// Two plain tone events while the timer runs, then the coupled stop
	e.tickTimers(ctx)
	e.tickTimers(ctx)
	e.tickTimers(ctx)

	require.Len(t, *tones, 4)
	assert.Equal(t, event.Event{Tag: event.Tone, Cycle: 2, Tick: 1, Tone: event.ToneState{On: true}}, (*tones)[1])
	assert.Equal(t, event.Tone, (*tones)[2].Tag)

	stop := (*tones)[3]
	assert.Equal(t, event.Redraw, stop.Tag)
	assert.Equal(t, event.ToneState{On: false, Changed: true}, stop.Tone)
	assert.Equal(t, machine.Full(), stop.Region)

	require.Len(t, *redraws, 2)

	e.tickTimers(ctx)
	assert.Len(t, *tones, 4, "no tone events while silent")
}

func TestStalledToneHandler(t *testing.T) {
	const timeout = 20 * time.Millisecond

	rv := event.NewRendezvous(event.RendezvousOptions{
		Timeout: timeout,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	program := []byte{
		0x60, 0x05, // LD V0, 5
		0xF0, 0x18, // LD ST, V0
		0x12, 0x04, // JP 0x204
	}

	e := newTestEngine(t, Config{Strategy: rv}, program)

	release := make(chan struct{})
	defer close(release)

	require.NoError(t, e.Register(event.Tone, event.HandlerFunc(
		func(event.Event, machine.View) error {
			<-release
			return nil
		},
	)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go rv.Serve(ctx)

	start := time.Now()
	steps(t, e, 2)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, 20*timeout)
	assert.Equal(t, uint64(1), e.Stats().Dropped)

	steps(t, e, 10)
	assert.Equal(t, uint16(0x204), e.Registers().PC)
}

func TestLifecycle(t *testing.T) {
	// JP 0x200
	e := newTestEngine(t, Config{}, []byte{0x12, 0x00})

	assert.ErrorIs(t, e.Stop(), ErrNotStarted)
	assert.ErrorIs(t, e.Wait(), ErrNotStarted)

	cycles := make(chan struct{}, 1)

	require.NoError(t, e.Register(event.Cycle, event.HandlerFunc(
		func(event.Event, machine.View) error {
			select {
			case cycles <- struct{}{}:
			default:
			}
			return nil
		},
	)))

	require.NoError(t, e.Start(context.Background()))

	assert.ErrorIs(t, e.Start(context.Background()), ErrStarted)
	assert.ErrorIs(t, e.Register(event.Redraw, nil), event.ErrRegistryFrozen)

	_, err := e.LoadProgram(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrStarted)

	select {
	case <-cycles:
	case <-time.After(time.Second):
		t.Fatal("engine did not run")
	}

	require.NoError(t, e.Stop())
	require.NoError(t, e.Wait())

	select {
	case <-e.Done():
	default:
		t.Fatal("done channel open after Wait")
	}
}

func TestContextCancel(t *testing.T) {
	e := newTestEngine(t, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, e.Start(ctx))
	cancel()

	assert.NoError(t, e.Wait())
}

func TestMachineFaultStops(t *testing.T) {
	// RET with an empty stack
	e := newTestEngine(t, Config{}, []byte{0x00, 0xEE})

	require.NoError(t, e.Start(context.Background()))

	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on fault")
	}

	assert.ErrorIs(t, e.Wait(), machine.ErrStackUnderflow)
}

func TestLoadErrors(t *testing.T) {
	e := newTestEngine(t, Config{}, nil)

	_, err := e.LoadFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.ErrorIs(t, err, ErrLoad)

	_, err = e.LoadProgram(bytes.NewReader(make([]byte, machine.MaxProgramSize+1)))
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, machine.ErrProgramSize)
}

func TestParseRegionPolicy(t *testing.T) {
	p, err := ParseRegionPolicy("dirty")
	require.NoError(t, err)
	assert.IsType(t, &DirtyRect{}, p)

	p, err = ParseRegionPolicy("FULL")
	require.NoError(t, err)
	assert.IsType(t, FullFrame{}, p)

	_, err = ParseRegionPolicy("partial")
	assert.ErrorIs(t, err, ErrUnknownRegion)
}
