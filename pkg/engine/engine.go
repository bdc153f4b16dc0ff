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

// Package engine runs a CHIP-8 machine on its own goroutine and reports
// cycles, redraws and tone changes through an event dispatcher.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	DefaultCycleHz   = 500
	DefaultTimerHz   = 60
	DefaultTapCycles = 1

	maxRate = 1_000_000
)

type Config struct {
	// Instruction rate
	CycleHz int

	// Delay and sound timer rate
	TimerHz int

	// Cycles a tapped key stays down
	TapCycles int

	Region   RegionPolicy
	Strategy event.Strategy

	// Seed for CXNN. Zero seeds from the runtime.
	Seed uint64
}

func (c *Config) setDefaults() error {
	if c.CycleHz == 0 {
		c.CycleHz = DefaultCycleHz
	}

	if c.TimerHz == 0 {
		c.TimerHz = DefaultTimerHz
	}

	if c.TapCycles == 0 {
		c.TapCycles = DefaultTapCycles
	}

	if c.CycleHz < 0 || c.CycleHz > maxRate {
		return fmt.Errorf("cycle rate %d Hz out of range", c.CycleHz)
	}

	if c.TimerHz < 0 || c.TimerHz > maxRate {
		return fmt.Errorf("timer rate %d Hz out of range", c.TimerHz)
	}

	if c.TapCycles < 0 {
		return fmt.Errorf("tap cycles %d is negative", c.TapCycles)
	}

	if c.Region == nil {
		c.Region = FullFrame{}
	}

	if c.Strategy == nil {
		c.Strategy = event.Direct{}
	}

	return nil
}

type Option func(*Engine)

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithDebugger attaches hooks called on the engine goroutine after every
// instruction and on every memory access.
func WithDebugger(dbg machine.MachineDebugger) Option {
	return func(e *Engine) {
		e.mc.Debugger = dbg
	}
}

type Engine struct {
	id  uuid.UUID
	cfg Config
	log *slog.Logger

	mc         machine.Machine
	registry   event.Registry
	dispatcher *event.Dispatcher

	started atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	err     error

	// engine goroutine only
	cycle uint64
	tick  uint64
	tone  bool
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: session id: %w", ErrInitialization, err)
	}

	e := &Engine{
		id:   id,
		cfg:  cfg,
		log:  slog.Default(),
		done: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.log = e.log.With("session", id.String())

	if cfg.Seed != 0 {
		e.mc.Rand = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1))
	}

	e.mc.State.Reset()
	e.dispatcher = event.NewDispatcher(&e.registry, cfg.Strategy, e.log)

	return e, nil
}

func (e *Engine) ID() uuid.UUID {
	return e.id
}

// LoadProgram resets the machine and loads a program image. An empty image
// loads and runs as an idle loop.
func (e *Engine) LoadProgram(r io.Reader) (int, error) {
	if e.started.Load() {
		return 0, ErrStarted
	}

	size, err := e.mc.LoadBin(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if size == 0 {
		e.log.Warn("program is empty")
	} else {
		e.log.Debug("program loaded", "size", size)
	}

	return size, nil
}

func (e *Engine) LoadFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	defer file.Close()

	return e.LoadProgram(file)
}

// Register sets the handler for tag. Handlers cannot change once the
// engine has started.
func (e *Engine) Register(tag event.Tag, handler event.Handler) error {
	return e.registry.Register(tag, handler)
}

// Start runs the machine on a new goroutine until ctx is done, Stop is
// called or the machine faults.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	e.registry.Freeze()

	ctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		defer cancel()

		e.err = e.run(ctx)
	}()

	return nil
}

// Stop asks the engine goroutine to exit. It does not wait; see Wait.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}

	cancel()

	return nil
}

// Wait blocks until the engine goroutine exits and returns the machine
// fault that stopped it, if any.
func (e *Engine) Wait() error {
	if !e.started.Load() {
		return ErrNotStarted
	}

	<-e.done

	return e.err
}

// Done is closed once the engine goroutine has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) Stats() event.Stats {
	return e.dispatcher.Stats()
}

func (e *Engine) run(ctx context.Context) error {
	e.log.Info(
		"engine started",
		"cycle_hz", e.cfg.CycleHz,
		"timer_hz", e.cfg.TimerHz,
	)

	cycles := time.NewTicker(time.Second / time.Duration(e.cfg.CycleHz))
	defer cycles.Stop()

	timers := time.NewTicker(time.Second / time.Duration(e.cfg.TimerHz))
	defer timers.Stop()

	e.redraw(ctx, true)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopped", "cycles", e.cycle, "ticks", e.tick)
			return nil

		case <-cycles.C:
			if err := e.step(ctx); err != nil {
				e.log.Error("machine fault", "cycle", e.cycle, "err", err)
				return err
			}

		case <-timers.C:
			e.tickTimers(ctx)
		}
	}
}

// step runs one machine cycle and emits its events.
func (e *Engine) step(ctx context.Context) error {
	e.mc.Keys.Apply(e.cfg.TapCycles)

	result, err := e.mc.Step()
	e.cycle++

	if err != nil {
		return fmt.Errorf("cycle %d: %w", e.cycle, err)
	}

	e.dispatch(ctx, event.Event{Tag: event.Cycle})

	if result.Changed() {
		e.redraw(ctx, false)
	}

	e.checkTone(ctx)

	return nil
}

func (e *Engine) tickTimers(ctx context.Context) {
	e.mc.TickTimers()
	e.tick++

	if !e.checkTone(ctx) && e.tone {
		e.dispatch(ctx, event.Event{
			Tag:  event.Tone,
			Tone: event.ToneState{On: true},
		})
	}
}

// checkTone emits a coupled full redraw when the tone state has changed
// and reports whether it did.
func (e *Engine) checkTone(ctx context.Context) bool {
	on := e.mc.State.Timers.Tone()
	if on == e.tone {
		return false
	}

	e.tone = on

	e.dispatch(ctx, event.Event{
		Tag:    event.Redraw,
		Region: e.region(true),
		Tone:   event.ToneState{On: on, Changed: true},
	})

	return true
}

func (e *Engine) redraw(ctx context.Context, force bool) {
	e.dispatch(ctx, event.Event{
		Tag:    event.Redraw,
		Region: e.region(force),
		Tone:   event.ToneState{On: e.tone},
	})
}

func (e *Engine) region(force bool) machine.Region {
	r := e.cfg.Region.Next(&e.mc.State.Framebuffer, force)
	return r.Clip(machine.Width, machine.Height)
}

func (e *Engine) dispatch(ctx context.Context, ev event.Event) {
	ev.Cycle = e.cycle
	ev.Tick = e.tick
	ev.Tone.On = e.tone

	// Failures are logged by the dispatcher; the loop carries on
	e.dispatcher.Dispatch(ctx, ev, &e.mc)
}
