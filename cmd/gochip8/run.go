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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/lassandro/gochip8/pkg/audio"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/engine"
	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/frontend/ansi"
	"github.com/lassandro/gochip8/pkg/frontend/tui"
	"github.com/lassandro/gochip8/pkg/frontend/window"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/statsview"
)

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// session is a configured engine and the handlers every backend shares.
type session struct {
	cfg    config.Config
	log    *slog.Logger
	engine *engine.Engine
	rv     *event.Rendezvous
	relay  *keymap.Relay
	repl   *repl

	// Tone handlers that do not draw
	sound   []event.Handler
	closers []func() error
}

func run(ctx context.Context, cfg config.Config, opts *options, path string) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(log)

	s, err := newSession(ctx, cancel, cfg, opts, log)
	if err != nil {
		return err
	}

	defer func() {
		for i := len(s.closers) - 1; i >= 0; i-- {
			err = errors.Join(err, s.closers[i]())
		}
	}()

	if _, err := s.engine.LoadFile(path); err != nil {
		return WrapExitError(ExitFailure, "failed to load program", err)
	}

	if opts.statsview {
		err := statsview.Launch(ctx, statsview.Options{
			Addr:     cfg.Stats.Addr,
			Interval: cfg.Stats.Interval,
			Stats:    s.engine.Stats,
			Log:      log,
		}, os.Stderr)

		if err != nil {
			log.Warn("failed to launch statsview", "err", err)
		}
	}

	title := fmt.Sprintf("gochip8 - %s", filepath.Base(path))

	switch cfg.Backend {
	case config.BackendANSI:
		err = s.runANSI(ctx)
	case config.BackendTUI:
		err = s.runTUI(ctx)
	default:
		err = s.runWindow(ctx, title)
	}

	if err != nil {
		return WrapExitError(ExitFailure, "emulation stopped", err)
	}

	return nil
}

func newSession(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg config.Config,
	opts *options,
	log *slog.Logger,
) (*session, error) {
	ecfg, rv, err := cfg.Engine(log)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid configuration", err)
	}

	s := &session{cfg: cfg, log: log, rv: rv}
	s.relay = &keymap.Relay{Keymap: cfg.ParsedKeymap()}

	var engineOpts []engine.Option
	engineOpts = append(engineOpts, engine.WithLogger(log))

	if opts.debug {
		s.repl = newREPL(os.Stdin, os.Stdout, s.relay, cancel)
		engineOpts = append(engineOpts, engine.WithDebugger(s.repl.dbg))
	}

	e, err := engine.New(ecfg, engineOpts...)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to start engine", err)
	}

	s.engine = e
	s.relay.Target = e

	if !cfg.Audio.Mute {
		beeper, err := audio.NewBeeper(cfg.Audio.Frequency, cfg.Audio.Volume)
		if err != nil {
			log.Warn("audio disabled", "err", err)
		} else {
			s.sound = append(s.sound, beeper)
			s.closers = append(s.closers, beeper.Close)
		}
	}

	if cfg.Audio.Record != "" {
		rec, err := audio.NewRecorder(
			cfg.Audio.Record, cfg.Audio.Frequency, cfg.Audio.Volume, cfg.TimerHz,
		)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "failed to record", err)
		}

		s.sound = append(s.sound, rec)
		s.closers = append(s.closers, rec.Close)
	}

	return s, nil
}

// register installs the frontend under Redraw and the sound handlers under
// Tone. Tone transitions reach the frontend as coupled redraws.
func (s *session) register(frontend event.Handler) error {
	if err := s.engine.Register(event.Redraw, frontend); err != nil {
		return err
	}

	return s.registerSound()
}

func (s *session) registerSound() error {
	if len(s.sound) == 0 {
		return nil
	}

	return s.engine.Register(event.Tone, event.Multi(s.sound...))
}

// bind returns a context for the frontend that also ends with the engine.
func (s *session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		select {
		case <-s.engine.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// wait stops the engine once the frontend returns and reports the first
// failure.
func (s *session) wait(frontendErr error) error {
	if err := s.engine.Stop(); err != nil && !errors.Is(err, engine.ErrNotStarted) {
		return err
	}

	engineErr := s.engine.Wait()

	stats := s.engine.Stats()
	s.log.Debug(
		"session ended",
		"delivered", stats.Delivered,
		"dropped", stats.Dropped,
		"failed", stats.Failed,
	)

	switch {
	case engineErr != nil:
		return engineErr
	case errors.Is(frontendErr, context.Canceled), errors.Is(frontendErr, ansi.ErrQuit):
		return nil
	}

	return frontendErr
}

func (s *session) runANSI(ctx context.Context) error {
	if s.repl != nil {
		return s.runDebug(ctx)
	}

	if err := ansi.Check(int(os.Stdout.Fd())); err != nil {
		return err
	}

	renderer := ansi.NewRenderer(os.Stdout)
	if err := s.register(renderer); err != nil {
		return err
	}

	raw, err := ansi.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer raw.Restore()

	if err := renderer.Init(); err != nil {
		return err
	}
	defer renderer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	if s.rv != nil {
		go s.rv.Serve(ctx)
	}

	relay := *s.relay
	relay.Mode = keymap.Transient

	keys := make(chan error, 1)
	go func() {
		keys <- ansi.ReadKeys(ctx, raw.Input(os.Stdin), &relay)
	}()

	var frontendErr error

	select {
	case <-s.engine.Done():
	case frontendErr = <-keys:
	}

	cancel()

	return s.wait(frontendErr)
}

// runDebug runs without a renderer; the prompt's screen command prints the
// framebuffer instead.
func (s *session) runDebug(ctx context.Context) error {
	if err := s.registerSound(); err != nil {
		return err
	}

	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	go func() {
		for {
			select {
			case <-interrupts:
				fmt.Println()
				s.repl.dbg.Break.Store(true)
			case <-s.engine.Done():
				return
			}
		}
	}()

	<-s.engine.Done()

	return s.wait(nil)
}

func (s *session) runTUI(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	model := tui.New(ctx, tui.Options{
		Rendezvous: s.rv,
		Relay:      s.relay,
		Debug:      true,
	})

	if err := s.register(model.Handler()); err != nil {
		return err
	}

	if err := s.engine.Register(event.Cycle, model.Handler()); err != nil {
		return err
	}

	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	return s.wait(tui.Run(ctx, model))
}

func (s *session) runWindow(ctx context.Context, title string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	frame := window.NewFrame()

	if err := s.register(frame); err != nil {
		return err
	}

	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	return s.wait(window.Run(ctx, window.Options{
		Rendezvous: s.rv,
		Frame:      frame,
		Relay:      s.relay,
		Scale:      s.cfg.Scale,
		Title:      title,
	}))
}
