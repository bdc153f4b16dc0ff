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

// Package config loads emulator settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lassandro/gochip8/pkg/engine"
	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/keymap"
)

const (
	BackendWindow = "window"
	BackendTUI    = "tui"
	BackendANSI   = "ansi"

	StrategyDirect     = "direct"
	StrategyRendezvous = "rendezvous"

	MinScale = 1
	MaxScale = 30
)

var (
	ErrInvalidSize = errors.New("invalid size")
	ErrInvalid     = errors.New("invalid configuration")
)

type Config struct {
	Backend string `yaml:"backend"`
	Scale   int    `yaml:"scale"`
	CycleHz int    `yaml:"cycle_hz"`
	TimerHz int    `yaml:"timer_hz"`
	Keymap  string `yaml:"keymap"`
	Region  string `yaml:"region"`
	Seed    uint64 `yaml:"seed"`

	Dispatch Dispatch `yaml:"dispatch"`
	Input    Input    `yaml:"input"`
	Audio    Audio    `yaml:"audio"`
	Log      Log      `yaml:"log"`
	Stats    Stats    `yaml:"stats"`
}

type Dispatch struct {
	Strategy  string        `yaml:"strategy"`
	Timeout   time.Duration `yaml:"timeout"`
	OnTimeout string        `yaml:"on_timeout"`
}

type Input struct {
	TapCycles int `yaml:"tap_cycles"`
}

type Audio struct {
	Mute      bool    `yaml:"mute"`
	Frequency float64 `yaml:"frequency"`
	Volume    float64 `yaml:"volume"`
	Record    string  `yaml:"record"`
}

// Stats configures the statsview server and the dispatch counter report.
type Stats struct {
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Backend: BackendWindow,
		Scale:   8,
		CycleHz: engine.DefaultCycleHz,
		TimerHz: engine.DefaultTimerHz,
		Keymap:  keymap.Default.String(),
		Region:  "full",
		Dispatch: Dispatch{
			Strategy:  StrategyRendezvous,
			Timeout:   event.DefaultTimeout,
			OnTimeout: event.DropOnTimeout.String(),
		},
		Input: Input{
			TapCycles: engine.DefaultTapCycles,
		},
		Audio: Audio{
			Frequency: 440,
			Volume:    0.2,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Stats: Stats{
			Addr:     "localhost:12600",
			Interval: 5 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	// An empty file leaves the defaults in place
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWindow, BackendTUI, BackendANSI:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}

	if c.Scale < MinScale || c.Scale > MaxScale {
		return fmt.Errorf("%w: %d", ErrInvalidSize, c.Scale)
	}

	if c.CycleHz <= 0 || c.TimerHz <= 0 {
		return fmt.Errorf("%w: rates must be positive", ErrInvalid)
	}

	if _, err := keymap.Parse(c.Keymap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := engine.ParseRegionPolicy(c.Region); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch c.Dispatch.Strategy {
	case StrategyRendezvous:
	case StrategyDirect:
		// Windowed and bubbletea consumers draw from their own goroutine
		if c.Backend != BackendANSI {
			return fmt.Errorf(
				"%w: %s backend needs the %s strategy",
				ErrInvalid, c.Backend, StrategyRendezvous,
			)
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalid, c.Dispatch.Strategy)
	}

	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("%w: dispatch timeout must be positive", ErrInvalid)
	}

	if _, err := event.ParsePolicy(c.Dispatch.OnTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.Input.TapCycles < 1 {
		return fmt.Errorf("%w: tap_cycles must be at least 1", ErrInvalid)
	}

	if c.Audio.Frequency <= 0 {
		return fmt.Errorf("%w: audio frequency must be positive", ErrInvalid)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio volume must be within [0, 1]", ErrInvalid)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}

	if _, _, err := net.SplitHostPort(c.Stats.Addr); err != nil {
		return fmt.Errorf("%w: stats address: %w", ErrInvalid, err)
	}

	if c.Stats.Interval <= 0 {
		return fmt.Errorf("%w: stats interval must be positive", ErrInvalid)
	}

	return nil
}

func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return level, nil
}

// Engine builds the engine configuration. The rendezvous is nil when
// handlers run directly on the engine goroutine.
func (c *Config) Engine(log *slog.Logger) (engine.Config, *event.Rendezvous, error) {
	region, err := engine.ParseRegionPolicy(c.Region)
	if err != nil {
		return engine.Config{}, nil, err
	}

	cfg := engine.Config{
		CycleHz:   c.CycleHz,
		TimerHz:   c.TimerHz,
		TapCycles: c.Input.TapCycles,
		Region:    region,
		Seed:      c.Seed,
	}

	if c.Dispatch.Strategy == StrategyDirect {
		cfg.Strategy = event.Direct{}
		return cfg, nil, nil
	}

	policy, err := event.ParsePolicy(c.Dispatch.OnTimeout)
	if err != nil {
		return engine.Config{}, nil, err
	}

	rv := event.NewRendezvous(event.RendezvousOptions{
		Timeout: c.Dispatch.Timeout,
		Policy:  policy,
		Logger:  log,
	})

	cfg.Strategy = rv

	return cfg, rv, nil
}

func (c *Config) ParsedKeymap() keymap.Keymap {
	km, err := keymap.Parse(c.Keymap)
	if err != nil {
		return keymap.Default
	}

	return km
}
