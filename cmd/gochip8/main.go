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
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lassandro/gochip8/pkg/config"
)

const usage = "gochip8 [flags] <program> [scale]"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

type options struct {
	configPath string

	backend   string
	keymap    string
	cycleHz   int
	timerHz   int
	region    string
	strategy  string
	timeout   time.Duration
	onTimeout string
	tapCycles int
	mute      bool
	record    string
	logFormat string

	debug     bool
	verbose   bool
	statsview bool
	statsAddr string
}

func newRootCommand(opts *options) *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           usage,
		Short:         "CHIP-8 emulator",
		SilenceUsage:  true,
		SilenceErrors: true,

		// Argument errors need the plain usage line and exit code 1
		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return NewExitError(ExitFailure, "usage: "+usage)
			}

			cfg, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			// The debugger takes interrupts itself
			if opts.debug {
				stop()
				ctx = cmd.Context()
			}

			return run(ctx, cfg, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.backend, "backend", defaults.Backend, "presentation backend (window|tui|ansi)")
	flags.StringVar(&opts.keymap, "keymap", defaults.Keymap, "16 key symbols for keypad 0-F")
	flags.IntVar(&opts.cycleHz, "cycle-hz", defaults.CycleHz, "instructions per second")
	flags.IntVar(&opts.timerHz, "timer-hz", defaults.TimerHz, "timer ticks per second")
	flags.StringVar(&opts.region, "region", defaults.Region, "redraw region policy (full|dirty)")
	flags.StringVar(&opts.strategy, "strategy", defaults.Dispatch.Strategy, "dispatch strategy (direct|rendezvous)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Dispatch.Timeout, "rendezvous handoff timeout")
	flags.StringVar(&opts.onTimeout, "on-timeout", defaults.Dispatch.OnTimeout, "handoff timeout policy (drop|detach)")
	flags.IntVar(&opts.tapCycles, "tap-cycles", defaults.Input.TapCycles, "cycles a terminal key press is held")
	flags.BoolVar(&opts.mute, "mute", defaults.Audio.Mute, "disable audio output")
	flags.StringVar(&opts.record, "record", defaults.Audio.Record, "record the tone to a WAV file")
	flags.StringVar(&opts.logFormat, "log-format", defaults.Log.Format, "log format (text|json)")
	flags.BoolVar(&opts.debug, "debug", false, "run the program under the debugger")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&opts.statsview, "statsview", false, "serve runtime statistics (statsview builds only)")
	flags.StringVar(&opts.statsAddr, "statsview-addr", defaults.Stats.Addr, "statsview listen address")

	return cmd
}

// loadConfig layers the config file, changed flags and the scale argument
// over the defaults.
func loadConfig(cmd *cobra.Command, opts *options, args []string) (config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, WrapExitError(ExitFailure, "invalid configuration", err)
		}

		cfg = loaded
	}

	flags := cmd.Flags()

	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("keymap") {
		cfg.Keymap = opts.keymap
	}
	if flags.Changed("cycle-hz") {
		cfg.CycleHz = opts.cycleHz
	}
	if flags.Changed("timer-hz") {
		cfg.TimerHz = opts.timerHz
	}
	if flags.Changed("region") {
		cfg.Region = opts.region
	}
	if flags.Changed("strategy") {
		cfg.Dispatch.Strategy = opts.strategy
	}
	if flags.Changed("timeout") {
		cfg.Dispatch.Timeout = opts.timeout
	}
	if flags.Changed("on-timeout") {
		cfg.Dispatch.OnTimeout = opts.onTimeout
	}
	if flags.Changed("tap-cycles") {
		cfg.Input.TapCycles = opts.tapCycles
	}
	if flags.Changed("mute") {
		cfg.Audio.Mute = opts.mute
	}
	if flags.Changed("record") {
		cfg.Audio.Record = opts.record
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("statsview-addr") {
		cfg.Stats.Addr = opts.statsAddr
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	if len(args) > 1 {
		scale, err := strconv.Atoi(args[1])
		if err != nil {
			return cfg, NewExitError(ExitFailure, config.ErrInvalidSize.Error())
		}

		cfg.Scale = scale
	}

	// The prompt shares the terminal with a plain renderer on the engine
	// goroutine
	if opts.debug {
		cfg.Backend = config.BackendANSI
		cfg.Dispatch.Strategy = config.StrategyDirect
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalidSize) {
			return cfg, NewExitError(ExitFailure, config.ErrInvalidSize.Error())
		}

		return cfg, WrapExitError(ExitFailure, "invalid configuration", err)
	}

	return cfg, nil
}

func gochip8(args []string, stdout, stderr io.Writer) int {
	var opts options

	// A nil slice makes cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}

	cmd := newRootCommand(&opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", cmd.Name(), err)
	}

	return GetExitCode(err)
}

func main() {
	os.Exit(gochip8(os.Args[1:], os.Stdout, os.Stderr))
}
