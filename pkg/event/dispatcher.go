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

package event

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/lassandro/gochip8/pkg/machine"
)

// Stats counts dispatch outcomes.
type Stats struct {
	Delivered uint64
	Dropped   uint64
	Failed    uint64
}

type Dispatcher struct {
	registry *Registry
	strategy Strategy
	log      *slog.Logger

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher delivers through Direct when strategy is nil.
func NewDispatcher(registry *Registry, strategy Strategy, log *slog.Logger) *Dispatcher {
	if strategy == nil {
		strategy = Direct{}
	}

	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		registry: registry,
		strategy: strategy,
		log:      log,
	}
}

func (d *Dispatcher) Strategy() Strategy {
	return d.strategy
}

// Dispatch delivers ev to its registered handlers and blocks until they
// return. Events with no handler are dropped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, view machine.View) error {
	handlers := d.registry.Resolve(ev)
	if len(handlers) == 0 {
		return nil
	}

	err := d.strategy.Deliver(ctx, Delivery{
		Event:    ev,
		View:     view,
		Handlers: handlers,
	})

	switch {
	case err == nil:
		d.delivered.Add(1)

	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		d.dropped.Add(1)

	case errors.Is(err, ErrHandoffTimeout),
		errors.Is(err, ErrConsumerDetached):
		d.dropped.Add(1)
		d.log.Debug("event dropped", "event", ev.String(), "err", err)

	default:
		d.failed.Add(1)
		d.log.Warn("event handler failed", "event", ev.String(), "err", err)
	}

	return err
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Failed:    d.failed.Load(),
	}
}
