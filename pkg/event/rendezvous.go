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
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
)

const DefaultTimeout = 250 * time.Millisecond

var (
	ErrHandoffTimeout   = errors.New("consumer did not complete handoff in time")
	ErrConsumerDetached = errors.New("consumer detached")
	ErrUnknownPolicy    = errors.New("unknown timeout policy")
)

// TimeoutPolicy decides what happens to the consumer after a handoff times
// out.
type TimeoutPolicy uint8

const (
	// The event is dropped; later events are still offered.
	DropOnTimeout TimeoutPolicy = iota

	// The consumer is cut off; later events fail fast.
	DetachOnTimeout
)

func (p TimeoutPolicy) String() string {
	switch p {
	case DropOnTimeout:
		return "drop"
	case DetachOnTimeout:
		return "detach"
	}

	return fmt.Sprintf("policy(%d)", uint8(p))
}

func ParsePolicy(s string) (TimeoutPolicy, error) {
	switch strings.ToLower(s) {
	case "", "drop":
		return DropOnTimeout, nil
	case "detach":
		return DetachOnTimeout, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

type RendezvousOptions struct {
	// Bounds the publish and the completion wait together. Zero or
	// negative selects DefaultTimeout.
	Timeout time.Duration
	Policy  TimeoutPolicy
	Logger  *slog.Logger
}

// Handoff is one delivery waiting to be served by the consumer.
type Handoff struct {
	delivery Delivery
	rv       *Rendezvous
	done     chan struct{}
	once     sync.Once
	err      error
}

func (h *Handoff) Event() Event {
	return h.delivery.Event
}

// View is the snapshot the handlers are given.
func (h *Handoff) View() machine.View {
	return h.delivery.View
}

// Run calls the handlers and releases the engine. Only the first call runs
// them; later calls return the same error.
func (h *Handoff) Run() error {
	h.once.Do(func() {
		h.rv.serving.Lock()
		defer h.rv.serving.Unlock()

		h.err = h.delivery.Run()
		close(h.done)
	})

	return h.err
}

// Rendezvous hands each delivery to a consumer goroutine over an unbuffered
// channel and parks the engine until the consumer has run it, or until the
// timeout expires.
//
// Handlers receive a machine.Snapshot instead of the live machine, so a
// handler that outlives its timeout never observes the engine moving on.
type Rendezvous struct {
	timeout time.Duration
	policy  TimeoutPolicy
	log     *slog.Logger

	handoffs chan *Handoff

	// One handoff runs at a time no matter how many goroutines serve
	serving sync.Mutex

	detached   atomic.Bool
	detachOnce sync.Once
	detach     chan struct{}
}

func NewRendezvous(opts RendezvousOptions) *Rendezvous {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Rendezvous{
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		log:      opts.Logger,
		handoffs: make(chan *Handoff),
		detach:   make(chan struct{}),
	}
}

func (rv *Rendezvous) Timeout() time.Duration {
	return rv.timeout
}

func (rv *Rendezvous) Detached() bool {
	return rv.detached.Load()
}

type snapshotter interface {
	Snapshot() *machine.Snapshot
}

// Deliver publishes d and waits for the consumer to run it.
func (rv *Rendezvous) Deliver(ctx context.Context, d Delivery) error {
	if rv.detached.Load() {
		return fmt.Errorf("%w: %s dropped", ErrConsumerDetached, d.Event.Tag)
	}

	if s, ok := d.View.(snapshotter); ok {
		d.View = s.Snapshot()
	}

	h := &Handoff{
		delivery: d,
		rv:       rv,
		done:     make(chan struct{}),
	}

	timer := time.NewTimer(rv.timeout)
	defer timer.Stop()

	select {
	case rv.handoffs <- h:
	case <-timer.C:
		return rv.expire(d.Event, "publish")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-h.done:
		return h.err
	case <-timer.C:
		return rv.expire(d.Event, "completion")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rv *Rendezvous) expire(ev Event, stage string) error {
	rv.log.Warn(
		"handoff timed out",
		"event", ev.Tag.String(),
		"cycle", ev.Cycle,
		"stage", stage,
		"timeout", rv.timeout,
		"policy", rv.policy.String(),
	)

	if rv.policy == DetachOnTimeout {
		rv.detached.Store(true)
		rv.detachOnce.Do(func() { close(rv.detach) })
	}

	return fmt.Errorf("%w: %s %s after %s", ErrHandoffTimeout, ev.Tag, stage, rv.timeout)
}

// Serve runs handoffs until ctx is done or the consumer is detached.
// Handler errors are reported to the engine, not returned here.
func (rv *Rendezvous) Serve(ctx context.Context) error {
	for {
		h, err := rv.Next(ctx)
		if err != nil {
			return err
		}

		h.Run()

		if rv.detached.Load() {
			return ErrConsumerDetached
		}
	}
}

// Next waits for the next handoff. The caller must Run it.
func (rv *Rendezvous) Next(ctx context.Context) (*Handoff, error) {
	if rv.detached.Load() {
		return nil, ErrConsumerDetached
	}

	select {
	case h := <-rv.handoffs:
		return h, nil
	case <-rv.detach:
		return nil, ErrConsumerDetached
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Poll runs at most one pending handoff without blocking.
func (rv *Rendezvous) Poll() (bool, error) {
	select {
	case h := <-rv.handoffs:
		return true, h.Run()
	default:
		return false, nil
	}
}

// Drain runs handoffs until budget has elapsed and returns how many ran.
// Meant for frame-locked loops that can only serve from their update hook.
func (rv *Rendezvous) Drain(budget time.Duration) int {
	served := 0
	deadline := time.Now().Add(budget)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return served
		}

		timer := time.NewTimer(remaining)

		select {
		case h := <-rv.handoffs:
			timer.Stop()
			h.Run()
			served++

		case <-rv.detach:
			timer.Stop()
			return served

		case <-timer.C:
			return served
		}
	}
}
