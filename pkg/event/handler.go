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
	"errors"
	"fmt"

	"github.com/lassandro/gochip8/pkg/machine"
)

var ErrHandlerPanic = errors.New("event handler panicked")

// Handler receives events for the tag it is registered under. A Tone
// handler also receives coupled Redraw events; it should read ev.Tone rather
// than switch on ev.Tag.
//
// The view is only valid until HandleEvent returns.
type Handler interface {
	HandleEvent(ev Event, st machine.View) error
}

type HandlerFunc func(ev Event, st machine.View) error

func (f HandlerFunc) HandleEvent(ev Event, st machine.View) error {
	return f(ev, st)
}

// Multi calls each handler in order on the calling goroutine. Nil handlers
// are skipped. Every handler runs even if an earlier one fails.
func Multi(handlers ...Handler) Handler {
	list := make([]Handler, 0, len(handlers))

	for _, h := range handlers {
		if h != nil {
			list = append(list, h)
		}
	}

	return HandlerFunc(func(ev Event, st machine.View) error {
		var errs []error

		for _, h := range list {
			if err := h.HandleEvent(ev, st); err != nil {
				errs = append(errs, err)
			}
		}

		return errors.Join(errs...)
	})
}

// Delivery is one resolved event: the handlers to run and the state they
// may read.
type Delivery struct {
	Event    Event
	View     machine.View
	Handlers []Handler
}

// Run calls the handlers in order. A panicking handler is reported as
// ErrHandlerPanic and does not prevent the remaining handlers from running.
func (d Delivery) Run() error {
	var errs []error

	for _, h := range d.Handlers {
		if err := invoke(h, d.Event, d.View); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func invoke(h Handler, ev Event, st machine.View) (returnedErr error) {
	defer func() {
		if r := recover(); r != nil {
			returnedErr = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, ev.Tag, r)
		}
	}()

	return h.HandleEvent(ev, st)
}
