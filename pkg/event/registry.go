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
	"sync"
)

var (
	ErrRegistryFrozen = errors.New("handlers cannot change after start")
	ErrUnknownTag     = errors.New("unknown event tag")
)

// Registry holds at most one handler per tag.
type Registry struct {
	mu       sync.RWMutex
	handlers [NumTags]Handler
	frozen   bool
}

// Register replaces the handler for tag. A nil handler removes it.
func (r *Registry) Register(tag Tag, handler Handler) error {
	if !tag.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownTag, uint8(tag))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: %s", ErrRegistryFrozen, tag)
	}

	r.handlers[tag] = handler

	return nil
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

func (r *Registry) Handler(tag Tag) Handler {
	if !tag.Valid() {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handlers[tag]
}

// Resolve returns the handlers ev is delivered to, in call order. A coupled
// redraw resolves to the Redraw handler followed by the Tone handler.
func (r *Registry) Resolve(ev Event) []Handler {
	var handlers []Handler

	if h := r.Handler(ev.Tag); h != nil {
		handlers = append(handlers, h)
	}

	if ev.Coupled() {
		if h := r.Handler(Tone); h != nil {
			handlers = append(handlers, h)
		}
	}

	return handlers
}
