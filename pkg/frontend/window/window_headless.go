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

//go:build headless

package window

import (
	"context"
	"errors"
	"time"

	"github.com/lassandro/gochip8/pkg/event"
	"github.com/lassandro/gochip8/pkg/keymap"
)

var ErrUnavailable = errors.New("window backend not available in headless builds")

type Options struct {
	Rendezvous *event.Rendezvous
	Frame      *Frame
	Relay      *keymap.Relay
	Scale      int
	Title      string
	Budget     time.Duration
}

func Run(ctx context.Context, opts Options) error {
	return ErrUnavailable
}
