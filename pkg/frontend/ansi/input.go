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

package ansi

import (
	"context"
	"errors"
	"io"

	"github.com/lassandro/gochip8/pkg/keymap"
)

var ErrQuit = errors.New("quit requested")

const (
	keyInterrupt = 0x03
	keyEscape    = 0x1b
)

// ReadKeys presses mapped keys on relay until ctx is done, the reader
// fails, or Escape or Ctrl-C is read, in which case ErrQuit is returned.
// A terminal only reports key-down, so relay should be in Transient mode.
//
// io.EOF ends the loop cleanly. Read a raw terminal through Raw.Input so
// that idle timeouts come back as empty reads rather than io.EOF.
func ReadKeys(ctx context.Context, r io.Reader, relay *keymap.Relay) error {
	buf := make([]byte, 16)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)

		for _, b := range buf[:n] {
			switch b {
			case keyInterrupt, keyEscape:
				return ErrQuit
			}

			relay.Press(rune(b))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}
	}
}
