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

//go:build linux || darwin || freebsd || netbsd || openbsd

package ansi

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var (
	ErrNotTerminal   = errors.New("not a terminal")
	ErrTerminalSmall = errors.New("terminal too small")
)

// Check reports whether fd is a terminal large enough for the screen.
func Check(fd int) error {
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %w", err)
	}

	if width < Columns || height < Rows {
		return fmt.Errorf(
			"%w: need %dx%d, have %dx%d",
			ErrTerminalSmall, Columns, Rows, width, height,
		)
	}

	return nil
}

// Raw holds the terminal settings to put back on Restore.
type Raw struct {
	fd      int
	restore unix.Termios
}

// MakeRaw disables echo and line buffering on fd. Reads return after at
// most a tenth of a second so a reader can notice cancellation.
func MakeRaw(fd int) (*Raw, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal state: %w", err)
	}

	raw := &Raw{fd: fd, restore: *termios}
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN | unix.ISIG
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate); err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	return raw, nil
}

func (r *Raw) Restore() error {
	if err := unix.IoctlSetTermios(r.fd, ioctlSetTermios, &r.restore); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}

	return nil
}

// Input wraps the terminal file put in raw mode. A read that times out with
// no key returns zero bytes and no error instead of io.EOF.
func (r *Raw) Input(f io.Reader) io.Reader {
	return idleReader{f}
}

type idleReader struct {
	r io.Reader
}

func (ir idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}

	return n, err
}
