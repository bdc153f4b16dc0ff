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

//go:build linux

package ansi_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/lassandro/gochip8/pkg/frontend/ansi"
	"github.com/lassandro/gochip8/pkg/keymap"
)

// openPty returns the master and slave ends of a new pseudo-terminal.
func openPty(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pseudo-terminal: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	fd := int(master.Fd())

	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0))

	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	require.NoError(t, err)

	slave, err := os.OpenFile(fmt.Sprintf("/dev/pts/%d", n), os.O_RDWR|unix.O_NOCTTY, 0)
	require.NoError(t, err)
	t.Cleanup(func() { slave.Close() })

	return master, slave
}

func TestReadKeysIdleTerminal(t *testing.T) {
	_, slave := openPty(t)

	raw, err := ansi.MakeRaw(int(slave.Fd()))
	require.NoError(t, err)
	defer raw.Restore()

	var target taps
	relay := &keymap.Relay{Keymap: keymap.Default, Target: &target, Mode: keymap.Transient}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = ansi.ReadKeys(ctx, raw.Input(slave), relay)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, target)
}

func TestReadKeysTerminal(t *testing.T) {
	master, slave := openPty(t)

	raw, err := ansi.MakeRaw(int(slave.Fd()))
	require.NoError(t, err)
	defer raw.Restore()

	var target taps
	relay := &keymap.Relay{Keymap: keymap.Default, Target: &target, Mode: keymap.Transient}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ansi.ReadKeys(ctx, raw.Input(slave), relay)
	}()

	// Let a few read timeouts pass before the first key
	time.Sleep(300 * time.Millisecond)

	_, err = master.Write([]byte("q\x1b"))
	require.NoError(t, err)

	assert.ErrorIs(t, <-done, ansi.ErrQuit)
	assert.Equal(t, taps{0x4}, target)
}
