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

package machine_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lassandro/gochip8/pkg/machine"
)

func TestKeypadQueuedOrder(t *testing.T) {
	var kp machine.Keypad

	kp.Enqueue(machine.KeyOp{Key: 0x1, Action: machine.KeyPress})
	kp.Enqueue(machine.KeyOp{Key: 0x2, Action: machine.KeyPress})
	kp.Enqueue(machine.KeyOp{Key: 0x1, Action: machine.KeyRelease})

	assert.Zero(t, kp.Mask(), "queued operations apply at cycle start")

	kp.Apply(1)

	assert.Equal(t, uint16(1<<0x2), kp.Mask())
}

func TestKeypadTapExpires(t *testing.T) {
	var kp machine.Keypad

	kp.Enqueue(machine.KeyOp{Key: 0xA, Action: machine.KeyTap})
	kp.Apply(2)

	assert.True(t, kp.IsPressed(0xA))

	kp.Apply(2)
	assert.True(t, kp.IsPressed(0xA), "tap is visible for two cycles")

	kp.Apply(2)
	assert.False(t, kp.IsPressed(0xA))
}

func TestKeypadTapHeld(t *testing.T) {
	var kp machine.Keypad

	kp.Enqueue(machine.KeyOp{Key: 0x5, Action: machine.KeyPress})
	kp.Enqueue(machine.KeyOp{Key: 0x5, Action: machine.KeyTap})
	kp.Apply(1)
	kp.Apply(1)

	assert.True(t, kp.IsPressed(0x5), "expired tap keeps a held key down")

	kp.Enqueue(machine.KeyOp{Key: 0x5, Action: machine.KeyRelease})
	kp.Apply(1)

	assert.False(t, kp.IsPressed(0x5))
}

func TestKeypadDirectConcurrent(t *testing.T) {
	var kp machine.Keypad
	var wg sync.WaitGroup

	// Each goroutine owns one key; no set may be lost to another's clear
	for key := uint8(0); key < machine.NumKeys; key++ {
		wg.Add(1)

		go func(key uint8) {
			defer wg.Done()

			for i := 0; i < 1000; i++ {
				kp.Set(key, i%2 == 0)
			}

			kp.Set(key, true)
		}(key)
	}

	wg.Wait()

	assert.Equal(t, uint16(0xFFFF), kp.Mask())
}

func TestKeypadReset(t *testing.T) {
	var kp machine.Keypad

	kp.Set(0x3, true)
	kp.Enqueue(machine.KeyOp{Key: 0x4, Action: machine.KeyPress})
	kp.Reset()
	kp.Apply(1)

	assert.Zero(t, kp.Mask())
}
