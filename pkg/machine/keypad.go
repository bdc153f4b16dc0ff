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

package machine

import (
	"sync"
	"sync/atomic"
)

type KeyAction uint8

const (
	KeyRelease KeyAction = iota
	KeyPress
	KeyTap
)

type KeyOp struct {
	Key    uint8
	Action KeyAction
}

// Keypad is the 16-key input mask.
//
// Two write paths exist. Enqueue hands an operation to the engine, which
// applies queued operations in order at the start of its next cycle. Set
// writes the mask directly with atomic bit operations from any goroutine;
// the engine may observe such a write in the middle of a cycle.
type Keypad struct {
	mask atomic.Uint32

	mu      sync.Mutex
	pending []KeyOp

	// engine goroutine only
	held    uint16
	tapLeft [NumKeys]int
}

func (kp *Keypad) Mask() uint16 {
	return uint16(kp.mask.Load())
}

func (kp *Keypad) IsPressed(key uint8) bool {
	return kp.mask.Load()&(1<<(key&0xF)) != 0
}

// Set sets or clears one bit of the mask immediately.
func (kp *Keypad) Set(key uint8, pressed bool) {
	bit := uint32(1) << (key & 0xF)

	if pressed {
		kp.mask.Or(bit)
	} else {
		kp.mask.And(^bit)
	}
}

func (kp *Keypad) Enqueue(op KeyOp) {
	kp.mu.Lock()
	kp.pending = append(kp.pending, op)
	kp.mu.Unlock()
}

// Apply expires taps older than tapCycles applications, then applies every
// queued operation in order. Called by the engine at the start of a cycle.
func (kp *Keypad) Apply(tapCycles int) {
	for i := range kp.tapLeft {
		if kp.tapLeft[i] == 0 {
			continue
		}

		kp.tapLeft[i]--
		if kp.tapLeft[i] == 0 && kp.held&(1<<i) == 0 {
			kp.Set(uint8(i), false)
		}
	}

	kp.mu.Lock()
	ops := kp.pending
	kp.pending = nil
	kp.mu.Unlock()

	for _, op := range ops {
		key := op.Key & 0xF
		bit := uint16(1) << key

		switch op.Action {
		case KeyPress:
			kp.held |= bit
			kp.Set(key, true)

		case KeyRelease:
			kp.held &^= bit
			if kp.tapLeft[key] == 0 {
				kp.Set(key, false)
			}

		case KeyTap:
			kp.tapLeft[key] = max(tapCycles, 1)
			kp.Set(key, true)
		}
	}
}

// Reset drops queued operations and clears the mask.
func (kp *Keypad) Reset() {
	kp.mu.Lock()
	kp.pending = nil
	kp.mu.Unlock()

	kp.held = 0
	kp.tapLeft = [NumKeys]int{}
	kp.mask.Store(0)
}
