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

package engine

import "errors"

var (
	ErrInitialization = errors.New("engine initialization failed")
	ErrLoad           = errors.New("program load failed")
	ErrStarted        = errors.New("engine already started")
	ErrNotStarted     = errors.New("engine not started")
	ErrInvalidKey     = errors.New("key index out of range")
	ErrUnknownRegion  = errors.New("unknown region policy")
)
