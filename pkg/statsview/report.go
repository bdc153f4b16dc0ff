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

package statsview

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lassandro/gochip8/pkg/event"
)

var ErrUnavailable = errors.New("statsview not available in this build")

type Options struct {
	Addr string

	// Dispatch counters are logged every Interval
	Interval time.Duration
	Stats    func() event.Stats
	Log      *slog.Logger
}

// Report logs the dispatch counters and the delivery rate every interval
// until ctx is done.
func Report(ctx context.Context, opts Options) {
	if opts.Stats == nil || opts.Interval <= 0 {
		return
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var last uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats := opts.Stats()
		rate := float64(stats.Delivered-last) / opts.Interval.Seconds()
		last = stats.Delivered

		log.Info("dispatch stats",
			"delivered", stats.Delivered,
			"dropped", stats.Dropped,
			"failed", stats.Failed,
			"per_second", rate,
		)
	}
}
