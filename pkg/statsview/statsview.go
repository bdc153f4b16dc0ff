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

//go:build statsview

package statsview

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const path = "/debug/statsview"

// Launch serves the runtime charts on opts.Addr and reports dispatch
// counters alongside them until ctx is done. The server itself lives until
// the process exits.
func Launch(ctx context.Context, opts Options, output io.Writer) error {
	if opts.Addr == "" {
		return fmt.Errorf("statsview: no address")
	}

	viewer.SetConfiguration(viewer.WithAddr(opts.Addr))

	go statsview.New().Start()

	go Report(ctx, opts)

	fmt.Fprintf(output, "stats server available at http://%s%s\n", opts.Addr, path)

	return nil
}
