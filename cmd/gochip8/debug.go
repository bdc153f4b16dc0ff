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

package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

// repl is the debugger prompt. It runs on the engine goroutine from the
// machine's debugger hooks, so the machine is stopped while it reads.
type repl struct {
	dbg     *debugger.Debugger
	in      *bufio.Scanner
	out     io.Writer
	relay   *keymap.Relay
	quit    func()
	lastcmd []string

	// Instructions left to run before prompting again
	skip int
}

func newREPL(in io.Reader, out io.Writer, relay *keymap.Relay, quit func()) *repl {
	r := &repl{
		in:    bufio.NewScanner(in),
		out:   out,
		relay: relay,
		quit:  quit,
	}

	r.dbg = &debugger.Debugger{
		Out:         out,
		HandleBreak: r.handleBreak,
		HandleRead:  r.handleWatch,
		HandleWrite: r.handleWatch,
	}

	// Prompt once the first instruction has run
	r.dbg.Break.Store(true)

	return r
}

func (r *repl) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if r.skip > 0 {
		r.skip--
		return
	}

	if !dbg.Break.Load() {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Program stopped")
		dbg.PrintSource(mc, mc.State.PC, 8)
	}

	r.prompt(mc)
}

func (r *repl) handleWatch(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Program stopped")
	dbg.PrintMem(mc, addr, 1)
	r.prompt(mc)
}

func (r *repl) prompt(mc *machine.Machine) {
	for {
		fmt.Fprint(r.out, "\033[1;30m(dbg)\033[0m ")

		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			r.dbg.Break.Store(false)
			r.quit()
			return
		}

		args := strings.Fields(r.in.Text())

		if len(args) == 0 {
			if len(r.lastcmd) == 0 {
				continue
			}
			args = r.lastcmd
		} else {
			r.lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			r.debugBreak(args)

		case "w", "wp", "watch", "watchpoint":
			r.debugWatch(args)

		case "r", "reg", "regs", "register", "registers":
			r.debugReg(mc, args)

		case "s", "src", "source":
			r.debugSource(mc, args)

		case "j", "jmp", "jump":
			r.debugJump(mc, args)

		case "m", "mem", "memory":
			r.debugMemory(mc, args)

		case "set":
			r.debugSet(mc, args)

		case "screen":
			r.dbg.PrintScreen(mc)

		case "k", "key":
			r.debugKey(args)

		case "c", "continue":
			r.dbg.Break.Store(false)
			return

		case "n", "next", "step":
			if !r.debugStep(args) {
				continue
			}
			return

		case "q", "quit", "exit":
			r.dbg.Break.Store(false)
			r.dbg.Breakpoints = nil
			r.dbg.Watchpoints = nil
			r.quit()
			return

		case "clear":
			fmt.Fprint(r.out, "\033[H\033[2J")

		default:
			fmt.Fprintf(r.out, "error: '%s' is not a valid command\n", cmd)
		}
	}
}

func (r *repl) debugBreak(args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		for _, breakpoint := range r.dbg.Breakpoints {
			if breakpoint.Addr == addr {
				return
			}
		}

		r.dbg.Breakpoints = append(r.dbg.Breakpoints, debugger.Breakpoint{Addr: addr})
		fmt.Fprintf(r.out, "Breakpoint added [%#03x]\n", addr)

	case "l", "ls", "list":
		format := indexFormat(len(r.dbg.Breakpoints), "%#03x")

		for i, breakpoint := range r.dbg.Breakpoints {
			fmt.Fprintf(r.out, format, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		i, ok := removeIndex(args, len(r.dbg.Breakpoints), "break remove [#]")
		if !ok {
			return
		}

		r.dbg.Breakpoints = append(r.dbg.Breakpoints[:i], r.dbg.Breakpoints[i+1:]...)
		fmt.Fprintf(r.out, "Breakpoint removed [%d]\n", i)

	case "clear":
		r.dbg.Breakpoints = nil
		fmt.Fprintln(r.out, "Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func (r *repl) debugWatch(args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeAddr(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		for _, watchpoint := range r.dbg.Watchpoints {
			if watchpoint.Addr == addr && watchpoint.Type == wtype {
				return
			}
		}

		r.dbg.Watchpoints = append(
			r.dbg.Watchpoints,
			debugger.Watchpoint{Addr: addr, Type: wtype},
		)

		fmt.Fprintf(r.out, "Watchpoint added [%#03x] (%s)\n", addr, wtype)

	case "l", "ls", "list":
		format := indexFormat(len(r.dbg.Watchpoints), "%#03x %s")

		for i, watchpoint := range r.dbg.Watchpoints {
			fmt.Fprintf(r.out, format, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		i, ok := removeIndex(args, len(r.dbg.Watchpoints), "watch remove [#]")
		if !ok {
			return
		}

		r.dbg.Watchpoints = append(r.dbg.Watchpoints[:i], r.dbg.Watchpoints[i+1:]...)
		fmt.Fprintf(r.out, "Watchpoint removed [%d]\n", i)

	case "clear":
		r.dbg.Watchpoints = nil
		fmt.Fprintln(r.out, "Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

// indexFormat pads list indices to the width of the largest one.
func indexFormat(n int, value string) string {
	digits := int(math.Floor(math.Log10(float64(n+1)))) + 1
	return fmt.Sprintf("#%%0%dd: %s\n", digits, value)
}

func removeIndex(args []string, n int, usage string) (int, bool) {
	if len(args) != 1 {
		log.Println(usage)
		return 0, false
	}

	i, err := strconv.Atoi(args[0])

	if err != nil {
		log.Println(err)
		return 0, false
	}

	if i < 0 || i >= n {
		log.Println("Invalid index")
		return 0, false
	}

	return i, true
}

func (r *repl) debugReg(mc *machine.Machine, args []string) {
	const usage = "register [V#|PC|I|DT|ST] [value]"

	if len(args) == 0 {
		r.dbg.PrintRegs(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	name := strings.ToUpper(args[0])

	switch name {
	case "PC", "I":
		value, err := encoding.DecodeAddr(args[1])
		if err != nil {
			log.Println(err)
			return
		}

		if name == "PC" {
			mc.State.PC = value
		} else {
			mc.State.I = value
		}

		fmt.Fprintf(r.out, "\033[1m%s:\033[0m %#03x\n", name, value)
		return
	}

	value, err := encoding.DecodeByte(args[1])
	if err != nil {
		log.Println(err)
		return
	}

	switch name {
	case "DT":
		mc.State.Delay = value
	case "ST":
		mc.State.Sound = value
	default:
		index, err := encoding.DecodeRegister(name)
		if err != nil {
			log.Println(err)
			log.Println(usage)
			return
		}

		mc.State.V[index] = value
	}

	fmt.Fprintf(r.out, "\033[1m%s:\033[0m %#02x\n", name, value)
}

// addrCount parses the "[addr] [count]" arguments shared by source and
// memory. A lone decimal argument is a count from PC.
func addrCount(mc *machine.Machine, args []string, count uint16) (uint16, uint16, bool) {
	addr := mc.State.PC

	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		value, err := encoding.DecodeHex(args[0])

		if err == nil && value <= 0xFFF {
			addr = value
		} else {
			n, err := encoding.DecodeInt(args[0])
			if err != nil || n < 0 {
				log.Println(err)
				return 0, 0, false
			}

			count = uint16(n)
		}
	}

	if len(args) > 1 {
		n, err := encoding.DecodeInt(args[1])
		if err != nil || n < 0 {
			log.Println(err)
			return 0, 0, false
		}

		count = uint16(n)
	}

	return addr, count, true
}

func (r *repl) debugSource(mc *machine.Machine, args []string) {
	addr, count, ok := addrCount(mc, args, 4)
	if !ok {
		log.Println("source [0x###] [#]")
		return
	}

	r.dbg.PrintSource(mc, addr, count)
}

func (r *repl) debugMemory(mc *machine.Machine, args []string) {
	addr, count, ok := addrCount(mc, args, 1)
	if !ok {
		log.Println("memory [0x###|#] [#]")
		return
	}

	r.dbg.PrintMem(mc, addr, count)
}

func (r *repl) debugJump(mc *machine.Machine, args []string) {
	const usage = "jump [0x###]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	addr, err := encoding.DecodeAddr(args[0])
	if err != nil {
		log.Println(err)
		return
	}

	mc.State.PC = addr
	fmt.Fprintf(r.out, "\033[1mPC:\033[0m %#03x\n", addr)
}

func (r *repl) debugSet(mc *machine.Machine, args []string) {
	const usage = "set [0x###] [value]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := encoding.DecodeAddr(args[0])
	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeByte(args[1])
	if err != nil {
		log.Println(err)
		return
	}

	mc.State.Memory[addr] = value
	r.dbg.PrintMem(mc, addr, 1)
}

func (r *repl) debugKey(args []string) {
	const usage = "key [symbol]"

	if len(args) != 1 || len([]rune(args[0])) != 1 || r.relay == nil {
		log.Println(usage)
		return
	}

	sym := []rune(args[0])[0]

	if !r.relay.Press(sym) {
		log.Printf("key: '%c' is not mapped\n", sym)
		return
	}

	fmt.Fprintf(r.out, "Key %c pressed\n", sym)
}

// debugStep reports whether execution should resume.
func (r *repl) debugStep(args []string) bool {
	n := 1

	if len(args) > 0 {
		value, err := strconv.Atoi(args[0])
		if err != nil || value < 1 {
			log.Println("step [#]")
			return false
		}

		n = value
	}

	r.skip = n - 1
	r.dbg.Break.Store(true)

	return true
}
