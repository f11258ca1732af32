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
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/gonandio/pkg/debugger"
	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/sim"
)

var lastcmd []string

func parseBranch(name string) (machine.Branch, bool) {
	branches := []machine.Branch{
		machine.BR_SETUP, machine.BR_BITBANG, machine.BR_CMD_LATCH,
		machine.BR_ADDR_LATCH, machine.BR_DATA_OUTPUT,
		machine.BR_DATA_INPUT, machine.BR_SET_IRQ, machine.BR_WAIT_RBB,
	}

	for _, branch := range branches {
		if branch.String() == name {
			return branch, true
		}
	}

	return 0, false
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [cycle]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		cycle, err := strconv.ParseUint(args[0], 0, 32)

		if err != nil {
			fmt.Println(err)
			return
		}

		exists := false

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Cycle == uint(cycle) {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Breakpoints = append(
				dbg.Breakpoints,
				debugger.Breakpoint{Cycle: uint(cycle)},
			)

			fmt.Printf("Breakpoint added [%d]\n", cycle)
		}

	case "l", "ls", "list":
		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf("#%d: cycle %d\n", i, breakpoint.Cycle)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			fmt.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			fmt.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		fmt.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [branch]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		branch, ok := parseBranch(args[0])

		if !ok {
			fmt.Printf("'%s' is not a branch name\n", args[0])
			return
		}

		exists := false

		for _, watch := range dbg.BranchWatches {
			if watch.Branch == branch {
				exists = true
				break
			}
		}

		if !exists {
			dbg.BranchWatches = append(
				dbg.BranchWatches,
				debugger.BranchWatch{Branch: branch},
			)

			fmt.Printf("Watch added [%s]\n", branch)
		}

	case "l", "ls", "list":
		for i, watch := range dbg.BranchWatches {
			fmt.Printf("#%d: %s\n", i, watch.Branch)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			fmt.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.BranchWatches)) {
			fmt.Println("Invalid watch number")
			return
		}

		dbg.BranchWatches[i] = dbg.BranchWatches[len(dbg.BranchWatches)-1]
		dbg.BranchWatches = dbg.BranchWatches[:len(dbg.BranchWatches)-1]
		fmt.Printf("Watch removed [%d]\n", i)

	case "clear":
		dbg.BranchWatches = nil
		fmt.Println("Watches reset")

	default:
		fmt.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugHistory(
	dbg *debugger.Debugger, trace *sim.Trace, args []string,
) {
	const usage = "history [#]"

	count := 8

	if len(args) > 1 {
		fmt.Println(usage)
		return
	}

	if len(args) == 1 {
		value, err := strconv.ParseInt(args[0], 10, 32)

		if err != nil {
			fmt.Println(err)
			return
		}

		count = int(value)
	}

	dbg.PrintHistory(trace, count)
}

func debugREPL(
	dbg *debugger.Debugger,
	snap machine.Snapshot,
	trace *sim.Trace,
) {
	exitRawTerm()
	defer enterRawTerm()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			freeRun(dbg)
			return
		}

		args := strings.Split(strings.TrimSpace(scanner.Text()), " ")

		if len(args[0]) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "stall":
			dbg.BreakOnStall = !dbg.BreakOnStall
			fmt.Printf("Break on stall: %v\n", dbg.BreakOnStall)

		case "p", "pins":
			dbg.PrintPins(snap)

		case "h", "hist", "history":
			debugHistory(dbg, trace, args)

		case "e", "ev", "events":
			dbg.PrintEvents(trace)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			freeRun(dbg)
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

// freeRun strips every break condition so the current scenario runs out
// without further stops before the tool exits.
func freeRun(dbg *debugger.Debugger) {
	dbg.Break = false
	dbg.BreakOnStall = false
	dbg.Breakpoints = nil
	dbg.BranchWatches = nil
}

func handleBreak(
	dbg *debugger.Debugger,
	snap machine.Snapshot,
	trace *sim.Trace,
) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Simulation stopped")
		dbg.PrintPins(snap)
	}

	debugREPL(dbg, snap, trace)
}
