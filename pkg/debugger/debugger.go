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

package debugger

import (
	"fmt"

	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/sim"
)

// Cycle is the per-cycle hook the simulation driver calls. It decides
// whether this cycle warrants handing control to the break handler.
func (dbg *Debugger) Cycle(snap machine.Snapshot, trace *sim.Trace) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, snap, trace)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if snap.Cycle == breakpoint.Cycle {
			dbg.HandleBreak(dbg, snap, trace)
			return
		}
	}

	if dbg.BreakOnStall && snap.Stall != machine.STALL_NONE {
		dbg.HandleBreak(dbg, snap, trace)
		return
	}

	for _, watch := range dbg.BranchWatches {
		if snap.State == watch.Branch && entered(trace, snap) {
			dbg.HandleBreak(dbg, snap, trace)
			return
		}
	}
}

// entered reports whether the snapshot's branch differs from the cycle
// before it, so a watch fires once per visit instead of every cycle.
func entered(trace *sim.Trace, snap machine.Snapshot) bool {
	n := len(trace.Snapshots)

	if n < 2 {
		return true
	}

	return trace.Snapshots[n-2].State != snap.State
}

// PrintPins dumps the pin levels of one cycle.
func (dbg *Debugger) PrintPins(snap machine.Snapshot) {
	pins := snap.Pins

	level := func(high bool) string {
		if high {
			return "1"
		}
		return "\033[1;30m0\033[0m"
	}

	fmt.Printf("\033[1m[%6d]\033[0m %s\n", snap.Cycle, snap.State)
	fmt.Printf(
		"  cle:%s ale:%s web:%s reb:%s wpb:%s ceb0:%s ceb1:%s rbb:%s\n",
		level(pins.Ctrl.Cle), level(pins.Ctrl.Ale),
		level(pins.Ctrl.Web), level(pins.Ctrl.Reb),
		level(pins.Ctrl.Wpb), level(pins.Ceb0),
		level(pins.Ceb1), level(pins.Rbb),
	)
	fmt.Printf(
		"  io:%#02x dirs:%#04x tx:%d rx:%d\n",
		pins.Data, snap.PinDirs, snap.TxLevel, snap.RxLevel,
	)

	if snap.Irq {
		fmt.Println("  irq raised")
	}

	if snap.Stall != machine.STALL_NONE {
		fmt.Printf("  stalled: %s\n", snap.Stall)
	}
}

// PrintHistory dumps the last count cycles of the trace, one line each.
func (dbg *Debugger) PrintHistory(trace *sim.Trace, count int) {
	start := len(trace.Snapshots) - count

	if start < 0 {
		start = 0
	}

	for _, snap := range trace.Snapshots[start:] {
		stall := ""

		if snap.Stall != machine.STALL_NONE {
			stall = " \033[1;31m" + snap.Stall.String() + "\033[0m"
		}

		fmt.Printf(
			"\033[1m[%6d]\033[0m %-11s pins:%04x tx:%d rx:%d%s\n",
			snap.Cycle, snap.State, snap.Pins.Pack(),
			snap.TxLevel, snap.RxLevel, stall,
		)
	}
}

// PrintEvents dumps the bus events recovered from the trace so far.
func (dbg *Debugger) PrintEvents(trace *sim.Trace) {
	events := sim.Events(trace.Snapshots)

	if len(events) == 0 {
		fmt.Println("No bus events yet")
		return
	}

	for _, event := range events {
		fmt.Printf(
			"\033[1m[%6d]\033[0m %-8s %#02x chip:%d\n",
			event.Cycle, event.Kind, event.Byte, event.Chip,
		)
	}
}
