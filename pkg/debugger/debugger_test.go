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

package debugger_test

import (
	"testing"

	"github.com/lassandro/gonandio/pkg/debugger"
	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/sim"
)

func feed(dbg *debugger.Debugger, snaps ...machine.Snapshot) {
	trace := &sim.Trace{}

	for _, snap := range snaps {
		trace.Snapshots = append(trace.Snapshots, snap)
		dbg.Cycle(snap, trace)
	}
}

func TestCycleBreakpoint(t *testing.T) {
	hits := 0

	dbg := &debugger.Debugger{
		Breakpoints: []debugger.Breakpoint{{Cycle: 2}},
		HandleBreak: func(
			dbg *debugger.Debugger,
			snap machine.Snapshot,
			trace *sim.Trace,
		) {
			if snap.Cycle != 2 {
				t.Fatalf("Broke on wrong cycle %d", snap.Cycle)
			}

			hits++
		},
	}

	feed(dbg,
		machine.Snapshot{Cycle: 0},
		machine.Snapshot{Cycle: 1},
		machine.Snapshot{Cycle: 2},
		machine.Snapshot{Cycle: 3},
	)

	if hits != 1 {
		t.Fatalf("Expected one break, have %d", hits)
	}
}

func TestBranchWatchFiresOncePerVisit(t *testing.T) {
	hits := 0

	dbg := &debugger.Debugger{
		BranchWatches: []debugger.BranchWatch{{Branch: machine.BR_CMD_LATCH}},
		HandleBreak: func(
			dbg *debugger.Debugger,
			snap machine.Snapshot,
			trace *sim.Trace,
		) {
			hits++
		},
	}

	// one three-cycle visit to cmd_latch must break once
	feed(dbg,
		machine.Snapshot{Cycle: 0, State: machine.BR_SETUP},
		machine.Snapshot{Cycle: 1, State: machine.BR_CMD_LATCH},
		machine.Snapshot{Cycle: 2, State: machine.BR_CMD_LATCH},
		machine.Snapshot{Cycle: 3, State: machine.BR_CMD_LATCH},
		machine.Snapshot{Cycle: 4, State: machine.BR_SETUP},
	)

	if hits != 1 {
		t.Fatalf("Expected one break per visit, have %d", hits)
	}
}

func TestBreakOnStall(t *testing.T) {
	hits := 0

	dbg := &debugger.Debugger{
		BreakOnStall: true,
		HandleBreak: func(
			dbg *debugger.Debugger,
			snap machine.Snapshot,
			trace *sim.Trace,
		) {
			hits++
		},
	}

	feed(dbg,
		machine.Snapshot{Cycle: 0},
		machine.Snapshot{Cycle: 1, Stall: machine.STALL_TX_EMPTY},
		machine.Snapshot{Cycle: 2},
	)

	if hits != 1 {
		t.Fatalf("Expected one break, have %d", hits)
	}
}
