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
	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/sim"
)

// Breakpoint halts the run when the clock reaches a cycle.
type Breakpoint struct {
	Cycle uint
}

// BranchWatch halts the run when the dispatcher enters a branch.
type BranchWatch struct {
	Branch machine.Branch
}

type Debugger struct {
	Break bool

	// BreakOnStall halts on any stalled cycle
	BreakOnStall bool

	Breakpoints   []Breakpoint
	BranchWatches []BranchWatch

	HandleBreak func(*Debugger, machine.Snapshot, *sim.Trace)
}
