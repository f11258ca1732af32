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

package sim

import (
	"fmt"

	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/nand"
	"github.com/lassandro/gonandio/pkg/scenario"
)

// Engine is the per-cycle contract the driver runs against. The
// reference dispatcher satisfies it; an external execution engine
// wrapping real hardware state can slot in behind the same interface.
type Engine interface {
	Push(w uint32) bool
	Pull() (uint32, bool)
	TxLevel() int
	RxLevel() int
	Depth() int
	Step() (machine.Snapshot, error)
}

// Stepper observes each simulated cycle as it lands in the trace. The
// interactive debugger implements it to break on cycles and events.
type Stepper interface {
	Cycle(snap machine.Snapshot, trace *Trace)
}

// Trace is the complete record of one scenario run.
type Trace struct {
	Scenario scenario.Scenario
	Depth    int

	Snapshots []machine.Snapshot

	// Received holds the bytes drained from the device-to-host queue
	// in arrival order
	Received []uint32

	// Pushed counts command words fed to the dispatcher
	Pushed int

	// RxResidue is whatever the host failed to drain before the run
	// ended; non-empty residue on a completed run is a driver bug
	RxResidue []uint32

	Completed bool
}

type EventKind uint8

// Bus events recovered from pin-level edges
const (
	EV_CMD_IN EventKind = iota
	EV_ADDR_IN
	EV_DATA_IN
	EV_DATA_OUT
)

func (k EventKind) String() string {
	switch k {
	case EV_CMD_IN:
		return "cmd_in"
	case EV_ADDR_IN:
		return "addr_in"
	case EV_DATA_IN:
		return "data_in"
	case EV_DATA_OUT:
		return "data_out"
	default:
		return "unknown"
	}
}

// Event is one byte latched across the bus, recovered from the pin
// trace rather than from dispatcher internals.
type Event struct {
	Cycle uint
	Kind  EventKind
	Byte  uint8
	Chip  nand.ChipSelect
}

type CycleLimitError struct {
	Scenario string
	Cycles   uint
}

func (e *CycleLimitError) Error() string {
	return fmt.Sprintf(
		"scenario %q did not complete within %d cycles",
		e.Scenario, e.Cycles,
	)
}

type TimingViolationError struct {
	Cycle  uint
	Reason string
}

func (e *TimingViolationError) Error() string {
	return fmt.Sprintf("timing violation at cycle %d: %s", e.Cycle, e.Reason)
}

type QueueOverflowError struct {
	Cycle uint
	Queue string
	Level int
	Depth int
}

func (e *QueueOverflowError) Error() string {
	return fmt.Sprintf(
		"%s queue level %d exceeds depth %d at cycle %d",
		e.Queue, e.Level, e.Depth, e.Cycle,
	)
}

type TransferLengthError struct {
	Scenario string
	Kind     EventKind
	Want     int
	Have     int
}

func (e *TransferLengthError) Error() string {
	return fmt.Sprintf(
		"scenario %q moved %d %s bytes, expected %d",
		e.Scenario, e.Have, e.Kind, e.Want,
	)
}

type ByteMismatchError struct {
	Scenario string
	Kind     EventKind
	Index    int
	Want     uint8
	Have     uint8
}

func (e *ByteMismatchError) Error() string {
	return fmt.Sprintf(
		"scenario %q %s byte %d mismatch: want %#02x, have %#02x",
		e.Scenario, e.Kind, e.Index, e.Want, e.Have,
	)
}
