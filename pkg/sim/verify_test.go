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

package sim_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/nand"
	"github.com/lassandro/gonandio/pkg/scenario"
	"github.com/lassandro/gonandio/pkg/sim"
)

func snapAt(cycle uint, pins nand.Pins) machine.Snapshot {
	return machine.Snapshot{Cycle: cycle, Pins: pins}
}

func craftedTrace(snaps ...machine.Snapshot) *sim.Trace {
	return &sim.Trace{
		Scenario:  scenario.Scenario{Name: "crafted"},
		Depth:     4,
		Snapshots: snaps,
		Completed: true,
	}
}

func TestVerifyQueueOverflow(t *testing.T) {
	trace := craftedTrace(machine.Snapshot{Cycle: 0, Pins: nand.Idle()})
	trace.Snapshots[0].TxLevel = 5

	err := sim.Verify(trace, machine.DefaultTiming())

	var overflowErr *sim.QueueOverflowError

	if !errors.As(err, &overflowErr) {
		t.Fatalf("Expected QueueOverflowError, have %v", err)
	}

	if overflowErr.Queue != "tx" {
		t.Fatalf("Wrong queue reported: %q", overflowErr.Queue)
	}
}

func TestVerifyClockSkip(t *testing.T) {
	trace := craftedTrace(
		snapAt(0, nand.Idle()),
		snapAt(2, nand.Idle()),
	)

	err := sim.Verify(trace, machine.DefaultTiming())

	var timingErr *sim.TimingViolationError

	if !errors.As(err, &timingErr) {
		t.Fatalf("Expected TimingViolationError, have %v", err)
	}
}

func TestVerifySetupTooShort(t *testing.T) {
	low := nand.Idle()
	low.Ctrl.Web = false
	low.Data = 0xAA

	high := nand.Idle()
	high.Data = 0xAA

	trace := craftedTrace(snapAt(0, low), snapAt(1, high))

	timing := machine.DefaultTiming()
	timing.Setup = 2

	err := sim.Verify(trace, timing)

	var timingErr *sim.TimingViolationError

	if !errors.As(err, &timingErr) {
		t.Fatalf("Expected TimingViolationError, have %v", err)
	}

	if !strings.Contains(timingErr.Reason, "setup") {
		t.Fatalf("Wrong reason: %q", timingErr.Reason)
	}
}

func TestVerifyHoldTooShort(t *testing.T) {
	// the dispatcher releases cle one cycle after the latch edge, which
	// cannot satisfy a ten-cycle hold minimum
	trace := runScenario(t, "reset", nil)

	timing := machine.DefaultTiming()
	timing.Hold = 10

	err := sim.Verify(trace, timing)

	var timingErr *sim.TimingViolationError

	if !errors.As(err, &timingErr) {
		t.Fatalf("Expected TimingViolationError, have %v", err)
	}

	if !strings.Contains(timingErr.Reason, "hold") {
		t.Fatalf("Wrong reason: %q", timingErr.Reason)
	}
}

func TestVerifyBusChangeInWindow(t *testing.T) {
	first := nand.Idle()
	first.Ctrl.Web = false
	first.Data = 0xAA

	second := first
	second.Data = 0xBB

	edge := nand.Idle()
	edge.Data = 0xBB

	trace := craftedTrace(
		snapAt(0, first),
		snapAt(1, second),
		snapAt(2, edge),
	)

	err := sim.Verify(trace, machine.DefaultTiming())

	var timingErr *sim.TimingViolationError

	if !errors.As(err, &timingErr) {
		t.Fatalf("Expected TimingViolationError, have %v", err)
	}

	if !strings.Contains(timingErr.Reason, "io bus") {
		t.Fatalf("Wrong reason: %q", timingErr.Reason)
	}
}

func TestVerifyTransferLength(t *testing.T) {
	trace := runScenario(t, "status_read", nil)

	trace.Scenario.OutBytes = 3

	err := sim.Verify(trace, machine.DefaultTiming())

	var lengthErr *sim.TransferLengthError

	if !errors.As(err, &lengthErr) {
		t.Fatalf("Expected TransferLengthError, have %v", err)
	}

	if lengthErr.Want != 3 || lengthErr.Have != 1 {
		t.Fatalf("Wrong lengths reported: %+v", lengthErr)
	}
}

func TestVerifyReceivedMismatch(t *testing.T) {
	trace := runScenario(t, "status_read", nil)

	trace.Received[0] ^= 0xFF

	err := sim.Verify(trace, machine.DefaultTiming())

	var mismatchErr *sim.ByteMismatchError

	if !errors.As(err, &mismatchErr) {
		t.Fatalf("Expected ByteMismatchError, have %v", err)
	}

	if mismatchErr.Kind != sim.EV_DATA_OUT {
		t.Fatalf("Wrong kind reported: %v", mismatchErr.Kind)
	}
}
