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
	"github.com/lassandro/gonandio/pkg/cmdword"
	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/nand"
)

// Events recovers the bus transactions from a pin trace. It only looks
// at edges and levels, never at dispatcher internals, so it applies to
// any engine producing snapshots.
//
// A byte moves host-to-chip on a web rising edge and chip-to-host on a
// reb rising edge; cle and ale at the edge classify the write.
func Events(snaps []machine.Snapshot) []Event {
	var events []Event

	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].Pins
		cur := snaps[i].Pins

		chip := nand.CS_NONE

		switch {
		case !cur.Ceb0:
			chip = nand.CS_0
		case !cur.Ceb1:
			chip = nand.CS_1
		default:
			continue
		}

		if !prev.Ctrl.Web && cur.Ctrl.Web && cur.Ctrl.Reb {
			kind := EV_DATA_IN

			switch {
			case cur.Ctrl.Cle:
				kind = EV_CMD_IN
			case cur.Ctrl.Ale:
				kind = EV_ADDR_IN
			}

			events = append(events, Event{
				Cycle: snaps[i].Cycle,
				Kind:  kind,
				Byte:  cur.Data,
				Chip:  chip,
			})
		}

		if !prev.Ctrl.Reb && cur.Ctrl.Reb && cur.Ctrl.Web &&
			!cur.Ctrl.Cle && !cur.Ctrl.Ale {
			events = append(events, Event{
				Cycle: snaps[i].Cycle,
				Kind:  EV_DATA_OUT,
				Byte:  cur.Data,
				Chip:  chip,
			})
		}
	}

	return events
}

// Verify checks a finished trace against the timing table and the
// command stream it was meant to realise.
func Verify(trace *Trace, timing machine.Timing) error {
	for _, snap := range trace.Snapshots {
		if snap.TxLevel > trace.Depth {
			return &QueueOverflowError{
				Cycle: snap.Cycle, Queue: "tx",
				Level: snap.TxLevel, Depth: trace.Depth,
			}
		}

		if snap.RxLevel > trace.Depth {
			return &QueueOverflowError{
				Cycle: snap.Cycle, Queue: "rx",
				Level: snap.RxLevel, Depth: trace.Depth,
			}
		}
	}

	// stalled cycles still tick; a gap means lost observability
	for i, snap := range trace.Snapshots {
		if i > 0 && snap.Cycle != trace.Snapshots[i-1].Cycle+1 {
			return &TimingViolationError{
				Cycle: snap.Cycle, Reason: "clock skipped a cycle",
			}
		}
	}

	if err := checkStrobes(trace.Snapshots, timing); err != nil {
		return err
	}

	return checkTransfers(trace)
}

func checkStrobes(snaps []machine.Snapshot, timing machine.Timing) error {
	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].Pins
		cur := snaps[i].Pins

		if !prev.Ctrl.Web && cur.Ctrl.Web {
			run := uint(0)

			for j := i - 1; j >= 0 && !snaps[j].Pins.Ctrl.Web; j-- {
				if snaps[j].Pins.Data != cur.Data {
					return &TimingViolationError{
						Cycle:  snaps[j].Cycle,
						Reason: "io bus changed inside the web setup window",
					}
				}

				run++
			}

			if run < timing.Setup {
				return &TimingViolationError{
					Cycle:  snaps[i].Cycle,
					Reason: "web setup window too short",
				}
			}

			for j := i + 1; j < len(snaps); j++ {
				if latchStable(cur, snaps[j].Pins) {
					continue
				}

				if uint(j-i) < timing.Hold {
					return &TimingViolationError{
						Cycle:  snaps[j].Cycle,
						Reason: "web hold window too short",
					}
				}

				break
			}
		}

		if !prev.Ctrl.Reb && cur.Ctrl.Reb {
			run := uint(0)

			for j := i - 1; j >= 0 && !snaps[j].Pins.Ctrl.Reb; j-- {
				run++
			}

			if run < timing.ReadSettle {
				return &TimingViolationError{
					Cycle:  snaps[i].Cycle,
					Reason: "reb settle window too short",
				}
			}
		}
	}

	return nil
}

// latchStable reports whether the signals the chip latches on a web
// rising edge (latch enables, chip enables, io bus) are unchanged
// between two cycles. The strobes themselves are free to move.
func latchStable(a, b nand.Pins) bool {
	return a.Ctrl.Cle == b.Ctrl.Cle &&
		a.Ctrl.Ale == b.Ctrl.Ale &&
		a.Ceb0 == b.Ceb0 &&
		a.Ceb1 == b.Ceb1 &&
		a.Data == b.Data
}

// checkTransfers compares the recovered bus events against the byte
// streams the command words promised.
func checkTransfers(trace *Trace) error {
	cmds, err := cmdword.Decode(trace.Scenario.Words)

	if err != nil {
		return err
	}

	want := map[EventKind][]uint8{}

	for _, cmd := range cmds {
		switch cmd.ID {
		case cmdword.CMD_CMD_LATCH:
			want[EV_CMD_IN] = append(want[EV_CMD_IN], uint8(cmd.Arg))
		case cmdword.CMD_ADDR_LATCH:
			for _, w := range cmd.Payload {
				want[EV_ADDR_IN] = append(want[EV_ADDR_IN], uint8(w))
			}
		case cmdword.CMD_DATA_INPUT:
			for _, w := range cmd.Payload {
				want[EV_DATA_IN] = append(want[EV_DATA_IN], uint8(w))
			}
		}
	}

	have := map[EventKind][]uint8{}

	for _, event := range Events(trace.Snapshots) {
		have[event.Kind] = append(have[event.Kind], event.Byte)
	}

	for _, kind := range []EventKind{EV_CMD_IN, EV_ADDR_IN, EV_DATA_IN} {
		if len(have[kind]) != len(want[kind]) {
			return &TransferLengthError{
				Scenario: trace.Scenario.Name,
				Kind:     kind,
				Want:     len(want[kind]),
				Have:     len(have[kind]),
			}
		}

		for i := range want[kind] {
			if have[kind][i] != want[kind][i] {
				return &ByteMismatchError{
					Scenario: trace.Scenario.Name,
					Kind:     kind,
					Index:    i,
					Want:     want[kind][i],
					Have:     have[kind][i],
				}
			}
		}
	}

	out := have[EV_DATA_OUT]

	if len(out) != trace.Scenario.OutBytes {
		return &TransferLengthError{
			Scenario: trace.Scenario.Name,
			Kind:     EV_DATA_OUT,
			Want:     trace.Scenario.OutBytes,
			Have:     len(out),
		}
	}

	if len(trace.Received) != trace.Scenario.OutBytes {
		return &TransferLengthError{
			Scenario: trace.Scenario.Name,
			Kind:     EV_DATA_OUT,
			Want:     trace.Scenario.OutBytes,
			Have:     len(trace.Received),
		}
	}

	// the drained words must be the same bytes the bus carried
	for i, w := range trace.Received {
		if uint8(w) != out[i] {
			return &ByteMismatchError{
				Scenario: trace.Scenario.Name,
				Kind:     EV_DATA_OUT,
				Index:    i,
				Want:     out[i],
				Have:     uint8(w),
			}
		}
	}

	return nil
}
