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

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/scenario"
)

// The host does not hover over the receive queue; it services it every
// few cycles the way an interrupt-driven driver would, and immediately
// when the queue reports full.
const DEFAULT_DRAIN_PERIOD = 6

// Driver plays the host side of a scenario: it keeps the transmit queue
// topped up, drains the receive queue, and decides when the dispatcher
// has gone quiet.
type Driver struct {
	Engine Engine
	Logger *log.Logger

	// Debug, when set, observes every cycle as it is recorded
	Debug Stepper

	// DrainPeriod is the receive service interval in cycles
	DrainPeriod uint
}

func (d *Driver) drain(trace *Trace) {
	for {
		w, ok := d.Engine.Pull()

		if !ok {
			return
		}

		trace.Received = append(trace.Received, w)
	}
}

// Run feeds a scenario through the engine cycle by cycle until the
// dispatcher goes idle or the scenario's cycle budget runs out.
func (d *Driver) Run(sc scenario.Scenario) (*Trace, error) {
	trace := &Trace{
		Scenario:  sc,
		Depth:     d.Engine.Depth(),
		Snapshots: make([]machine.Snapshot, 0, sc.Cycles),
	}

	period := d.DrainPeriod
	if period == 0 {
		period = DEFAULT_DRAIN_PERIOD
	}

	if d.Logger != nil {
		d.Logger.Debug(
			"running scenario",
			log.String("scenario", sc.Name),
			log.String("words", fmt.Sprint(len(sc.Words))),
		)
	}

	pending := sc.Words

	for cycle := uint(0); cycle < sc.Cycles; cycle++ {
		// top up the transmit queue before the dispatcher samples it
		for len(pending) > 0 && d.Engine.Push(pending[0]) {
			pending = pending[1:]
			trace.Pushed++
		}

		snap, err := d.Engine.Step()

		if err != nil {
			return trace, err
		}

		trace.Snapshots = append(trace.Snapshots, snap)

		if d.Debug != nil {
			d.Debug.Cycle(snap, trace)
		}

		// service the receive queue when the dispatcher blocks on it,
		// otherwise only on the periodic interval
		if snap.Stall == machine.STALL_RX_FULL ||
			(snap.RxLevel > 0 && snap.Cycle%period == 0) {
			d.drain(trace)
		}

		// idle: nothing left to feed, the dispatcher is starved at
		// setup, and the stream's terminator has run
		if len(pending) == 0 &&
			snap.State == machine.BR_SETUP &&
			snap.Stall == machine.STALL_TX_EMPTY &&
			(snap.Irq || snap.Last == machine.BR_WAIT_RBB) {
			trace.Completed = true
			break
		}
	}

	if !trace.Completed {
		// keep undrained bytes apart from the good ones so the
		// verifier doesn't mistake a hung run for a short transfer
		for {
			w, ok := d.Engine.Pull()

			if !ok {
				break
			}

			trace.RxResidue = append(trace.RxResidue, w)
		}

		err := &CycleLimitError{Scenario: sc.Name, Cycles: sc.Cycles}

		if d.Logger != nil {
			d.Logger.Error("scenario hung", err)
		}

		return trace, err
	}

	d.drain(trace)

	if d.Logger != nil {
		d.Logger.Debug(
			"scenario complete",
			log.String("scenario", sc.Name),
			log.String("cycles", fmt.Sprint(len(trace.Snapshots))),
			log.String("received", fmt.Sprint(len(trace.Received))),
		)
	}

	return trace, nil
}
