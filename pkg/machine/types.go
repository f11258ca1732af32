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

package machine

import (
	"github.com/lassandro/gonandio/pkg/nand"
)

// Timing is the cycle-count table derived from the chip's AC
// characteristics at the target clock. Setup is the minimum number of
// cycles between data placement and the web rising edge, Hold the
// minimum between that edge and the next pin change, ReadSettle the
// number of cycles reb is held low before the io bus is sampled.
type Timing struct {
	Setup      uint
	Hold       uint
	ReadSettle uint
}

func DefaultTiming() Timing {
	return Timing{Setup: 1, Hold: 1, ReadSettle: 1}
}

// Variant selects between the observed microprogram revisions rather
// than guessing a single canonical behavior.
type Variant struct {
	Wp  WpPolicy
	Irq IrqPolicy
}

// InputSource supplies the chip-driven pin levels for a cycle: the io
// bus in bits [7:0] and rbb in bit 15 (high = ready). It must be a pure
// function of the cycle index; the dispatcher may sample it more than
// once per cycle.
type InputSource func(cycle uint) uint16

// Snapshot is one cycle of observable machine state.
type Snapshot struct {
	Cycle   uint
	State   Branch
	Last    Branch
	Pins    nand.Pins
	PinDirs uint16
	TxLevel int
	RxLevel int
	Irq     bool
	Stall   Stall
}

// Fifo is a bounded hardware queue. Push and Pull fail rather than
// block; blocking-queue semantics are realised by the stall/service
// protocol between the dispatcher and the driver, since a genuinely
// blocking queue inside a single-threaded cycle loop would deadlock.
type Fifo struct {
	depth int
	words []uint32
}

func NewFifo(depth int) *Fifo {
	return &Fifo{depth: depth}
}

func (f *Fifo) Push(w uint32) bool {
	if len(f.words) >= f.depth {
		return false
	}

	f.words = append(f.words, w)
	return true
}

func (f *Fifo) Pull() (uint32, bool) {
	if len(f.words) == 0 {
		return 0, false
	}

	w := f.words[0]
	f.words = f.words[1:]
	return w, true
}

func (f *Fifo) Len() int {
	return len(f.words)
}

func (f *Fifo) Cap() int {
	return f.depth
}

// Words returns the queue contents in pull order without draining it.
func (f *Fifo) Words() []uint32 {
	dst := make([]uint32, len(f.words))
	copy(dst, f.words)
	return dst
}

// Machine is the reference dispatcher: an executable rendition of the
// protocol state machine model, cycle-exact against the declared timing
// table. It implements the same per-step contract as the external
// execution engine and serves as the oracle the simulation checks.
type Machine struct {
	Timing  Timing
	Variant Variant
	Input   InputSource

	tx *Fifo
	rx *Fifo

	cycle  uint
	state  Branch
	last   Branch
	phase  uint
	remain uint16
	arg    uint32
	dirs   uint16
	sample uint8
	pins   nand.Pins
	irq    bool
}
