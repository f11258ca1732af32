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
	"github.com/lassandro/gonandio/pkg/cmdword"
	"github.com/lassandro/gonandio/pkg/nand"
)

// DefaultInput is the stand-in chip stimulus used when no input source
// is supplied: the io bus counts up every other cycle and rbb alternates
// between busy and ready every eight cycles.
func DefaultInput(cycle uint) uint16 {
	v := uint16(cycle/2) & 0xFF

	if (cycle/8)%2 == 1 {
		v |= 1 << nand.PIN_RBB
	}

	return v
}

func New(depth int, timing Timing, variant Variant, input InputSource) *Machine {
	if depth <= 0 {
		depth = DEFAULT_DEPTH
	}

	if timing.Setup == 0 {
		timing.Setup = 1
	}
	if timing.Hold == 0 {
		timing.Hold = 1
	}
	if timing.ReadSettle == 0 {
		timing.ReadSettle = 1
	}

	if input == nil {
		input = DefaultInput
	}

	return &Machine{
		Timing:  timing,
		Variant: variant,
		Input:   input,
		tx:      NewFifo(depth),
		rx:      NewFifo(depth),
		state:   BR_SETUP,
		last:    BR_SETUP,
		pins:    nand.Idle(),
	}
}

// Push enqueues a host-to-device word; false when the queue is full.
func (m *Machine) Push(w uint32) bool {
	return m.tx.Push(w)
}

// Pull dequeues a device-to-host word; false when the queue is empty.
func (m *Machine) Pull() (uint32, bool) {
	return m.rx.Pull()
}

func (m *Machine) TxLevel() int {
	return m.tx.Len()
}

func (m *Machine) RxLevel() int {
	return m.rx.Len()
}

func (m *Machine) Depth() int {
	return m.tx.Cap()
}

// RxWords exposes the device-to-host queue contents for trace capture.
func (m *Machine) RxWords() []uint32 {
	return m.rx.Words()
}

// dispatch resolves a cmd_id to its branch. The microprogram tests ids
// against a decrementing counter, so any id at or past the last defined
// branch lands on wait_rbb; that fallback is deliberate and kept.
func (m *Machine) dispatch(id cmdword.CmdID) Branch {
	switch id {
	case cmdword.CMD_BITBANG:
		return BR_BITBANG
	case cmdword.CMD_CMD_LATCH:
		return BR_CMD_LATCH
	case cmdword.CMD_ADDR_LATCH:
		return BR_ADDR_LATCH
	case cmdword.CMD_DATA_OUTPUT:
		return BR_DATA_OUTPUT
	case cmdword.CMD_DATA_INPUT:
		return BR_DATA_INPUT
	case cmdword.CMD_SET_IRQ:
		if m.Variant.Irq == IRQ_WAIT_RBB {
			return BR_WAIT_RBB
		}
		return BR_SET_IRQ
	default:
		return BR_WAIT_RBB
	}
}

// place drives the io bus and chip enables from a payload word:
// { ceb1, ceb0, byte[7:0] }
func (m *Machine) place(w uint32) {
	m.pins.Data = uint8(w)
	m.pins.Ceb0 = w>>nand.PIN_CEB0&0x1 == 1
	m.pins.Ceb1 = w>>nand.PIN_CEB1&0x1 == 1
}

func writePhase(b Branch) bool {
	switch b {
	case BR_BITBANG, BR_CMD_LATCH, BR_ADDR_LATCH, BR_DATA_INPUT:
		return true
	default:
		return false
	}
}

// Step advances the dispatcher by exactly one cycle and reports the
// resulting pin, queue and signal state. It never blocks: a queue
// conflict yields a stalled snapshot and the cycle retries after the
// driver has serviced the queue.
func (m *Machine) Step() (Snapshot, error) {
	state := m.state
	stall := STALL_NONE

	input := m.Input(m.cycle)
	m.pins.Rbb = input>>nand.PIN_RBB&0x1 == 1

	switch m.state {

	// setup: pop cmd_0 and cmd_1 and select the branch. cmd_1 is popped
	// unconditionally; branches without a second-word payload ignore its
	// content rather than requiring zero.
	case BR_SETUP:
		if m.tx.Len() < 2 {
			stall = STALL_TX_EMPTY
			break
		}

		w0, _ := m.tx.Pull()
		w1, _ := m.tx.Pull()

		id, count, dirs := cmdword.Split(w0)

		m.arg = w1
		m.dirs = dirs
		m.remain = count
		m.phase = 0
		m.state = m.dispatch(id)
		m.last = m.state

	// bitbang: the cmd_1 low bits drive {ceb1, ceb0, io[7:0]} directly
	// for one cycle; no loop, no latch pulse
	case BR_BITBANG:
		m.place(m.arg)
		m.pins.Ctrl.Web = true
		m.pins.Ctrl.Reb = true
		m.pins.Ctrl.Cle = false
		m.pins.Ctrl.Ale = false
		m.state = BR_SETUP

	// cmd_latch: cle up with the command byte on the bus and web low for
	// the setup window, web rising edge latches, cle drops after the
	// hold window
	case BR_CMD_LATCH:
		setup, hold := m.Timing.Setup, m.Timing.Hold

		switch {
		case m.phase == 0:
			m.place(m.arg)
			m.pins.Ctrl.Cle = true
			m.pins.Ctrl.Web = false
			m.pins.Ctrl.Reb = true
			m.phase++
		case m.phase < setup:
			m.phase++
		case m.phase == setup:
			m.pins.Ctrl.Web = true
			m.phase++
		case m.phase == setup+hold:
			m.pins.Ctrl.Cle = false
			m.state = BR_SETUP
		default:
			m.phase++
		}

	// addr_latch: ale held across transfer_count+1 iterations, one
	// payload word popped and latched per iteration, ale dropped one
	// hold window after the last pulse
	case BR_ADDR_LATCH:
		setup, hold := m.Timing.Setup, m.Timing.Hold

		switch {
		case m.phase == 0:
			w, ok := m.tx.Pull()
			if !ok {
				stall = STALL_TX_EMPTY
				break
			}

			m.place(w)
			m.pins.Ctrl.Ale = true
			m.pins.Ctrl.Web = false
			m.pins.Ctrl.Reb = true
			m.phase++
		case m.phase < setup:
			m.phase++
		case m.phase == setup:
			m.pins.Ctrl.Web = true
			m.remain--

			if m.remain > 0 {
				m.phase = 0
			} else {
				m.phase++
			}
		case m.phase == setup+hold:
			m.pins.Ctrl.Ale = false
			m.state = BR_SETUP
		default:
			m.phase++
		}

	// data_output: reb low for the read-settle window, io sampled on
	// the last low cycle, pushed on the rising edge; transfer_count+1
	// iterations
	case BR_DATA_OUTPUT:
		settle := m.Timing.ReadSettle

		switch {
		case m.phase < settle:
			m.pins.Ctrl.Reb = false
			m.pins.Ctrl.Web = true

			if m.phase == settle-1 {
				m.sample = uint8(input)
				m.pins.Data = m.sample
			}

			m.phase++
		case m.phase == settle:
			if !m.rx.Push(uint32(m.sample)) {
				stall = STALL_RX_FULL
				break
			}

			m.pins.Ctrl.Reb = true
			m.remain--

			if m.remain > 0 {
				m.phase = 0
			} else {
				m.state = BR_SETUP
			}
		}

	// data_input: like addr_latch but with both latch enables low;
	// payload words popped from the host queue, one per web pulse
	case BR_DATA_INPUT:
		setup := m.Timing.Setup

		switch {
		case m.phase == 0:
			w, ok := m.tx.Pull()
			if !ok {
				stall = STALL_TX_EMPTY
				break
			}

			m.place(w)
			m.pins.Ctrl.Web = false
			m.pins.Ctrl.Reb = true
			m.phase++
		case m.phase < setup:
			m.phase++
		case m.phase == setup:
			m.pins.Ctrl.Web = true
			m.remain--

			if m.remain > 0 {
				m.phase = 0
			} else {
				m.state = BR_SETUP
			}
		}

	// set_irq: latch the completion flag for the host; independent of
	// queue state
	case BR_SET_IRQ:
		m.irq = true
		m.state = BR_SETUP

	// wait_rbb: hold everything until the chip reports ready
	case BR_WAIT_RBB:
		if m.pins.Rbb {
			m.state = BR_SETUP
		}
	}

	if m.Variant.Wp == WP_HELD_OFF {
		m.pins.Ctrl.Wpb = true
	} else {
		m.pins.Ctrl.Wpb = writePhase(state)
	}

	snap := Snapshot{
		Cycle:   m.cycle,
		State:   state,
		Last:    m.last,
		Pins:    m.pins,
		PinDirs: m.dirs,
		TxLevel: m.tx.Len(),
		RxLevel: m.rx.Len(),
		Irq:     m.irq,
		Stall:   stall,
	}

	m.cycle++

	return snap, nil
}
