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

type Branch uint8

// Dispatch branches of the on-device command loop. BR_SETUP pops the
// cmd_0/cmd_1 pair and selects the branch for the following cycles.
const (
	BR_SETUP Branch = iota
	BR_BITBANG
	BR_CMD_LATCH
	BR_ADDR_LATCH
	BR_DATA_OUTPUT
	BR_DATA_INPUT
	BR_SET_IRQ
	BR_WAIT_RBB
)

func (b Branch) String() string {
	switch b {
	case BR_SETUP:
		return "setup"
	case BR_BITBANG:
		return "bitbang"
	case BR_CMD_LATCH:
		return "cmd_latch"
	case BR_ADDR_LATCH:
		return "addr_latch"
	case BR_DATA_OUTPUT:
		return "data_output"
	case BR_DATA_INPUT:
		return "data_input"
	case BR_SET_IRQ:
		return "set_irq"
	case BR_WAIT_RBB:
		return "wait_rbb"
	default:
		return "unknown"
	}
}

type Stall uint8

// A stalled cycle advances the clock but not the dispatcher; the driver
// services the queues between cycles and the same operation retries.
const (
	STALL_NONE Stall = iota
	STALL_TX_EMPTY
	STALL_RX_FULL
)

func (s Stall) String() string {
	switch s {
	case STALL_TX_EMPTY:
		return "tx_empty"
	case STALL_RX_FULL:
		return "rx_full"
	default:
		return ""
	}
}

type WpPolicy uint8

// The two microprogram revisions disagree on write protect handling:
// one drives wpb high permanently, the other only while a write-class
// branch is active. Both are accepted as declared variants.
const (
	WP_HELD_OFF WpPolicy = iota
	WP_PER_PHASE
)

type IrqPolicy uint8

// The revisions also disagree on id 5: an explicit completion signal,
// or one more id falling through the branch chain into wait_rbb.
const (
	IRQ_SIGNAL IrqPolicy = iota
	IRQ_WAIT_RBB
)

// Hardware queue depth between the driving CPU/DMA and the dispatcher
const DEFAULT_DEPTH = 4
