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

package cmdword

import "fmt"

type CmdID uint8

// Dispatch ids tested by the microprogram's linear branch chain, in id
// order. Ids at or past CMD_WAIT_RBB fall through to the wait_rbb branch.
const (
	CMD_BITBANG     CmdID = 0x00
	CMD_CMD_LATCH   CmdID = 0x01
	CMD_ADDR_LATCH  CmdID = 0x02
	CMD_DATA_OUTPUT CmdID = 0x03
	CMD_DATA_INPUT  CmdID = 0x04
	CMD_SET_IRQ     CmdID = 0x05
	CMD_WAIT_RBB    CmdID = 0x06
)

// Field widths of cmd_0
const (
	MAX_CMD_ID = 0xF
	MAX_COUNT  = 0xFFF
)

// Command is one decoded host-to-device command.
//
//	cmd_0 = { cmd_id[3:0], transfer_count[11:0], pindirs[15:0] }
//	cmd_1 = { arg[31:0] }
//
// Count is the logical transfer count; the wire field carries count-1.
// Arg is the cmd_1 word: the 10-bit pin payload for bitbang, the chip
// select and command byte for cmd_latch, don't-care otherwise (it is
// always popped by the dispatcher, never interpreted). Payload carries
// the trailing words of addr_latch and data_input commands, one
// {ceb[1:0], byte[7:0]} word per transfer, in wire order.
type Command struct {
	ID      CmdID
	Count   uint16
	PinDirs uint16
	Arg     uint32
	Payload []uint32
}

// EncodingRangeError reports a codec field outside its bit-width bounds.
type EncodingRangeError struct {
	Field string
	Value uint32
	Max   uint32
}

func (err *EncodingRangeError) Error() string {
	return fmt.Sprintf(
		"cmdword: %s value %d exceeds maximum %d",
		err.Field, err.Value, err.Max,
	)
}

// TruncatedStreamError reports a command stream that ends mid-command.
type TruncatedStreamError struct {
	Index int
}

func (err *TruncatedStreamError) Error() string {
	return fmt.Sprintf("cmdword: command stream truncated at word %d", err.Index)
}
