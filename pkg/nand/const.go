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

package nand

// NAND IC pinout
//
// | 15  | 14  | 13  | 12  | 11  | 10  | 9    | 8    | 7..0    |
// | --- | --- | --- | --- | --- | --- | ---- | ---- | ------- |
// | rbb | reb | web | wpb | ale | cle | ceb1 | ceb0 | io[7:0] |
// | in  | out | out | out | out | out | out  | out  | io      |
const (
	PIN_IO0 uint = 0
	PIN_IO1      = 1
	PIN_IO2      = 2
	PIN_IO3      = 3
	PIN_IO4      = 4
	PIN_IO5      = 5
	PIN_IO6      = 6
	PIN_IO7      = 7

	PIN_CEB0 = 8
	PIN_CEB1 = 9
	PIN_CLE  = 10
	PIN_ALE  = 11
	PIN_WPB  = 12
	PIN_WEB  = 13
	PIN_REB  = 14
	PIN_RBB  = 15
)

// NAND flash command bytes (first/second bus cycles)
const (
	CMD_READ_1ST            uint8 = 0x00
	CMD_READ_2ND            uint8 = 0x30
	CMD_READ_CACHE          uint8 = 0x31
	CMD_READ_CACHE_LAST     uint8 = 0x3F
	CMD_SERIAL_DATA_INPUT   uint8 = 0x80
	CMD_PROGRAM_1ST         uint8 = 0x80
	CMD_PROGRAM_2ND         uint8 = 0x10
	CMD_COLUMN_CHANGE       uint8 = 0x85
	CMD_PROGRAM_CACHE_2ND   uint8 = 0x15
	CMD_COPY_READ_2ND       uint8 = 0x3A
	CMD_COPY_PROGRAM_1ST    uint8 = 0x8C
	CMD_ERASE_1ST           uint8 = 0x60
	CMD_ERASE_2ND           uint8 = 0xD0
	CMD_READ_ID             uint8 = 0x90
	CMD_STATUS_READ         uint8 = 0x70
	CMD_RESET               uint8 = 0xFF
)

// Pin direction masks for cmd_0. A set bit marks a host-driven output.
const (
	// Everything but rbb driven: command, address and data-input phases
	DIR_WRITE uint16 = 1<<PIN_REB | 1<<PIN_WEB | 1<<PIN_WPB |
		1<<PIN_ALE | 1<<PIN_CLE | 1<<PIN_CEB1 | 1<<PIN_CEB0 |
		1<<PIN_IO7 | 1<<PIN_IO6 | 1<<PIN_IO5 | 1<<PIN_IO4 |
		1<<PIN_IO3 | 1<<PIN_IO2 | 1<<PIN_IO1 | 1<<PIN_IO0

	// Control pins driven, io bus tristated: data-output phases
	DIR_READ uint16 = 1<<PIN_REB | 1<<PIN_WEB | 1<<PIN_WPB |
		1<<PIN_ALE | 1<<PIN_CLE | 1<<PIN_CEB1 | 1<<PIN_CEB0
)

type ChipSelect int

// Chip enables are active low; CS_NONE deasserts both.
const (
	CS_NONE ChipSelect = -1
	CS_0    ChipSelect = 0
	CS_1    ChipSelect = 1
)

// CebBits returns the {ceb1, ceb0} pin levels for a chip select, shifted
// into their payload-word positions (bits 9 and 8).
func CebBits(cs ChipSelect) uint32 {
	switch cs {
	case CS_NONE:
		return 1<<PIN_CEB1 | 1<<PIN_CEB0
	case CS_0:
		return 1 << PIN_CEB1
	case CS_1:
		return 1 << PIN_CEB0
	default:
		panic("Invalid chip select")
	}
}

// MergeCS folds the chip enable levels into a payload byte
func MergeCS(data uint8, cs ChipSelect) uint32 {
	return CebBits(cs) | uint32(data)
}
