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

// FullAddr packs a column/page/block address into the four address-input
// cycles of the chip:
//
//	|              | I/O7 | I/O6 | I/O5 | I/O4 | I/O3 | I/O2 | I/O1 | I/O0 |
//	| ------------ | ---- | ---- | ---- | ---- | ---- | ---- | ---- | ---- |
//	| First  cycle | CA7  | CA6  | CA5  | CA4  | CA3  | CA2  | CA1  | CA0  |
//	| Second cycle | L    | L    | L    | L    | CA11 | CA10 | CA9  | CA8  |
//	| Third  cycle | PA7  | PA6  | PA5  | PA4  | PA3  | PA2  | PA1  | PA0  |
//	| Fourth cycle | PA15 | PA14 | PA13 | PA12 | PA11 | PA10 | PA9  | PA8  |
//
// CA0-CA11 is the column address, PA0-PA5 the page within the block and
// PA6-PA15 the block address.
func FullAddr(column, page, block uint32) [4]uint8 {
	ca := column & 0xFFF
	pa := (page & 0x3F) | ((block & 0x3FF) << 6)

	return [4]uint8{
		uint8(ca),
		uint8(ca>>8) & 0x0F,
		uint8(pa),
		uint8(pa >> 8),
	}
}

// BlockAddr packs a block address into the two address-input cycles used
// by auto block erase.
func BlockAddr(block uint32) [2]uint8 {
	return [2]uint8{
		uint8(block),
		uint8(block >> 8),
	}
}
