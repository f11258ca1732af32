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

package scenario

import (
	"fmt"

	"github.com/lassandro/gonandio/pkg/nand"
)

// Params are the knobs a scenario composition accepts. Zero values are
// usable; DefaultParams fills in a small data payload for program.
type Params struct {
	CS     nand.ChipSelect
	Column uint32
	Page   uint32
	Block  uint32

	// Length is the number of bytes a read scenario transfers
	Length uint32

	// Data is the page payload a program scenario writes
	Data []uint8
}

func DefaultParams() Params {
	return Params{
		CS:     nand.CS_0,
		Column: 0,
		Page:   1,
		Block:  0x81,
		Length: 8,
		Data:   []uint8{0xDE, 0xAD, 0xBE, 0xEF},
	}
}

// Scenario is a named command stream plus the budget and expectations
// the simulation checks it against.
type Scenario struct {
	Name  string
	Words []uint32

	// Cycles is the ceiling before the run is declared hung
	Cycles uint

	// OutBytes is the number of bytes the chip returns to the host
	OutBytes int

	// InBytes is the number of payload bytes written to the chip
	InBytes int
}

type UnknownScenarioError struct {
	Name string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario %q", e.Name)
}

type MalformedScenarioError struct {
	Name   string
	Reason string
}

func (e *MalformedScenarioError) Error() string {
	return fmt.Sprintf("malformed scenario %q: %s", e.Name, e.Reason)
}
