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

// Ctrl holds the strobe and latch-enable outputs. The hardware packs these
// into one side-set field; they are kept apart from the data bus here.
type Ctrl struct {
	Reb bool
	Web bool
	Wpb bool
	Ale bool
	Cle bool
}

// Pins is the full pin state of the NAND bus for one cycle. Rbb is the
// only chip-driven input; Data reflects whatever party drives the io bus.
type Pins struct {
	Ctrl Ctrl
	Ceb0 bool
	Ceb1 bool
	Rbb  bool
	Data uint8
}

// Idle returns the bus at rest: strobes high, latches low, chip enables
// deasserted. wpb is left to the dispatcher's write-protect policy.
func Idle() Pins {
	return Pins{
		Ctrl: Ctrl{Reb: true, Web: true},
		Ceb0: true,
		Ceb1: true,
	}
}

func (p Pins) Pack() uint16 {
	v := uint16(p.Data)

	if p.Ceb0 {
		v |= 1 << PIN_CEB0
	}
	if p.Ceb1 {
		v |= 1 << PIN_CEB1
	}
	if p.Ctrl.Cle {
		v |= 1 << PIN_CLE
	}
	if p.Ctrl.Ale {
		v |= 1 << PIN_ALE
	}
	if p.Ctrl.Wpb {
		v |= 1 << PIN_WPB
	}
	if p.Ctrl.Web {
		v |= 1 << PIN_WEB
	}
	if p.Ctrl.Reb {
		v |= 1 << PIN_REB
	}
	if p.Rbb {
		v |= 1 << PIN_RBB
	}

	return v
}

func Unpack(v uint16) Pins {
	return Pins{
		Ctrl: Ctrl{
			Cle: v>>PIN_CLE&0x1 == 1,
			Ale: v>>PIN_ALE&0x1 == 1,
			Wpb: v>>PIN_WPB&0x1 == 1,
			Web: v>>PIN_WEB&0x1 == 1,
			Reb: v>>PIN_REB&0x1 == 1,
		},
		Ceb0: v>>PIN_CEB0&0x1 == 1,
		Ceb1: v>>PIN_CEB1&0x1 == 1,
		Rbb:  v>>PIN_RBB&0x1 == 1,
		Data: uint8(v),
	}
}
