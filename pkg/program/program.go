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

// Package program handles assembled microprogram images: the fixed-size
// instruction memory the dispatcher loop must fit into, their on-disk
// form and their embeddable Go form.
package program

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// The instruction memory holds 32 slots; a program that does not fit
// cannot be loaded, there is no paging.
const MAX_SLOTS = 32

// Program is an assembled microprogram, one instruction per slot.
type Program []uint16

// Assembler turns microprogram source into an instruction image. The
// assembler itself is an external tool; this interface is the seam it
// plugs into.
type Assembler interface {
	Assemble(src []byte) (Program, error)
}

type SlotLimitError struct {
	Slots int
}

func (e *SlotLimitError) Error() string {
	return fmt.Sprintf(
		"program needs %d slots, instruction memory has %d",
		e.Slots, MAX_SLOTS,
	)
}

type ImageFormatError struct {
	Bytes int
}

func (e *ImageFormatError) Error() string {
	return fmt.Sprintf(
		"image size %d is not a whole number of instructions",
		e.Bytes,
	)
}

// Load reads a little-endian instruction image.
func Load(r io.Reader) (Program, error) {
	data, err := io.ReadAll(r)

	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	if len(data)%2 != 0 {
		return nil, &ImageFormatError{Bytes: len(data)}
	}

	slots := len(data) / 2

	if slots > MAX_SLOTS {
		return nil, &SlotLimitError{Slots: slots}
	}

	result := make(Program, slots)

	for i := range result {
		result[i] = binary.LittleEndian.Uint16(data[i*2:])
	}

	return result, nil
}

// Write emits the little-endian instruction image.
func (p Program) Write(w io.Writer) error {
	if len(p) > MAX_SLOTS {
		return &SlotLimitError{Slots: len(p)}
	}

	buf := make([]byte, len(p)*2)

	for i, inst := range p {
		binary.LittleEndian.PutUint16(buf[i*2:], inst)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}

	return nil
}

// GoSource renders the program as a Go source file declaring the
// instruction array, ready for embedding in firmware.
func (p Program) GoSource(pkg, name string) []byte {
	var buf bytes.Buffer

	buf.WriteString("// Code generated by gonandio-prog. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "var %s = [%d]uint16{", name, len(p))

	for i, inst := range p {
		if i%8 == 0 {
			buf.WriteString("\n\t")
		} else {
			buf.WriteString(" ")
		}

		fmt.Fprintf(&buf, "0x%04X,", inst)
	}

	buf.WriteString("\n}\n")

	return buf.Bytes()
}
