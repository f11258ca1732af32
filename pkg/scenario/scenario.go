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
	"github.com/lassandro/gonandio/pkg/cmdword"
	"github.com/lassandro/gonandio/pkg/nand"
)

// Builder composes a command stream one bus operation at a time. The
// first encoding failure sticks and surfaces from Words; every call
// after it is a no-op.
type Builder struct {
	cs    nand.ChipSelect
	words []uint32
	err   error
}

func NewBuilder(cs nand.ChipSelect) *Builder {
	return &Builder{cs: cs}
}

func (b *Builder) append(cmd cmdword.Command) *Builder {
	if b.err != nil {
		return b
	}

	words, err := cmdword.Encode(cmd)

	if err != nil {
		b.err = err
		return b
	}

	b.words = append(b.words, words...)
	return b
}

// checkCount rejects a transfer count before it is narrowed into the
// Command field, so an oversized count fails instead of wrapping.
func (b *Builder) checkCount(count uint32) bool {
	if b.err != nil {
		return false
	}

	if count > cmdword.MAX_COUNT {
		b.err = &cmdword.EncodingRangeError{
			Field: "transfer_count",
			Value: count,
			Max:   cmdword.MAX_COUNT,
		}
		return false
	}

	return true
}

// InitPin parks every pin at its idle level with both chips deselected
func (b *Builder) InitPin() *Builder {
	return b.Bitbang(uint16(nand.CebBits(nand.CS_NONE)))
}

func (b *Builder) AssertCS() *Builder {
	return b.Bitbang(uint16(nand.CebBits(b.cs)))
}

func (b *Builder) DeassertCS() *Builder {
	return b.Bitbang(uint16(nand.CebBits(nand.CS_NONE)))
}

// Bitbang drives the {ceb1, ceb0, io[7:0]} levels directly for a cycle
func (b *Builder) Bitbang(levels uint16) *Builder {
	return b.append(cmdword.Command{
		ID:      cmdword.CMD_BITBANG,
		Count:   1,
		PinDirs: nand.DIR_WRITE,
		Arg:     uint32(levels),
	})
}

func (b *Builder) CmdLatch(cmd uint8) *Builder {
	return b.append(cmdword.Command{
		ID:      cmdword.CMD_CMD_LATCH,
		Count:   1,
		PinDirs: nand.DIR_WRITE,
		Arg:     nand.MergeCS(cmd, b.cs),
	})
}

func (b *Builder) AddrLatch(addrs ...uint8) *Builder {
	if !b.checkCount(uint32(len(addrs))) {
		return b
	}

	payload := make([]uint32, len(addrs))

	for i, addr := range addrs {
		payload[i] = nand.MergeCS(addr, b.cs)
	}

	return b.append(cmdword.Command{
		ID:      cmdword.CMD_ADDR_LATCH,
		Count:   uint16(len(addrs)),
		PinDirs: nand.DIR_WRITE,
		Payload: payload,
	})
}

func (b *Builder) DataOutput(count uint32) *Builder {
	if !b.checkCount(count) {
		return b
	}

	return b.append(cmdword.Command{
		ID:      cmdword.CMD_DATA_OUTPUT,
		Count:   uint16(count),
		PinDirs: nand.DIR_READ,
	})
}

func (b *Builder) DataInput(data ...uint8) *Builder {
	if !b.checkCount(uint32(len(data))) {
		return b
	}

	payload := make([]uint32, len(data))

	for i, v := range data {
		payload[i] = nand.MergeCS(v, b.cs)
	}

	return b.append(cmdword.Command{
		ID:      cmdword.CMD_DATA_INPUT,
		Count:   uint16(len(data)),
		PinDirs: nand.DIR_WRITE,
		Payload: payload,
	})
}

func (b *Builder) SetIrq() *Builder {
	return b.append(cmdword.Command{
		ID:      cmdword.CMD_SET_IRQ,
		Count:   1,
		PinDirs: nand.DIR_WRITE,
	})
}

func (b *Builder) WaitRbb() *Builder {
	return b.append(cmdword.Command{
		ID:      cmdword.CMD_WAIT_RBB,
		Count:   1,
		PinDirs: nand.DIR_WRITE,
	})
}

func (b *Builder) Words() ([]uint32, error) {
	return b.words, b.err
}

// Reset issues the chip reset command and waits out the recovery time
func Reset(p Params) (Scenario, error) {
	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_RESET).
		WaitRbb().
		Words()

	return finish("reset", words, 100, 0, 0, err)
}

// ReadID requests the maker/device code bytes at address 0x00
func ReadID(p Params) (Scenario, error) {
	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_READ_ID).
		AddrLatch(0x00).
		DataOutput(5).
		SetIrq().
		Words()

	return finish("read_id", words, 100, 5, 0, err)
}

// Read runs a page read: address in, array busy, then the data out
func Read(p Params) (Scenario, error) {
	addrs := nand.FullAddr(p.Column, p.Page, p.Block)

	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_READ_1ST).
		AddrLatch(addrs[:]...).
		CmdLatch(nand.CMD_READ_2ND).
		WaitRbb().
		DataOutput(p.Length).
		SetIrq().
		Words()

	return finish("read", words, 300, int(p.Length), 0, err)
}

// Program runs auto page program followed by a status read
func Program(p Params) (Scenario, error) {
	addrs := nand.FullAddr(p.Column, p.Page, p.Block)

	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_PROGRAM_1ST).
		AddrLatch(addrs[:]...).
		DataInput(p.Data...).
		CmdLatch(nand.CMD_PROGRAM_2ND).
		WaitRbb().
		CmdLatch(nand.CMD_STATUS_READ).
		DataOutput(1).
		SetIrq().
		Words()

	return finish("program", words, 300, 1, len(p.Data), err)
}

// Erase runs auto block erase followed by a status read
func Erase(p Params) (Scenario, error) {
	addrs := nand.BlockAddr(p.Block)

	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_ERASE_1ST).
		AddrLatch(addrs[:]...).
		CmdLatch(nand.CMD_ERASE_2ND).
		WaitRbb().
		CmdLatch(nand.CMD_STATUS_READ).
		DataOutput(1).
		SetIrq().
		Words()

	return finish("erase", words, 200, 1, 0, err)
}

// StatusRead reads the status register byte
func StatusRead(p Params) (Scenario, error) {
	words, err := NewBuilder(p.CS).
		CmdLatch(nand.CMD_STATUS_READ).
		DataOutput(1).
		SetIrq().
		Words()

	return finish("status_read", words, 50, 1, 0, err)
}

var builders = map[string]func(Params) (Scenario, error){
	"reset":       Reset,
	"read_id":     ReadID,
	"read":        Read,
	"program":     Program,
	"erase":       Erase,
	"status_read": StatusRead,
}

// Names lists the scenarios in their canonical run order
func Names() []string {
	return []string{"reset", "read_id", "read", "program", "erase", "status_read"}
}

// Build composes a named scenario with the given parameters
func Build(name string, p Params) (Scenario, error) {
	build, ok := builders[name]

	if !ok {
		return Scenario{}, &UnknownScenarioError{Name: name}
	}

	return build(p)
}

// finish validates a composed stream and wraps it into a Scenario. The
// stream must decode cleanly and end on a terminating command, since a
// stream that leaves the dispatcher mid-branch can never complete.
func finish(
	name string,
	words []uint32,
	cycles uint,
	out int,
	in int,
	err error,
) (Scenario, error) {
	if err != nil {
		return Scenario{}, err
	}

	cmds, err := cmdword.Decode(words)

	if err != nil {
		return Scenario{}, err
	}

	if len(cmds) == 0 {
		return Scenario{}, &MalformedScenarioError{
			Name: name, Reason: "empty command stream",
		}
	}

	switch last := cmds[len(cmds)-1].ID; last {
	case cmdword.CMD_SET_IRQ, cmdword.CMD_WAIT_RBB:
	default:
		if last <= cmdword.CMD_WAIT_RBB {
			return Scenario{}, &MalformedScenarioError{
				Name:   name,
				Reason: "stream does not end on a terminating command",
			}
		}
	}

	return Scenario{
		Name:     name,
		Words:    words,
		Cycles:   cycles,
		OutBytes: out,
		InBytes:  in,
	}, nil
}
