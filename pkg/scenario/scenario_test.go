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

package scenario_test

import (
	"errors"
	"testing"

	"github.com/lassandro/gonandio/pkg/cmdword"
	"github.com/lassandro/gonandio/pkg/nand"
	"github.com/lassandro/gonandio/pkg/scenario"
)

func compareWords(t *testing.T, want, have []uint32) {
	t.Helper()

	if len(want) != len(have) {
		t.Fatalf(
			"Stream length mismatch\nwant:%d\nhave:%d",
			len(want), len(have),
		)
	}

	for i := range want {
		if want[i] != have[i] {
			t.Fatalf(
				"Word %d mismatch\nwant:%#08x\nhave:%#08x",
				i, want[i], have[i],
			)
		}
	}
}

func TestResetWords(t *testing.T) {
	result, err := scenario.Reset(scenario.DefaultParams())

	if err != nil {
		t.Fatal(err)
	}

	compareWords(t, []uint32{
		0x10007FFF, 0x000002FF, // cmd_latch 0xFF on chip 0
		0x60007FFF, 0x00000000, // wait_rbb
	}, result.Words)

	if result.OutBytes != 0 {
		t.Fatalf("Reset returns no data, have %d", result.OutBytes)
	}
}

func TestReadIDWords(t *testing.T) {
	result, err := scenario.ReadID(scenario.DefaultParams())

	if err != nil {
		t.Fatal(err)
	}

	compareWords(t, []uint32{
		0x10007FFF, 0x00000290, // cmd_latch 0x90
		0x20007FFF, 0x00000000, // addr_latch, one cycle
		0x00000200, //             address byte 0x00
		0x30047F00, 0x00000000, // data_output, five bytes, bus tristated
		0x50007FFF, 0x00000000, // set_irq
	}, result.Words)

	if result.OutBytes != 5 {
		t.Fatalf("Read id returns five bytes, have %d", result.OutBytes)
	}
}

func TestEraseAddressPayload(t *testing.T) {
	params := scenario.DefaultParams()
	params.Block = 0x81

	result, err := scenario.Erase(params)

	if err != nil {
		t.Fatal(err)
	}

	cmds, err := cmdword.Decode(result.Words)

	if err != nil {
		t.Fatal(err)
	}

	if cmds[1].ID != cmdword.CMD_ADDR_LATCH || cmds[1].Count != 2 {
		t.Fatalf("Expected two-cycle block address, have %+v", cmds[1])
	}

	compareWords(t, []uint32{0x281, 0x200}, cmds[1].Payload)
}

func TestReadAddressPayload(t *testing.T) {
	params := scenario.DefaultParams()
	params.Column = 1024
	params.Page = 0
	params.Block = 128

	result, err := scenario.Read(params)

	if err != nil {
		t.Fatal(err)
	}

	cmds, err := cmdword.Decode(result.Words)

	if err != nil {
		t.Fatal(err)
	}

	if cmds[1].Count != 4 {
		t.Fatalf("Expected four-cycle address, have %d", cmds[1].Count)
	}

	compareWords(t, []uint32{0x200, 0x204, 0x200, 0x220}, cmds[1].Payload)
}

func TestChipSelectMerged(t *testing.T) {
	params := scenario.DefaultParams()
	params.CS = nand.CS_1

	result, err := scenario.Reset(params)

	if err != nil {
		t.Fatal(err)
	}

	// chip 1 selected: ceb1 low, ceb0 high
	if result.Words[1] != 0x1FF {
		t.Fatalf(
			"Chip select not merged\nwant:%#08x\nhave:%#08x",
			0x1FF, result.Words[1],
		)
	}
}

func TestProgramCounts(t *testing.T) {
	result, err := scenario.Program(scenario.DefaultParams())

	if err != nil {
		t.Fatal(err)
	}

	if result.InBytes != 4 || result.OutBytes != 1 {
		t.Fatalf(
			"Program moves 4 bytes in and 1 status byte out, have %d/%d",
			result.InBytes, result.OutBytes,
		)
	}
}

func TestBuildAll(t *testing.T) {
	for _, name := range scenario.Names() {
		t.Run(name, func(t *testing.T) {
			result, err := scenario.Build(name, scenario.DefaultParams())

			if err != nil {
				t.Fatal(err)
			}

			if result.Name != name {
				t.Fatalf("Name mismatch: %q", result.Name)
			}

			if result.Cycles == 0 {
				t.Fatal("Every scenario needs a cycle budget")
			}

			cmds, err := cmdword.Decode(result.Words)

			if err != nil {
				t.Fatal(err)
			}

			last := cmds[len(cmds)-1].ID

			if last != cmdword.CMD_SET_IRQ && last != cmdword.CMD_WAIT_RBB {
				t.Fatalf("Stream must terminate, ends on %#x", last)
			}
		})
	}
}

func TestBuildUnknown(t *testing.T) {
	_, err := scenario.Build("format_c", scenario.DefaultParams())

	var unknownErr *scenario.UnknownScenarioError

	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownScenarioError, have %v", err)
	}
}

func TestTransferCountRange(t *testing.T) {
	// 65541 is 0x10005; narrowing it to the 12-bit count field would
	// silently encode a 5-byte transfer
	params := scenario.DefaultParams()
	params.Length = 65541

	_, err := scenario.Read(params)

	var rangeErr *cmdword.EncodingRangeError

	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected EncodingRangeError, have %v", err)
	}

	if rangeErr.Value != 65541 || rangeErr.Max != cmdword.MAX_COUNT {
		t.Fatalf("Wrong range reported: %+v", rangeErr)
	}

	_, err = scenario.NewBuilder(nand.CS_0).
		DataOutput(cmdword.MAX_COUNT + 1).
		Words()

	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected EncodingRangeError, have %v", err)
	}
}

func TestBuilderPrimitives(t *testing.T) {
	words, err := scenario.NewBuilder(nand.CS_0).
		InitPin().
		AssertCS().
		DeassertCS().
		Words()

	if err != nil {
		t.Fatal(err)
	}

	compareWords(t, []uint32{
		0x00007FFF, 0x00000300, // both chips deselected
		0x00007FFF, 0x00000200, // chip 0 enabled
		0x00007FFF, 0x00000300, // both chips deselected
	}, words)
}
