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

package cmdword_test

import (
	"errors"
	"testing"

	"github.com/lassandro/gonandio/pkg/cmdword"
	"github.com/lassandro/gonandio/pkg/nand"
)

func TestPack(t *testing.T) {
	tests := []struct {
		Name    string
		ID      cmdword.CmdID
		Count   uint32
		PinDirs uint16
		Output  uint32
	}{
		{
			"bitbang single",
			cmdword.CMD_BITBANG, 1, nand.DIR_WRITE,
			0x00007FFF,
		},
		{
			"count zero saturates to one transfer",
			cmdword.CMD_CMD_LATCH, 0, nand.DIR_WRITE,
			0x10007FFF,
		},
		{
			"data output of five",
			cmdword.CMD_DATA_OUTPUT, 5, nand.DIR_READ,
			0x30047F00,
		},
		{
			"maximum count",
			cmdword.CMD_DATA_INPUT, 4095, nand.DIR_WRITE,
			0x4FFE7FFF,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			result, err := cmdword.Pack(test.ID, test.Count, test.PinDirs)

			if err != nil {
				t.Fatal(err)
			}

			if result != test.Output {
				t.Fatalf(
					"Command word mismatch\n"+
						"want:%#08x\n"+
						"have:%#08x",
					test.Output,
					result,
				)
			}
		})
	}
}

func TestPackRange(t *testing.T) {
	fails := []struct {
		Name  string
		ID    cmdword.CmdID
		Count uint32
		Field string
	}{
		{"cmd id too wide", 0x10, 1, "cmd_id"},
		{"count 4096 not encodable", cmdword.CMD_DATA_OUTPUT, 4096, "transfer_count"},
	}

	for _, test := range fails {
		t.Run(test.Name, func(t *testing.T) {
			_, err := cmdword.Pack(test.ID, test.Count, nand.DIR_WRITE)

			var rangeErr *cmdword.EncodingRangeError

			if !errors.As(err, &rangeErr) {
				t.Fatalf("Expected EncodingRangeError, have %v", err)
			}

			if rangeErr.Field != test.Field {
				t.Fatalf(
					"Wrong field reported\n"+
						"want:%s\n"+
						"have:%s",
					test.Field,
					rangeErr.Field,
				)
			}
		})
	}
}

func TestSplitBoundaries(t *testing.T) {
	// wire 0 decodes to logical count 1
	_, count, _ := cmdword.Split(0x10007FFF)

	if count != 1 {
		t.Fatalf("Expected logical count 1, have %d", count)
	}

	// wire 0xFFF decodes to logical count 4096
	_, count, _ = cmdword.Split(0x3FFF7F00)

	if count != 4096 {
		t.Fatalf("Expected logical count 4096, have %d", count)
	}
}

func TestRoundTrip(t *testing.T) {
	for id := cmdword.CmdID(0); id <= cmdword.MAX_CMD_ID; id++ {
		for _, count := range []uint32{1, 2, 5, 255, 4095} {
			for _, pindirs := range []uint16{0x0000, nand.DIR_READ, nand.DIR_WRITE, 0xFFFF} {
				w, err := cmdword.Pack(id, count, pindirs)

				if err != nil {
					t.Fatal(err)
				}

				haveID, haveCount, haveDirs := cmdword.Split(w)

				if haveID != id || uint32(haveCount) != count || haveDirs != pindirs {
					t.Fatalf(
						"Round trip mismatch\n"+
							"want:%x %d %04x\n"+
							"have:%x %d %04x",
						id, count, pindirs,
						haveID, haveCount, haveDirs,
					)
				}
			}
		}
	}
}

func TestEncodeDecodePayload(t *testing.T) {
	cmd := cmdword.Command{
		ID:      cmdword.CMD_ADDR_LATCH,
		Count:   4,
		PinDirs: nand.DIR_WRITE,
		Payload: []uint32{0x200, 0x204, 0x221, 0x220},
	}

	words, err := cmdword.Encode(cmd)

	if err != nil {
		t.Fatal(err)
	}

	if len(words) != 6 {
		t.Fatalf("Expected 6 words, have %d", len(words))
	}

	cmds, err := cmdword.Decode(words)

	if err != nil {
		t.Fatal(err)
	}

	if len(cmds) != 1 {
		t.Fatalf("Expected 1 command, have %d", len(cmds))
	}

	have := cmds[0]

	if have.ID != cmd.ID || have.Count != cmd.Count || have.PinDirs != cmd.PinDirs {
		t.Fatalf("Decoded header mismatch: %+v", have)
	}

	for i, word := range cmd.Payload {
		if have.Payload[i] != word {
			t.Fatalf(
				"Payload word %d mismatch\n"+
					"want:%#x\n"+
					"have:%#x",
				i, word, have.Payload[i],
			)
		}
	}
}

func TestEncodePayloadMismatch(t *testing.T) {
	_, err := cmdword.Encode(cmdword.Command{
		ID:      cmdword.CMD_DATA_INPUT,
		Count:   3,
		PinDirs: nand.DIR_WRITE,
		Payload: []uint32{0x200},
	})

	var rangeErr *cmdword.EncodingRangeError

	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected EncodingRangeError, have %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	fails := []struct {
		Name  string
		Words []uint32
	}{
		{"lone cmd_0", []uint32{0x1000FFFF}},
		{"short payload", []uint32{0x20017F00, 0x0, 0x200}},
	}

	for _, test := range fails {
		t.Run(test.Name, func(t *testing.T) {
			_, err := cmdword.Decode(test.Words)

			var truncErr *cmdword.TruncatedStreamError

			if !errors.As(err, &truncErr) {
				t.Fatalf("Expected TruncatedStreamError, have %v", err)
			}
		})
	}
}
