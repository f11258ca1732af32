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

// Pack builds the cmd_0 word. count is the logical transfer count in
// [0, MAX_COUNT]; the wire field carries count-1, saturating at zero so
// that counts 0 and 1 both encode a single transfer.
func Pack(id CmdID, count uint32, pindirs uint16) (uint32, error) {
	if id > MAX_CMD_ID {
		return 0, &EncodingRangeError{
			Field: "cmd_id", Value: uint32(id), Max: MAX_CMD_ID,
		}
	}

	if count > MAX_COUNT {
		return 0, &EncodingRangeError{
			Field: "transfer_count", Value: count, Max: MAX_COUNT,
		}
	}

	wire := count
	if wire > 0 {
		wire--
	}

	return uint32(id)<<28 | wire<<16 | uint32(pindirs), nil
}

// Split tears a cmd_0 word back into its fields. The returned count is
// logical, wire value plus one.
func Split(w uint32) (id CmdID, count uint16, pindirs uint16) {
	id = CmdID(w >> 28)
	count = uint16(w>>16&MAX_COUNT) + 1
	pindirs = uint16(w)
	return id, count, pindirs
}

// Encode turns a Command into its wire words: cmd_0, cmd_1, then any
// payload words. For addr_latch and data_input the payload length must
// match the transfer count; all other ids carry no payload.
func Encode(cmd Command) ([]uint32, error) {
	w0, err := Pack(cmd.ID, uint32(cmd.Count), cmd.PinDirs)

	if err != nil {
		return nil, err
	}

	switch cmd.ID {
	case CMD_ADDR_LATCH, CMD_DATA_INPUT:
		count := uint32(cmd.Count)
		if count == 0 {
			count = 1
		}

		if uint32(len(cmd.Payload)) != count {
			return nil, &EncodingRangeError{
				Field: "payload",
				Value: uint32(len(cmd.Payload)),
				Max:   count,
			}
		}
	default:
		if len(cmd.Payload) != 0 {
			return nil, &EncodingRangeError{
				Field: "payload",
				Value: uint32(len(cmd.Payload)),
				Max:   0,
			}
		}
	}

	words := make([]uint32, 0, 2+len(cmd.Payload))
	words = append(words, w0, cmd.Arg)
	words = append(words, cmd.Payload...)

	return words, nil
}

// Decode walks a full command stream and recovers the Command sequence.
// The dispatcher always pops cmd_0 and cmd_1 together, so a lone cmd_0
// at the end of the stream is truncated, as is a short payload.
func Decode(words []uint32) ([]Command, error) {
	var cmds []Command

	for i := 0; i < len(words); {
		if i+1 >= len(words) {
			return nil, &TruncatedStreamError{Index: i}
		}

		id, count, pindirs := Split(words[i])

		cmd := Command{
			ID:      id,
			Count:   count,
			PinDirs: pindirs,
			Arg:     words[i+1],
		}
		i += 2

		switch id {
		case CMD_ADDR_LATCH, CMD_DATA_INPUT:
			if i+int(count) > len(words) {
				return nil, &TruncatedStreamError{Index: i}
			}

			cmd.Payload = words[i : i+int(count)]
			i += int(count)
		}

		cmds = append(cmds, cmd)
	}

	return cmds, nil
}
