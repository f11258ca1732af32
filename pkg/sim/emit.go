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

package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lassandro/gonandio/pkg/machine"
)

type cycleState struct {
	Cycle   uint   `json:"cycle"`
	State   string `json:"state"`
	Last    string `json:"last"`
	Pins    uint16 `json:"pins"`
	PinDirs uint16 `json:"pindirs"`
	Tx      int    `json:"tx"`
	Rx      int    `json:"rx"`
	Irq     bool   `json:"irq"`
	Stall   string `json:"stall,omitempty"`
}

type busEvent struct {
	Cycle uint   `json:"cycle"`
	Kind  string `json:"kind"`
	Byte  uint8  `json:"byte"`
	Chip  int    `json:"chip"`
}

type waveSignal struct {
	Name string   `json:"name"`
	Wave string   `json:"wave"`
	Data []string `json:"data,omitempty"`
}

type waveHead struct {
	Text string `json:"text"`
}

type waveSource struct {
	Signal []waveSignal `json:"signal"`
	Head   waveHead     `json:"head"`
}

// Result is one scenario's line in the run summary.
type Result struct {
	Scenario  string `json:"scenario"`
	Completed bool   `json:"completed"`
	Cycles    int    `json:"cycles"`
	Received  int    `json:"received"`
	Error     string `json:"error,omitempty"`
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")

	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0666); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return nil
}

// WriteArtifacts dumps a trace into dir: the per-cycle state table, the
// recovered bus events, queue levels, the received bytes and a wavedrom
// timing diagram source.
func WriteArtifacts(dir string, trace *Trace) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	states := make([]cycleState, len(trace.Snapshots))
	txLevels := make([]int, len(trace.Snapshots))
	rxLevels := make([]int, len(trace.Snapshots))

	for i, snap := range trace.Snapshots {
		states[i] = cycleState{
			Cycle:   snap.Cycle,
			State:   snap.State.String(),
			Last:    snap.Last.String(),
			Pins:    snap.Pins.Pack(),
			PinDirs: snap.PinDirs,
			Tx:      snap.TxLevel,
			Rx:      snap.RxLevel,
			Irq:     snap.Irq,
			Stall:   snap.Stall.String(),
		}

		txLevels[i] = snap.TxLevel
		rxLevels[i] = snap.RxLevel
	}

	events := Events(trace.Snapshots)
	dump := make([]busEvent, len(events))

	for i, event := range events {
		dump[i] = busEvent{
			Cycle: event.Cycle,
			Kind:  event.Kind.String(),
			Byte:  event.Byte,
			Chip:  int(event.Chip),
		}
	}

	received := make([]uint8, len(trace.Received))

	for i, w := range trace.Received {
		received[i] = uint8(w)
	}

	files := map[string]any{
		"states.json":   states,
		"events.json":   dump,
		"tx_fifo.json":  txLevels,
		"rx_fifo.json":  rxLevels,
		"received.json": received,
		"wave.json":     waveFromTrace(trace),
	}

	for name, v := range files {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	return nil
}

// WriteSummary writes the aggregate run table next to the per-scenario
// artifact directories.
func WriteSummary(path string, results []Result) error {
	return writeJSON(path, results)
}

// waveFromTrace renders the pin trace as wavedrom source: one binary
// lane per control pin plus a data lane for the io bus.
func waveFromTrace(trace *Trace) waveSource {
	bit := func(get func(machine.Snapshot) bool) string {
		wave := make([]byte, 0, len(trace.Snapshots))
		last := byte(0)

		for i, snap := range trace.Snapshots {
			c := byte('0')

			if get(snap) {
				c = '1'
			}

			if i > 0 && c == last {
				wave = append(wave, '.')
			} else {
				wave = append(wave, c)
				last = c
			}
		}

		return string(wave)
	}

	var (
		ioWave []byte
		ioData []string
		ioLast = -1
	)

	for i, snap := range trace.Snapshots {
		v := int(snap.Pins.Data)

		if i > 0 && v == ioLast {
			ioWave = append(ioWave, '.')
			continue
		}

		ioWave = append(ioWave, '=')
		ioData = append(ioData, fmt.Sprintf("%02x", v))
		ioLast = v
	}

	return waveSource{
		Head: waveHead{Text: trace.Scenario.Name},
		Signal: []waveSignal{
			{Name: "cle", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ctrl.Cle })},
			{Name: "ale", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ctrl.Ale })},
			{Name: "web", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ctrl.Web })},
			{Name: "reb", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ctrl.Reb })},
			{Name: "wpb", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ctrl.Wpb })},
			{Name: "ceb0", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ceb0 })},
			{Name: "ceb1", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Ceb1 })},
			{Name: "rbb", Wave: bit(func(s machine.Snapshot) bool { return s.Pins.Rbb })},
			{Name: "io", Wave: string(ioWave), Data: ioData},
		},
	}
}
