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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gonandio/pkg/debugger"
	"github.com/lassandro/gonandio/pkg/machine"
	"github.com/lassandro/gonandio/pkg/scenario"
	"github.com/lassandro/gonandio/pkg/sim"
)

var helpvar bool
var versionvar bool
var scenariovar string
var outvar string
var depthvar int
var wpvar string
var irqvar string
var setupvar uint
var holdvar uint
var settlevar uint
var lengthvar uint
var blockvar uint
var debugvar bool
var quietvar bool
var verbosevar bool
var shouldexit bool

var dbgvar *debugger.Debugger

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const usage = "gonandio [-scenario name] [-out dir]"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&versionvar, "version", false, "Displays the build version")
	flag.StringVar(
		&scenariovar, "scenario", "",
		"Runs a single scenario instead of the whole suite",
	)
	flag.StringVar(
		&outvar, "out", "artifacts",
		"Directory the per-scenario artifacts and summary are written to",
	)
	flag.IntVar(
		&depthvar, "depth", machine.DEFAULT_DEPTH,
		"Hardware queue depth between driver and dispatcher",
	)
	flag.StringVar(
		&wpvar, "wp", "off",
		"Write protect policy, 'off' holds wpb high, 'phase' tracks "+
			"write phases",
	)
	flag.StringVar(
		&irqvar, "irq5", "signal",
		"Behavior of command id 5, 'signal' raises the completion irq, "+
			"'wait' falls through to wait_rbb",
	)
	flag.UintVar(&setupvar, "setup", 1, "Write strobe setup cycles")
	flag.UintVar(&holdvar, "hold", 1, "Write strobe hold cycles")
	flag.UintVar(&settlevar, "settle", 1, "Read strobe settle cycles")
	flag.UintVar(&lengthvar, "length", 8, "Bytes transferred by the read scenario")
	flag.UintVar(&blockvar, "block", 0x81, "Block address used by the scenarios")
	flag.BoolVar(&debugvar, "debug", false, "Runs the simulation in a debug CLI")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.BoolVar(&verbosevar, "verbose", false, "Logs every scenario phase")
	flag.Parse()
}

func createLogger() *log.Logger {
	cfg := log.DefaultConfig()

	if verbosevar {
		cfg.Level = log.DebugLevel
	} else if quietvar {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}

func variant() (machine.Variant, error) {
	var result machine.Variant

	switch wpvar {
	case "off":
		result.Wp = machine.WP_HELD_OFF
	case "phase":
		result.Wp = machine.WP_PER_PHASE
	default:
		return result, fmt.Errorf("invalid -wp value %q", wpvar)
	}

	switch irqvar {
	case "signal":
		result.Irq = machine.IRQ_SIGNAL
	case "wait":
		result.Irq = machine.IRQ_WAIT_RBB
	default:
		return result, fmt.Errorf("invalid -irq5 value %q", irqvar)
	}

	return result, nil
}

func runScenario(
	logger *log.Logger,
	name string,
	params scenario.Params,
	v machine.Variant,
	timing machine.Timing,
) sim.Result {
	sc, err := scenario.Build(name, params)

	if err != nil {
		logger.Error("building scenario failed", err)
		return sim.Result{Scenario: name, Error: err.Error()}
	}

	driver := &sim.Driver{
		Engine: machine.New(depthvar, timing, v, nil),
		Logger: logger,
	}

	if dbgvar != nil {
		driver.Debug = dbgvar
	}

	trace, err := driver.Run(sc)

	result := sim.Result{
		Scenario:  name,
		Completed: trace.Completed,
		Cycles:    len(trace.Snapshots),
		Received:  len(trace.Received),
	}

	if err == nil {
		err = sim.Verify(trace, timing)
	}

	if err != nil {
		logger.Error("scenario failed", err)
		result.Error = err.Error()
	} else {
		logger.Info(
			"scenario passed",
			log.String("scenario", name),
			log.String("cycles", fmt.Sprint(result.Cycles)),
		)
	}

	if err := sim.WriteArtifacts(filepath.Join(outvar, name), trace); err != nil {
		logger.Error("writing artifacts failed", err)

		if result.Error == "" {
			result.Error = err.Error()
		}
	}

	return result
}

func gonandio() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	if versionvar {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return 0
	}

	logger := createLogger()

	v, err := variant()

	if err != nil {
		logger.Error("invalid flag value", err)
		fmt.Println(usage)
		return 1
	}

	timing := machine.Timing{
		Setup:      setupvar,
		Hold:       holdvar,
		ReadSettle: settlevar,
	}

	params := scenario.DefaultParams()
	params.Length = uint32(lengthvar)
	params.Block = uint32(blockvar)

	names := scenario.Names()

	if scenariovar != "" {
		names = []string{scenariovar}
	}

	if debugvar {
		dbgvar = &debugger.Debugger{
			Break:       true,
			HandleBreak: handleBreak,
		}

		enterRawTerm()
		defer exitRawTerm()

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				fmt.Println()
				dbgvar.Break = true
			}
		}()
	}

	var results []sim.Result
	failed := false

	for _, name := range names {
		if shouldexit {
			break
		}

		result := runScenario(logger, name, params, v, timing)

		if result.Error != "" {
			failed = true
		}

		results = append(results, result)
	}

	path := filepath.Join(outvar, "summary.json")

	if err := sim.WriteSummary(path, results); err != nil {
		logger.Error("writing summary failed", err)
		failed = true
	}

	if failed {
		return 1
	}

	return 0
}

func main() {
	os.Exit(gonandio())
}
