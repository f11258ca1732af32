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

// gonandio-prog validates an assembled microprogram image and renders
// it as Go source for embedding in firmware.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gonandio/pkg/program"
)

var helpvar bool
var outvar string
var pkgvar string
var namevar string
var binvar bool

const usage = "gonandio-prog [-out outfile] [-pkg name] [-name name] filename"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.StringVar(
		&pkgvar, "pkg", "firmware",
		"Package name of the generated Go source",
	)
	flag.StringVar(
		&namevar, "name", "nandioProgram",
		"Variable name of the generated instruction array",
	)
	flag.BoolVar(
		&binvar, "bin", false,
		"Re-emits the validated binary image instead of Go source",
	)
	flag.Parse()
}

func gonandio_prog() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	logger := log.NewWithConfig(log.DefaultConfig())

	args := flag.Args()

	var input io.Reader

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin

		if outvar == "" {
			outvar = "out.go"
		}
	} else {
		if len(args) != 1 {
			fmt.Println(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			logger.Error("opening image failed", err)
			return 1
		}

		defer file.Close()

		input = file

		if outvar == "" {
			filename := filepath.Base(args[0])
			ext := ".go"

			if binvar {
				ext = ".out.bin"
			}

			outvar = strings.ReplaceAll(
				filename, filepath.Ext(filename), ext,
			)
		}
	}

	result, err := program.Load(input)

	if err != nil {
		logger.Error("loading image failed", err)
		return 1
	}

	logger.Info(
		"image loaded",
		log.String("slots", fmt.Sprintf("%d/%d", len(result), program.MAX_SLOTS)),
	)

	var output []byte

	if binvar {
		var buf bytes.Buffer

		if err := result.Write(&buf); err != nil {
			logger.Error("encoding image failed", err)
			return 1
		}

		output = buf.Bytes()
	} else {
		output = result.GoSource(pkgvar, namevar)
	}

	if err := os.WriteFile(outvar, output, 0666); err != nil {
		logger.Error("writing output file failed", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(gonandio_prog())
}
