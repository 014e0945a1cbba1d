// Copyright 2023 The Shac Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporting implements the streaming text and JSON formatters
// for a finished engine.CheckOutput, plus ANSI-aware environment
// detection.
package reporting

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ColorMode selects when to emit ANSI styling.
type ColorMode string

// Valid ColorMode values, matching the --color flag's contract.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ShouldColor resolves mode against the process environment: --no-color
// and NO_COLOR both force off regardless of mode; ColorAlways forces on;
// otherwise color is on iff out is a terminal.
func ShouldColor(mode ColorMode, noColorFlag bool, out *os.File) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	}
}

// Writer returns out wrapped so ANSI sequences render correctly on
// Windows consoles; on other platforms it's typically a no-op wrapper.
func Writer(out *os.File) io.Writer {
	return colorable.NewColorable(out)
}
