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

package cli

import (
	"os"

	flag "github.com/spf13/pflag"

	"go.quench.dev/quench/internal/reporting"
)

// commandBase holds the output and environment flags of the check
// subcommand; report declares its own flags.
type commandBase struct {
	cwd     string
	output  string
	color   string
	noColor bool
	verbose bool
}

func (c *commandBase) SetFlags(f *flag.FlagSet) {
	f.StringVarP(&c.cwd, "cwd", "C", ".", "directory to treat as the project root")
	f.StringVar(&c.output, "output", "text", "output format: text or json")
	f.StringVar(&c.color, "color", "auto", "color mode: auto, always, or never")
	f.BoolVar(&c.noColor, "no-color", false, "disable color output regardless of --color")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "log diagnostic detail to stderr")
}

func (c *commandBase) colorMode() reporting.ColorMode {
	switch c.color {
	case string(reporting.ColorAlways):
		return reporting.ColorAlways
	case string(reporting.ColorNever):
		return reporting.ColorNever
	default:
		return reporting.ColorAuto
	}
}

func (c *commandBase) shouldColor() bool {
	return reporting.ShouldColor(c.colorMode(), c.noColor, os.Stdout)
}
