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
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// reportCmd is the contract surface for rendering a stored baseline as a
// report. Quench's core does not persist a baseline (ratchet storage is
// out of scope), so this command parses its documented flags and reports
// what it cannot yet do, rather than silently no-opping.
type reportCmd struct {
	format  string
	compact bool
}

func (c *reportCmd) Name() string        { return "report" }
func (c *reportCmd) Description() string { return "render a stored baseline (not yet available)" }

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "output", "text", "report format: text, json, html, or markdown")
	f.BoolVar(&c.compact, "compact", false, "omit per-violation detail, printing only totals")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet) error {
	return usageError(fmt.Errorf("report: no baseline store is configured; run `quench check` directly"))
}
