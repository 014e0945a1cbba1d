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

package reporting

import (
	"fmt"
	"io"

	"go.quench.dev/quench/internal/engine"
)

// TextOptions configures WriteText.
type TextOptions struct {
	Color bool
	// Limit truncates the number of violations rendered across the
	// whole report; 0 means unlimited. This is independent from the
	// runner's own limit, which stops checks from starting at all.
	Limit int
}

// WriteText renders output in the plain-text format: silent on pass,
// "<name>: FAIL" per failing check followed by each violation.
func WriteText(w io.Writer, output engine.CheckOutput, opts TextOptions) error {
	if output.Passed {
		return nil
	}
	shown := 0
	truncated := false
	for _, check := range output.Checks {
		if check.Skipped {
			suffix := ""
			if check.Error != "" {
				suffix = fmt.Sprintf(" (%s)", check.Error)
			}
			if err := writeLine(w, "%s: %s%s\n", styleBold(opts.Color, check.Name), styleColor(opts.Color, fgYellow, "SKIP"), suffix); err != nil {
				return err
			}
			continue
		}
		if check.Stub || check.Passed {
			continue
		}
		if err := writeLine(w, "%s: %s\n", styleBold(opts.Color, check.Name), styleColor(opts.Color, fgRed, "FAIL")); err != nil {
			return err
		}
		for _, v := range check.Violations {
			if opts.Limit > 0 && shown >= opts.Limit {
				truncated = true
				break
			}
			if err := writeViolation(w, v, opts); err != nil {
				return err
			}
			shown++
		}
		if truncated {
			break
		}
	}
	if truncated {
		_, err := fmt.Fprintf(w, "Stopped after %d violations. Use --no-limit to see all.\n", shown)
		return err
	}
	return nil
}

func writeViolation(w io.Writer, v engine.Violation, opts TextOptions) error {
	loc := styleColor(opts.Color, fgCyan, v.File)
	line := styleColor(opts.Color, fgYellow, fmt.Sprintf("%d", v.Line))
	detail := v.ViolationType
	if v.Value != nil && v.Threshold != nil {
		detail = fmt.Sprintf("%s (%d vs %d)", detail, *v.Value, *v.Threshold)
	}
	if v.Pattern != "" {
		detail = fmt.Sprintf("%s: %s", detail, v.Pattern)
	}
	if err := writeLine(w, "  %s:%s: %s\n", loc, line, detail); err != nil {
		return err
	}
	if v.Advice != "" {
		return writeLine(w, "    %s\n", v.Advice)
	}
	return nil
}

func writeLine(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func styleBold(color bool, s string) string {
	if !color {
		return s
	}
	return bold.String() + s + reset.String()
}

func styleColor(color bool, c ansiCode, s string) string {
	if !color {
		return s
	}
	return c.String() + s + reset.String()
}
