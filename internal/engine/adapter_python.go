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

package engine

import (
	"regexp"
	"strings"
)

// PythonAdapter classifies Python sources and parses noqa/type/pylint/
// pragma suppress directives.
type PythonAdapter struct {
	test   globSet
	source globSet
}

// NewPythonAdapter builds the adapter with default plus user-extended
// globs.
func NewPythonAdapter(extraTest, extraSource []string) *PythonAdapter {
	test := append([]string{"**/test_*.py", "**/*_test.py", "**/tests/**/*.py"}, extraTest...)
	source := append([]string{"**/*.py"}, extraSource...)
	return &PythonAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *PythonAdapter) Name() string         { return "python" }
func (a *PythonAdapter) Extensions() []string { return []string{".py"} }
func (a *PythonAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *PythonAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "bare-except", Pattern: `except\s*:`, Action: Forbid, Advice: "catch a specific exception type"},
		{Name: "eval", Pattern: `\beval\(`, Action: Forbid, Advice: "avoid eval(); parse input explicitly"},
		{Name: "print", Pattern: `\bprint\(`, Action: Count, Threshold: 0, Advice: "use the logging module instead of print"},
	}
}

var (
	reNoqa       = regexp.MustCompile(`#\s*noqa(?::\s*([A-Z0-9, ]+))?`)
	reTypeIgnore = regexp.MustCompile(`#\s*type:\s*ignore(?:\[([a-zA-Z0-9_-]+)\])?`)
	rePylint     = regexp.MustCompile(`#\s*pylint:\s*disable=([a-zA-Z0-9_, -]+)`)
	rePragmaCov  = regexp.MustCompile(`#\s*pragma:\s*no\s*cover`)
)

func (a *PythonAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	style := StyleForExtension(".py")
	just := func(line int) bool {
		return requiredComment == "" || HasJustificationComment(content, line, requiredComment, style)
	}
	for i, line := range lines {
		if m := reNoqa.FindStringSubmatch(line); m != nil {
			var codes []string
			if m[1] != "" {
				codes = splitAndTrim(m[1], ",")
			}
			out = append(out, Suppress{Line: i + 1, Kind: "noqa", Codes: codes, HasJustification: just(i + 1), CommentText: strings.TrimSpace(line)})
		}
		if m := reTypeIgnore.FindStringSubmatch(line); m != nil {
			var codes []string
			if m[1] != "" {
				codes = []string{m[1]}
			}
			out = append(out, Suppress{Line: i + 1, Kind: "type-ignore", Codes: codes, HasJustification: just(i + 1), CommentText: strings.TrimSpace(line)})
		}
		if m := rePylint.FindStringSubmatch(line); m != nil {
			out = append(out, Suppress{Line: i + 1, Kind: "pylint-disable", Codes: splitAndTrim(m[1], ","), HasJustification: just(i + 1), CommentText: strings.TrimSpace(line)})
		}
		if rePragmaCov.MatchString(line) {
			out = append(out, Suppress{Line: i + 1, Kind: "pragma-no-cover", HasJustification: true, CommentText: strings.TrimSpace(line)})
		}
	}
	return out
}
