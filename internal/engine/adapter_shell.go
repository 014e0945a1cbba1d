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

// ShellAdapter classifies shell scripts and parses shellcheck suppress
// directives.
type ShellAdapter struct {
	test   globSet
	source globSet
}

// NewShellAdapter builds the adapter with default plus user-extended
// globs.
func NewShellAdapter(extraTest, extraSource []string) *ShellAdapter {
	test := append([]string{"**/*_test.sh", "**/test/**/*.sh"}, extraTest...)
	source := append([]string{"**/*.sh", "**/*.bash"}, extraSource...)
	return &ShellAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *ShellAdapter) Name() string         { return "shell" }
func (a *ShellAdapter) Extensions() []string { return []string{".sh", ".bash", ".zsh"} }
func (a *ShellAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *ShellAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "eval", Pattern: `\beval\b`, Action: Forbid, Advice: "avoid eval in shell scripts"},
		{Name: "unquoted-var", Pattern: `\$\{?[A-Za-z_][A-Za-z0-9_]*\}?[^"']`, Action: Count, Threshold: 20, Advice: "quote variable expansions"},
	}
}

var (
	reShellcheckDisable = regexp.MustCompile(`#\s*shellcheck\s+disable=([A-Za-z0-9,]+)`)
	reShellcheckSource  = regexp.MustCompile(`#\s*shellcheck\s+source=`)
	reShellcheckShell   = regexp.MustCompile(`#\s*shellcheck\s+shell=`)
)

func (a *ShellAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	style := StyleForExtension(".sh")
	for i, line := range lines {
		if reShellcheckSource.MatchString(line) || reShellcheckShell.MatchString(line) {
			continue
		}
		if m := reShellcheckDisable.FindStringSubmatch(line); m != nil {
			codes := splitAndTrim(m[1], ",")
			out = append(out, Suppress{
				Line: i + 1, Kind: "shellcheck-disable", Codes: codes,
				HasJustification: requiredComment == "" || HasJustificationComment(content, i+1, requiredComment, style),
				CommentText:      strings.TrimSpace(line),
			})
		}
	}
	return out
}
