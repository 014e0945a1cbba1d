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

// JSAdapter classifies JavaScript/TypeScript sources and parses
// eslint/biome suppress directives.
type JSAdapter struct {
	test   globSet
	source globSet
}

// NewJSAdapter builds the adapter with default plus user-extended globs.
func NewJSAdapter(extraTest, extraSource []string) *JSAdapter {
	test := append([]string{"**/*.test.js", "**/*.test.ts", "**/*.spec.js", "**/*.spec.ts", "**/__tests__/**"}, extraTest...)
	source := append([]string{"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx"}, extraSource...)
	return &JSAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *JSAdapter) Name() string         { return "javascript" }
func (a *JSAdapter) Extensions() []string { return []string{".js", ".jsx", ".ts", ".tsx"} }
func (a *JSAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *JSAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "any-type", Pattern: `:\s*any\b`, Action: Count, Threshold: 10, Advice: "avoid the any type; prefer unknown or a concrete type"},
		{Name: "console-log", Pattern: `console\.log\(`, Action: Count, Threshold: 0, Advice: "remove console.log from committed code"},
		{Name: "debugger", Pattern: `\bdebugger;`, Action: Forbid, Advice: "remove debugger statement"},
	}
}

var (
	reESLintDisableNextLine = regexp.MustCompile(`//\s*eslint-disable-next-line\b(.*)`)
	reESLintDisableBlock    = regexp.MustCompile(`/\*\s*eslint-disable\b(.*?)\*/`)
	reBiomeIgnore           = regexp.MustCompile(`//\s*biome-ignore\s+([^:]+):\s*(.*)`)
)

func (a *JSAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	style := StyleForExtension(".js")
	for i, line := range lines {
		switch {
		case reESLintDisableNextLine.MatchString(line):
			m := reESLintDisableNextLine.FindStringSubmatch(line)
			codes := splitAndTrim(m[1], ",")
			out = append(out, Suppress{
				Line: i + 1, Kind: "eslint-disable-next-line", Codes: codes,
				HasJustification: requiredComment == "" || HasJustificationComment(content, i+1, requiredComment, style),
				CommentText:      strings.TrimSpace(line),
			})
		case reESLintDisableBlock.MatchString(line):
			m := reESLintDisableBlock.FindStringSubmatch(line)
			codes := splitAndTrim(m[1], ",")
			out = append(out, Suppress{Line: i + 1, Kind: "eslint-disable", Codes: codes, CommentText: strings.TrimSpace(line)})
		case reBiomeIgnore.MatchString(line):
			m := reBiomeIgnore.FindStringSubmatch(line)
			out = append(out, Suppress{
				Line: i + 1, Kind: "biome-ignore", Codes: splitAndTrim(m[1], ","),
				HasJustification: strings.TrimSpace(m[2]) != "",
				CommentText:      strings.TrimSpace(m[2]),
			})
		}
	}
	return out
}
