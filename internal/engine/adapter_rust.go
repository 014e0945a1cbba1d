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

// RustAdapter classifies Rust sources and parses #[allow]/#[expect]
// directives.
type RustAdapter struct {
	test   globSet
	source globSet
}

// NewRustAdapter builds the adapter with default plus user-extended
// source/test globs.
func NewRustAdapter(extraTest, extraSource []string) *RustAdapter {
	test := append([]string{"**/tests/**/*.rs", "**/*_test.rs"}, extraTest...)
	source := append([]string{"**/*.rs"}, extraSource...)
	return &RustAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *RustAdapter) Name() string          { return "rust" }
func (a *RustAdapter) Extensions() []string  { return []string{".rs"} }
func (a *RustAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *RustAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "unwrap", Pattern: `\.unwrap\(\)`, Action: Comment, Comment: "// SAFETY:", Advice: "justify .unwrap() with a // SAFETY: comment or handle the error"},
		{Name: "expect", Pattern: `\.expect\(`, Action: Comment, Comment: "// SAFETY:", Advice: "justify .expect() with a // SAFETY: comment"},
		{Name: "unsafe", Pattern: `\bunsafe\b`, Action: Count, Threshold: 0, Advice: "minimize unsafe blocks"},
		{Name: "panic", Pattern: `\bpanic!\(`, Action: Count, Threshold: 5, Advice: "prefer returning Result over panic!"},
	}
}

var (
	reRustAllow = regexp.MustCompile(`#!?\[\s*(allow|expect)\s*\(([^)]*)\)\s*\]`)
)

func (a *RustAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	for i, line := range lines {
		m := reRustAllow.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		kind := line[m[2]:m[3]]
		codesRaw := line[m[4]:m[5]]
		codes := splitAndTrim(codesRaw, ",")
		out = append(out, Suppress{
			Line:             i + 1,
			Kind:             SuppressKind(kind),
			Codes:            codes,
			HasJustification: requiredComment == "" || HasJustificationComment(content, i+1, requiredComment, StyleForExtension(".rs")),
			CommentText:      strings.TrimSpace(line),
		})
	}
	return out
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
