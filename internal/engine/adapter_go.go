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

import "strings"

// GoAdapter classifies Go sources. Go has no native per-line suppress
// directive comparable to #[allow] or # noqa (the convention is
// //nolint, supported by a third-party linter, not the language), so
// ParseSuppresses recognizes that one community convention plus
// //go:build-style directives are left to IsMatchInComment's special
// case.
type GoAdapter struct {
	test   globSet
	source globSet
}

// NewGoAdapter builds the adapter with default plus user-extended globs.
func NewGoAdapter(extraTest, extraSource []string) *GoAdapter {
	test := append([]string{"**/*_test.go"}, extraTest...)
	source := append([]string{"**/*.go"}, extraSource...)
	return &GoAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *GoAdapter) Name() string         { return "golang" }
func (a *GoAdapter) Extensions() []string { return []string{".go"} }
func (a *GoAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *GoAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "panic", Pattern: `\bpanic\(`, Action: Count, Threshold: 10, Advice: "prefer returning an error over panic"},
		{Name: "goroutine-leak", Pattern: `\bgo func\(\)`, Action: Count, Threshold: 0, Advice: "make sure spawned goroutines are bounded and can exit"},
		{Name: "os-exit", Pattern: `\bos\.Exit\(`, Action: Forbid, Advice: "do not call os.Exit outside of main"},
	}
}

var nolintPrefix = "//nolint"

func (a *GoAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		idx := strings.Index(trimmed, nolintPrefix)
		if idx < 0 {
			continue
		}
		rest := trimmed[idx+len(nolintPrefix):]
		var codes []string
		if strings.HasPrefix(rest, ":") {
			codes = splitAndTrim(rest[1:], ",")
		}
		out = append(out, Suppress{
			Line:             i + 1,
			Kind:             "nolint",
			Codes:            codes,
			HasJustification: requiredComment == "" || HasJustificationComment(content, i+1, requiredComment, StyleForExtension(".go")),
			CommentText:      trimmed,
		})
	}
	return out
}
