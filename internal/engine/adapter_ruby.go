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

// RubyAdapter classifies Ruby sources and parses rubocop/standard
// suppress directives.
type RubyAdapter struct {
	test   globSet
	source globSet
}

// NewRubyAdapter builds the adapter with default plus user-extended
// globs.
func NewRubyAdapter(extraTest, extraSource []string) *RubyAdapter {
	test := append([]string{"**/*_spec.rb", "**/spec/**/*.rb", "**/test/**/*.rb"}, extraTest...)
	source := append([]string{"**/*.rb"}, extraSource...)
	return &RubyAdapter{test: newGlobSet(test), source: newGlobSet(source)}
}

func (a *RubyAdapter) Name() string         { return "ruby" }
func (a *RubyAdapter) Extensions() []string { return []string{".rb"} }
func (a *RubyAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *RubyAdapter) DefaultEscapePatterns() []EscapePattern {
	return []EscapePattern{
		{Name: "send", Pattern: `\.send\(`, Action: Count, Threshold: 5, Advice: "prefer public_send or an explicit method call"},
		{Name: "binding-pry", Pattern: `binding\.pry`, Action: Forbid, Advice: "remove binding.pry debugger breakpoint"},
	}
}

var (
	reRubocopDisable  = regexp.MustCompile(`#\s*rubocop:disable\s+([A-Za-z0-9/_, ]+)`)
	reStandardDisable = regexp.MustCompile(`#\s*standard:disable\s+([A-Za-z0-9/_, ]+)`)
	reRubyTodo        = regexp.MustCompile(`:todo\b`)
)

func (a *RubyAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	var out []Suppress
	lines := splitLinesKeepEmpty(content)
	style := StyleForExtension(".rb")
	just := func(line int) bool {
		return requiredComment == "" || HasJustificationComment(content, line, requiredComment, style)
	}
	for i, line := range lines {
		if m := reRubocopDisable.FindStringSubmatch(line); m != nil {
			kind := SuppressKind("rubocop-disable")
			if reRubyTodo.MatchString(line) {
				kind = "rubocop-disable-todo"
			}
			out = append(out, Suppress{Line: i + 1, Kind: kind, Codes: splitAndTrim(m[1], ","), HasJustification: just(i + 1), CommentText: strings.TrimSpace(line)})
		}
		if m := reStandardDisable.FindStringSubmatch(line); m != nil {
			out = append(out, Suppress{Line: i + 1, Kind: "standard-disable", Codes: splitAndTrim(m[1], ","), HasJustification: just(i + 1), CommentText: strings.TrimSpace(line)})
		}
	}
	return out
}
