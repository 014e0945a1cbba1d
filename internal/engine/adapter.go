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
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Classification is the adapter's verdict for a path.
type Classification int

// Valid Classification values.
const (
	Other Classification = iota
	Source
	Test
)

func (c Classification) String() string {
	switch c {
	case Source:
		return "source"
	case Test:
		return "test"
	default:
		return "other"
	}
}

// EscapePatternAction controls what an EscapePattern match does.
type EscapePatternAction int

// Valid EscapePatternAction values.
const (
	Forbid EscapePatternAction = iota
	Comment
	Count
)

// EscapePattern is a configured substring/regex whose matches are to be
// forbidden, counted, or required to carry a justifying comment.
type EscapePattern struct {
	Name      string
	Pattern   string
	Action    EscapePatternAction
	Comment   string
	Threshold int
	Advice    string
}

// SuppressKind distinguishes the native forms a suppress directive can
// take; adapters use it only for documentation/debugging, matching
// semantics never depend on it beyond parsing.
type SuppressKind string

// Suppress is a parsed language-native suppress directive.
type Suppress struct {
	Line             int
	Kind             SuppressKind
	Codes            []string
	HasJustification bool
	CommentText      string
}

// Adapter classifies paths, knows its language's escape-pattern defaults,
// and parses that language's suppress-directive syntax.
//
// Glob sets are built once when the adapter is built and reused for every
// Classify call; they hold the pattern strings, which are not compiled
// ahead of time and are parsed again by doublestar on each match.
type Adapter interface {
	Name() string
	Extensions() []string
	Classify(relPath string) Classification
	DefaultEscapePatterns() []EscapePattern
	ParseSuppresses(content string, requiredComment string) []Suppress
}

// nestedArtifactDirs are classified Other regardless of extension, so
// vendored and generated trees never count as project code.
var nestedArtifactDirs = []string{
	"vendor/", "node_modules/", ".venv/", "venv/", "target/", "tmp/",
	"dist/", "build/", "coverage/", ".git/", "__pycache__/",
}

func isNestedArtifact(relPath string) bool {
	p := relPath
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for _, d := range nestedArtifactDirs {
		if strings.Contains(p, "/"+d) {
			return true
		}
	}
	return false
}

// globSet is a set of doublestar pattern strings (empty ones dropped),
// shared by every concrete adapter's source/test/ignore classification.
// Patterns are not compiled; doublestar.Match parses them on each call.
type globSet struct {
	patterns []string
}

func newGlobSet(patterns []string) globSet {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			out = append(out, p)
		}
	}
	return globSet{patterns: out}
}

// match reports whether relPath (POSIX-slashed, no leading "./") matches
// any pattern in the set.
func (g globSet) match(relPath string) bool {
	clean := path.Clean(relPath)
	for _, p := range g.patterns {
		if ok, _ := doublestar.Match(p, clean); ok {
			return true
		}
		// Also allow bare basename patterns like "*.rs" to match at any
		// depth, which is the common case for per-language default globs.
		if ok, _ := doublestar.Match("**/"+p, clean); ok {
			return true
		}
	}
	return false
}

// classifyByGlobs applies the classification precedence: test before
// source.
func classifyByGlobs(relPath string, test, source globSet) Classification {
	if isNestedArtifact(relPath) {
		return Other
	}
	if test.match(relPath) {
		return Test
	}
	if source.match(relPath) {
		return Source
	}
	return Other
}

// Registry is a read-only-after-construction set of language adapters,
// built once at process startup.
type Registry struct {
	adapters []Adapter
	byExt    map[string]Adapter
}

// NewRegistry builds a registry over the given adapters, in order; when
// two adapters claim the same extension, the first one keeps it.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byExt: map[string]Adapter{}}
	for _, a := range adapters {
		r.adapters = append(r.adapters, a)
		for _, ext := range a.Extensions() {
			if _, ok := r.byExt[ext]; !ok {
				r.byExt[ext] = a
			}
		}
	}
	return r
}

// For returns the adapter responsible for relPath's extension, or nil if
// none claims it.
func (r *Registry) For(relPath string) Adapter {
	ext := path.Ext(relPath)
	return r.byExt[ext]
}

// All returns every registered adapter, in registration order.
func (r *Registry) All() []Adapter {
	return r.adapters
}
