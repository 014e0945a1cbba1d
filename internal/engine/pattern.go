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
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
)

// PatternError is returned by Compile when a pattern cannot be turned
// into any backend.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Reason)
}

// Reason values a PatternError carries; callers distinguish them by
// comparing the Reason field (PatternError has no Is method).
const (
	ReasonInvalidRegex   = "invalid regex"
	ReasonInvalidPattern = "invalid pattern"
)

// backendKind tags which implementation a CompiledPattern holds.
type backendKind int

const (
	backendLiteral backendKind = iota
	backendMultiLiteral
	backendRegex
)

// Match is a single match span, byte offsets into the scanned content.
type Match struct {
	Start int
	End   int
}

// LineMatch is a Match resolved to its 1-based line number and the full
// text of that line.
type LineMatch struct {
	Line        int
	Text        string
	ByteOffset  int
	LineContent string
}

// CompiledPattern is a tagged union over the three matcher backends. The
// backend is owned by the union, not shared across calls. The Regex
// backend's *regexp.Regexp is compiled once per Compile call and is safe
// for concurrent use by multiple goroutines (per the regexp package's own
// contract); two Compile calls on the same source compile it twice.
type CompiledPattern struct {
	source string
	kind   backendKind

	literal string
	multi   *ahocorasick.Trie
	re      *regexp.Regexp
}

// metacharacters that disqualify a pattern from the Literal backend.
const metachars = `\.*+?()[]{}^$|`

func isPureLiteral(s string) bool {
	return !strings.ContainsAny(s, metachars)
}

// Compile selects the cheapest backend able to represent pattern.
//
//   - Literal: no regex metacharacters at all.
//   - MultiLiteral: pattern is "lit1|lit2|..." and every branch is a pure
//     literal.
//   - Regex: everything else.
func Compile(pattern string) (*CompiledPattern, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Reason: ReasonInvalidPattern}
	}
	if isPureLiteral(pattern) {
		return &CompiledPattern{source: pattern, kind: backendLiteral, literal: pattern}, nil
	}
	if branches, ok := splitPureLiteralAlternation(pattern); ok {
		trie := ahocorasick.NewTrieBuilder().AddStrings(branches).Build()
		return &CompiledPattern{source: pattern, kind: backendMultiLiteral, multi: trie}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Reason: ReasonInvalidRegex}
	}
	return &CompiledPattern{source: pattern, kind: backendRegex, re: re}, nil
}

// splitPureLiteralAlternation reports whether pattern is a bare
// alternation of pure literals ("lit1|lit2|...") with no other regex
// metacharacters, returning the branches if so.
func splitPureLiteralAlternation(pattern string) ([]string, bool) {
	if !strings.Contains(pattern, "|") {
		return nil, false
	}
	parts := strings.Split(pattern, "|")
	if len(parts) < 2 {
		return nil, false
	}
	for _, p := range parts {
		if p == "" || !isPureLiteral(p) {
			return nil, false
		}
	}
	return parts, true
}

// Source returns the original pattern string.
func (c *CompiledPattern) Source() string { return c.source }

// FindAll returns every non-overlapping match in content, in left-to-right
// order, as byte offsets.
func (c *CompiledPattern) FindAll(content []byte) []Match {
	switch c.kind {
	case backendLiteral:
		return findAllLiteral(content, c.literal)
	case backendMultiLiteral:
		return findAllMultiLiteral(content, c.multi)
	case backendRegex:
		idx := c.re.FindAllIndex(content, -1)
		out := make([]Match, len(idx))
		for i, pair := range idx {
			out[i] = Match{Start: pair[0], End: pair[1]}
		}
		return out
	default:
		return nil
	}
}

func findAllLiteral(content []byte, lit string) []Match {
	if lit == "" {
		return nil
	}
	var out []Match
	off := 0
	b := []byte(lit)
	for {
		i := bytes.Index(content[off:], b)
		if i < 0 {
			break
		}
		start := off + i
		out = append(out, Match{Start: start, End: start + len(b)})
		off = start + len(b)
	}
	return out
}

// findAllMultiLiteral reduces the automaton's full (overlapping) hit set
// to the leftmost-first non-overlapping matches a regex alternation of
// the same branches would produce: earliest start wins, ties broken by
// branch order.
func findAllMultiLiteral(content []byte, trie *ahocorasick.Trie) []Match {
	hits := trie.Match(content)
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Pos() != hits[j].Pos() {
			return hits[i].Pos() < hits[j].Pos()
		}
		return hits[i].Pattern() < hits[j].Pattern()
	})
	var out []Match
	next := 0
	for _, h := range hits {
		start := int(h.Pos())
		if start < next {
			continue
		}
		end := start + len(h.Match())
		out = append(out, Match{Start: start, End: end})
		next = end
	}
	return out
}

// FindAllWithLines is FindAll followed by line resolution, aggregating
// every match before scanning the content once for newlines so the
// newline count is paid once per call, not once per match.
func (c *CompiledPattern) FindAllWithLines(content []byte) []LineMatch {
	matches := c.FindAll(content)
	if len(matches) == 0 {
		return nil
	}
	return resolveLines(content, matches)
}

// resolveLines walks content once to record every line's start offset,
// then resolves each match (assumed sorted by Start, true of every
// backend's output) against that table with a linear merge pass.
func resolveLines(content []byte, matches []Match) []LineMatch {
	lineStarts := []int{0}
	for i, b := range content {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	out := make([]LineMatch, len(matches))
	line := 0
	for i, m := range matches {
		for line+1 < len(lineStarts) && lineStarts[line+1] <= m.Start {
			line++
		}
		lineEnd := len(content)
		if line+1 < len(lineStarts) {
			lineEnd = lineStarts[line+1] - 1
		}
		out[i] = LineMatch{
			Line:        line + 1,
			Text:        string(content[m.Start:m.End]),
			ByteOffset:  m.Start,
			LineContent: string(content[lineStarts[line]:lineEnd]),
		}
	}
	return out
}
