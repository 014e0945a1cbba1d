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

// BlockPair is an (open, close) delimiter pair for block comments.
type BlockPair struct {
	Open  string
	Close string
}

// CommentStyle describes how a language's line- and block-comments are
// spelled, for classification purposes only (no AST parsing).
type CommentStyle struct {
	LinePrefixes []string
	BlockPairs   []BlockPair
}

// commentStyles is the per-extension table. Adding a language is adding
// a row.
var commentStyles = map[string]CommentStyle{
	".rs":   {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".go":   {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".c":    {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".h":    {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".cc":   {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".cpp":  {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".js":   {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".jsx":  {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".ts":   {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".tsx":  {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".java": {LinePrefixes: []string{"//"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".py":   {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".rb":   {LinePrefixes: []string{"#"}, BlockPairs: []BlockPair{{"=begin", "=end"}}},
	".sh":   {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".bash": {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".zsh":  {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".toml": {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".yaml": {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".yml":  {LinePrefixes: []string{"#"}, BlockPairs: nil},
	".sql":  {LinePrefixes: []string{"--"}, BlockPairs: []BlockPair{{"/*", "*/"}}},
	".lua":  {LinePrefixes: []string{"--"}, BlockPairs: []BlockPair{{"--[[", "]]"}}},
}

// defaultStyle is used for any extension not present in the table: a "//"
// line comment only, no block comments. This matches the most common
// C-family default and keeps classification total rather than partial.
var defaultStyle = CommentStyle{LinePrefixes: []string{"//"}}

// StyleForExtension returns the comment style for ext (including the
// leading dot), falling back to defaultStyle.
func StyleForExtension(ext string) CommentStyle {
	if s, ok := commentStyles[ext]; ok {
		return s
	}
	return defaultStyle
}

// LineCounts is the result of classifying every line of a file.
type LineCounts struct {
	Blank   int
	Comment int
	Code    int
}

// Total returns Blank + Comment + Code; the three buckets always sum to
// the file's line count.
func (l LineCounts) Total() int { return l.Blank + l.Comment + l.Code }

// CountLines classifies every line of content as blank, comment, or
// code in a single pass, tracking open block comments across lines.
func CountLines(content string, style CommentStyle) LineCounts {
	var counts LineCounts
	var inBlockClose string
	lines := splitLinesKeepEmpty(content)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			counts.Blank++
			continue
		}
		if inBlockClose != "" {
			idx := strings.Index(line, inBlockClose)
			if idx < 0 {
				counts.Comment++
				continue
			}
			rest := strings.TrimSpace(line[idx+len(inBlockClose):])
			inBlockClose = ""
			if rest == "" {
				counts.Comment++
			} else {
				counts.Code++
			}
			continue
		}
		if open, close, ok := matchBlockOpen(trimmed, style); ok {
			afterOpen := trimmed[len(open):]
			if closeIdx := strings.Index(afterOpen, close); closeIdx >= 0 {
				rest := strings.TrimSpace(afterOpen[closeIdx+len(close):])
				if rest == "" {
					counts.Comment++
				} else {
					counts.Code++
				}
				continue
			}
			counts.Comment++
			inBlockClose = close
			continue
		}
		if hasLinePrefix(trimmed, style.LinePrefixes) {
			counts.Comment++
			continue
		}
		counts.Code++
	}
	return counts
}

// splitLinesKeepEmpty splits content on "\n": a trailing newline does
// not create a phantom final line, but content with no trailing newline
// still counts its last line.
func splitLinesKeepEmpty(content string) []string {
	if content == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(content, "\n")
	return strings.Split(trimmed, "\n")
}

func matchBlockOpen(trimmed string, style CommentStyle) (open, close string, ok bool) {
	for _, bp := range style.BlockPairs {
		if strings.HasPrefix(trimmed, bp.Open) {
			return bp.Open, bp.Close, true
		}
	}
	return "", "", false
}

func hasLinePrefix(trimmed string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// commentPrefixesToStrip are tried in order, each longer marker ahead of
// any shorter marker it begins with, when stripping a comment marker off
// a line to compare against a justification pattern.
var commentPrefixesToStrip = []string{"///", "//!", "//", "/*", "#", "--", ";;", "*"}

// IsMatchInComment locates lineContent's first comment marker and reports
// whether offsetInLine is at or past it. "//go:" directives are treated
// as not-in-comment, matching Go build-directive semantics.
func IsMatchInComment(lineContent string, offsetInLine int) bool {
	if strings.HasPrefix(strings.TrimSpace(lineContent), "//go:") {
		return false
	}
	markerPos := firstCommentMarker(lineContent)
	if markerPos < 0 {
		return false
	}
	return offsetInLine >= markerPos
}

func firstCommentMarker(line string) int {
	best := -1
	for _, style := range commentStyles {
		for _, p := range style.LinePrefixes {
			if i := strings.Index(line, p); i >= 0 && (best < 0 || i < best) {
				best = i
			}
		}
		for _, bp := range style.BlockPairs {
			if i := strings.Index(line, bp.Open); i >= 0 && (best < 0 || i < best) {
				best = i
			}
		}
	}
	return best
}

// HasJustificationComment looks at the match line first for a trailing
// comment whose stripped content starts with pattern's stripped
// content, then walks preceding lines upward across blank and comment
// lines, stopping at the first non-blank non-comment line.
func HasJustificationComment(content string, matchLine int, pattern string, style CommentStyle) bool {
	lines := splitLinesKeepEmpty(content)
	if matchLine < 1 || matchLine > len(lines) {
		return false
	}
	wantPrefix := stripCommentPrefix(strings.TrimSpace(pattern))

	if trailing, ok := trailingComment(lines[matchLine-1]); ok {
		if strings.HasPrefix(stripCommentPrefix(trailing), wantPrefix) {
			return true
		}
	}

	for i := matchLine - 2; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if isWholeLineComment(trimmed, style) {
			if strings.HasPrefix(stripCommentPrefix(trimmed), wantPrefix) {
				return true
			}
			continue
		}
		break
	}
	return false
}

// trailingComment extracts a same-line trailing comment, if any.
func trailingComment(line string) (string, bool) {
	pos := firstCommentMarker(line)
	if pos < 0 {
		return "", false
	}
	return strings.TrimSpace(line[pos:]), true
}

func isWholeLineComment(trimmed string, style CommentStyle) bool {
	if hasLinePrefix(trimmed, style.LinePrefixes) {
		return true
	}
	if _, _, ok := matchBlockOpen(trimmed, style); ok {
		return true
	}
	for _, p := range commentPrefixesToStrip {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// stripCommentPrefix removes the first comment marker this content
// starts with, so "// SAFETY: x" and "# SAFETY: x" both compare as
// "SAFETY: x" against a configured justification prefix.
func stripCommentPrefix(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range commentPrefixesToStrip {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}
