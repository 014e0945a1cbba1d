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

package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.quench.dev/quench/internal/engine"
)

const escapesCheckName = "escapes"

// compiledEscape is an EscapePatternConfig with its pattern compiled
// once up front and reused for every file.
type compiledEscape struct {
	name      string
	compiled  *engine.CompiledPattern
	action    engine.EscapePatternAction
	comment   string
	threshold int64
	advice    string

	// commentDirective marks patterns that are themselves spelled as a
	// comment (e.g. "// TODO"): their matches necessarily sit inside
	// comments, so the in-comment skip does not apply to them.
	commentDirective bool
}

// countAgg accumulates a Count-action pattern's hits across every file
// in the run, so a single aggregate violation can be emitted at the end.
type countAgg struct {
	total int64
}

// EscapesCheck enforces configured forbid/comment/count rules over
// source content.
type EscapesCheck struct{}

// NewEscapesCheck builds the pattern-based escape-hatch check.
func NewEscapesCheck() *EscapesCheck { return &EscapesCheck{} }

func (c *EscapesCheck) Name() string { return escapesCheckName }

func (c *EscapesCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	cfg := ctx.Config.Check.Escapes
	if cfg.Check == engine.CheckOff {
		return engine.Stubbed(escapesCheckName)
	}

	patterns, err := compileEscapes(cfg.Patterns)
	if err != nil {
		return engine.Skipped(escapesCheckName, err.Error())
	}

	counts := map[string]*countAgg{}
	var violations []engine.Violation

	for _, f := range ctx.Files {
		if ctx.ShouldTerminate() {
			break
		}
		if !ctx.InScope(f.Path) {
			continue
		}
		adapter := ctx.Registry.For(f.Path)
		if adapter == nil || adapter.Classify(f.Path) != engine.Source {
			continue
		}

		key := f.CacheKey()
		if ctx.Cache != nil {
			if cached, ok := ctx.Cache.GetCheck(f.Path, key, escapesCheckName); ok {
				for _, cv := range cached.Violations {
					violations = append(violations, cv.ToViolation(f.Path))
				}
				mergeCounts(counts, cached.Metrics)
				continue
			}
		}

		content, err := os.ReadFile(filepath.Join(ctx.Root, f.Path))
		if err != nil {
			continue
		}
		style := engine.StyleForExtension(filepath.Ext(f.Path))
		fileViolations, fileCounts := scanFile(f.Path, content, style, patterns)
		mergeCounts(counts, fileCounts)
		violations = append(violations, fileViolations...)

		if ctx.Cache != nil {
			cachedViolations := make([]engine.CachedViolation, len(fileViolations))
			for i, v := range fileViolations {
				cachedViolations[i] = v.ToCached()
			}
			ctx.Cache.PutCheck(f.Path, key, engine.CachedFileResult{
				CheckName:  escapesCheckName,
				Violations: cachedViolations,
				Metrics:    fileCounts,
			})
		}
	}

	for _, p := range patterns {
		if p.action != engine.Count {
			continue
		}
		agg := counts[p.name]
		if agg == nil || agg.total <= p.threshold {
			continue
		}
		violations = append(violations, engine.Violation{
			ViolationType: "count_threshold_exceeded",
			Value:         valuePtr(agg.total),
			Threshold:     valuePtr(p.threshold),
			Pattern:       p.name,
			Advice:        p.advice,
		})
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Pattern < violations[j].Pattern
	})

	result := engine.FromLevel(escapesCheckName, cfg.Check, violations)
	if len(counts) > 0 {
		totals := make(map[string]int64, len(counts))
		for name, agg := range counts {
			totals[name] = agg.total
		}
		result.Metrics = totals
	}
	return result
}

// scanFile applies every compiled pattern to one file's content,
// emitting at most one violation per (line, pattern): the first match
// wins. Count-action hits are returned as per-pattern totals for this
// file rather than folded into a shared accumulator, so the result is
// self-contained and cacheable.
func scanFile(path string, content []byte, style engine.CommentStyle, patterns []*compiledEscape) ([]engine.Violation, map[string]int64) {
	var out []engine.Violation
	counts := map[string]int64{}
	type dedupKey struct {
		line    int
		pattern string
	}
	seen := map[dedupKey]struct{}{}

	for _, p := range patterns {
		for _, m := range p.compiled.FindAllWithLines(content) {
			offset := offsetInLine(content, m)
			if !p.commentDirective && engine.IsMatchInComment(m.LineContent, offset) {
				continue
			}

			key := dedupKey{line: m.Line, pattern: p.name}
			if _, dup := seen[key]; dup {
				continue
			}

			switch p.action {
			case engine.Forbid:
				seen[key] = struct{}{}
				out = append(out, engine.Violation{
					File: path, Line: m.Line, ViolationType: "forbidden_pattern",
					Pattern: p.name, Advice: p.advice,
				})
			case engine.Comment:
				if p.comment != "" && engine.HasJustificationComment(string(content), m.Line, p.comment, style) {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, engine.Violation{
					File: path, Line: m.Line, ViolationType: "missing_justification",
					Pattern: p.name, Advice: p.advice,
				})
			case engine.Count:
				counts[p.name]++
			}
		}
	}
	if len(counts) == 0 {
		return out, nil
	}
	return out, counts
}

// mergeCounts folds per-file pattern counts (freshly scanned or
// replayed from the cache) into the run-wide aggregate.
func mergeCounts(counts map[string]*countAgg, fileCounts any) {
	m, ok := fileCounts.(map[string]int64)
	if !ok {
		return
	}
	for name, n := range m {
		agg, ok := counts[name]
		if !ok {
			agg = &countAgg{}
			counts[name] = agg
		}
		agg.total += n
	}
}

// offsetInLine recovers a match's byte offset within its own line by
// scanning backward from its absolute offset to the previous newline.
func offsetInLine(content []byte, m engine.LineMatch) int {
	start := m.ByteOffset
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	return m.ByteOffset - start
}

func compileEscapes(configs []engine.EscapePatternConfig) ([]*compiledEscape, error) {
	out := make([]*compiledEscape, 0, len(configs))
	for _, cfg := range configs {
		compiled, err := engine.Compile(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, &compiledEscape{
			name:             cfg.Name,
			compiled:         compiled,
			action:           actionFromString(cfg.Action),
			comment:          cfg.Comment,
			threshold:        cfg.Threshold,
			advice:           cfg.Advice,
			commentDirective: isCommentDirectivePattern(cfg.Pattern),
		})
	}
	return out, nil
}

// isCommentDirectivePattern reports whether the configured pattern text
// begins with a comment marker once regex escaping and anchors are
// stripped, so "// TODO" and `#\s*FIXME` both count.
func isCommentDirectivePattern(pattern string) bool {
	s := strings.TrimLeft(pattern, `^\`)
	for _, marker := range []string{"//", "/*", "#", "--", ";;"} {
		if strings.HasPrefix(s, marker) {
			return true
		}
	}
	return false
}

func actionFromString(s string) engine.EscapePatternAction {
	switch s {
	case "comment":
		return engine.Comment
	case "count":
		return engine.Count
	default:
		return engine.Forbid
	}
}

func valuePtr(v int64) *int64 { return &v }
