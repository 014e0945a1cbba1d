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
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"go.quench.dev/quench/internal/engine"
)

const clocCheckName = "cloc"

// ClocCheck enforces per-file line-count limits, split between source
// and test thresholds, with an optional token budget.
type ClocCheck struct{}

// NewClocCheck builds the line-count limit check.
func NewClocCheck() *ClocCheck { return &ClocCheck{} }

func (c *ClocCheck) Name() string { return clocCheckName }

func (c *ClocCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	cfg := ctx.Config.Check.Cloc
	if cfg.Check == engine.CheckOff {
		return engine.Stubbed(clocCheckName)
	}

	var violations []engine.Violation
	var filesChecked, linesCounted int64
	for _, f := range ctx.Files {
		if ctx.ShouldTerminate() {
			break
		}
		if !ctx.InScope(f.Path) {
			continue
		}
		if matchesAny(cfg.Exclude, f.Path) {
			continue
		}

		key := f.CacheKey()
		if ctx.Cache != nil {
			if cached, ok := ctx.Cache.GetCheck(f.Path, key, clocCheckName); ok {
				for _, cv := range cached.Violations {
					violations = append(violations, cv.ToViolation(f.Path))
				}
				filesChecked++
				if m, ok := cached.Metrics.(map[string]int64); ok {
					linesCounted += m["lines"]
				}
				continue
			}
		}

		adapter := ctx.Registry.For(f.Path)
		if adapter == nil {
			continue
		}
		class := adapter.Classify(f.Path)
		if class == engine.Other {
			continue
		}

		content, err := os.ReadFile(filepath.Join(ctx.Root, f.Path))
		if err != nil {
			continue
		}
		isTest := class == engine.Test || matchesAny(cfg.TestPatterns, f.Path)

		limits := resolveClocLimits(cfg, ctx.Config.Lang(adapter.Name()))

		style := engine.StyleForExtension(filepath.Ext(f.Path))
		counts := engine.CountLines(string(content), style)

		total := int64(counts.Total())
		nonblank := int64(counts.Code + counts.Comment)
		measured := total
		if limits.metric == "nonblank" {
			measured = nonblank
		}

		limit := limits.maxLines
		advice := limits.advice
		if isTest {
			limit = limits.maxLinesTest
			advice = limits.adviceTest
		}

		var fileViolations []engine.Violation
		if limit > 0 && measured > limit {
			fileViolations = append(fileViolations, engine.Violation{
				File:          f.Path,
				ViolationType: "line_count_exceeded",
				Value:         int64Ptr(measured),
				Threshold:     int64Ptr(limit),
				Lines:         int64Ptr(total),
				Nonblank:      int64Ptr(nonblank),
				Advice:        advice,
			})
		}

		if limits.maxTokens.Set && !limits.maxTokens.Disabled {
			tokenEstimate := int64(utf8.RuneCount(content) / 4)
			if tokenEstimate > limits.maxTokens.Value {
				fileViolations = append(fileViolations, engine.Violation{
					File:          f.Path,
					ViolationType: "token_limit",
					Value:         int64Ptr(tokenEstimate),
					Threshold:     int64Ptr(limits.maxTokens.Value),
					Lines:         int64Ptr(total),
					Nonblank:      int64Ptr(nonblank),
					Advice:        advice,
				})
			}
		}

		filesChecked++
		linesCounted += total

		if ctx.Cache != nil {
			cached := make([]engine.CachedViolation, len(fileViolations))
			for i, v := range fileViolations {
				cached[i] = v.ToCached()
			}
			ctx.Cache.PutCheck(f.Path, key, engine.CachedFileResult{
				CheckName:  clocCheckName,
				Violations: cached,
				Metrics:    map[string]int64{"lines": total},
			})
		}
		violations = append(violations, fileViolations...)
	}

	sort.SliceStable(violations, func(i, j int) bool { return violations[i].File < violations[j].File })
	result := engine.FromLevel(clocCheckName, cfg.Check, violations)
	result.Metrics = map[string]int64{
		"files_checked": filesChecked,
		"total_lines":   linesCounted,
	}
	return result
}

// clocLimits is the fully-resolved limit set for one file, after the
// per-language cloc block (when present) has been laid over the global
// [check.cloc] values.
type clocLimits struct {
	maxLines     int64
	maxLinesTest int64
	maxTokens    engine.MaxTokens
	metric       string
	advice       string
	adviceTest   string
}

func resolveClocLimits(global engine.ClocConfig, lang *engine.LangConfig) clocLimits {
	limits := clocLimits{
		maxLines:     global.MaxLines,
		maxLinesTest: global.MaxLinesTest,
		maxTokens:    global.MaxTokens,
		metric:       global.Metric,
		advice:       global.Advice,
		adviceTest:   global.AdviceTest,
	}
	if lang == nil {
		return limits
	}
	o := lang.Cloc
	if o.MaxLines > 0 {
		limits.maxLines = o.MaxLines
	}
	if o.MaxLinesTest > 0 {
		limits.maxLinesTest = o.MaxLinesTest
	}
	if o.MaxTokens.Set {
		limits.maxTokens = o.MaxTokens
	}
	if o.Metric != "" {
		limits.metric = o.Metric
	}
	if o.Advice != "" {
		limits.advice = o.Advice
	}
	if o.AdviceTest != "" {
		limits.adviceTest = o.AdviceTest
	}
	return limits
}

func int64Ptr(v int64) *int64 {
	return &v
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
