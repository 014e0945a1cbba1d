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

	"go.quench.dev/quench/internal/engine"
)

const suppressCheckName = "suppress"

// SuppressCheck enforces each language's `<lang>.suppress` policy over
// the suppress directives its adapter parses: "forbid" rejects every
// directive, "comment" requires the configured justification prefix,
// "allow" disables the check for that language. A directive whose code
// appears in the scope's allow list is always permitted; one in the
// forbid list is always rejected.
type SuppressCheck struct{}

// NewSuppressCheck builds the suppress-directive policy check.
func NewSuppressCheck() *SuppressCheck { return &SuppressCheck{} }

func (c *SuppressCheck) Name() string { return suppressCheckName }

func (c *SuppressCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	var violations []engine.Violation
	for _, f := range ctx.Files {
		if ctx.ShouldTerminate() {
			break
		}
		if !ctx.InScope(f.Path) {
			continue
		}
		adapter := ctx.Registry.For(f.Path)
		if adapter == nil {
			continue
		}
		class := adapter.Classify(f.Path)
		if class == engine.Other {
			continue
		}
		lc := ctx.Config.Lang(adapter.Name())
		if lc == nil || lc.Suppress.Check == "allow" || lc.Suppress.Check == "" {
			continue
		}
		scope := lc.Suppress.Source
		if class == engine.Test {
			scope = lc.Suppress.Test
		}

		key := f.CacheKey()
		if ctx.Cache != nil {
			if cached, ok := ctx.Cache.GetCheck(f.Path, key, suppressCheckName); ok {
				for _, cv := range cached.Violations {
					violations = append(violations, cv.ToViolation(f.Path))
				}
				continue
			}
		}

		content, err := os.ReadFile(filepath.Join(ctx.Root, f.Path))
		if err != nil {
			continue
		}
		fileViolations := checkSuppresses(f.Path, adapter.ParseSuppresses(string(content), lc.Suppress.Comment), lc.Suppress.Check, scope)

		if ctx.Cache != nil {
			cached := make([]engine.CachedViolation, len(fileViolations))
			for i, v := range fileViolations {
				cached[i] = v.ToCached()
			}
			ctx.Cache.PutCheck(f.Path, key, engine.CachedFileResult{CheckName: suppressCheckName, Violations: cached})
		}
		violations = append(violations, fileViolations...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Line < violations[j].Line
	})
	return engine.Failed(suppressCheckName, violations)
}

func checkSuppresses(path string, suppresses []engine.Suppress, mode string, scope engine.SuppressScope) []engine.Violation {
	var out []engine.Violation
	for _, s := range suppresses {
		if anyCodeListed(s.Codes, scope.Allow) {
			continue
		}
		forbidden := anyCodeListed(s.Codes, scope.Forbid)
		switch {
		case forbidden || mode == "forbid":
			out = append(out, engine.Violation{
				File:          path,
				Line:          s.Line,
				ViolationType: "suppress_forbidden",
				Pattern:       string(s.Kind),
				Advice:        "fix the underlying diagnostic instead of suppressing it",
			})
		case mode == "comment" && !s.HasJustification:
			out = append(out, engine.Violation{
				File:          path,
				Line:          s.Line,
				ViolationType: "suppress_missing_justification",
				Pattern:       string(s.Kind),
				Advice:        "add the required justification comment above the suppress directive",
			})
		}
	}
	return out
}

func anyCodeListed(codes, list []string) bool {
	if len(list) == 0 {
		return false
	}
	for _, code := range codes {
		for _, l := range list {
			if code == l {
				return true
			}
		}
	}
	return false
}
