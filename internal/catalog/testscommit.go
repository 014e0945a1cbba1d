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
	"regexp"
	"sort"

	"go.quench.dev/quench/internal/engine"
)

const testsCommitCheckName = "tests_commit"

// placeholderPatterns flag the most common "test written to satisfy the
// check, not to test anything" idioms. Kept small and language-neutral:
// the check fires on textual content, not on AST shape.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bt\.Skip\(`),
	regexp.MustCompile(`(?i)\bassert\.True\(t?,?\s*true\)`),
	regexp.MustCompile(`(?i)\btodo:?\s*(write|add)\s+test`),
	regexp.MustCompile(`(?i)\bit\.skip\(`),
	regexp.MustCompile(`(?i)\bxit\(`),
}

// TestsCommitCheck enforces that a commit touching source files also
// touches a corresponding test file, per `check.tests.commit`.
type TestsCommitCheck struct{}

// NewTestsCommitCheck builds the check.
func NewTestsCommitCheck() *TestsCommitCheck { return &TestsCommitCheck{} }

func (c *TestsCommitCheck) Name() string { return testsCommitCheckName }

func (c *TestsCommitCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	cfg := ctx.Config.Check.Tests.Commit
	if cfg.Check == engine.CheckOff {
		return engine.Stubbed(testsCommitCheckName)
	}
	// Commit scope has nothing to correlate without a diff; branch scope
	// can still sweep the whole tree's test files for placeholders.
	if ctx.ChangedFiles == nil && cfg.Scope != "branch" {
		return engine.Stubbed(testsCommitCheckName)
	}

	var changedSource, changedTest []string
	for f := range ctx.ChangedFiles {
		if matchesAny(cfg.Exclude, f) {
			continue
		}
		adapter := ctx.Registry.For(f)
		switch {
		case adapter != nil && adapter.Classify(f) == engine.Test:
			changedTest = append(changedTest, f)
		case matchesAny(cfg.TestPatterns, f):
			changedTest = append(changedTest, f)
		case adapter != nil && adapter.Classify(f) == engine.Source:
			changedSource = append(changedSource, f)
		case matchesAny(cfg.SourcePatterns, f):
			changedSource = append(changedSource, f)
		}
	}
	sort.Strings(changedSource)
	sort.Strings(changedTest)

	var violations []engine.Violation
	if ctx.ChangedFiles != nil && len(changedSource) > 0 && len(changedTest) == 0 {
		for _, f := range changedSource {
			violations = append(violations, engine.Violation{
				File:          f,
				ViolationType: "missing_test_in_commit",
				Advice:        "add or update a test alongside this source change",
			})
		}
	}

	if cfg.Placeholders == "forbid" {
		for _, f := range c.placeholderTargets(ctx, cfg, changedTest) {
			content, err := os.ReadFile(filepath.Join(ctx.Root, f))
			if err != nil {
				continue
			}
			for _, re := range placeholderPatterns {
				if re.Match(content) {
					violations = append(violations, engine.Violation{
						File:          f,
						ViolationType: "placeholder_test",
						Advice:        "replace the placeholder with a real assertion",
					})
					break
				}
			}
		}
	}

	sort.Slice(violations, func(i, j int) bool { return violations[i].File < violations[j].File })
	return engine.FromLevel(testsCommitCheckName, cfg.Check, violations)
}

// placeholderTargets selects which test files the placeholder scan
// covers: branch scope sweeps every walked test file, commit scope only
// the tests touched by the diff.
func (c *TestsCommitCheck) placeholderTargets(ctx *engine.CheckContext, cfg engine.CommitConfig, changedTest []string) []string {
	if cfg.Scope != "branch" {
		return changedTest
	}
	var out []string
	for _, f := range ctx.Files {
		if matchesAny(cfg.Exclude, f.Path) {
			continue
		}
		adapter := ctx.Registry.For(f.Path)
		if (adapter != nil && adapter.Classify(f.Path) == engine.Test) || matchesAny(cfg.TestPatterns, f.Path) {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out
}
