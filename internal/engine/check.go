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

import "sync/atomic"

// CheckContext bundles everything a Check needs to run, plus the
// cooperative-cancel flag the runner signals once --limit is reached.
// Checks MUST NOT mutate the file system and MUST NOT depend on other
// checks' ordering.
type CheckContext struct {
	Root          string
	Files         []WalkedFile
	Config        *Config
	Registry      *Registry
	Cache         *FileCache
	EnabledChecks map[string]struct{}

	BaseRef      string
	Staged       bool
	ChangedFiles map[string]struct{} // nil means "no diff scope": check the whole tree

	Limit int // 0 means unlimited

	terminate *atomic.Bool
}

// ShouldTerminate reports whether the runner has asked in-flight checks
// to wind down because --limit was reached. A check may only observe
// this between files, never mid-file.
func (c *CheckContext) ShouldTerminate() bool {
	if c.terminate == nil {
		return false
	}
	return c.terminate.Load()
}

// IsEnabled reports whether name is in the enabled check set. An empty
// set means "all checks enabled".
func (c *CheckContext) IsEnabled(name string) bool {
	if len(c.EnabledChecks) == 0 {
		return true
	}
	_, ok := c.EnabledChecks[name]
	return ok
}

// InScope reports whether path should be considered under the current
// diff scope. With no changed-file set, every walked file is in scope.
func (c *CheckContext) InScope(path string) bool {
	if c.ChangedFiles == nil {
		return true
	}
	_, ok := c.ChangedFiles[path]
	return ok
}

// Check is the contract every plug-in check implements. Name must be
// stable across runs: it's both the registration key and the cache
// namespace for that check's results.
type Check interface {
	Name() string
	Run(ctx *CheckContext) CheckResult
}

// Skipped builds the CheckResult for a check that could not run.
func Skipped(name, reason string) CheckResult {
	return CheckResult{Name: name, Passed: true, Skipped: true, Error: reason}
}

// Stubbed builds the CheckResult for a check with no applicable data in
// the current mode.
func Stubbed(name string) CheckResult {
	return CheckResult{Name: name, Passed: true, Stub: true}
}

// Passed builds a successful CheckResult carrying no violations.
func Passed(name string) CheckResult {
	return CheckResult{Name: name, Passed: true}
}

// Failed builds a CheckResult from a violation list; an empty list
// yields a passing result.
func Failed(name string, violations []Violation) CheckResult {
	return CheckResult{Name: name, Passed: len(violations) == 0, Violations: violations}
}

// FromLevel builds the result for a check that ran to completion under
// a configured severity: error-level findings fail the check, warn-level
// findings are reported without failing it.
func FromLevel(name string, level CheckLevel, violations []Violation) CheckResult {
	r := Failed(name, violations)
	if level == CheckWarn {
		r.Passed = true
	}
	return r
}
