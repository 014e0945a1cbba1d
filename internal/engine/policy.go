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

// LintChangeMode selects how the policy check reacts to a commit that
// mixes lint-config changes with source/test changes.
type LintChangeMode string

// Valid LintChangeMode values.
const (
	LintChangeStandalone LintChangeMode = "standalone"
	LintChangeNone       LintChangeMode = "none"
)

// PolicyViolation is a single offending mix detected by CheckLintMixing.
type PolicyViolation struct {
	LintConfigFiles []string
	SourceFiles     []string
}

// CheckLintMixing implements the per-adapter lint-change policy: given
// the set of changed files and a list of lint-config basenames, report
// whether the commit mixes lint-config changes with source/test changes
// under this adapter.
//
// mode == LintChangeNone always returns (nil, false): the check is
// disabled.
func CheckLintMixing(a Adapter, changed []string, lintConfigNames []string, mode LintChangeMode) (*PolicyViolation, bool) {
	if mode != LintChangeStandalone {
		return nil, false
	}
	lintSet := make(map[string]struct{}, len(lintConfigNames))
	for _, n := range lintConfigNames {
		lintSet[n] = struct{}{}
	}

	var lintFiles, otherFiles []string
	for _, f := range changed {
		if _, ok := lintSet[baseName(f)]; ok {
			lintFiles = append(lintFiles, f)
			continue
		}
		switch a.Classify(f) {
		case Source, Test:
			otherFiles = append(otherFiles, f)
		}
	}
	if len(lintFiles) == 0 || len(otherFiles) == 0 {
		return nil, false
	}
	return &PolicyViolation{LintConfigFiles: lintFiles, SourceFiles: otherFiles}, true
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
