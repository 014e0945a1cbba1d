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

import "testing"

func TestCheckLintMixing_FlagsMixedCommit(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	changed := []string{".golangci.yml", "pkg/foo.go"}
	v, ok := CheckLintMixing(a, changed, []string{".golangci.yml"}, LintChangeStandalone)
	if !ok {
		t.Fatal("ok = false, want true: commit mixes lint config with source")
	}
	if len(v.LintConfigFiles) != 1 || v.LintConfigFiles[0] != ".golangci.yml" {
		t.Errorf("LintConfigFiles = %v, want [.golangci.yml]", v.LintConfigFiles)
	}
	if len(v.SourceFiles) != 1 || v.SourceFiles[0] != "pkg/foo.go" {
		t.Errorf("SourceFiles = %v, want [pkg/foo.go]", v.SourceFiles)
	}
}

func TestCheckLintMixing_LintOnlyCommitPasses(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	changed := []string{".golangci.yml"}
	_, ok := CheckLintMixing(a, changed, []string{".golangci.yml"}, LintChangeStandalone)
	if ok {
		t.Error("ok = true, want false: lint-config-only commit is not a violation")
	}
}

func TestCheckLintMixing_SourceOnlyCommitPasses(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	changed := []string{"pkg/foo.go"}
	_, ok := CheckLintMixing(a, changed, []string{".golangci.yml"}, LintChangeStandalone)
	if ok {
		t.Error("ok = true, want false: no lint-config file touched")
	}
}

func TestCheckLintMixing_ModeNoneAlwaysDisabled(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	changed := []string{".golangci.yml", "pkg/foo.go"}
	_, ok := CheckLintMixing(a, changed, []string{".golangci.yml"}, LintChangeNone)
	if ok {
		t.Error("ok = true, want false: LintChangeNone disables the check")
	}
}

func TestCheckLintMixing_NonSourceNonTestChangeIsIgnored(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	changed := []string{".golangci.yml", "README.md"}
	_, ok := CheckLintMixing(a, changed, []string{".golangci.yml"}, LintChangeStandalone)
	if ok {
		t.Error("ok = true, want false: README.md classifies as Other, not Source/Test")
	}
}

func TestBaseName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		".golangci.yml":       ".golangci.yml",
		"a/b/.golangci.yml":   ".golangci.yml",
		"nested/dir/file.txt": "file.txt",
	}
	for in, want := range tests {
		if got := baseName(in); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}
