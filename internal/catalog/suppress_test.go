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
	"testing"

	"go.quench.dev/quench/internal/engine"
)

func TestSuppressCheck_ForbidModeRejectsDirective(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a.go", "x := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "forbid"

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)

	if result.Passed {
		t.Fatal("Passed = true, want false: forbid mode rejects every suppress directive")
	}
	v := result.Violations[0]
	if v.ViolationType != "suppress_forbidden" {
		t.Errorf("ViolationType = %q, want suppress_forbidden", v.ViolationType)
	}
	if v.Line != 1 {
		t.Errorf("Line = %d, want 1", v.Line)
	}
}

func TestSuppressCheck_CommentModeRequiresJustification(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a.go", "x := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "comment"
	cfg.Golang.Suppress.Comment = "SUPPRESS:"

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)

	if result.Passed {
		t.Fatal("Passed = true, want false: directive lacks the required justification")
	}
	if result.Violations[0].ViolationType != "suppress_missing_justification" {
		t.Errorf("ViolationType = %q, want suppress_missing_justification", result.Violations[0].ViolationType)
	}
}

func TestSuppressCheck_CommentModePassesWithJustification(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a.go", "// SUPPRESS: error handled by the caller\nx := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "comment"
	cfg.Golang.Suppress.Comment = "SUPPRESS:"

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)
	if !result.Passed {
		t.Errorf("Passed = false, want true: justification precedes the directive, got %+v", result.Violations)
	}
}

func TestSuppressCheck_AllowListedCodeIsExempt(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a.go", "x := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "forbid"
	cfg.Golang.Suppress.Source.Allow = []string{"errcheck"}

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)
	if !result.Passed {
		t.Errorf("Passed = false, want true: errcheck is allow-listed for source files, got %+v", result.Violations)
	}
}

func TestSuppressCheck_AllowModeDisablesCheck(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a.go", "x := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "allow"

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)
	if !result.Passed {
		t.Error("Passed = false, want true: allow mode disables the check entirely")
	}
}

func TestSuppressCheck_TestScopeUsesTestConfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeFile(t, root, "pkg/a_test.go", "x := risky() //nolint:errcheck\n")

	cfg := &engine.Config{}
	cfg.Golang.Suppress.Check = "forbid"
	cfg.Golang.Suppress.Test.Allow = []string{"errcheck"}

	ctx := newTestContext(t, root, []engine.WalkedFile{file}, cfg)
	result := NewSuppressCheck().Run(ctx)
	if !result.Passed {
		t.Errorf("Passed = false, want true: test-scope allow list covers the directive, got %+v", result.Violations)
	}
}
