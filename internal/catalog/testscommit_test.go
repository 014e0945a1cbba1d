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

func TestTestsCommitCheck_FlagsSourceWithoutTest(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package pkg\n")

	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	registry := engine.NewRegistry(engine.NewGoAdapter(nil, nil))

	ctx := &engine.CheckContext{
		Root:         root,
		Config:       cfg,
		Registry:     registry,
		ChangedFiles: map[string]struct{}{"pkg/a.go": {}},
	}
	result := NewTestsCommitCheck().Run(ctx)
	if result.Passed {
		t.Fatal("Passed = true, want false: source changed without a test")
	}
}

func TestTestsCommitCheck_PassesWhenTestAccompaniesSource(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package pkg\n")
	writeFile(t, root, "pkg/a_test.go", "package pkg\n")

	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	registry := engine.NewRegistry(engine.NewGoAdapter(nil, nil))

	ctx := &engine.CheckContext{
		Root:     root,
		Config:   cfg,
		Registry: registry,
		ChangedFiles: map[string]struct{}{
			"pkg/a.go":      {},
			"pkg/a_test.go": {},
		},
	}
	result := NewTestsCommitCheck().Run(ctx)
	if !result.Passed {
		t.Errorf("Passed = false, want true, got %+v", result.Violations)
	}
}

func TestTestsCommitCheck_FlagsPlaceholderTest(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package pkg\n")
	writeFile(t, root, "pkg/a_test.go", "package pkg\n\nfunc TestA(t *testing.T) {\n\tt.Skip(\"todo\")\n}\n")

	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	cfg.Check.Tests.Commit.Placeholders = "forbid"
	registry := engine.NewRegistry(engine.NewGoAdapter(nil, nil))

	ctx := &engine.CheckContext{
		Root:     root,
		Config:   cfg,
		Registry: registry,
		ChangedFiles: map[string]struct{}{
			"pkg/a.go":      {},
			"pkg/a_test.go": {},
		},
	}
	result := NewTestsCommitCheck().Run(ctx)
	if result.Passed {
		t.Fatal("Passed = true, want false: placeholder test present")
	}
	found := false
	for _, v := range result.Violations {
		if v.ViolationType == "placeholder_test" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a placeholder_test violation, got %+v", result.Violations)
	}
}

func TestTestsCommitCheck_StubbedWithoutChangedFiles(t *testing.T) {
	t.Parallel()
	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	result := NewTestsCommitCheck().Run(&engine.CheckContext{Config: cfg})
	if !result.Stub {
		t.Error("Stub = false, want true with no ChangedFiles scope")
	}
}

func TestTestsCommitCheck_BranchScopeScansAllTestFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	// The placeholder test is NOT in the changed set: only branch scope
	// sweeps it up.
	placeholder := writeFile(t, root, "pkg/old_test.go", "package pkg\n\nfunc TestOld(t *testing.T) {\n\tt.Skip(\"todo\")\n}\n")
	writeFile(t, root, "pkg/a.go", "package pkg\n")

	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	cfg.Check.Tests.Commit.Scope = "branch"
	cfg.Check.Tests.Commit.Placeholders = "forbid"
	registry := engine.NewRegistry(engine.NewGoAdapter(nil, nil))

	ctx := &engine.CheckContext{
		Root:     root,
		Files:    []engine.WalkedFile{placeholder},
		Config:   cfg,
		Registry: registry,
	}
	result := NewTestsCommitCheck().Run(ctx)
	if result.Stub {
		t.Fatal("Stub = true, want a real run: branch scope needs no diff")
	}
	if result.Passed {
		t.Fatal("Passed = true, want false: branch scope must find the placeholder outside the diff")
	}
	if result.Violations[0].ViolationType != "placeholder_test" {
		t.Errorf("ViolationType = %q, want placeholder_test", result.Violations[0].ViolationType)
	}
}

func TestTestsCommitCheck_CommitScopeIgnoresUnchangedTests(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	placeholder := writeFile(t, root, "pkg/old_test.go", "package pkg\n\nfunc TestOld(t *testing.T) {\n\tt.Skip(\"todo\")\n}\n")
	writeFile(t, root, "pkg/a.go", "package pkg\n")
	writeFile(t, root, "pkg/a_test.go", "package pkg\n")

	cfg := &engine.Config{}
	cfg.Check.Tests.Commit.Check = engine.CheckError
	cfg.Check.Tests.Commit.Scope = "commit"
	cfg.Check.Tests.Commit.Placeholders = "forbid"
	registry := engine.NewRegistry(engine.NewGoAdapter(nil, nil))

	ctx := &engine.CheckContext{
		Root:     root,
		Files:    []engine.WalkedFile{placeholder},
		Config:   cfg,
		Registry: registry,
		ChangedFiles: map[string]struct{}{
			"pkg/a.go":      {},
			"pkg/a_test.go": {},
		},
	}
	result := NewTestsCommitCheck().Run(ctx)
	if !result.Passed {
		t.Errorf("Passed = false, want true: commit scope only scans changed tests, got %+v", result.Violations)
	}
}
