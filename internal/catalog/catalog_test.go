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

func TestBuildRegistry_ResolvesAllSixLanguages(t *testing.T) {
	t.Parallel()
	cfg := &engine.Config{}
	registry := BuildRegistry(cfg)
	for _, ext := range []string{".go", ".rs", ".py", ".js", ".rb", ".sh"} {
		if registry.For(ext) == nil {
			t.Errorf("registry.For(%q) = nil, want an adapter", ext)
		}
	}
}

func TestDefault_RegistersAnchorChecksFirst(t *testing.T) {
	t.Parallel()
	cfg := &engine.Config{}
	registry := BuildRegistry(cfg)
	checks := Default(cfg, registry)
	if len(checks) < 2 {
		t.Fatalf("len(checks) = %d, want at least 2", len(checks))
	}
	if checks[0].Name() != "cloc" || checks[1].Name() != "escapes" {
		t.Errorf("first two checks = %q, %q, want cloc, escapes", checks[0].Name(), checks[1].Name())
	}
	if checks[len(checks)-1].Name() != "tests_commit" {
		t.Errorf("last check = %q, want tests_commit", checks[len(checks)-1].Name())
	}
}

func TestDefault_IncludesPolicyCheckWhenLanguagesRegistered(t *testing.T) {
	t.Parallel()
	cfg := &engine.Config{}
	registry := BuildRegistry(cfg)
	checks := Default(cfg, registry)
	found := false
	for _, c := range checks {
		if c.Name() == "policy" {
			found = true
		}
	}
	if !found {
		t.Error("expected a policy check to be registered when adapters are present")
	}
}
