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

// Package catalog holds Quench's built-in checks: cloc (line-count
// limits) and escapes (pattern-based forbid/comment/count rules), plus
// the suppress-directive, lint-change policy, and tests-commit checks
// layered on top of them.
package catalog

import "go.quench.dev/quench/internal/engine"

// BuildRegistry constructs the adapter registry from a loaded Config,
// feeding each built-in adapter the project's per-language source/test
// glob extensions.
func BuildRegistry(cfg *engine.Config) *engine.Registry {
	p := cfg.Project
	return engine.NewRegistry(
		engine.NewGoAdapter(p.Golang.Tests, p.Golang.Source),
		engine.NewRustAdapter(p.Rust.Tests, p.Rust.Source),
		engine.NewPythonAdapter(p.Python.Tests, p.Python.Source),
		engine.NewJSAdapter(p.JavaScript.Tests, p.JavaScript.Source),
		engine.NewRubyAdapter(p.Ruby.Tests, p.Ruby.Source),
		engine.NewShellAdapter(p.Shell.Tests, p.Shell.Source),
	)
}

// Default assembles the full check list in a fixed registration order
// the runner's output ordering depends on: the two anchor checks first,
// then the suppress-directive policy, the markdown docs check, the
// lint-config mixing policy, and the tests-commit check.
func Default(cfg *engine.Config, registry *engine.Registry) []engine.Check {
	checks := []engine.Check{
		NewClocCheck(),
		NewEscapesCheck(),
		NewSuppressCheck(),
		NewDocsCheck(),
	}

	policies := []struct {
		ext    string
		policy engine.LangPolicyConfig
	}{
		{".go", cfg.Golang.Policy},
		{".rs", cfg.Rust.Policy},
		{".py", cfg.Python.Policy},
		{".js", cfg.JavaScript.Policy},
		{".rb", cfg.Ruby.Policy},
		{".sh", cfg.Shell.Policy},
	}
	var langs []langPolicy
	for _, p := range policies {
		if a := registry.For(p.ext); a != nil {
			langs = append(langs, LangPolicy(a, p.policy))
		}
	}
	if len(langs) > 0 {
		checks = append(checks, NewPolicyCheck(langs...))
	}

	return append(checks, NewTestsCommitCheck())
}
