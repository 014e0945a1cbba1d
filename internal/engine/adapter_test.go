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

func TestGoAdapter_ClassifyTestBeforeSource(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	tests := []struct {
		path string
		want Classification
	}{
		{"pkg/foo.go", Source},
		{"pkg/foo_test.go", Test},
		{"README.md", Other},
		{"vendor/dep/thing.go", Other},
	}
	for _, tt := range tests {
		if got := a.Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRegistry_ResolvesByExtension(t *testing.T) {
	t.Parallel()
	r := NewRegistry(NewGoAdapter(nil, nil), NewPythonAdapter(nil, nil))
	if r.For("a.go") == nil {
		t.Error("For(a.go) = nil, want GoAdapter")
	}
	if r.For("a.py") == nil {
		t.Error("For(a.py) = nil, want PythonAdapter")
	}
	if r.For("a.rb") != nil {
		t.Error("For(a.rb) = non-nil, want nil: no Ruby adapter registered")
	}
}

func TestGoAdapter_ParseSuppresses_Nolint(t *testing.T) {
	t.Parallel()
	a := NewGoAdapter(nil, nil)
	content := "x := risky() //nolint:errcheck\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1", len(suppresses))
	}
	if suppresses[0].Codes[0] != "errcheck" {
		t.Errorf("Codes = %v, want [errcheck]", suppresses[0].Codes)
	}
}

func TestRustAdapter_ParseSuppresses_Allow(t *testing.T) {
	t.Parallel()
	a := NewRustAdapter(nil, nil)
	content := "#[allow(dead_code, unused)]\nfn f() {}\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1", len(suppresses))
	}
	if suppresses[0].Kind != "allow" {
		t.Errorf("Kind = %q, want allow", suppresses[0].Kind)
	}
	if len(suppresses[0].Codes) != 2 {
		t.Errorf("Codes = %v, want 2 entries", suppresses[0].Codes)
	}
}

func TestPythonAdapter_ParseSuppresses_Noqa(t *testing.T) {
	t.Parallel()
	a := NewPythonAdapter(nil, nil)
	content := "import os  # noqa: F401\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1", len(suppresses))
	}
	if suppresses[0].Kind != "noqa" {
		t.Errorf("Kind = %q, want noqa", suppresses[0].Kind)
	}
	if suppresses[0].Codes[0] != "F401" {
		t.Errorf("Codes = %v, want [F401]", suppresses[0].Codes)
	}
}

func TestJSAdapter_ParseSuppresses_ESLintDisableNextLine(t *testing.T) {
	t.Parallel()
	a := NewJSAdapter(nil, nil)
	content := "// eslint-disable-next-line no-console\nconsole.log('x')\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1", len(suppresses))
	}
	if suppresses[0].Kind != "eslint-disable-next-line" {
		t.Errorf("Kind = %q, want eslint-disable-next-line", suppresses[0].Kind)
	}
}

func TestRubyAdapter_ParseSuppresses_RubocopDisable(t *testing.T) {
	t.Parallel()
	a := NewRubyAdapter(nil, nil)
	content := "# rubocop:disable Metrics/MethodLength\ndef f; end\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1", len(suppresses))
	}
	if suppresses[0].Codes[0] != "Metrics/MethodLength" {
		t.Errorf("Codes = %v, want [Metrics/MethodLength]", suppresses[0].Codes)
	}
}

func TestShellAdapter_ParseSuppresses_IgnoresSourceDirective(t *testing.T) {
	t.Parallel()
	a := NewShellAdapter(nil, nil)
	content := "# shellcheck source=./lib.sh\n# shellcheck disable=SC2034\nfoo=bar\n"
	suppresses := a.ParseSuppresses(content, "")
	if len(suppresses) != 1 {
		t.Fatalf("len(suppresses) = %d, want 1 (source= line must be ignored)", len(suppresses))
	}
	if suppresses[0].Codes[0] != "SC2034" {
		t.Errorf("Codes = %v, want [SC2034]", suppresses[0].Codes)
	}
}

func TestGenericAdapter_ClassifyFromUserGlobs(t *testing.T) {
	t.Parallel()
	a := NewGenericAdapter("proto", []string{".proto"}, []string{"**/*_test.proto"}, []string{"**/*.proto"}, nil)
	if got := a.Classify("api/service.proto"); got != Source {
		t.Errorf("Classify(service.proto) = %v, want Source", got)
	}
	if got := a.Classify("api/service_test.proto"); got != Test {
		t.Errorf("Classify(service_test.proto) = %v, want Test", got)
	}
}

func TestIsNestedArtifact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want bool
	}{
		{"vendor/foo/bar.go", true},
		{"node_modules/pkg/index.js", true},
		{"src/main.go", false},
	}
	for _, tt := range tests {
		if got := isNestedArtifact(tt.path); got != tt.want {
			t.Errorf("isNestedArtifact(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
