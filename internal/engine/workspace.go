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

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// WorkspaceMember is one package discovered inside a workspace.
type WorkspaceMember struct {
	Name string
	Path string
}

// rustCargoToml is the subset of Cargo.toml this detector cares about.
type rustCargoToml struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// DetectRustWorkspace reads root/Cargo.toml, glob-expands
// [workspace].members, and reads each member's own Cargo.toml for its
// package name.
func DetectRustWorkspace(root string) ([]WorkspaceMember, error) {
	raw, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc rustCargoToml
	if _, err := toml.Decode(string(raw), &doc); err != nil {
		return nil, err
	}
	var out []WorkspaceMember
	for _, pattern := range doc.Workspace.Members {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			memberRaw, err := os.ReadFile(filepath.Join(m, "Cargo.toml"))
			if err != nil {
				continue
			}
			var memberDoc rustCargoToml
			if _, err := toml.Decode(string(memberRaw), &memberDoc); err != nil {
				continue
			}
			rel, _ := filepath.Rel(root, m)
			out = append(out, WorkspaceMember{Name: memberDoc.Package.Name, Path: rel})
		}
	}
	return out, nil
}

type pnpmWorkspaceYAML struct {
	Packages []string `yaml:"packages"`
}

type packageJSON struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

// DetectJSWorkspace detects a JavaScript/TypeScript workspace.
// pnpm-workspace.yaml takes precedence over package.json's "workspaces"
// array or its ".packages" object form.
func DetectJSWorkspace(root string) ([]WorkspaceMember, error) {
	if raw, err := os.ReadFile(filepath.Join(root, "pnpm-workspace.yaml")); err == nil {
		var doc pnpmWorkspaceYAML
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return expandJSWorkspaceGlobs(root, doc.Packages)
	}

	raw, err := os.ReadFile(filepath.Join(root, "package.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, err
	}
	if len(pkg.Workspaces) == 0 {
		return nil, nil
	}
	var patterns []string
	if err := json.Unmarshal(pkg.Workspaces, &patterns); err == nil {
		return expandJSWorkspaceGlobs(root, patterns)
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(pkg.Workspaces, &obj); err == nil {
		return expandJSWorkspaceGlobs(root, obj.Packages)
	}
	return nil, nil
}

// expandJSWorkspaceGlobs expands "base/*"-style globs by listing base/
// for subdirectories that contain a package.json.
func expandJSWorkspaceGlobs(root string, patterns []string) ([]WorkspaceMember, error) {
	var out []WorkspaceMember
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			pkgRaw, err := os.ReadFile(filepath.Join(m, "package.json"))
			if err != nil {
				continue
			}
			var pkg struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(pkgRaw, &pkg); err != nil {
				continue
			}
			rel, _ := filepath.Rel(root, m)
			out = append(out, WorkspaceMember{Name: pkg.Name, Path: rel})
		}
	}
	return out, nil
}
