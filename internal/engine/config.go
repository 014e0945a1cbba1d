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
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// supportedConfigVersion is the only value the top-level "version" key may
// take. Bump it, and add a migration note in DESIGN.md, whenever a config
// change isn't backward compatible.
const supportedConfigVersion = 1

// CheckLevel selects how a check's findings affect the run's exit code.
type CheckLevel string

// Valid CheckLevel values.
const (
	CheckError CheckLevel = "error"
	CheckWarn  CheckLevel = "warn"
	CheckOff   CheckLevel = "off"
)

// MaxTokens holds `check.cloc.max_tokens`, which accepts either a positive
// int or the literal `false` to disable the token budget entirely.
type MaxTokens struct {
	Set      bool
	Disabled bool
	Value    int64
}

// UnmarshalTOML implements toml.Unmarshaler, since max_tokens's type
// depends on its value (int or bool).
func (m *MaxTokens) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case bool:
		if t {
			return fmt.Errorf("max_tokens: bool value must be false")
		}
		m.Set, m.Disabled = true, true
	case int64:
		m.Set, m.Value = true, t
	default:
		return fmt.Errorf("max_tokens: unsupported type %T", v)
	}
	return nil
}

// LangGlobs is the per-language file classification under [project].
type LangGlobs struct {
	Source  []string `toml:"source"`
	Tests   []string `toml:"tests"`
	Exclude []string `toml:"exclude"`
}

// ProjectConfig is the [project] section.
type ProjectConfig struct {
	Name  string `toml:"name"`
	Ignore struct {
		Patterns []string `toml:"patterns"`
	} `toml:"ignore"`
	Workspace struct {
		Packages []string `toml:"packages"`
	} `toml:"workspace"`

	Rust       LangGlobs `toml:"rust"`
	Golang     LangGlobs `toml:"golang"`
	JavaScript LangGlobs `toml:"javascript"`
	Python     LangGlobs `toml:"python"`
	Ruby       LangGlobs `toml:"ruby"`
	Shell      LangGlobs `toml:"shell"`
}

// ClocConfig is [check.cloc].
type ClocConfig struct {
	Check        CheckLevel `toml:"check"`
	MaxLines     int64      `toml:"max_lines"`
	MaxLinesTest int64      `toml:"max_lines_test"`
	MaxTokens    MaxTokens  `toml:"max_tokens"`
	Metric       string     `toml:"metric"` // "lines" or "nonblank"
	TestPatterns []string   `toml:"test_patterns"`
	Exclude      []string   `toml:"exclude"`
	Advice       string     `toml:"advice"`
	AdviceTest   string     `toml:"advice_test"`
}

// EscapePatternConfig is one entry in [[check.escapes.patterns]].
type EscapePatternConfig struct {
	Name      string `toml:"name"`
	Pattern   string `toml:"pattern"`
	Action    string `toml:"action"` // "forbid", "comment", "count"
	Comment   string `toml:"comment"`
	Threshold int64  `toml:"threshold"`
	Advice    string `toml:"advice"`
}

// EscapesConfig is [check.escapes].
type EscapesConfig struct {
	Check    CheckLevel            `toml:"check"`
	Patterns []EscapePatternConfig `toml:"patterns"`
}

// DocsSubConfig is shared shape for [check.docs.links/specs/toc].
type DocsSubConfig struct {
	Check   CheckLevel `toml:"check"`
	Include []string   `toml:"include"`
	Exclude []string   `toml:"exclude"`
}

// DocsConfig is [check.docs].
type DocsConfig struct {
	Links DocsSubConfig `toml:"links"`
	Specs DocsSubConfig `toml:"specs"`
	Toc   DocsSubConfig `toml:"toc"`
}

// CommitConfig is [check.tests.commit].
type CommitConfig struct {
	Check          CheckLevel `toml:"check"`
	Scope          string     `toml:"scope"` // "branch" or "commit"
	Placeholders   string     `toml:"placeholders"` // "allow" or "forbid"
	TestPatterns   []string   `toml:"test_patterns"`
	SourcePatterns []string   `toml:"source_patterns"`
	Exclude        []string   `toml:"exclude"`
}

// TestsConfig is [check.tests].
type TestsConfig struct {
	Commit CommitConfig `toml:"commit"`
}

// CheckConfig is the [check] table.
type CheckConfig struct {
	Cloc    ClocConfig    `toml:"cloc"`
	Escapes EscapesConfig `toml:"escapes"`
	Docs    DocsConfig    `toml:"docs"`
	Tests   TestsConfig   `toml:"tests"`
}

// SuppressScope is the source/test half of a `<lang>.suppress` section.
type SuppressScope struct {
	Allow    []string `toml:"allow"`
	Forbid   []string `toml:"forbid"`
	Patterns []string `toml:"patterns"`
}

// SuppressConfig is `<lang>.suppress`.
type SuppressConfig struct {
	Check   string        `toml:"check"` // "forbid", "comment", "allow"
	Comment string        `toml:"comment"`
	Source  SuppressScope `toml:"source"`
	Test    SuppressScope `toml:"test"`
}

// LangPolicyConfig is `<lang>.policy`.
type LangPolicyConfig struct {
	LintChanges LintChangeMode `toml:"lint_changes"`
	LintConfig  []string       `toml:"lint_config"`
}

// ClocOverride is a per-language `<lang>.cloc` block. Any field left at
// its zero value falls through to the global [check.cloc] limits; the
// per-language value wins when both are set.
type ClocOverride struct {
	MaxLines     int64     `toml:"max_lines"`
	MaxLinesTest int64     `toml:"max_lines_test"`
	MaxTokens    MaxTokens `toml:"max_tokens"`
	Metric       string    `toml:"metric"`
	Advice       string    `toml:"advice"`
	AdviceTest   string    `toml:"advice_test"`
}

// LangConfig bundles a single language's cloc, suppress, and policy
// sections.
type LangConfig struct {
	Cloc     ClocOverride     `toml:"cloc"`
	Suppress SuppressConfig   `toml:"suppress"`
	Policy   LangPolicyConfig `toml:"policy"`
}

// GitConfig is the [git] section.
type GitConfig struct {
	BaselineStorage string `toml:"baseline_storage"`
}

// Config is the fully-parsed, fully-defaulted quench.toml.
type Config struct {
	Version int `toml:"version"`

	Project ProjectConfig `toml:"project"`
	Check   CheckConfig   `toml:"check"`

	Rust       LangConfig `toml:"rust"`
	Golang     LangConfig `toml:"golang"`
	JavaScript LangConfig `toml:"javascript"`
	Python     LangConfig `toml:"python"`
	Ruby       LangConfig `toml:"ruby"`
	Shell      LangConfig `toml:"shell"`

	Ratchet map[string]bool `toml:"ratchet"`
	Git     GitConfig       `toml:"git"`
}

// Lang returns the per-language config section for an adapter name, or
// nil for a name with no dedicated section (generic adapters).
func (c *Config) Lang(name string) *LangConfig {
	switch name {
	case "rust":
		return &c.Rust
	case "golang":
		return &c.Golang
	case "javascript":
		return &c.JavaScript
	case "python":
		return &c.Python
	case "ruby":
		return &c.Ruby
	case "shell":
		return &c.Shell
	default:
		return nil
	}
}

// FindConfigPath walks up from root looking for quench.toml, the way
// go.mod/Cargo.toml resolution does in their respective ecosystems.
func FindConfigPath(root string) (string, bool) {
	dir := root
	for {
		candidate := filepath.Join(dir, "quench.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadConfig loads and validates the config file for root, merges in
// defaults for anything left unset, and returns warnings for unrecognized
// keys. A missing file is not an error: defaults apply.
func LoadConfig(root string) (*Config, []string, error) {
	path, found := FindConfigPath(root)
	if !found {
		cfg := defaultConfig()
		return &cfg, nil, nil
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, nil, &ConfigError{Path: path, Reason: err.Error()}
	}
	if cfg.Version != supportedConfigVersion {
		return nil, nil, &ConfigError{Path: path, Reason: fmt.Sprintf("unsupported config version %d", cfg.Version)}
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("quench: warning: %s: unrecognized field `%s` (ignored)", path, key.String()))
	}

	mergeDefaults(&cfg)
	return &cfg, warnings, nil
}

// defaultConfig returns a fully-populated Config with no quench.toml
// present at all.
func defaultConfig() Config {
	var cfg Config
	cfg.Version = supportedConfigVersion
	mergeDefaults(&cfg)
	return cfg
}

// mergeDefaults fills in zero-valued fields with Quench's defaults. It's
// a plain builder/merger, not reflection-based: every field Quench cares
// about is named explicitly, so callers never have to guess which values
// came from quench.toml versus from defaults.
func mergeDefaults(cfg *Config) {
	if cfg.Check.Cloc.Check == "" {
		cfg.Check.Cloc.Check = CheckError
	}
	if cfg.Check.Cloc.MaxLines == 0 {
		cfg.Check.Cloc.MaxLines = 800
	}
	if cfg.Check.Cloc.MaxLinesTest == 0 {
		cfg.Check.Cloc.MaxLinesTest = 1200
	}
	if cfg.Check.Cloc.Metric == "" {
		cfg.Check.Cloc.Metric = "lines"
	}
	if cfg.Check.Cloc.Advice == "" {
		cfg.Check.Cloc.Advice = "split this file into smaller units"
	}
	if cfg.Check.Cloc.AdviceTest == "" {
		cfg.Check.Cloc.AdviceTest = "split this test file or parameterize its cases"
	}

	if cfg.Check.Escapes.Check == "" {
		cfg.Check.Escapes.Check = CheckError
	}

	if cfg.Check.Docs.Links.Check == "" {
		cfg.Check.Docs.Links.Check = CheckWarn
	}
	if cfg.Check.Docs.Specs.Check == "" {
		cfg.Check.Docs.Specs.Check = CheckWarn
	}
	if cfg.Check.Docs.Toc.Check == "" {
		cfg.Check.Docs.Toc.Check = CheckWarn
	}

	if cfg.Check.Tests.Commit.Check == "" {
		cfg.Check.Tests.Commit.Check = CheckWarn
	}
	if cfg.Check.Tests.Commit.Scope == "" {
		cfg.Check.Tests.Commit.Scope = "commit"
	}
	if cfg.Check.Tests.Commit.Placeholders == "" {
		cfg.Check.Tests.Commit.Placeholders = "forbid"
	}

	mergeLangDefaults(&cfg.Rust)
	mergeLangDefaults(&cfg.Golang)
	mergeLangDefaults(&cfg.JavaScript)
	mergeLangDefaults(&cfg.Python)
	mergeLangDefaults(&cfg.Ruby)
	mergeLangDefaults(&cfg.Shell)

	if cfg.Ratchet == nil {
		cfg.Ratchet = map[string]bool{}
	}
	if cfg.Git.BaselineStorage == "" {
		cfg.Git.BaselineStorage = "ref"
	}
}

func mergeLangDefaults(lc *LangConfig) {
	if lc.Suppress.Check == "" {
		lc.Suppress.Check = "comment"
	}
	if lc.Policy.LintChanges == "" {
		lc.Policy.LintChanges = LintChangeNone
	}
}
