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

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"go.quench.dev/quench/internal/catalog"
	"go.quench.dev/quench/internal/engine"
	"go.quench.dev/quench/internal/reporting"
)

// toolVersion tags the persisted cache so a rebuilt binary with a new
// format never adopts a stale cache silently. Bumped alongside
// cacheFormatVersion whenever the two drift apart.
const toolVersion = "0.1.0"

// checkCmd implements the `check` subcommand: discover files, run the
// enabled checks, and report the result.
type checkCmd struct {
	commandBase

	base     string
	staged   bool
	limit    int
	noLimit  bool
	noCache  bool
	maxDepth int
	only     []string
	skip     []string
}

func (c *checkCmd) Name() string        { return "check" }
func (c *checkCmd) Description() string { return "run the configured checks over a repository" }

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.commandBase.SetFlags(f)
	f.StringVar(&c.base, "base", "", "diff-scope this run against REF instead of the whole tree")
	f.BoolVar(&c.staged, "staged", false, "diff-scope this run against the git index")
	f.IntVar(&c.limit, "limit", 100, "stop after this many total violations (0 disables the cap)")
	f.BoolVar(&c.noLimit, "no-limit", false, "do not cap the number of violations reported")
	f.BoolVar(&c.noCache, "no-cache", false, "ignore and do not persist the on-disk file cache")
	f.IntVar(&c.maxDepth, "max-depth", 0, "limit traversal to this directory depth (0 means unlimited)")
	f.StringSliceVar(&c.only, "only", nil, "run only these checks (comma-separated or repeated)")
	f.StringSliceVar(&c.skip, "skip", nil, "skip these checks (comma-separated or repeated)")
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet) error {
	root, err := filepath.Abs(c.cwd)
	if err != nil {
		return usageError(fmt.Errorf("resolving root: %w", err))
	}

	cfg, warnings, err := engine.LoadConfig(root)
	if err != nil {
		return err // already an *engine.ConfigError, mapped to exit 2
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	c.detectWorkspace(root, cfg)

	registry := catalog.BuildRegistry(cfg)
	checks := catalog.Default(cfg, registry)
	runner := engine.NewRunner(checks...)

	changedFiles, err := c.resolveChangedFiles(root)
	if err != nil {
		return usageError(err)
	}

	files, stats, err := c.walkFiles(ctx, root, cfg)
	if err != nil {
		return err
	}
	if c.verbose {
		fmt.Fprintf(os.Stderr, "quench: walked %d files (%d errors, %d symlink loops, %d skipped for size)\n",
			stats.FilesFound, stats.Errors, stats.SymlinkLoops, stats.FilesSkippedSize)
	}

	cache, cachePath := c.loadCache(root, cfg)

	limit := c.limit
	if c.noLimit {
		limit = 0
	}

	runnerCfg := engine.RunnerConfig{
		Limit:        limit,
		ChangedFiles: changedFiles,
		Cache:        cache,
		BaseRef:      c.base,
		Staged:       c.staged,
	}
	output := runner.Run(ctx, root, files, cfg, registry, c.enabledSet(), runnerCfg)

	if cache != nil {
		if err := cache.Persist(cachePath); err != nil && c.verbose {
			fmt.Fprintf(os.Stderr, "quench: warning: %s\n", err)
		}
	}

	if err := c.write(output, limit); err != nil {
		return err
	}

	if !output.Passed {
		return violationsFound()
	}
	return nil
}

// detectWorkspace fills project.workspace.packages from the repository's
// own manifests (Cargo.toml workspace members, pnpm/npm workspaces) when
// the config leaves it unset. Detection failures are not fatal: a repo
// without a workspace simply has no packages.
func (c *checkCmd) detectWorkspace(root string, cfg *engine.Config) {
	if len(cfg.Project.Workspace.Packages) > 0 {
		return
	}
	var members []engine.WorkspaceMember
	if found, err := engine.DetectRustWorkspace(root); err == nil {
		members = append(members, found...)
	} else if c.verbose {
		fmt.Fprintf(os.Stderr, "quench: workspace: %s\n", err)
	}
	if found, err := engine.DetectJSWorkspace(root); err == nil {
		members = append(members, found...)
	} else if c.verbose {
		fmt.Fprintf(os.Stderr, "quench: workspace: %s\n", err)
	}
	for _, m := range members {
		cfg.Project.Workspace.Packages = append(cfg.Project.Workspace.Packages, m.Path)
	}
	if c.verbose && len(members) > 0 {
		fmt.Fprintf(os.Stderr, "quench: detected %d workspace packages\n", len(members))
	}
}

// resolveChangedFiles returns the diff-scope set implied by --base/--staged,
// or nil when neither flag is set (the whole tree is in scope).
func (c *checkCmd) resolveChangedFiles(root string) (map[string]struct{}, error) {
	switch {
	case c.staged:
		return stagedFiles(root)
	case c.base != "":
		return baseDiffFiles(root, c.base)
	default:
		return nil, nil
	}
}

// walkFiles drains the walker's channel into a slice: the runner needs
// the whole file set up front, and the walker's own ordering guarantee
// is "a bag, not a list" anyway.
func (c *checkCmd) walkFiles(ctx context.Context, root string, cfg *engine.Config) ([]engine.WalkedFile, engine.WalkStats, error) {
	walkCfg := engine.WalkConfig{
		MaxDepth:       c.maxDepth,
		IgnorePatterns: cfg.Project.Ignore.Patterns,
		GitIgnore:      true,
	}
	out, wait := engine.Walk(ctx, root, walkCfg)
	var files []engine.WalkedFile
	for f := range out {
		files = append(files, f)
	}
	stats, err := wait()
	if err != nil {
		return nil, stats, usageError(fmt.Errorf("walking %s: %w", root, err))
	}
	return files, stats, nil
}

// loadCache builds the file cache unless --no-cache was given. A load
// failure (absent, corrupt, version/tool/config mismatch) is never
// fatal: the caller proceeds with an empty cache.
func (c *checkCmd) loadCache(root string, cfg *engine.Config) (*engine.FileCache, string) {
	if c.noCache {
		return nil, ""
	}
	cachePath := filepath.Join(root, ".quench", "cache.bin")
	cache := engine.NewFileCache(toolVersion, engine.ConfigHash(cfg))
	if err := cache.Load(cachePath); err != nil && c.verbose {
		fmt.Fprintf(os.Stderr, "quench: cache: %s\n", err)
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil && c.verbose {
		fmt.Fprintf(os.Stderr, "quench: warning: creating cache directory: %s\n", err)
	}
	return cache, cachePath
}

// enabledSet turns --only/--skip into the enabled-check set the runner
// consults via CheckContext.IsEnabled. An empty result means "every
// check is enabled".
func (c *checkCmd) enabledSet() map[string]struct{} {
	if len(c.only) == 0 && len(c.skip) == 0 {
		return nil
	}
	if len(c.only) > 0 {
		set := make(map[string]struct{}, len(c.only))
		for _, name := range c.only {
			set[strings.TrimSpace(name)] = struct{}{}
		}
		return set
	}
	skip := make(map[string]struct{}, len(c.skip))
	for _, name := range c.skip {
		skip[strings.TrimSpace(name)] = struct{}{}
	}
	all := catalogNames()
	set := make(map[string]struct{}, len(all))
	for _, name := range all {
		if _, skipped := skip[name]; !skipped {
			set[name] = struct{}{}
		}
	}
	return set
}

// catalogNames lists every built-in check name, for --skip's "everything
// but these" resolution.
func catalogNames() []string {
	return []string{"cloc", "escapes", "suppress", "docs", "policy", "tests_commit"}
}

func (c *checkCmd) write(output engine.CheckOutput, limit int) error {
	// Timing jitters between otherwise-identical runs; only surface it
	// when the caller asked for diagnostics, so warm and cold runs stay
	// comparable byte for byte.
	if !c.verbose {
		output.Timing = nil
	}
	w := reporting.Writer(os.Stdout)
	switch c.output {
	case "json":
		return reporting.WriteJSON(w, output)
	default:
		return reporting.WriteText(w, output, reporting.TextOptions{
			Color: c.shouldColor(),
			Limit: limit,
		})
	}
}
