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
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"golang.org/x/sync/errgroup"
)

const sizeCapBytes = 10 * 1024 * 1024

// WalkConfig configures a single tree traversal.
type WalkConfig struct {
	MaxDepth          int // 0 means unlimited
	IgnorePatterns    []string
	GitIgnore         bool
	Hidden            bool
	ParallelThreshold int
	ForceParallel     bool
	ForceSequential   bool
}

// WalkStats summarizes a finished walk.
type WalkStats struct {
	FilesFound       int64
	Errors           int64
	SymlinkLoops     int64
	FilesSkippedSize int64
}

// Walk traverses root per cfg, returning a channel of WalkedFile and a
// function that blocks until the walk is finished and returns the final
// WalkStats. Concurrent mode is permitted to reorder emissions; callers
// must treat the result as a bag, not a list.
func Walk(ctx context.Context, root string, cfg WalkConfig) (<-chan WalkedFile, func() (WalkStats, error)) {
	out := make(chan WalkedFile, 256)
	stats := &walkStats{}
	ignore := compileIgnoreGlobs(cfg.IgnorePatterns)

	var matcher gitignore.Matcher
	if cfg.GitIgnore {
		if patterns, err := loadGitignorePatterns(root); err == nil {
			matcher = gitignore.NewMatcher(patterns)
		} else {
			log.Printf("quench: gitignore: %s", err)
		}
	}

	w := &walker{
		root:    root,
		cfg:     cfg,
		ignore:  ignore,
		matcher: matcher,
		stats:   stats,
		seen:    map[string]struct{}{},
	}

	parallel := decideParallel(root, cfg)

	done := make(chan error, 1)
	go func() {
		defer close(out)
		var err error
		if parallel {
			err = w.walkParallel(ctx, out)
		} else {
			err = w.walkSequential(ctx, out)
		}
		done <- err
	}()

	return out, func() (WalkStats, error) {
		err := <-done
		return stats.snapshot(), err
	}
}

type walkStats struct {
	filesFound       atomic.Int64
	errs             atomic.Int64
	symlinkLoops     atomic.Int64
	filesSkippedSize atomic.Int64
}

func (s *walkStats) snapshot() WalkStats {
	return WalkStats{
		FilesFound:       s.filesFound.Load(),
		Errors:           s.errs.Load(),
		SymlinkLoops:     s.symlinkLoops.Load(),
		FilesSkippedSize: s.filesSkippedSize.Load(),
	}
}

type walker struct {
	root    string
	cfg     WalkConfig
	ignore  []string // doublestar pattern strings, parsed on each match
	matcher gitignore.Matcher
	stats   *walkStats

	mu   sync.Mutex
	seen map[string]struct{} // resolved dir targets, for symlink loop detection
}

// decideParallel picks the traversal mode: count direct children of
// root and use parallel mode if there are at least threshold/10 of
// them. Either force flag short-circuits the heuristic.
func decideParallel(root string, cfg WalkConfig) bool {
	if cfg.ForceParallel {
		return true
	}
	if cfg.ForceSequential {
		return false
	}
	threshold := cfg.ParallelThreshold
	if threshold <= 0 {
		threshold = 100
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	return len(entries) >= threshold/10
}

func compileIgnoreGlobs(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadGitignorePatterns(root string) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() != ".gitignore" {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		dir, _ := filepath.Rel(root, filepath.Dir(p))
		var domain []string
		if dir != "." {
			domain = splitPath(dir)
		}
		for _, line := range splitLinesKeepEmpty(string(raw)) {
			if line == "" || line[0] == '#' {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, domain))
		}
		return nil
	})
	return patterns, err
}

// splitPath splits a relative directory path into its slash-separated
// components, for use as a gitignore pattern's domain.
func splitPath(p string) []string {
	return filepathSplitSlash(p)
}

func filepathSplitSlash(p string) []string {
	p = filepath.ToSlash(p)
	var out []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if i > start {
				out = append(out, p[start:i])
			}
			start = i + 1
		}
	}
	if start < len(p) {
		out = append(out, p[start:])
	}
	return out
}

// emit applies the filter chain (depth, hidden, gitignore, explicit
// ignore globs, size cap) and sends a WalkedFile on out if the path
// survives.
func (w *walker) emit(ctx context.Context, out chan<- WalkedFile, relPath string, depth int, info os.FileInfo) {
	if w.cfg.MaxDepth > 0 && depth > w.cfg.MaxDepth {
		return
	}
	if !w.cfg.Hidden && hasHiddenComponent(relPath) {
		return
	}
	if w.matcher != nil {
		parts := filepathSplitSlash(relPath)
		if w.matcher.Match(parts, false) {
			return
		}
	}
	if matchesAny(w.ignore, relPath) {
		return
	}
	if info.Size() >= sizeCapBytes {
		w.stats.filesSkippedSize.Add(1)
		return
	}

	mtime := info.ModTime()
	wf := WalkedFile{
		Path:      relPath,
		Size:      info.Size(),
		ModSec:    mtime.Unix(),
		ModNsec:   int32(mtime.Nanosecond()),
		Depth:     depth,
		SizeClass: classifySize(info.Size()),
	}
	w.stats.filesFound.Add(1)
	select {
	case out <- wf:
	case <-ctx.Done():
	}
}

func hasHiddenComponent(relPath string) bool {
	for _, part := range filepathSplitSlash(relPath) {
		if len(part) > 0 && part[0] == '.' {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}

func (w *walker) walkSequential(ctx context.Context, out chan<- WalkedFile) error {
	return filepath.WalkDir(w.root, func(p string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			w.stats.errs.Add(1)
			return nil
		}
		rel, relErr := filepath.Rel(w.root, p)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := len(filepathSplitSlash(rel))

		if d.Type()&os.ModeSymlink != 0 {
			if w.isSymlinkLoop(p) {
				w.stats.symlinkLoops.Add(1)
				return nil
			}
		}
		if d.IsDir() {
			if !w.cfg.Hidden && d.Name() != "." && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			w.stats.errs.Add(1)
			return nil
		}
		w.emit(ctx, out, rel, depth, info)
		return nil
	})
}

// isSymlinkLoop reports whether resolving p would revisit a directory
// already seen in this walk. Loops are counted, never followed.
func (w *walker) isSymlinkLoop(p string) bool {
	target, err := filepath.EvalSymlinks(p)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[target]; ok {
		return true
	}
	w.seen[target] = struct{}{}
	return false
}

// walkParallel fans out one goroutine per top-level directory entry.
func (w *walker) walkParallel(ctx context.Context, out chan<- WalkedFile) error {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		w.stats.errs.Add(1)
		return nil
	}
	eg, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		name := e.Name()
		if !w.cfg.Hidden && len(name) > 0 && name[0] == '.' {
			continue
		}
		full := filepath.Join(w.root, name)
		eg.Go(func() error {
			return filepath.WalkDir(full, func(p string, d os.DirEntry, err error) error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if err != nil {
					w.stats.errs.Add(1)
					return nil
				}
				rel, relErr := filepath.Rel(w.root, p)
				if relErr != nil {
					return nil
				}
				rel = filepath.ToSlash(rel)
				depth := len(filepathSplitSlash(rel))
				if d.Type()&os.ModeSymlink != 0 {
					if w.isSymlinkLoop(p) {
						w.stats.symlinkLoops.Add(1)
						return nil
					}
				}
				if d.IsDir() {
					if !w.cfg.Hidden && d.Name() != "." && len(d.Name()) > 0 && d.Name()[0] == '.' {
						return filepath.SkipDir
					}
					return nil
				}
				info, err := d.Info()
				if err != nil {
					w.stats.errs.Add(1)
					return nil
				}
				w.emit(gctx, out, rel, depth, info)
				return nil
			})
		})
	}
	return eg.Wait()
}
