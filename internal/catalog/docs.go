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
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.quench.dev/quench/internal/engine"
)

const docsCheckName = "docs"

// reMarkdownLink matches [text](target), tolerating one level of nested
// brackets in the link text like [[text]](target).
var reMarkdownLink = regexp.MustCompile(`\[(?:[^\[\]]|\[[^\]]*\])*\]\(([^)]+)\)`)

// DocsCheck validates markdown documentation per [check.docs.links]:
// every relative link target must resolve to an existing file. External
// URLs, mailto: links, and fragment-only anchors are ignored.
type DocsCheck struct{}

// NewDocsCheck builds the markdown link-validation check.
func NewDocsCheck() *DocsCheck { return &DocsCheck{} }

func (c *DocsCheck) Name() string { return docsCheckName }

func (c *DocsCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	cfg := ctx.Config.Check.Docs.Links
	if cfg.Check == engine.CheckOff {
		return engine.Stubbed(docsCheckName)
	}

	var violations []engine.Violation
	for _, f := range ctx.Files {
		if ctx.ShouldTerminate() {
			break
		}
		if !ctx.InScope(f.Path) {
			continue
		}
		ext := filepath.Ext(f.Path)
		if ext != ".md" && ext != ".markdown" {
			continue
		}
		if len(cfg.Include) > 0 && !matchesAny(cfg.Include, f.Path) {
			continue
		}
		if matchesAny(cfg.Exclude, f.Path) {
			continue
		}

		key := f.CacheKey()
		if ctx.Cache != nil {
			if cached, ok := ctx.Cache.GetCheck(f.Path, key, docsCheckName); ok {
				for _, cv := range cached.Violations {
					violations = append(violations, cv.ToViolation(f.Path))
				}
				continue
			}
		}

		content, err := os.ReadFile(filepath.Join(ctx.Root, f.Path))
		if err != nil {
			continue
		}
		fileViolations := checkLinks(ctx.Root, f.Path, string(content))

		if ctx.Cache != nil {
			cached := make([]engine.CachedViolation, len(fileViolations))
			for i, v := range fileViolations {
				cached[i] = v.ToCached()
			}
			ctx.Cache.PutCheck(f.Path, key, engine.CachedFileResult{CheckName: docsCheckName, Violations: cached})
		}
		violations = append(violations, fileViolations...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Line < violations[j].Line
	})
	return engine.FromLevel(docsCheckName, cfg.Check, violations)
}

// checkLinks extracts every markdown link outside fenced code blocks and
// flags local targets that do not exist on disk.
func checkLinks(root, relPath, content string) []engine.Violation {
	var out []engine.Violation
	inFence := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range reMarkdownLink.FindAllStringSubmatch(line, -1) {
			target := strings.TrimSpace(m[1])
			if !isLocalLink(target) {
				continue
			}
			if _, err := os.Stat(resolveLinkTarget(root, relPath, target)); err == nil {
				continue
			}
			out = append(out, engine.Violation{
				File:          relPath,
				Line:          i + 1,
				ViolationType: "broken_link",
				Target:        target,
				Advice:        "fix the link target or remove the link",
			})
		}
	}
	return out
}

// isLocalLink reports whether target is a relative file path rather than
// an external URL, a mailto: address, or a fragment-only anchor.
func isLocalLink(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return false
	}
	if strings.Contains(target, "://") || strings.HasPrefix(target, "//") {
		return false
	}
	if strings.HasPrefix(target, "mailto:") {
		return false
	}
	return true
}

// resolveLinkTarget turns a link into the on-disk path it refers to:
// root-relative when it starts with "/", otherwise relative to the
// linking file's directory. A trailing #fragment is stripped first.
func resolveLinkTarget(root, relPath, target string) string {
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		target = target[:idx]
	}
	if strings.HasPrefix(target, "/") {
		return filepath.Join(root, target)
	}
	return filepath.Join(root, filepath.Dir(relPath), target)
}
