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
	"os"
	"path/filepath"
	"testing"
)

func mustWrite(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	content := make([]byte, size)
	for i := range content {
		content[i] = 'a'
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func collectWalk(t *testing.T, root string, cfg WalkConfig) ([]WalkedFile, WalkStats) {
	t.Helper()
	out, wait := Walk(context.Background(), root, cfg)
	var files []WalkedFile
	for f := range out {
		files = append(files, f)
	}
	stats, err := wait()
	if err != nil {
		t.Fatalf("walk error: %v", err)
	}
	return files, stats
}

func TestWalk_FindsRegularFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, "a.go", 10)
	mustWrite(t, root, "pkg/b.go", 20)

	files, stats := collectWalk(t, root, WalkConfig{ForceSequential: true})
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if stats.FilesFound != 2 {
		t.Errorf("FilesFound = %d, want 2", stats.FilesFound)
	}
}

func TestWalk_SkipsHiddenByDefault(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, ".hidden/a.go", 10)
	mustWrite(t, root, "visible.go", 10)

	files, _ := collectWalk(t, root, WalkConfig{ForceSequential: true, Hidden: false})
	if len(files) != 1 || files[0].Path != "visible.go" {
		t.Errorf("files = %v, want only visible.go", files)
	}
}

func TestWalk_HonorsIgnorePatterns(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, "build/out.go", 10)
	mustWrite(t, root, "main.go", 10)

	files, _ := collectWalk(t, root, WalkConfig{ForceSequential: true, IgnorePatterns: []string{"build/**"}})
	if len(files) != 1 || files[0].Path != "main.go" {
		t.Errorf("files = %v, want only main.go", files)
	}
}

func TestWalk_SkipsOversizedFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, "huge.bin", sizeCapBytes+1)
	mustWrite(t, root, "small.go", 10)

	files, stats := collectWalk(t, root, WalkConfig{ForceSequential: true})
	if len(files) != 1 || files[0].Path != "small.go" {
		t.Errorf("files = %v, want only small.go", files)
	}
	if stats.FilesSkippedSize != 1 {
		t.Errorf("FilesSkippedSize = %d, want 1", stats.FilesSkippedSize)
	}
}

func TestWalk_RespectsMaxDepth(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mustWrite(t, root, "a.go", 10)
	mustWrite(t, root, "x/y/deep.go", 10)

	files, _ := collectWalk(t, root, WalkConfig{ForceSequential: true, MaxDepth: 1})
	if len(files) != 1 || files[0].Path != "a.go" {
		t.Errorf("files = %v, want only a.go at depth 1", files)
	}
}

func TestWalk_ParallelModeFindsSameFilesAsSequential(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		mustWrite(t, root, filepath.Join("pkg", string(rune('a'+i))+".go"), 10)
	}

	seqFiles, _ := collectWalk(t, root, WalkConfig{ForceSequential: true})
	parFiles, _ := collectWalk(t, root, WalkConfig{ForceParallel: true})

	seqSet := map[string]bool{}
	for _, f := range seqFiles {
		seqSet[f.Path] = true
	}
	parSet := map[string]bool{}
	for _, f := range parFiles {
		parSet[f.Path] = true
	}
	if len(seqSet) != len(parSet) {
		t.Fatalf("sequential found %d files, parallel found %d", len(seqSet), len(parSet))
	}
	for p := range seqSet {
		if !parSet[p] {
			t.Errorf("parallel walk missed %q found by sequential walk", p)
		}
	}
}

func TestClassifySize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size int64
		want SizeClass
	}{
		{0, SizeSmall},
		{smallThreshold - 1, SizeSmall},
		{smallThreshold, SizeNormal},
		{normalThreshold - 1, SizeNormal},
		{normalThreshold, SizeOversized},
	}
	for _, tt := range tests {
		if got := classifySize(tt.size); got != tt.want {
			t.Errorf("classifySize(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}
