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

func TestCountLines_Go(t *testing.T) {
	t.Parallel()
	content := "package p\n\n// a doc comment\nfunc f() {\n\treturn\n}\n"
	counts := CountLines(content, StyleForExtension(".go"))
	if counts.Blank != 1 {
		t.Errorf("Blank = %d, want 1", counts.Blank)
	}
	if counts.Comment != 1 {
		t.Errorf("Comment = %d, want 1", counts.Comment)
	}
	if counts.Code != 4 {
		t.Errorf("Code = %d, want 4", counts.Code)
	}
	if counts.Total() != 6 {
		t.Errorf("Total() = %d, want 6", counts.Total())
	}
}

func TestCountLines_BlockComment(t *testing.T) {
	t.Parallel()
	content := "x := 1\n/* block\nstill a comment\n*/\ny := 2\n"
	counts := CountLines(content, StyleForExtension(".go"))
	if counts.Comment != 3 {
		t.Errorf("Comment = %d, want 3", counts.Comment)
	}
	if counts.Code != 2 {
		t.Errorf("Code = %d, want 2", counts.Code)
	}
}

func TestCountLines_BlockCommentSingleLine(t *testing.T) {
	t.Parallel()
	content := "x := 1 /* inline */ + 2\n"
	counts := CountLines(content, StyleForExtension(".go"))
	if counts.Code != 1 {
		t.Errorf("Code = %d, want 1 (code follows the closed block comment)", counts.Code)
	}
}

func TestCountLines_PythonHash(t *testing.T) {
	t.Parallel()
	content := "x = 1\n# a comment\n\ny = 2\n"
	counts := CountLines(content, StyleForExtension(".py"))
	if counts.Blank != 1 || counts.Comment != 1 || counts.Code != 2 {
		t.Errorf("counts = %+v, want {Blank:1 Comment:1 Code:2}", counts)
	}
}

func TestCountLines_IdempotentWithOrWithoutTrailingNewline(t *testing.T) {
	t.Parallel()
	style := StyleForExtension(".go")
	a := CountLines("a\nb\nc", style)
	b := CountLines("a\nb\nc\n", style)
	if a != b {
		t.Errorf("CountLines differs with/without trailing newline: %+v vs %+v", a, b)
	}
}

func TestIsMatchInComment_LineCommentMarker(t *testing.T) {
	t.Parallel()
	line := `x := 1 // panic(`
	if !IsMatchInComment(line, 13) {
		t.Error("expected offset 13 (inside the comment) to report true")
	}
	if IsMatchInComment(line, 0) {
		t.Error("expected offset 0 (before the comment) to report false")
	}
}

func TestIsMatchInComment_GoDirectiveException(t *testing.T) {
	t.Parallel()
	if IsMatchInComment("//go:build linux", 3) {
		t.Error("//go: directives must not be treated as comments")
	}
}

func TestIsMatchInComment_NoMarker(t *testing.T) {
	t.Parallel()
	if IsMatchInComment("plain code with no comment", 5) {
		t.Error("expected false: no comment marker on the line")
	}
}

func TestHasJustificationComment_TrailingComment(t *testing.T) {
	t.Parallel()
	content := "goto retry // quench:allow-goto: bounded\n"
	if !HasJustificationComment(content, 1, "quench:allow-goto", StyleForExtension(".go")) {
		t.Error("expected trailing comment to satisfy the justification")
	}
}

func TestHasJustificationComment_PrecedingCommentLine(t *testing.T) {
	t.Parallel()
	content := "// quench:allow-goto: bounded retry\ngoto retry\n"
	if !HasJustificationComment(content, 2, "quench:allow-goto", StyleForExtension(".go")) {
		t.Error("expected preceding whole-line comment to satisfy the justification")
	}
}

func TestHasJustificationComment_StopsAtNonCommentLine(t *testing.T) {
	t.Parallel()
	content := "// quench:allow-goto: bounded retry\nx := 1\ngoto retry\n"
	if HasJustificationComment(content, 3, "quench:allow-goto", StyleForExtension(".go")) {
		t.Error("expected the intervening code line to block the upward walk")
	}
}

func TestHasJustificationComment_IdempotentWithTrailingNewline(t *testing.T) {
	t.Parallel()
	style := StyleForExtension(".go")
	content := "// quench:allow-goto: bounded retry\ngoto retry"
	a := HasJustificationComment(content, 2, "quench:allow-goto", style)
	b := HasJustificationComment(content+"\n", 2, "quench:allow-goto", style)
	if a != b {
		t.Errorf("result differs with/without trailing newline: %v vs %v", a, b)
	}
	if !a {
		t.Error("expected the justification to be found in both forms")
	}
}

func TestHasJustificationComment_MissingIsFalse(t *testing.T) {
	t.Parallel()
	content := "goto retry\n"
	if HasJustificationComment(content, 1, "quench:allow-goto", StyleForExtension(".go")) {
		t.Error("expected no justification to be found")
	}
}
