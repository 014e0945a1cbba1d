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
	"errors"
	"testing"

	"go.quench.dev/quench/internal/engine"
)

func TestExitCode_NilIsZero(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestExitCode_ViolationsFoundIsOne(t *testing.T) {
	if got := ExitCode(violationsFound()); got != 1 {
		t.Errorf("ExitCode(violationsFound()) = %d, want 1", got)
	}
}

func TestExitCode_UsageErrorIsTwo(t *testing.T) {
	if got := ExitCode(usageError(errors.New("bad flag"))); got != 2 {
		t.Errorf("ExitCode(usageError(...)) = %d, want 2", got)
	}
}

func TestExitCode_ConfigErrorIsTwo(t *testing.T) {
	err := &engine.ConfigError{Path: "quench.toml", Reason: "bad version"}
	if got := ExitCode(err); got != 2 {
		t.Errorf("ExitCode(*engine.ConfigError) = %d, want 2", got)
	}
}

func TestExitCode_UnwrappedErrorIsOne(t *testing.T) {
	if got := ExitCode(errors.New("boom")); got != 1 {
		t.Errorf("ExitCode(errors.New(...)) = %d, want 1", got)
	}
}
