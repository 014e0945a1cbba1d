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

	"go.quench.dev/quench/internal/engine"
)

// exitError carries the process exit code a failure should produce:
// 0 success, 1 a check failed, 2 configuration error, higher reserved
// for internal errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// errViolationsFound marks a completed run whose CheckOutput.passed is
// false: exit code 1, not a process failure.
var errViolationsFound = errors.New("one or more checks failed")

func violationsFound() error {
	return &exitError{code: 1, err: errViolationsFound}
}

func usageError(err error) error {
	return &exitError{code: 2, err: err}
}

// ExitCode derives the process exit code for an error returned by Main.
// A nil error is success (0); an unrecognized error defaults to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var cfgErr *engine.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}
