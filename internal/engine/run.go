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
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// RunnerConfig configures a single scheduling of checks over a walked
// file set.
type RunnerConfig struct {
	Limit        int
	ChangedFiles map[string]struct{}
	Cache        *FileCache
	BaseRef      string
	Staged       bool
	Parallelism  int // 0 means runtime.NumCPU()
}

// Runner schedules a registered list of Checks, enforces the
// cooperative-cancel limit, and assembles a deterministic CheckOutput.
type Runner struct {
	checks []Check
}

// NewRunner builds a Runner over checks, preserving registration order:
// that order becomes the final CheckOutput.Checks order.
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// Run executes every enabled check concurrently, bounded by
// cfg.Parallelism, and returns the envelope in registration order
// regardless of completion order.
func (r *Runner) Run(ctx context.Context, root string, files []WalkedFile, config *Config, registry *Registry, enabled map[string]struct{}, cfg RunnerConfig) CheckOutput {
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(parallelism))

	var violationCount atomic.Int64
	var terminate atomic.Bool

	started := now()
	results := make([]CheckResult, len(r.checks))
	durations := make([]time.Duration, len(r.checks))
	eg, gctx := errgroup.WithContext(ctx)

	for i, check := range r.checks {
		i, check := i, check
		name := check.Name()
		cctx := &CheckContext{
			Root:          root,
			Files:         files,
			Config:        config,
			Registry:      registry,
			Cache:         cfg.Cache,
			EnabledChecks: enabled,
			BaseRef:       cfg.BaseRef,
			Staged:        cfg.Staged,
			ChangedFiles:  cfg.ChangedFiles,
			Limit:         cfg.Limit,
			terminate:     &terminate,
		}

		if !cctx.IsEnabled(name) {
			results[i] = Skipped(name, "disabled by --only/--skip")
			continue
		}

		eg.Go(func() error {
			if terminate.Load() {
				results[i] = Skipped(name, "terminated: violation limit reached")
				return nil
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = Skipped(name, "terminated: "+err.Error())
				return nil
			}
			defer sem.Release(1)
			if terminate.Load() {
				results[i] = Skipped(name, "terminated: violation limit reached")
				return nil
			}

			checkStart := now()
			result := runOneCheck(check, cctx)
			durations[i] = now().Sub(checkStart)
			results[i] = result

			if cfg.Limit > 0 {
				total := violationCount.Add(int64(len(result.Violations)))
				if total >= int64(cfg.Limit) {
					terminate.Store(true)
				}
			}
			return nil
		})
	}

	_ = eg.Wait()

	output := NewCheckOutput(now(), results)
	timing := &RunTiming{
		TotalMillis: now().Sub(started).Milliseconds(),
		CheckMillis: map[string]int64{},
	}
	for i, c := range r.checks {
		if durations[i] > 0 {
			timing.CheckMillis[c.Name()] = durations[i].Milliseconds()
		}
	}
	output.Timing = timing
	return output
}

// runOneCheck invokes check.Run inside a panic boundary. A panic is
// recovered and mapped to Skipped; this path exists for safety, not for
// flow control.
func runOneCheck(check Check, ctx *CheckContext) (result CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{
				Name:    check.Name(),
				Passed:  true,
				Skipped: true,
				Error:   fmt.Sprintf("panic: %v", rec),
			}
		}
	}()
	return check.Run(ctx)
}

// now is a seam so tests can't accidentally depend on wall-clock time
// leaking into golden output; production callers get time.Now().
var now = time.Now
