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
	"sort"

	"go.quench.dev/quench/internal/engine"
)

const policyCheckName = "policy"

// langPolicy pairs one adapter with the per-language policy config
// section that governs it.
type langPolicy struct {
	adapter engine.Adapter
	policy  engine.LangPolicyConfig
}

// PolicyCheck wraps engine.CheckLintMixing for every configured
// language, reporting commits that mix lint-config changes with
// source/test changes under `lint_changes = "standalone"`.
type PolicyCheck struct {
	langs []langPolicy
}

// NewPolicyCheck builds the policy check over the given adapter/config
// pairs, one per supported language.
func NewPolicyCheck(langs ...langPolicy) *PolicyCheck {
	return &PolicyCheck{langs: langs}
}

// LangPolicy pairs an adapter with its language's policy config; it's
// the exported constructor for langPolicy entries.
func LangPolicy(adapter engine.Adapter, policy engine.LangPolicyConfig) langPolicy {
	return langPolicy{adapter: adapter, policy: policy}
}

func (c *PolicyCheck) Name() string { return policyCheckName }

func (c *PolicyCheck) Run(ctx *engine.CheckContext) engine.CheckResult {
	if ctx.ChangedFiles == nil {
		return engine.Stubbed(policyCheckName)
	}
	changed := make([]string, 0, len(ctx.ChangedFiles))
	for f := range ctx.ChangedFiles {
		changed = append(changed, f)
	}
	sort.Strings(changed)

	var violations []engine.Violation
	for _, lp := range c.langs {
		pv, flagged := engine.CheckLintMixing(lp.adapter, changed, lp.policy.LintConfig, lp.policy.LintChanges)
		if !flagged {
			continue
		}
		for _, lintFile := range pv.LintConfigFiles {
			violations = append(violations, engine.Violation{
				File:          lintFile,
				ViolationType: "lint_config_mixed_with_source",
				Advice:        "commit lint-config changes separately from source/test changes",
			})
		}
	}

	sort.Slice(violations, func(i, j int) bool { return violations[i].File < violations[j].File })
	return engine.Failed(policyCheckName, violations)
}
