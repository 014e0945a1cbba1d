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

// GenericAdapter is constructed entirely from user-supplied source/test
// globs. It has no native suppress-directive syntax and no default
// escape patterns: both are supplied purely via config.
type GenericAdapter struct {
	name       string
	extensions []string
	test       globSet
	source     globSet
	escapes    []EscapePattern
}

// NewGenericAdapter builds a Generic adapter for a project-specific file
// class (e.g. `.proto` files, build manifests).
func NewGenericAdapter(name string, extensions, testGlobs, sourceGlobs []string, escapes []EscapePattern) *GenericAdapter {
	return &GenericAdapter{
		name:       name,
		extensions: extensions,
		test:       newGlobSet(testGlobs),
		source:     newGlobSet(sourceGlobs),
		escapes:    escapes,
	}
}

func (a *GenericAdapter) Name() string         { return a.name }
func (a *GenericAdapter) Extensions() []string { return a.extensions }

func (a *GenericAdapter) Classify(p string) Classification {
	return classifyByGlobs(p, a.test, a.source)
}

func (a *GenericAdapter) DefaultEscapePatterns() []EscapePattern {
	return a.escapes
}

func (a *GenericAdapter) ParseSuppresses(content, requiredComment string) []Suppress {
	return nil
}
