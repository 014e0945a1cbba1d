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

	flag "github.com/spf13/pflag"
)

// initCmd is the contract surface for scaffolding a new config file.
// Config scaffolding is a named Non-goal of the core, so this command
// parses its documented flags and reports the surface as unimplemented
// rather than writing a guessed-at config.
type initCmd struct {
	force    bool
	profiles []string
}

func (c *initCmd) Name() string        { return "init" }
func (c *initCmd) Description() string { return "scaffold a config file (not yet available)" }

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "overwrite an existing config file")
	f.StringSliceVar(&c.profiles, "with", nil, "starter profiles to seed the config with")
}

func (c *initCmd) Execute(_ context.Context, _ *flag.FlagSet) error {
	return usageError(fmt.Errorf("init: config scaffolding is not implemented; write quench.toml by hand"))
}
