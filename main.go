// Copyright 2023 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command quench is quench's CLI executable.
package main

import (
	"fmt"
	"os"

	"go.quench.dev/quench/internal/cli"
)

func main() {
	if err := cli.Main(); err != nil {
		fmt.Fprintf(os.Stderr, "quench: %s\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
