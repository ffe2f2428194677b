// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"

	"github.com/noldarim/commandeer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintFatal(os.Stderr, err)
		os.Exit(1)
	}
}
