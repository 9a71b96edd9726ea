// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command canvas-sync runs the Canvas reverse-sync boundary: it watches a
// component directory, separates user edits from the generator's own
// writes, and exposes a status API.
//
// Usage:
//
//	canvas-sync watch --root /path/to/components
//	canvas-sync watch --config canvas-sync.yaml
//	canvas-sync digest /path/to/Button.tsx
//	canvas-sync version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "canvas-sync",
		Short:         "Canvas reverse-sync change classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newWatchCmd())
	root.AddCommand(newDigestCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the canvas-sync version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("canvas-sync %s\n", version)
		},
	}
}
