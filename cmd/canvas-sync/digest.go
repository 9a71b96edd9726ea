// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
)

func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest FILE",
		Short: "Print the tracker digest of a file",
		Long: `Print the content digest the tracker would record for FILE. Useful when
diagnosing why a change was (or was not) classified as a user edit: compare
this against the expected digest in debug logs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			digest, err := tracker.SHA256Hex(content)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", digest, args[0])
			return nil
		},
	}
}
