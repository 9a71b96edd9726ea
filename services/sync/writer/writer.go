// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package writer performs generator writes under the change tracker's
// protocol so the ordering cannot be violated: register the exact bytes,
// write atomically, confirm completion even when the write fails.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
)

// Guarded writes files on behalf of the generator, bracketing every write
// with RegisterUpcomingWrite and ConfirmWriteComplete.
//
// Thread Safety: safe for concurrent use on distinct paths. Writes to the
// same path must not race; that is a generator-level concern.
type Guarded struct {
	trk *tracker.Tracker
	log *logging.Logger
}

// NewGuarded creates a Guarded writer backed by trk.
func NewGuarded(trk *tracker.Tracker, logger *logging.Logger) *Guarded {
	if logger == nil {
		logger = logging.Default()
	}
	return &Guarded{
		trk: trk,
		log: logger.With("component", "writer"),
	}
}

// WriteFile writes content to path under the tracker protocol.
//
// # Description
//
// Registers the exact bytes with the tracker, creates parent directories
// if needed, writes atomically (temp file + fsync + rename), and confirms
// completion. Confirmation runs even when the write fails, so a failed
// write can never leave the path paused until the safety timer bails it
// out.
//
// # Inputs
//
//   - ctx: Context for the confirm settle delay.
//   - path: Destination file path.
//   - content: Bytes to write. Must match what was registered — this
//     function guarantees that by registering them itself.
//   - perm: File permissions for the destination.
//
// # Outputs
//
//   - error: Registration errors (invalid input) abort before any write;
//     otherwise the first error from the write or the confirm.
func (g *Guarded) WriteFile(ctx context.Context, path string, content []byte, perm os.FileMode) error {
	if err := g.trk.RegisterUpcomingWrite(path, content); err != nil {
		return fmt.Errorf("registering write for %s: %w", path, err)
	}

	writeErr := writeAtomic(path, content, perm)
	if writeErr != nil {
		g.log.Error("generator write failed",
			"path", path,
			"error", writeErr.Error())
	}

	// Cleanup courtesy: lift the pause regardless of write outcome.
	confirmErr := g.trk.ConfirmWriteComplete(ctx, path)

	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if confirmErr != nil {
		return fmt.Errorf("confirming write for %s: %w", path, confirmErr)
	}
	return nil
}

// writeAtomic writes content to path via temp file and rename, so the
// watcher never observes a half-written file.
func writeAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".canvas-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing to disk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
