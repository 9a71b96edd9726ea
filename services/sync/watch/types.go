// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import "time"

// FileOp is the type of filesystem operation observed.
type FileOp int

const (
	// FileOpCreate indicates a file was created.
	FileOpCreate FileOp = iota

	// FileOpWrite indicates a file was modified.
	FileOpWrite

	// FileOpRemove indicates a file was deleted.
	FileOpRemove

	// FileOpRename indicates a file was renamed.
	FileOpRename
)

// String returns the string representation of the operation.
func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "create"
	case FileOpWrite:
		return "write"
	case FileOpRemove:
		return "remove"
	case FileOpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// fileChange is a raw debounced filesystem event, before classification.
type fileChange struct {
	Path string
	Op   FileOp
	Time time.Time
}

// UserEdit is a change the tracker classified as made outside the
// generator's control. These are what the reverse-sync pipeline consumes.
type UserEdit struct {
	// Path is the absolute path to the edited file.
	Path string

	// Content is the on-disk content at classification time.
	Content []byte

	// Time is when the change was detected.
	Time time.Time
}

// UserEditHandler receives batches of classified user edits.
type UserEditHandler func(edits []UserEdit)

// Options configures the Watcher.
type Options struct {
	// DebounceWindow is how long to wait for more changes before
	// classifying a batch. Default: 100ms.
	DebounceWindow time.Duration

	// IgnorePatterns are names/globs for files and directories to skip.
	// Default: [".git", "node_modules", ".idea", "*.swp", "*.tmp",
	// ".canvas-*"] — the last covers the guarded writer's temp files.
	IgnorePatterns []string

	// BufferSize is the size of the internal change channel. Default: 1000.
	BufferSize int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 100 * time.Millisecond,
		IgnorePatterns: []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", ".canvas-*"},
		BufferSize:     1000,
	}
}
