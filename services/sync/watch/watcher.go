// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch connects a filesystem watcher to the change tracker.
//
// # Description
//
// Watches a component directory recursively, debounces the event stream,
// reads the current content of each changed file, and asks the tracker
// whether the change came from outside the generator. Only user edits
// reach the registered handler; the generator's own writes are dropped
// here, which is what keeps the generate → watch → generate loop open.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher watches a directory tree and emits classified user edits.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	trk      *tracker.Tracker
	handler  UserEditHandler
	debounce time.Duration
	ignore   []string
	log      *logging.Logger

	changes  chan fileChange
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// New creates a Watcher for the given root directory.
//
// # Inputs
//
//   - root: Absolute path to the directory to watch.
//   - trk: The change tracker that classifies events. Must not be nil.
//   - handler: Receives batches of user edits after debounce.
//   - logger: Destination for watcher logs. Nil uses logging.Default().
//   - opts: Optional configuration (nil uses DefaultOptions).
//
// # Outputs
//
//   - *Watcher: Ready-to-use watcher (call Start to begin watching).
//   - error: Non-nil if the underlying fsnotify watcher could not be created.
func New(root string, trk *tracker.Tracker, handler UserEditHandler, logger *logging.Logger, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if logger == nil {
		logger = logging.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		fsw:      fsw,
		trk:      trk,
		handler:  handler,
		debounce: opts.DebounceWindow,
		ignore:   opts.IgnorePatterns,
		log:      logger.With("component", "watch", "watcher_id", uuid.NewString()[:8]),
		changes:  make(chan fileChange, opts.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The root and all subdirectories are added
// recursively; new directories are hot-added as they appear. Watching
// stops when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.log.Info("watch started", "root", w.root)
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// addRecursive adds a directory and its subdirectories to the watch list.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// shouldIgnore checks a path against the ignore patterns.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// processEvents converts fsnotify events to fileChange and feeds the
// debounce channel.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			change := fileChange{
				Path: event.Name,
				Op:   convertOp(event.Op),
				Time: time.Now(),
			}

			select {
			case w.changes <- change:
			default:
				w.log.Warn("change buffer full, dropping event", "path", event.Name)
			}

			// Hot-add newly created directories.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						w.log.Warn("failed to watch new directory",
							"path", event.Name,
							"error", err.Error())
					}
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err.Error())
		}
	}
}

// convertOp maps fsnotify.Op to FileOp.
func convertOp(op fsnotify.Op) FileOp {
	switch {
	case op.Has(fsnotify.Create):
		return FileOpCreate
	case op.Has(fsnotify.Remove):
		return FileOpRemove
	case op.Has(fsnotify.Rename):
		return FileOpRename
	default:
		return FileOpWrite
	}
}

// debounceLoop batches changes and classifies them after the debounce
// window expires.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []fileChange
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			w.classifyBatch(dedupe(batch))
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// classifyBatch reads each changed file, asks the tracker to classify it,
// and delivers the surviving user edits to the handler.
func (w *Watcher) classifyBatch(changes []fileChange) {
	edits := make([]UserEdit, 0, len(changes))
	for _, change := range changes {
		recordWatchEvent(change.Op)

		if change.Op == FileOpRemove || change.Op == FileOpRename {
			// No content to classify. Deletions of generated files are
			// handled by the generator's own bookkeeping, not here.
			w.log.Debug("skipping contentless event",
				"path", change.Path,
				"op", change.Op.String())
			continue
		}

		content, err := os.ReadFile(change.Path)
		if err != nil {
			w.log.Warn("failed to read changed file",
				"path", change.Path,
				"error", err.Error())
			continue
		}

		if !w.trk.ClassifyChange(change.Path, content) {
			continue
		}

		edits = append(edits, UserEdit{
			Path:    change.Path,
			Content: content,
			Time:    change.Time,
		})
	}

	if len(edits) > 0 {
		recordUserEdits(len(edits))
		if w.handler != nil {
			w.handler(edits)
		}
	}
}

// dedupe keeps the most recent change per path, preserving order of first
// appearance.
func dedupe(changes []fileChange) []fileChange {
	seen := make(map[string]int)
	result := make([]fileChange, 0, len(changes))
	for _, change := range changes {
		if idx, ok := seen[change.Path]; ok {
			result[idx] = change
		} else {
			seen[change.Path] = len(result)
			result = append(result, change)
		}
	}
	return result
}
