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

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
	"github.com/AleutianAI/AleutianCanvas/services/sync/writer"
)

// editCollector gathers handler deliveries for assertion.
type editCollector struct {
	edits chan UserEdit
}

func newEditCollector() *editCollector {
	return &editCollector{edits: make(chan UserEdit, 100)}
}

func (c *editCollector) handle(edits []UserEdit) {
	for _, edit := range edits {
		c.edits <- edit
	}
}

// waitForEdit blocks until an edit for path arrives or the timeout expires.
func (c *editCollector) waitForEdit(t *testing.T, path string) UserEdit {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case edit := <-c.edits:
			if edit.Path == path {
				return edit
			}
		case <-deadline:
			t.Fatalf("no edit delivered for %s", path)
			return UserEdit{}
		}
	}
}

// expectSilence asserts no edit arrives within the window. The window must
// comfortably exceed the debounce so a pending batch would have flushed.
func (c *editCollector) expectSilence(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case edit := <-c.edits:
		t.Fatalf("unexpected edit delivered: %s", edit.Path)
	case <-time.After(window):
	}
}

// startWatcher wires a real fsnotify watcher over a temp dir with short
// debounce and tracker delays.
func startWatcher(t *testing.T, opts *Options) (string, *Watcher, *tracker.Tracker, *editCollector) {
	t.Helper()
	root := t.TempDir()
	logger := logging.New(logging.Config{Level: logging.LevelError, Quiet: true})

	trk, err := tracker.New(tracker.Config{
		PauseDuration:     5 * time.Millisecond,
		AutoResumeTimeout: 2 * time.Second,
		Logger:            logger,
	})
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}
	t.Cleanup(trk.Clear)

	if opts == nil {
		defaults := DefaultOptions()
		defaults.DebounceWindow = 20 * time.Millisecond
		opts = &defaults
	}

	collector := newEditCollector()
	w, err := New(root, trk, collector.handle, logger, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	return root, w, trk, collector
}

func TestWatcher_DeliversUserEdits(t *testing.T) {
	root, _, _, collector := startWatcher(t, nil)

	path := filepath.Join(root, "Button.tsx")
	content := []byte("const Button = () => <button>Click</button>")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	edit := collector.waitForEdit(t, path)
	if string(edit.Content) != string(content) {
		t.Errorf("content = %q, want %q", edit.Content, content)
	}
	if edit.Time.IsZero() {
		t.Error("edit carries no detection time")
	}
}

func TestWatcher_IgnoresGeneratorWrites(t *testing.T) {
	root, _, trk, collector := startWatcher(t, nil)
	wr := writer.NewGuarded(trk, nil)

	path := filepath.Join(root, "Generated.tsx")
	if err := wr.WriteFile(context.Background(), path, []byte("generated body"), 0o644); err != nil {
		t.Fatalf("guarded write failed: %v", err)
	}
	collector.expectSilence(t, 300*time.Millisecond)

	// The watcher is alive: an external overwrite must come through.
	if err := os.WriteFile(path, []byte("user rewrote it"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	edit := collector.waitForEdit(t, path)
	if string(edit.Content) != "user rewrote it" {
		t.Errorf("content = %q, want the user's version", edit.Content)
	}
}

func TestWatcher_IgnorePatterns(t *testing.T) {
	root, _, _, collector := startWatcher(t, nil)

	if err := os.WriteFile(filepath.Join(root, "buffer.swp"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	collector.expectSilence(t, 300*time.Millisecond)

	path := filepath.Join(root, "Real.tsx")
	if err := os.WriteFile(path, []byte("real"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	collector.waitForEdit(t, path)
}

func TestWatcher_HotAddsNewDirectories(t *testing.T) {
	root, _, _, collector := startWatcher(t, nil)

	sub := filepath.Join(root, "panels")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the watcher a beat to pick up the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "Panel.tsx")
	if err := os.WriteFile(path, []byte("panel"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	collector.waitForEdit(t, path)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	_, w, _, _ := startWatcher(t, nil)
	if !w.IsWatching() {
		t.Fatal("watcher should report watching after Start")
	}
	w.Stop()
	w.Stop()
	if w.IsWatching() {
		t.Error("watcher still reports watching after Stop")
	}
}

func TestShouldIgnore(t *testing.T) {
	w := &Watcher{ignore: DefaultOptions().IgnorePatterns}
	cases := []struct {
		path string
		want bool
	}{
		{"/p/src/Button.tsx", false},
		{"/p/.git", true},
		{"/p/.git/objects/ab", true},
		{"/p/node_modules/react/index.js", true},
		{"/p/src/.Button.tsx.swp", true},
		{"/p/src/upload.tmp", true},
		{"/p/src/.canvas-10234", true},
		{"/p/src/gitignore.txt", false},
	}
	for _, tc := range cases {
		if got := w.shouldIgnore(tc.path); got != tc.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	now := time.Now()
	changes := []fileChange{
		{Path: "/a", Op: FileOpCreate, Time: now},
		{Path: "/b", Op: FileOpWrite, Time: now},
		{Path: "/a", Op: FileOpWrite, Time: now.Add(time.Millisecond)},
	}
	result := dedupe(changes)
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Path != "/a" || result[0].Op != FileOpWrite {
		t.Errorf("first entry = %+v, want the latest /a change in first position", result[0])
	}
	if result[1].Path != "/b" {
		t.Errorf("second entry = %+v, want /b", result[1])
	}
}

func TestFileOpString(t *testing.T) {
	cases := map[FileOp]string{
		FileOpCreate: "create",
		FileOpWrite:  "write",
		FileOpRemove: "remove",
		FileOpRename: "rename",
		FileOp(42):   "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("FileOp(%d).String() = %q, want %q", op, got, want)
		}
	}
}
