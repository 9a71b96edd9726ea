// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":    LevelDebug,
		"info":     LevelInfo,
		"warn":     LevelWarn,
		"warning":  LevelWarn,
		"error":    LevelError,
		"":         LevelInfo,
		"nonsense": LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(42):  "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestExporter(t *testing.T) {
	t.Run("receives entries with attributes", func(t *testing.T) {
		exp := NewBufferedExporter()
		logger := New(Config{
			Level:    LevelDebug,
			Service:  "canvas-sync",
			Quiet:    true,
			Exporter: exp,
		})
		defer logger.Close()

		logger.Info("watch started", "root", "/projects/demo", "files", 12)

		entries := exp.Entries()
		if len(entries) != 1 {
			t.Fatalf("len(entries) = %d, want 1", len(entries))
		}
		entry := entries[0]
		if entry.Message != "watch started" {
			t.Errorf("Message = %q", entry.Message)
		}
		if entry.Level != LevelInfo {
			t.Errorf("Level = %v, want Info", entry.Level)
		}
		if entry.Service != "canvas-sync" {
			t.Errorf("Service = %q", entry.Service)
		}
		if entry.Attrs["root"] != "/projects/demo" {
			t.Errorf(`Attrs["root"] = %v`, entry.Attrs["root"])
		}
		if entry.Attrs["files"] != 12 {
			t.Errorf(`Attrs["files"] = %v`, entry.Attrs["files"])
		}
		if entry.Timestamp.IsZero() {
			t.Error("entry has no timestamp")
		}
	})

	t.Run("respects the level filter", func(t *testing.T) {
		exp := NewBufferedExporter()
		logger := New(Config{Level: LevelWarn, Quiet: true, Exporter: exp})
		defer logger.Close()

		logger.Debug("dropped")
		logger.Info("dropped too")
		logger.Warn("kept")
		logger.Error("kept too")

		entries := exp.Entries()
		if len(entries) != 2 {
			t.Fatalf("len(entries) = %d, want 2", len(entries))
		}
		if entries[0].Message != "kept" || entries[1].Message != "kept too" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})

	t.Run("shared by child loggers", func(t *testing.T) {
		exp := NewBufferedExporter()
		logger := New(Config{Level: LevelInfo, Quiet: true, Exporter: exp})
		defer logger.Close()

		child := logger.With("component", "tracker")
		child.Info("pause lifted", "path", "/a")

		entries := exp.Entries()
		if len(entries) != 1 {
			t.Fatalf("len(entries) = %d, want 1", len(entries))
		}
		if entries[0].Attrs["path"] != "/a" {
			t.Errorf(`Attrs["path"] = %v`, entries[0].Attrs["path"])
		}
	})
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "canvas-sync",
		Quiet:   true,
	})

	logger.Info("persisted message", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	name := "canvas-sync_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "persisted message") {
		t.Errorf("log file missing the message: %s", content)
	}
	if !strings.Contains(content, `"service":"canvas-sync"`) {
		t.Errorf("log file missing the service attribute: %s", content)
	}
}

func TestArgsToMap(t *testing.T) {
	m := argsToMap([]any{"a", 1, "b", "two", 3, "ignored-non-string-key", "dangling"})
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("map = %v", m)
	}
}
