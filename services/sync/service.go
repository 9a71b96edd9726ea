// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package canvas_sync wires the change tracker, directory watcher, and
// guarded writer into one service with an HTTP status surface.
package canvas_sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/tracker"
	"github.com/AleutianAI/AleutianCanvas/services/sync/watch"
	"github.com/AleutianAI/AleutianCanvas/services/sync/writer"
)

// ServiceConfig configures the sync service.
type ServiceConfig struct {
	// Root is the directory to watch. Empty disables watching; the
	// tracker and writer are still available (generator-only mode).
	Root string

	// Tracker configures the change tracker.
	Tracker tracker.Config

	// Watch configures the watcher. Nil uses watch.DefaultOptions.
	Watch *watch.Options

	// Logger is the service logger. Nil uses logging.Default().
	Logger *logging.Logger

	// OnUserEdit receives classified user edits from the watcher. The
	// reverse-sync pipeline hangs off this callback.
	OnUserEdit watch.UserEditHandler
}

// DefaultServiceConfig returns a generator-only configuration with
// tracker defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Tracker: tracker.DefaultConfig(),
	}
}

// Service owns the tracker and, when a root is configured, the watcher.
type Service struct {
	cfg ServiceConfig
	trk *tracker.Tracker
	wr  *writer.Guarded
	log *logging.Logger

	mu      sync.Mutex
	watcher *watch.Watcher
}

// NewService creates the sync service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Tracker.Logger == nil {
		cfg.Tracker.Logger = cfg.Logger
	}

	trk, err := tracker.New(cfg.Tracker)
	if err != nil {
		return nil, fmt.Errorf("creating tracker: %w", err)
	}

	return &Service{
		cfg: cfg,
		trk: trk,
		wr:  writer.NewGuarded(trk, cfg.Logger),
		log: cfg.Logger.With("component", "sync"),
	}, nil
}

// Start begins watching if a root is configured. Safe to call once.
func (s *Service) Start(ctx context.Context) error {
	if s.cfg.Root == "" {
		s.log.Info("no watch root configured, running generator-only")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := watch.New(s.cfg.Root, s.trk, s.cfg.OnUserEdit, s.cfg.Logger, s.cfg.Watch)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	s.watcher = w
	return nil
}

// Stop stops the watcher and clears the tracker, cancelling all
// outstanding safety timers.
func (s *Service) Stop() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		w.Stop()
	}
	s.trk.Clear()
}

// Tracker returns the change tracker.
func (s *Service) Tracker() *tracker.Tracker {
	return s.trk
}

// Writer returns the guarded writer the generator should use.
func (s *Service) Writer() *writer.Guarded {
	return s.wr
}

// Watching reports whether the directory watcher is active.
func (s *Service) Watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil && s.watcher.IsWatching()
}

// Stats returns a snapshot of tracker state.
func (s *Service) Stats() tracker.Stats {
	return s.trk.Stats()
}
