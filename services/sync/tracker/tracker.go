// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tracker classifies file changes as generator output or user edits.
//
// # Description
//
// When the Canvas generator writes component code to disk, the directory
// watcher sees its own tool's writes as ordinary filesystem changes. Reacting
// to them would re-trigger generation in a loop. The tracker breaks that loop:
// the generator announces each write up front, and the watcher asks the
// tracker whether an observed change came from outside the generator's
// control.
//
// # State machine (per path)
//
// Two states, Idle and Generating:
//
//	Idle ──RegisterUpcomingWrite──▶ Generating
//	Generating ──ConfirmWriteComplete──▶ Idle
//	Generating ──safety timer fires──▶ Idle
//
// ClassifyChange reads the state but never changes it. An unseen path is
// Idle with no expected digest and is treated as user-owned.
//
// # Failure semantics
//
// Registration errors (empty path, nil content) are surfaced to the
// generator, which must not proceed with the write. Classification never
// surfaces errors: any internal failure is logged and fails open as a user
// edit, because silently dropping a genuine edit is worse than a spurious
// resync.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Operations on different paths do
// not interfere. Operations on the same path are not internally serialized;
// the caller issues register → write → confirm as a sequential unit per path.
package tracker

import (
	"context"
	"sync"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/sched"
	"github.com/google/uuid"
)

// pauseState is the per-path Generating marker: a safety timer plus a
// generation number so a superseded timer cannot clear a newer pause.
type pauseState struct {
	gen   uint64
	timer sched.TimerHandle
}

// Tracker distinguishes generator writes from user edits.
//
// Construct with New; each instance owns its own state and timers, so
// multiple trackers (one per project) coexist safely.
type Tracker struct {
	mu       sync.Mutex
	expected map[string]string      // path -> digest of the last generator write
	paused   map[string]*pauseState // paths currently mid-write
	nextGen  uint64

	cfg    Config
	sched  sched.Scheduler
	log    *logging.Logger
	digest DigestFunc
	id     string
}

// New creates a Tracker from config.
//
// # Inputs
//
//   - cfg: Tracker configuration. Zero values get defaults (100ms settle
//     delay, 5s auto-resume timeout, SHA-256 digest, wall clock).
//
// # Outputs
//
//   - *Tracker: Ready-to-use tracker.
//   - error: Non-nil if the configuration is invalid.
//
// # Example
//
//	trk, err := tracker.New(tracker.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer trk.Clear()
func New(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	id := uuid.NewString()[:8]
	return &Tracker{
		expected: make(map[string]string),
		paused:   make(map[string]*pauseState),
		cfg:      cfg,
		sched:    cfg.Scheduler,
		log:      cfg.Logger.With("component", "tracker", "tracker_id", id),
		digest:   cfg.Digest,
		id:       id,
	}, nil
}

// ID returns the short identifier used for log correlation.
func (t *Tracker) ID() string {
	return t.id
}

// RegisterUpcomingWrite records that the generator is about to write the
// exact byte sequence content to path.
//
// # Description
//
// Stores the content digest as the expected digest for the path, marks the
// path paused, and arms a safety timer that force-clears the pause if
// ConfirmWriteComplete never arrives. Re-registering a path replaces its
// digest and timer; the previous timer is cancelled first.
//
// After this call returns, ClassifyChange reports every change to the path
// as tool-originated until the pause is lifted.
//
// # Inputs
//
//   - path: Absolute file path. Must not be empty.
//   - content: Exact bytes the generator will write. Must not be nil
//     (empty is fine).
//
// # Outputs
//
//   - error: ErrEmptyPath or ErrNilContent on invalid input; the caller
//     must not proceed with the write. Digest failures do not error: the
//     path is still paused, only the digest update is skipped.
func (t *Tracker) RegisterUpcomingWrite(path string, content []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if content == nil {
		return ErrNilContent
	}

	digest, digestErr := t.safeDigest(content)

	t.mu.Lock()
	if prev, ok := t.paused[path]; ok {
		// Re-entrant registration during rapid regeneration: the old
		// timer must not fire against the new pause.
		if prev.timer != nil {
			prev.timer.Stop()
		}
	} else {
		pausedPaths.Inc()
	}

	if digestErr != nil {
		// Best effort: the pause still holds, but a stale digest from an
		// earlier generation must not linger, or the next classification
		// would compare against outdated content.
		delete(t.expected, path)
	} else {
		t.expected[path] = digest
	}

	t.nextGen++
	gen := t.nextGen
	ps := &pauseState{gen: gen}
	t.paused[path] = ps
	ps.timer = t.sched.AfterFunc(t.cfg.AutoResumeTimeout, func() {
		t.autoResume(path, gen)
	})
	t.mu.Unlock()

	recordRegistration()

	if digestErr != nil {
		t.log.Warn("digest computation failed during registration",
			"path", path,
			"error", digestErr.Error())
	} else if t.cfg.Debug {
		t.log.Debug("registered upcoming write",
			"path", path,
			"bytes", len(content),
			"digest", digest)
	}

	return nil
}

// ConfirmWriteComplete lifts the pause on a path after the generator's
// write has finished (or failed).
//
// # Description
//
// Waits the configured settle delay so lagging filesystem events from the
// tool's own write are still classified against the pause, then unpauses
// the path and cancels its safety timer. Calling this without a matching
// registration is a successful no-op. Only the calling goroutine is
// suspended during the delay; other paths remain fully operable.
//
// # Inputs
//
//   - ctx: Context for the settle delay. On cancellation the pause is
//     lifted immediately and ctx.Err() is returned; confirmation is a
//     cleanup courtesy and must not leave the path paused.
//   - path: The path passed to RegisterUpcomingWrite. Must not be empty.
//
// # Outputs
//
//   - error: ErrEmptyPath on invalid input, ctx.Err() if the settle delay
//     was cut short, nil otherwise. In all non-input-error cases the path
//     is unpaused when this returns.
func (t *Tracker) ConfirmWriteComplete(ctx context.Context, path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	sleepErr := t.sched.Sleep(ctx, t.cfg.PauseDuration)
	t.resume(path, "confirmed")
	return sleepErr
}

// ClassifyChange reports whether the given content for path represents a
// change made outside the generator's control.
//
// # Description
//
// Decision order, cheapest first:
//
//  1. Path paused → false, no digest computed.
//  2. No expected digest recorded → true (unknown files are user-owned).
//  3. Digest comparison: equal → false, different → true.
//
// Any internal failure fails open and returns true. This is a pure read;
// tracker state is never modified.
//
// # Inputs
//
//   - path: The changed file's path.
//   - content: Its current on-disk content.
//
// # Outputs
//
//   - bool: true if the change is a user edit the watcher should act on,
//     false if it is tool-originated and must be ignored.
func (t *Tracker) ClassifyChange(path string, content []byte) bool {
	t.mu.Lock()
	_, isPaused := t.paused[path]
	expected, hasDigest := t.expected[path]
	t.mu.Unlock()

	var decision Decision
	switch {
	case isPaused:
		decision = DecisionPaused
	case !hasDigest:
		decision = DecisionNoDigest
	default:
		actual, err := t.safeDigest(content)
		switch {
		case err != nil:
			decision = DecisionDigestError
			t.log.Warn("digest computation failed during classification",
				"path", path,
				"error", err.Error())
		case actual == expected:
			decision = DecisionDigestMatch
		default:
			decision = DecisionDigestMismatch
		}
	}

	recordClassification(decision)
	if t.cfg.Debug {
		t.log.Debug("classified change",
			"path", path,
			"decision", decision.String(),
			"user_edit", decision.IsUserEdit())
	}

	return decision.IsUserEdit()
}

// IsPaused reports whether path is currently mid-write by the generator.
func (t *Tracker) IsPaused(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.paused[path]
	return ok
}

// Stats returns a snapshot of tracker state for diagnostics.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	paused := make([]string, 0, len(t.paused))
	for path := range t.paused {
		paused = append(paused, path)
	}
	return Stats{
		TrackedPaths: len(t.expected),
		PausedPaths:  paused,
	}
}

// Clear wipes all digests and pauses and cancels every outstanding safety
// timer. Intended for shutdown and test isolation; this is the only bulk
// timer release.
func (t *Tracker) Clear() {
	t.mu.Lock()
	for _, ps := range t.paused {
		if ps.timer != nil {
			ps.timer.Stop()
		}
	}
	pausedPaths.Sub(float64(len(t.paused)))
	t.expected = make(map[string]string)
	t.paused = make(map[string]*pauseState)
	t.mu.Unlock()

	t.log.Debug("tracker cleared")
}

// resume removes the pause for path and cancels its safety timer.
// No-op if the path is not paused.
func (t *Tracker) resume(path, reason string) {
	t.mu.Lock()
	ps, ok := t.paused[path]
	if ok {
		if ps.timer != nil {
			ps.timer.Stop()
		}
		delete(t.paused, path)
		pausedPaths.Dec()
	}
	t.mu.Unlock()

	if ok && t.cfg.Debug {
		t.log.Debug("pause lifted",
			"path", path,
			"reason", reason)
	}
}

// autoResume is the safety-timer callback. It clears the pause only if the
// pause it was armed for is still the current one; a registration that
// replaced it owns a fresher timer.
func (t *Tracker) autoResume(path string, gen uint64) {
	t.mu.Lock()
	ps, ok := t.paused[path]
	if !ok || ps.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.paused, path)
	pausedPaths.Dec()
	t.mu.Unlock()

	recordAutoResume()
	t.log.Warn("auto-resume: write was never confirmed, lifting pause",
		"path", path,
		"timeout", t.cfg.AutoResumeTimeout.String())
}
