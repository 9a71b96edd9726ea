// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"errors"
	"time"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	"github.com/AleutianAI/AleutianCanvas/services/sync/sched"
)

// -----------------------------------------------------------------------------
// Enums
// -----------------------------------------------------------------------------

// Decision is the reason behind a classification result. It is emitted in
// debug logs and metrics so misbehaving pipelines can be diagnosed without
// guessing which branch fired.
type Decision int

const (
	// DecisionPaused means the path was mid-write by the generator; the
	// change was ignored without computing a digest.
	DecisionPaused Decision = iota

	// DecisionNoDigest means the path had no recorded expected digest;
	// unknown files are treated as user-authored.
	DecisionNoDigest

	// DecisionDigestMatch means the content is exactly what the generator
	// last wrote.
	DecisionDigestMatch

	// DecisionDigestMismatch means the content diverged from the
	// generator's last output.
	DecisionDigestMismatch

	// DecisionDigestError means digest computation failed and the change
	// was classified as a user edit (fail open).
	DecisionDigestError
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionPaused:
		return "paused"
	case DecisionNoDigest:
		return "no_digest"
	case DecisionDigestMatch:
		return "digest_match"
	case DecisionDigestMismatch:
		return "digest_mismatch"
	case DecisionDigestError:
		return "digest_error"
	default:
		return "unknown"
	}
}

// IsUserEdit returns true if this decision classifies the change as a
// user edit.
func (d Decision) IsUserEdit() bool {
	return d == DecisionNoDigest || d == DecisionDigestMismatch || d == DecisionDigestError
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// DigestFunc computes a content fingerprint. It must be deterministic and
// collision resistant over exact byte content.
type DigestFunc func(content []byte) (string, error)

// Config configures a Tracker.
type Config struct {
	// PauseDuration is the settle delay ConfirmWriteComplete waits before
	// lifting a pause, absorbing filesystem event-delivery latency.
	// Default: 100 milliseconds.
	PauseDuration time.Duration

	// AutoResumeTimeout bounds how long a path can stay paused if the
	// generator crashes before confirming. Default: 5 seconds.
	AutoResumeTimeout time.Duration

	// Debug enables structured logging of every classification decision.
	// Default: false.
	Debug bool

	// Scheduler supplies safety timers and the settle delay. Nil uses the
	// wall clock; tests inject sched.NewManual.
	Scheduler sched.Scheduler

	// Logger receives tracker logs. Nil uses logging.Default().
	Logger *logging.Logger

	// Digest overrides the content fingerprint function. Nil uses
	// SHA-256 over exact bytes.
	Digest DigestFunc
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PauseDuration:     100 * time.Millisecond,
		AutoResumeTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PauseDuration < 0 {
		return errors.New("PauseDuration must be >= 0")
	}
	if c.AutoResumeTimeout < 0 {
		return errors.New("AutoResumeTimeout must be >= 0")
	}
	return nil
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.PauseDuration == 0 {
		c.PauseDuration = 100 * time.Millisecond
	}
	if c.AutoResumeTimeout == 0 {
		c.AutoResumeTimeout = 5 * time.Second
	}
	if c.Scheduler == nil {
		c.Scheduler = sched.System()
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
	if c.Digest == nil {
		c.Digest = SHA256Hex
	}
}

// -----------------------------------------------------------------------------
// Diagnostics
// -----------------------------------------------------------------------------

// Stats is a point-in-time snapshot of tracker state for the status API.
type Stats struct {
	// TrackedPaths is the number of paths with a recorded expected digest.
	TrackedPaths int `json:"tracked_paths"`

	// PausedPaths lists the paths currently mid-write by the generator.
	PausedPaths []string `json:"paused_paths"`
}
