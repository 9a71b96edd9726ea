// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sched abstracts one-shot timers and timed waits behind an
// interface so components with timing behavior (safety timers, settle
// delays) can be tested against a virtual clock instead of the wall clock.
//
// Production code uses System(); tests use NewManual() and drive time
// explicitly with Advance().
package sched

import (
	"context"
	"time"
)

// TimerHandle is the cancellation handle for a scheduled callback.
type TimerHandle interface {
	// Stop cancels the timer. It returns false if the callback already
	// fired or was stopped; it does not wait for a running callback.
	Stop() bool
}

// Scheduler schedules one-shot callbacks and timed waits.
//
// Thread Safety: implementations are safe for concurrent use.
type Scheduler interface {
	// AfterFunc runs fn once after d has elapsed, on an unspecified
	// goroutine. The returned handle cancels the callback if it has
	// not fired yet.
	AfterFunc(d time.Duration, fn func()) TimerHandle

	// Sleep blocks the caller for d, or until ctx is cancelled,
	// whichever comes first. Returns ctx.Err() when cut short.
	Sleep(ctx context.Context, d time.Duration) error
}

// System returns the wall-clock Scheduler backed by the time package.
func System() Scheduler {
	return systemScheduler{}
}

type systemScheduler struct{}

type systemTimer struct {
	t *time.Timer
}

func (t systemTimer) Stop() bool {
	return t.t.Stop()
}

func (systemScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

func (systemScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
