// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sched

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-clock Scheduler for tests.
//
// Time only moves when Advance is called. Due timer callbacks run
// synchronously inside Advance (in deadline order, without holding the
// internal lock), and due sleepers are released. Nothing here touches
// the wall clock, so timing tests are deterministic.
//
// Thread Safety: safe for concurrent use.
type Manual struct {
	mu       sync.Mutex
	now      time.Time
	timers   []*manualTimer
	sleepers []*manualSleeper
}

type manualTimer struct {
	owner    *Manual
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

type manualSleeper struct {
	deadline time.Time
	done     chan struct{}
}

// NewManual creates a Manual scheduler with the virtual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// PendingTimers returns the number of scheduled, unfired timers.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// PendingSleepers returns the number of goroutines blocked in Sleep.
// Tests use it to wait for a sleeper to arrive before advancing the clock.
func (m *Manual) PendingSleepers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sleepers)
}

// AfterFunc schedules fn to run when the virtual clock reaches now+d.
// A non-positive d fires on the next Advance call.
func (m *Manual) AfterFunc(d time.Duration, fn func()) TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{
		owner:    m,
		deadline: m.now.Add(d),
		fn:       fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer if it has not fired yet.
func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Sleep blocks until the virtual clock reaches now+d or ctx is cancelled.
func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	if d <= 0 {
		m.mu.Unlock()
		return ctx.Err()
	}
	s := &manualSleeper{
		deadline: m.now.Add(d),
		done:     make(chan struct{}),
	}
	m.sleepers = append(m.sleepers, s)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

// Advance moves the virtual clock forward by d, firing due timers in
// deadline order and releasing due sleepers. Callbacks run on the
// calling goroutine; callbacks that schedule new timers within the
// advanced window are picked up in the same call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		next := m.nextDueLocked(target)
		if next == nil {
			break
		}
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		next.fired = true
		fn := next.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}

	m.now = target

	remaining := m.sleepers[:0]
	for _, s := range m.sleepers {
		if !s.deadline.After(m.now) {
			close(s.done)
		} else {
			remaining = append(remaining, s)
		}
	}
	m.sleepers = remaining
	m.compactTimersLocked()
	m.mu.Unlock()
}

// nextDueLocked returns the earliest unfired timer due at or before target.
func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due[0]
}

// compactTimersLocked drops fired and stopped timers.
func (m *Manual) compactTimersLocked() {
	remaining := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			remaining = append(remaining, t)
		}
	}
	m.timers = remaining
}

var _ Scheduler = (*Manual)(nil)
