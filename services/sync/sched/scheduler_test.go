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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_AfterFunc(t *testing.T) {
	t.Run("fires", func(t *testing.T) {
		fired := make(chan struct{})
		System().AfterFunc(5*time.Millisecond, func() { close(fired) })
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("stop prevents firing", func(t *testing.T) {
		fired := make(chan struct{})
		h := System().AfterFunc(50*time.Millisecond, func() { close(fired) })
		assert.True(t, h.Stop())
		select {
		case <-fired:
			t.Fatal("stopped timer fired")
		case <-time.After(150 * time.Millisecond):
		}
	})
}

func TestSystem_Sleep(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		assert.NoError(t, System().Sleep(context.Background(), time.Millisecond))
	})

	t.Run("zero duration", func(t *testing.T) {
		assert.NoError(t, System().Sleep(context.Background(), 0))
	})

	t.Run("cancellation interrupts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := System().Sleep(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
