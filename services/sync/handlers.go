// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package canvas_sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers holds the HTTP handlers for the sync status API.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers backed by the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// StatsResponse is the body of GET /v1/sync/stats.
type StatsResponse struct {
	TrackedPaths int  `json:"tracked_paths"`
	PausedPaths  int  `json:"paused_paths"`
	Watching     bool `json:"watching"`
}

// PausedResponse is the body of GET /v1/sync/paused.
type PausedResponse struct {
	Paths []string `json:"paths"`
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleStats returns tracker and watcher state.
func (h *Handlers) HandleStats(c *gin.Context) {
	stats := h.svc.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		TrackedPaths: stats.TrackedPaths,
		PausedPaths:  len(stats.PausedPaths),
		Watching:     h.svc.Watching(),
	})
}

// HandlePaused lists the paths currently paused for generator writes.
func (h *Handlers) HandlePaused(c *gin.Context) {
	stats := h.svc.Stats()
	paths := stats.PausedPaths
	if paths == nil {
		paths = []string{}
	}
	c.JSON(http.StatusOK, PausedResponse{Paths: paths})
}
