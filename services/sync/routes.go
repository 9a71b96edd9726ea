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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the sync status routes with the router.
//
// Endpoints:
//
//	GET /v1/sync/health - Liveness check
//	GET /v1/sync/stats  - Tracker and watcher state
//	GET /v1/sync/paused - Paths currently paused for generator writes
//
// Example:
//
//	svc, _ := canvas_sync.NewService(canvas_sync.DefaultServiceConfig())
//	handlers := canvas_sync.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	canvas_sync.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	syncGroup := rg.Group("/sync")
	{
		syncGroup.GET("/health", handlers.HandleHealth)
		syncGroup.GET("/stats", handlers.HandleStats)
		syncGroup.GET("/paused", handlers.HandlePaused)
	}
}
