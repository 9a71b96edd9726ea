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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// watchEventsTotal counts debounced filesystem events by operation.
	// Labels: op (create, write, remove, rename)
	watchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canvas",
		Subsystem: "watch",
		Name:      "events_total",
		Help:      "Total debounced filesystem events by operation",
	}, []string{"op"})

	// userEditsTotal counts changes classified as user edits.
	userEditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canvas",
		Subsystem: "watch",
		Name:      "user_edits_total",
		Help:      "Total changes classified as user edits and delivered",
	})
)

// recordWatchEvent records one debounced filesystem event.
func recordWatchEvent(op FileOp) {
	watchEventsTotal.WithLabelValues(op.String()).Inc()
}

// recordUserEdits records delivered user edits.
func recordUserEdits(n int) {
	userEditsTotal.Add(float64(n))
}
