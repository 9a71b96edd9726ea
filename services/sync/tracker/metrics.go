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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Change Classification
// =============================================================================

var (
	// registrationsTotal counts upcoming-write registrations.
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canvas",
		Subsystem: "sync",
		Name:      "registrations_total",
		Help:      "Total upcoming-write registrations by the generator",
	})

	// classificationsTotal counts classification calls by decision.
	// Labels: decision (paused, no_digest, digest_match, digest_mismatch, digest_error)
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canvas",
		Subsystem: "sync",
		Name:      "classifications_total",
		Help:      "Total change classifications by decision",
	}, []string{"decision"})

	// autoResumesTotal counts safety-timer firings for orphaned pauses.
	autoResumesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canvas",
		Subsystem: "sync",
		Name:      "auto_resumes_total",
		Help:      "Total pauses force-cleared by the safety timer",
	})

	// pausedPaths tracks the number of currently paused paths.
	pausedPaths = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "canvas",
		Subsystem: "sync",
		Name:      "paused_paths",
		Help:      "Number of paths currently paused for generator writes",
	})
)

// recordRegistration records an upcoming-write registration.
func recordRegistration() {
	registrationsTotal.Inc()
}

// recordClassification records a classification decision.
func recordClassification(decision Decision) {
	classificationsTotal.WithLabelValues(decision.String()).Inc()
}

// recordAutoResume records a safety-timer firing.
func recordAutoResume() {
	autoResumesTotal.Inc()
}
