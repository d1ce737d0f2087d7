// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for solver runs.
//
// # Description
//
// This package implements the orchestrator's observation sink on top of
// Prometheus collectors. Metrics include:
//   - Accepted step counters and per-step round histograms
//   - Discard counters broken down by red-flag reason
//   - Proposal timeout counters
//   - Terminal run counters by status
//
// # Integration
//
// Register against any prometheus.Registerer and expose via /metrics.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/quorumstep/services/solver/orchestrator"
)

// Namespace for all metrics.
const metricsNamespace = "quorumstep"

// Subsystem for solver metrics.
const solverSubsystem = "solver"

// SolverMetrics holds all Prometheus metrics for solver runs and
// implements the orchestrator Sink interface.
//
// # Thread Safety
//
// All operations are thread-safe.
type SolverMetrics struct {
	// StepsTotal counts accepted steps.
	StepsTotal prometheus.Counter

	// RoundsPerStep measures sampling rounds consumed per accepted step.
	RoundsPerStep prometheus.Histogram

	// VotesPerStep measures surviving votes tallied per accepted step.
	VotesPerStep prometheus.Histogram

	// DiscardsTotal counts red-flagged proposals by reason.
	// Labels: reason (over_length, malformed, illegal_move, state_mismatch)
	DiscardsTotal *prometheus.CounterVec

	// TimeoutsTotal counts proposal calls that missed the round deadline.
	TimeoutsTotal prometheus.Counter

	// StepDurationSeconds measures wall-clock cost per accepted step.
	StepDurationSeconds prometheus.Histogram

	// RunsTotal counts terminal runs by status.
	// Labels: status (completed, aborted)
	RunsTotal *prometheus.CounterVec

	// CurrentStep tracks the step index of the most recent run event.
	CurrentStep prometheus.Gauge
}

// NewSolverMetrics creates and registers all solver metrics.
//
// Inputs:
//   - reg: The registry to register against. Nil uses the default
//     registerer.
//
// Outputs:
//   - *SolverMetrics: Ready to use as an orchestrator sink.
func NewSolverMetrics(reg prometheus.Registerer) *SolverMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &SolverMetrics{
		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "steps_total",
			Help:      "Accepted steps across all runs.",
		}),
		RoundsPerStep: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "rounds_per_step",
			Help:      "Sampling rounds consumed per accepted step.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
		}),
		VotesPerStep: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "votes_per_step",
			Help:      "Surviving votes tallied per accepted step.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		DiscardsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "discards_total",
			Help:      "Red-flagged proposals by reason.",
		}, []string{"reason"}),
		TimeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "proposal_timeouts_total",
			Help:      "Proposal calls that missed the round deadline.",
		}),
		StepDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "step_duration_seconds",
			Help:      "Wall-clock cost per accepted step.",
			Buckets:   prometheus.DefBuckets,
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "runs_total",
			Help:      "Terminal runs by status.",
		}, []string{"status"}),
		CurrentStep: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: solverSubsystem,
			Name:      "current_step",
			Help:      "Step index of the most recent run event.",
		}),
	}
}

// OnStep implements the orchestrator Sink interface.
func (m *SolverMetrics) OnStep(rec orchestrator.StepRecord) {
	m.StepsTotal.Inc()
	m.RoundsPerStep.Observe(float64(rec.Rounds))
	m.VotesPerStep.Observe(float64(rec.Votes))
	m.StepDurationSeconds.Observe(rec.Duration.Seconds())
	m.CurrentStep.Set(float64(rec.Index))
	if rec.Timeouts > 0 {
		m.TimeoutsTotal.Add(float64(rec.Timeouts))
	}
	for reason, n := range rec.DiscardsByReason {
		m.DiscardsTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// OnRunEnd implements the orchestrator Sink interface.
func (m *SolverMetrics) OnRunEnd(snap orchestrator.RunSnapshot) {
	m.RunsTotal.WithLabelValues(snap.Status).Inc()
	m.CurrentStep.Set(float64(snap.StepIndex))
}
