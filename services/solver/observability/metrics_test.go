// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AleutianAI/quorumstep/services/solver/orchestrator"
)

func TestOnStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSolverMetrics(reg)

	m.OnStep(orchestrator.StepRecord{
		Index:    4,
		Rounds:   3,
		Votes:    9,
		Duration: 250 * time.Millisecond,
		Timeouts: 2,
		DiscardsByReason: map[string]int{
			"malformed":    3,
			"illegal_move": 1,
		},
	})
	m.OnStep(orchestrator.StepRecord{
		Index:  5,
		Rounds: 1,
		Votes:  5,
	})

	if got := testutil.ToFloat64(m.StepsTotal); got != 2 {
		t.Errorf("steps_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TimeoutsTotal); got != 2 {
		t.Errorf("proposal_timeouts_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DiscardsTotal.WithLabelValues("malformed")); got != 3 {
		t.Errorf("discards_total{reason=malformed} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.DiscardsTotal.WithLabelValues("illegal_move")); got != 1 {
		t.Errorf("discards_total{reason=illegal_move} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CurrentStep); got != 5 {
		t.Errorf("current_step = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(m.RoundsPerStep); got != 1 {
		t.Errorf("rounds_per_step collected %d series, want 1", got)
	}
}

func TestOnRunEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSolverMetrics(reg)

	m.OnRunEnd(orchestrator.RunSnapshot{Status: "completed", StepIndex: 31})
	m.OnRunEnd(orchestrator.RunSnapshot{Status: "aborted", StepIndex: 12})
	m.OnRunEnd(orchestrator.RunSnapshot{Status: "completed", StepIndex: 7})

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")); got != 2 {
		t.Errorf("runs_total{status=completed} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("aborted")); got != 1 {
		t.Errorf("runs_total{status=aborted} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CurrentStep); got != 7 {
		t.Errorf("current_step = %v, want 7", got)
	}
}

func TestNewSolverMetrics_RegistersEverything(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSolverMetrics(reg)

	// Vectors without observed label values and untouched histograms still
	// need a sample before they gather, so seed everything once.
	m.OnStep(orchestrator.StepRecord{DiscardsByReason: map[string]int{"over_length": 1}, Timeouts: 1})
	m.OnRunEnd(orchestrator.RunSnapshot{Status: "completed"})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 8 {
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		t.Errorf("gathered %d metric families, want 8: %v", len(families), names)
	}
}
