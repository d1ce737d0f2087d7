// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"sync"
	"time"

	"github.com/AleutianAI/quorumstep/services/solver/arbiter"
)

// RunStatus is the orchestrator's outer state machine state.
type RunStatus int

const (
	// StatusIdle means the run has not started stepping yet.
	StatusIdle RunStatus = iota
	// StatusStepping means a step's voting session is in flight.
	StatusStepping
	// StatusCompleted means the goal state was reached.
	StatusCompleted
	// StatusAborted means a step failed terminally (inconclusive vote or
	// an internal invariant breach).
	StatusAborted
)

// String returns a human-readable status name.
func (s RunStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStepping:
		return "stepping"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepRecord is the immutable result of one completed step. Appended to
// the run's record log and never mutated after creation.
type StepRecord struct {
	// Index is the zero-based step number.
	Index int `json:"index"`

	// Move is the accepted move in canonical form.
	Move string `json:"move"`

	// Fingerprint identifies the accepted (move, result) outcome.
	Fingerprint string `json:"fingerprint"`

	// Rounds is the number of sampling rounds the step consumed.
	Rounds int `json:"rounds"`

	// Votes is how many surviving votes were tallied.
	Votes int `json:"votes"`

	// Discarded is how many raw proposals the red-flag filter rejected.
	Discarded int `json:"discarded"`

	// DiscardsByReason breaks Discarded down by flag reason label.
	DiscardsByReason map[string]int `json:"discards_by_reason,omitempty"`

	// Timeouts is how many proposal calls missed the round deadline.
	Timeouts int `json:"timeouts"`

	// Duration is the wall-clock cost of the step.
	Duration time.Duration `json:"duration"`

	// CompletedAt is when the step was accepted.
	CompletedAt time.Time `json:"completed_at"`
}

// RunState holds the process-wide counters for one run. Created at task
// start, updated once per completed step, readable by any observer, and
// discarded with the run handle.
//
// Thread Safety: Safe for concurrent use.
type RunState struct {
	mu sync.RWMutex

	runID     string
	status    RunStatus
	stepIndex int
	rounds    int
	discards  int
	timeouts  int
	startedAt time.Time
}

// NewRunState creates counters for a new run.
func NewRunState(runID string) *RunState {
	return &RunState{
		runID:     runID,
		status:    StatusIdle,
		startedAt: time.Now(),
	}
}

// RunSnapshot is a point-in-time copy of the run counters.
type RunSnapshot struct {
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	StepIndex int           `json:"step_index"`
	Rounds    int           `json:"rounds"`
	Discards  int           `json:"discards"`
	Timeouts  int           `json:"timeouts"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Snapshot returns a copy of the current counters.
func (r *RunState) Snapshot() RunSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RunSnapshot{
		RunID:     r.runID,
		Status:    r.status.String(),
		StepIndex: r.stepIndex,
		Rounds:    r.rounds,
		Discards:  r.discards,
		Timeouts:  r.timeouts,
		Elapsed:   time.Since(r.startedAt),
	}
}

// setStatus transitions the outer state machine.
func (r *RunState) setStatus(s RunStatus) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

// Status returns the current state machine state.
func (r *RunState) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// recordStep folds one completed step into the counters.
func (r *RunState) recordStep(rec StepRecord) {
	r.mu.Lock()
	r.stepIndex = rec.Index + 1
	r.rounds += rec.Rounds
	r.discards += rec.Discarded
	r.timeouts += rec.Timeouts
	r.mu.Unlock()
}

// RunResult is the terminal outcome of a run.
type RunResult struct {
	// RunID identifies the run.
	RunID string

	// Status is StatusCompleted or StatusAborted.
	Status RunStatus

	// Steps is the full accepted-step sequence.
	Steps []StepRecord

	// FinalState is the canonical text of the last reached state.
	FinalState string

	// FailedStep is the step index an abort happened at (-1 otherwise).
	FailedStep int

	// FinalTally is the inconclusive step's tally snapshot, empty unless
	// the run aborted on an inconclusive vote.
	FinalTally []arbiter.VoteCount
}
