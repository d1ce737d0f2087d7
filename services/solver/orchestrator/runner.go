// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator drives the outer step loop: it fans a batch of
// proposal requests out to the external proposer, routes the responses
// through red-flag screening into the voting arbiter, applies the accepted
// transition, and advances the task state until the goal is reached or a
// step fails terminally.
//
// Steps are strictly sequential; concurrency exists only inside one
// round's fan-out. The task state is owned exclusively by the runner and
// handed out as an immutable snapshot.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/quorumstep/services/solver/arbiter"
	"github.com/AleutianAI/quorumstep/services/solver/domain"
	"github.com/AleutianAI/quorumstep/services/solver/proposer"
	"github.com/AleutianAI/quorumstep/services/solver/screen"
)

// Config configures a run.
type Config struct {
	// K is the required vote lead before a candidate is accepted
	// (default: 3).
	K int

	// BatchSize is how many proposals each round fans out (default: 5).
	BatchSize int

	// MaxRounds is the per-step round ceiling (default: 50).
	MaxRounds int

	// MaxSteps caps the whole run so a legal-but-wrong trajectory cannot
	// loop forever (default: 2_000_000).
	MaxSteps int

	// ProposalTimeout is the per-call deadline; an overrun is a missing
	// vote for that round, not an error (default: 60s).
	ProposalTimeout time.Duration

	// RationaleCeiling is the red-flag length bound in characters
	// (default: 750).
	RationaleCeiling int

	// HistoryWindow is how many recent accepted moves are handed to the
	// proposer as context (default: 12).
	HistoryWindow int

	// TiePolicy is the simultaneous-lead policy (default: TieContinue).
	TiePolicy arbiter.TiePolicy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		K:                3,
		BatchSize:        5,
		MaxRounds:        50,
		MaxSteps:         2_000_000,
		ProposalTimeout:  60 * time.Second,
		RationaleCeiling: 750,
		HistoryWindow:    12,
		TiePolicy:        arbiter.TieContinue,
	}
}

// normalize fills zero fields with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.K <= 0 {
		c.K = def.K
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = def.MaxRounds
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = def.MaxSteps
	}
	if c.ProposalTimeout <= 0 {
		c.ProposalTimeout = def.ProposalTimeout
	}
	if c.RationaleCeiling <= 0 {
		c.RationaleCeiling = def.RationaleCeiling
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = def.HistoryWindow
	}
	return c
}

// Runner executes one task from initial state to goal, one arbitrated
// step at a time.
//
// Thread Safety: A Runner may drive only one run at a time; the run
// itself fans out internally.
type Runner struct {
	config   Config
	proposer proposer.Proposer
	screener *screen.Screener
	sink     Sink
	logger   *slog.Logger
}

// NewRunner creates a runner.
//
// Inputs:
//   - p: The proposal capability to sample.
//   - config: Run parameters. Zero fields fall back to defaults.
//
// Outputs:
//   - *Runner: Ready to use runner with a no-op sink and default logger.
func NewRunner(p proposer.Proposer, config Config) *Runner {
	config = config.normalize()
	return &Runner{
		config:   config,
		proposer: p,
		screener: screen.NewScreener(screen.Config{RationaleCeiling: config.RationaleCeiling}),
		sink:     NopSink{},
		logger:   slog.Default(),
	}
}

// WithSink sets the observation sink.
func (r *Runner) WithSink(sink Sink) *Runner {
	if sink != nil {
		r.sink = sink
	}
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// stepStats accumulates screening outcomes across one step's rounds.
// Written by the fan-out workers under mu, read once the step concludes.
type stepStats struct {
	mu        sync.Mutex
	discarded int
	byReason  map[string]int
	timeouts  int
}

func (s *stepStats) discard(v screen.Verdict) {
	s.mu.Lock()
	if s.byReason == nil {
		s.byReason = make(map[string]int)
	}
	s.discarded++
	s.byReason[v.String()]++
	s.mu.Unlock()
}

func (s *stepStats) timeout() {
	s.mu.Lock()
	s.timeouts++
	s.mu.Unlock()
}

// Run executes the task synchronously until Completed or Aborted.
//
// Description:
//
//	Per step: fan out BatchSize proposal calls per round, screen the
//	responses, feed survivors into the voting arbiter, re-check the
//	accepted move's legality, apply it, record a StepRecord, and emit
//	events to the sink. An inconclusive vote aborts the run with the
//	step index and final tally in the result. A failed legality
//	re-check is an internal contract violation and returns
//	ErrInvariantBreach.
//
// Inputs:
//   - ctx: Cancels the run between rounds and in-flight proposal calls.
//   - initial: The starting state.
//
// Outputs:
//   - *RunResult: Terminal outcome; non-nil whenever error is nil, and
//     also alongside ErrInvariantBreach and ErrStepLimit for diagnosis.
//   - error: Context cancellation or an internal invariant breach.
func (r *Runner) Run(ctx context.Context, initial domain.State) (*RunResult, error) {
	handle := newRunHandle(initial)
	r.run(ctx, handle)
	return handle.result, handle.err
}

// Start launches the run in a background goroutine and returns a handle
// for observation and joining.
func (r *Runner) Start(ctx context.Context, initial domain.State) *RunHandle {
	handle := newRunHandle(initial)
	go r.run(ctx, handle)
	return handle
}

// run drives the outer state machine: Idle -> Stepping -> Completed/Aborted.
func (r *Runner) run(ctx context.Context, h *RunHandle) {
	defer close(h.done)
	defer func() { r.sink.OnRunEnd(h.runState.Snapshot()) }()

	state := h.initial
	history := proposer.History{}
	result := &RunResult{RunID: h.runState.runID, FailedStep: -1}
	h.result = result

	logger := r.logger.With(slog.String("run_id", result.RunID))
	logger.Info("run starting",
		slog.String("state", state.Canonical()),
		slog.Int("k", r.config.K),
		slog.Int("batch_size", r.config.BatchSize),
		slog.Int("max_rounds", r.config.MaxRounds))

	h.runState.setStatus(StatusStepping)

	for step := 0; ; step++ {
		if state.IsGoal() {
			h.runState.setStatus(StatusCompleted)
			result.Status = StatusCompleted
			result.FinalState = state.Canonical()
			logger.Info("run completed",
				slog.Int("steps", len(result.Steps)),
				slog.Int("discards", h.runState.Snapshot().Discards))
			return
		}
		if step >= r.config.MaxSteps {
			h.runState.setStatus(StatusAborted)
			result.Status = StatusAborted
			result.FailedStep = step
			result.FinalState = state.Canonical()
			h.err = fmt.Errorf("step %d: %w", step, ErrStepLimit)
			return
		}

		rec, next, tally, err := r.step(ctx, step, state, history, logger)
		if err != nil {
			h.runState.setStatus(StatusAborted)
			result.Status = StatusAborted
			result.FailedStep = step
			result.FinalState = state.Canonical()
			h.err = err
			return
		}
		if rec == nil {
			// Inconclusive vote: terminal for the run, with the final
			// tally surfaced for diagnosis.
			h.runState.setStatus(StatusAborted)
			result.Status = StatusAborted
			result.FailedStep = step
			result.FinalState = state.Canonical()
			result.FinalTally = tally
			logger.Error("run aborted on inconclusive step",
				slog.Int("step", step),
				slog.Any("tally", tally))
			return
		}

		move, _ := domain.ParseMove(rec.Move)
		history = history.Append(move, r.config.HistoryWindow)
		state = next
		result.Steps = append(result.Steps, *rec)
		h.runState.recordStep(*rec)
		r.sink.OnStep(*rec)
	}
}

// step runs one voting session and applies its outcome. A nil record with
// nil error signals an inconclusive session; the final tally snapshot is
// returned for the abort diagnostic.
func (r *Runner) step(
	ctx context.Context,
	index int,
	state domain.State,
	history proposer.History,
	logger *slog.Logger,
) (*StepRecord, domain.State, []arbiter.VoteCount, error) {
	start := time.Now()
	stats := &stepStats{}

	sampler := arbiter.SamplerFunc(func(ctx context.Context, round int) ([]screen.Candidate, error) {
		return r.sampleRound(ctx, state, history, stats)
	})

	decision, err := arbiter.Decide(ctx, sampler, arbiter.Config{
		K:         r.config.K,
		MaxRounds: r.config.MaxRounds,
		TiePolicy: r.config.TiePolicy,
	}, logger)
	if err != nil {
		return nil, domain.State{}, nil, fmt.Errorf("step %d: %w", index, err)
	}

	if decision.Status == arbiter.StatusInconclusive {
		return nil, domain.State{}, decision.Tally, nil
	}

	winner := decision.Winner
	// The screener already verified legality; a failure here means the
	// arbiter or filter broke contract, so the run must not continue.
	if !state.IsLegal(winner.Move) {
		return nil, domain.State{}, nil, fmt.Errorf("step %d, move %s: %w", index, winner.Move, ErrInvariantBreach)
	}
	next, err := state.Apply(winner.Move)
	if err != nil {
		return nil, domain.State{}, nil, fmt.Errorf("step %d, move %s: %w", index, winner.Move, ErrInvariantBreach)
	}

	stats.mu.Lock()
	rec := &StepRecord{
		Index:            index,
		Move:             winner.Move.String(),
		Fingerprint:      winner.Fingerprint,
		Rounds:           decision.Rounds,
		Votes:            decision.Votes,
		Discarded:        stats.discarded,
		DiscardsByReason: stats.byReason,
		Timeouts:         stats.timeouts,
		Duration:         time.Since(start),
		CompletedAt:      time.Now(),
	}
	stats.mu.Unlock()

	logger.Info("step accepted",
		slog.Int("step", index),
		slog.String("move", rec.Move),
		slog.Int("rounds", rec.Rounds),
		slog.Int("votes", rec.Votes),
		slog.Int("discarded", rec.Discarded))

	return rec, next, nil, nil
}

// sampleRound fans one round of proposal calls out concurrently and
// screens the responses. Proposer errors and deadline overruns are
// absorbed as missing votes; the round still concludes with whatever
// responses arrived.
func (r *Runner) sampleRound(
	ctx context.Context,
	state domain.State,
	history proposer.History,
	stats *stepStats,
) ([]screen.Candidate, error) {
	responses := make([]*proposer.RawResponse, r.config.BatchSize)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.config.BatchSize; i++ {
		i := i
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.config.ProposalTimeout)
			defer cancel()

			resp, err := r.proposer.Propose(callCtx, state, history)
			if err != nil {
				stats.timeout()
				r.logger.Debug("proposal missing from round",
					slog.String("error", err.Error()))
				return nil
			}
			responses[i] = &resp
			return nil
		})
	}
	// Workers never return errors; Wait is a join.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	survivors := make([]screen.Candidate, 0, r.config.BatchSize)
	for _, resp := range responses {
		if resp == nil {
			continue
		}
		cand, verdict := r.screener.Screen(*resp, state)
		if verdict != screen.VerdictValid {
			stats.discard(verdict)
			continue
		}
		survivors = append(survivors, cand)
	}
	return survivors, nil
}

// RunHandle joins a background run started with Start.
type RunHandle struct {
	initial  domain.State
	runState *RunState
	done     chan struct{}

	// result and err are written once by run() before done closes.
	result *RunResult
	err    error
}

func newRunHandle(initial domain.State) *RunHandle {
	return &RunHandle{
		initial:  initial,
		runState: NewRunState("run-" + uuid.NewString()[:8]),
		done:     make(chan struct{}),
	}
}

// Snapshot returns the live run counters.
func (h *RunHandle) Snapshot() RunSnapshot { return h.runState.Snapshot() }

// Wait blocks until the run reaches a terminal state or ctx is canceled.
//
// Outputs:
//   - *RunResult: The terminal outcome.
//   - error: The run's error, or ctx.Err() if canceled first.
func (h *RunHandle) Wait(ctx context.Context) (*RunResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
