// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package arbiter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/quorumstep/services/solver/screen"
)

// TiePolicy selects the behavior when the lead margin is reached by two
// fingerprints in the same incoming batch. Only TieContinue is
// implemented: an exact tie is "not yet decided" and voting continues.
type TiePolicy int

const (
	// TieContinue treats v1 == v2 as undecided; only a strict lead of at
	// least K resolves a step.
	TieContinue TiePolicy = iota
)

// Config configures a voting session.
type Config struct {
	// K is the required lead over the runner-up before a candidate is
	// accepted (default: 3).
	K int

	// MaxRounds is the hard ceiling on sampling rounds per step; reaching
	// it without a qualifying lead yields an inconclusive decision
	// (default: 50).
	MaxRounds int

	// TiePolicy is the simultaneous-lead policy (default: TieContinue).
	TiePolicy TiePolicy
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		K:         3,
		MaxRounds: 50,
		TiePolicy: TieContinue,
	}
}

// Status is the outcome class of a voting session.
type Status int

const (
	// StatusAccepted means a candidate reached the required lead.
	StatusAccepted Status = iota
	// StatusInconclusive means MaxRounds elapsed without a qualifying
	// lead. Terminal for the step; never retried internally.
	StatusInconclusive
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Decision is the result of one step's voting session.
type Decision struct {
	// Status is the outcome class.
	Status Status

	// Winner is the accepted candidate (zero value when inconclusive).
	Winner screen.Candidate

	// Rounds is how many sampling rounds were consumed.
	Rounds int

	// Votes is the total number of surviving votes recorded.
	Votes int

	// Tally is the final per-fingerprint count snapshot, for metrics and
	// for diagnosing inconclusive steps.
	Tally []VoteCount
}

// Sampler supplies one round of screened candidates. The orchestrator
// implements it with a concurrent fan-out to the external proposer; tests
// implement it with synthetic vote streams.
type Sampler interface {
	// SampleRound returns the surviving candidates for one round. An
	// empty slice is a valid round (all proposals flagged or timed out)
	// and still consumes one round. Errors abort the session; proposer
	// failures inside a round must be absorbed as missing votes instead.
	SampleRound(ctx context.Context, round int) ([]screen.Candidate, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context, round int) ([]screen.Candidate, error)

// SampleRound implements the Sampler interface.
func (f SamplerFunc) SampleRound(ctx context.Context, round int) ([]screen.Candidate, error) {
	return f(ctx, round)
}

// Decide runs one voting session to completion.
//
// Description:
//
//	Each round requests a fresh batch of screened candidates, feeds them
//	into the session tally, and inspects the counts: with v1 and v2 the
//	highest and second-highest, the leader is accepted once v1-v2 >= K.
//	An exact tie never resolves a step. Rounds with no surviving
//	candidates count against MaxRounds. Reaching MaxRounds without a
//	qualifying lead returns a StatusInconclusive decision; the caller
//	decides what that means for the run.
//
// Inputs:
//   - ctx: Cancels the session between rounds.
//   - sampler: Source of per-round candidates.
//   - config: Session parameters. Zero values fall back to defaults.
//   - logger: Structured logger; nil uses slog.Default().
//
// Outputs:
//   - *Decision: The decision; non-nil whenever error is nil.
//   - error: Context cancellation or a sampler failure. Inconclusive is a
//     decision, not an error.
//
// Thread Safety: Each call owns its tally; concurrent calls with distinct
// samplers are independent.
func Decide(ctx context.Context, sampler Sampler, config Config, logger *slog.Logger) (*Decision, error) {
	if config.K <= 0 {
		config.K = DefaultConfig().K
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultConfig().MaxRounds
	}
	if logger == nil {
		logger = slog.Default()
	}

	tally := NewTally()
	for round := 1; round <= config.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("voting session canceled at round %d: %w", round, err)
		}

		candidates, err := sampler.SampleRound(ctx, round)
		if err != nil {
			return nil, fmt.Errorf("sampling round %d: %w", round, err)
		}
		for _, c := range candidates {
			tally.Add(c)
		}

		leader, v1, v2 := tally.Leaders()
		logger.Debug("round tallied",
			slog.Int("round", round),
			slog.Int("survivors", len(candidates)),
			slog.Int("v1", v1),
			slog.Int("v2", v2),
			slog.Int("distinct", tally.Distinct()))

		if v1-v2 >= config.K {
			return &Decision{
				Status: StatusAccepted,
				Winner: leader,
				Rounds: round,
				Votes:  tally.Votes(),
				Tally:  tally.Snapshot(),
			}, nil
		}
	}

	return &Decision{
		Status: StatusInconclusive,
		Rounds: config.MaxRounds,
		Votes:  tally.Votes(),
		Tally:  tally.Snapshot(),
	}, nil
}
