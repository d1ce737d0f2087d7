// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package screen implements red-flag screening of raw proposals before they
// are allowed to vote. Screening cheaply suppresses correlated failure
// modes (degenerate repetition loops, malformed output, illegal moves) that
// would otherwise bias the tally.
package screen

import (
	"github.com/AleutianAI/quorumstep/services/solver/domain"
	"github.com/AleutianAI/quorumstep/services/solver/proposer"
)

// Verdict classifies one screened proposal.
type Verdict int

const (
	// VerdictValid means the candidate may vote.
	VerdictValid Verdict = iota
	// VerdictOverLength flags a response body over the configured ceiling,
	// symptomatic of a degenerate repetition loop.
	VerdictOverLength
	// VerdictMalformed flags a response that does not parse into the
	// move + resulting-state shape.
	VerdictMalformed
	// VerdictIllegalMove flags a move that violates the domain rules for
	// the current state.
	VerdictIllegalMove
	// VerdictStateMismatch flags a legal move whose claimed resulting
	// state disagrees with the deterministically computed one.
	VerdictStateMismatch
)

// String returns the metric label for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictOverLength:
		return "over_length"
	case VerdictMalformed:
		return "malformed"
	case VerdictIllegalMove:
		return "illegal_move"
	case VerdictStateMismatch:
		return "state_mismatch"
	default:
		return "unknown"
	}
}

// Candidate is a proposal that survived screening, ready to vote.
//
// Two candidates with the same Fingerprint are votes for the same outcome
// regardless of differing rationale text.
//
// Thread Safety: Candidates are immutable once returned.
type Candidate struct {
	// ID is the originating response ID.
	ID string

	// Move is the proposed transition.
	Move domain.Move

	// Result is the deterministically verified resulting state.
	Result domain.State

	// Rationale is the proposer's free-form reasoning (informational only).
	Rationale string

	// Fingerprint identifies the (move, result) outcome.
	Fingerprint string

	// Flagged is always false for candidates returned with VerdictValid;
	// it is set on the discarded copy returned with any other verdict.
	Flagged bool
}

// Config configures the screening heuristics.
type Config struct {
	// RationaleCeiling is the maximum raw response length in characters
	// before the length red flag trips (default: 750).
	RationaleCeiling int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{RationaleCeiling: 750}
}

// Screener applies the red-flag heuristics in order. It is a pure
// validation pipeline: no side effects, tagged results instead of errors.
//
// Thread Safety: Safe for concurrent use (no mutable state).
type Screener struct {
	config Config
}

// NewScreener creates a screener.
func NewScreener(config Config) *Screener {
	if config.RationaleCeiling <= 0 {
		config.RationaleCeiling = DefaultConfig().RationaleCeiling
	}
	return &Screener{config: config}
}

// Screen classifies one raw proposal against the current state.
//
// The heuristics run in order: length bound, structural validity, domain
// legality of the move, then agreement between the claimed and computed
// resulting states. A flagged candidate never enters a tally; it is
// counted only in the discard metrics.
//
// Inputs:
//   - raw: The raw proposer response.
//   - state: The current puzzle state (read-only).
//
// Outputs:
//   - Candidate: The screened candidate. Fully populated only when the
//     verdict is VerdictValid; otherwise carries whatever was recovered,
//     with Flagged set.
//   - Verdict: The classification.
//
// Thread Safety: This method is safe for concurrent use.
func (s *Screener) Screen(raw proposer.RawResponse, state domain.State) (Candidate, Verdict) {
	if len(raw.Text) > s.config.RationaleCeiling {
		return Candidate{ID: raw.ID, Flagged: true}, VerdictOverLength
	}

	parsed := proposer.Parse(raw.Text)
	if !parsed.HasMove() || !parsed.HasResult() {
		return Candidate{ID: raw.ID, Flagged: true}, VerdictMalformed
	}
	move, err := domain.ParseMove(parsed.MoveText)
	if err != nil {
		return Candidate{ID: raw.ID, Flagged: true}, VerdictMalformed
	}
	claimed, err := domain.ParseState(parsed.ResultText, state.PegCount())
	if err != nil {
		return Candidate{ID: raw.ID, Flagged: true}, VerdictMalformed
	}

	if !state.IsLegal(move) {
		return Candidate{ID: raw.ID, Move: move, Flagged: true}, VerdictIllegalMove
	}
	computed, err := state.Apply(move)
	if err != nil {
		// Unreachable while Apply and IsLegal agree.
		return Candidate{ID: raw.ID, Move: move, Flagged: true}, VerdictIllegalMove
	}
	if !computed.Equal(claimed) {
		return Candidate{ID: raw.ID, Move: move, Flagged: true}, VerdictStateMismatch
	}

	return Candidate{
		ID:          raw.ID,
		Move:        move,
		Result:      computed,
		Rationale:   parsed.Rationale,
		Fingerprint: domain.Fingerprint(move, computed),
	}, VerdictValid
}
