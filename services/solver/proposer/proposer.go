// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package proposer models the external proposal capability: the unreliable,
// stochastic source of candidate transitions that the solver samples
// redundantly. Backends include an OpenAI-compatible chat adapter and
// deterministic/noisy stand-ins used by tests and the simulate command.
package proposer

import (
	"context"
	"time"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
)

// RawResponse is one proposer output for a single step, before any
// screening. Text carries the full response body; the screener decides
// whether it becomes a vote.
type RawResponse struct {
	// ID uniquely identifies the response within a run.
	ID string

	// Text is the raw response body in the proposal wire format.
	Text string

	// Latency is how long the backend took to answer.
	Latency time.Duration
}

// Proposer produces a candidate transition for the current state.
//
// Implementations may be slow, wrong, or malformed; the caller treats the
// output as untrusted. Propose is called concurrently from the per-round
// fan-out, so implementations must be safe for concurrent use.
type Proposer interface {
	// Propose requests one candidate for the given state.
	//
	// Inputs:
	//   ctx - Carries the per-call deadline. A deadline overrun must be
	//         surfaced as ctx.Err, not swallowed.
	//   state - Immutable snapshot of the current puzzle state.
	//   history - Recent accepted moves, oldest first.
	//
	// Outputs:
	//   RawResponse - The raw proposal text.
	//   error - Non-nil on backend failure or timeout. The caller treats
	//           any error as a missing vote for the round.
	Propose(ctx context.Context, state domain.State, history History) (RawResponse, error)
}

// History is the bounded window of recently accepted moves handed to the
// proposer as context, oldest first.
type History []domain.Move

// Append returns a new history with the move added, trimmed to at most
// window entries. The receiver is not mutated.
func (h History) Append(m domain.Move, window int) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, m)
	if window > 0 && len(out) > window {
		out = out[len(out)-window:]
	}
	return out
}
