// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package proposer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
)

// OptimalMove computes the optimal next move for a three-peg state whose
// goal is the last peg, using the classic largest-misplaced-disk recursion:
// find the largest disk not yet settled on the goal peg; to move it there,
// first clear all smaller disks onto the spare peg, recursively.
//
// Outputs:
//   - Move: The optimal move.
//   - bool: False if the state is already the goal.
func OptimalMove(state domain.State) (domain.Move, bool) {
	if state.PegCount() != 3 {
		panic("OptimalMove requires exactly 3 pegs")
	}
	target := domain.Peg(state.PegCount() - 1)
	return planMove(state, state.Disks(), target)
}

// planMove returns the next move toward stacking disks 1..n on target.
func planMove(state domain.State, n int, target domain.Peg) (domain.Move, bool) {
	if n == 0 {
		return domain.Move{}, false
	}
	cur, ok := state.PegOf(n)
	if !ok {
		return domain.Move{}, false
	}
	if cur == target {
		return planMove(state, n-1, target)
	}
	// Disk n must reach target; disks 1..n-1 must first clear onto the
	// spare peg.
	spare := domain.Peg(3 - int(cur) - int(target))
	if m, ok := planMove(state, n-1, spare); ok {
		return m, true
	}
	return domain.Move{From: cur, To: target}, true
}

// PerfectProposer is a deterministic stand-in that always proposes the
// optimal move, rendered through the real wire format so the parse and
// screen path stays exercised.
//
// Thread Safety: Safe for concurrent use (stateless).
type PerfectProposer struct{}

// Propose implements the Proposer interface.
func (PerfectProposer) Propose(_ context.Context, state domain.State, _ History) (RawResponse, error) {
	move, ok := OptimalMove(state)
	if !ok {
		return RawResponse{}, fmt.Errorf("state is already solved: %s", state)
	}
	result, err := state.Apply(move)
	if err != nil {
		return RawResponse{}, fmt.Errorf("optimal move rejected: %w", err)
	}
	return RawResponse{
		ID:   "stub-" + uuid.NewString()[:8],
		Text: RenderProposal(move, result, "optimal continuation"),
	}, nil
}

// NoisyProposer is a stochastic stand-in: it proposes the optimal move with
// probability Accuracy and otherwise a uniformly chosen legal-but-wrong
// move. Used by the simulate command and the convergence tests.
//
// Thread Safety: Safe for concurrent use; the RNG is mutex-guarded.
type NoisyProposer struct {
	// Accuracy is the probability of proposing the correct move, in [0,1].
	Accuracy float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewNoisyProposer creates a noisy stand-in with a seeded RNG so trials
// are reproducible.
func NewNoisyProposer(accuracy float64, seed int64) *NoisyProposer {
	return &NoisyProposer{
		Accuracy: accuracy,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Propose implements the Proposer interface.
func (p *NoisyProposer) Propose(_ context.Context, state domain.State, _ History) (RawResponse, error) {
	correct, ok := OptimalMove(state)
	if !ok {
		return RawResponse{}, fmt.Errorf("state is already solved: %s", state)
	}

	move := correct
	p.mu.Lock()
	if p.rng.Float64() >= p.Accuracy {
		var wrong []domain.Move
		for _, m := range state.LegalMoves() {
			if m != correct {
				wrong = append(wrong, m)
			}
		}
		if len(wrong) > 0 {
			move = wrong[p.rng.Intn(len(wrong))]
		}
	}
	p.mu.Unlock()

	result, err := state.Apply(move)
	if err != nil {
		return RawResponse{}, fmt.Errorf("stub move rejected: %w", err)
	}
	return RawResponse{
		ID:   "stub-" + uuid.NewString()[:8],
		Text: RenderProposal(move, result, "looks promising"),
	}, nil
}
