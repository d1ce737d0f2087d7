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
	"fmt"
	"strings"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
)

// SystemPrompt returns the system instruction teaching the backend the
// proposal wire format.
func SystemPrompt() string {
	return `You are solving a Tower of Hanoi style puzzle one move at a time.

Rules:
- Only the topmost disk of a peg may move.
- A disk may never be placed on a smaller disk.
- The goal is to move every disk to the last peg.

Answer with EXACTLY this format and nothing else:

Move: <from> -> <to>
Result: <full state after the move>
Rationale: <one short sentence>

The state format lists every peg bottom-to-top, for example:
Result: A=[3,2] B=[] C=[1]
`
}

// RenderPrompt builds the per-step user prompt from the current state and
// the recent accepted-move history.
//
// Inputs:
//   - state: The current puzzle state.
//   - history: Recent accepted moves, oldest first. May be empty.
//
// Outputs:
//   - string: The prompt text.
func RenderPrompt(state domain.State, history History) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current state: %s\n", state.Canonical())
	if len(history) > 0 {
		b.WriteString("Recent moves: ")
		for i, m := range history {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.String())
		}
		b.WriteByte('\n')
	}
	b.WriteString("Propose the single best next move.\n")
	return b.String()
}

// RenderProposal renders a move and its resulting state in the proposal
// wire format. Shared by the stand-in proposers so the full parse and
// screen path is exercised even in tests.
func RenderProposal(m domain.Move, result domain.State, rationale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move: %s\n", m)
	fmt.Fprintf(&b, "Result: %s\n", result.Canonical())
	if rationale != "" {
		fmt.Fprintf(&b, "Rationale: %s\n", rationale)
	}
	return b.String()
}
