// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package screen

import (
	"strings"
	"testing"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
	"github.com/AleutianAI/quorumstep/services/solver/proposer"
)

func mustState(t *testing.T, pegs [][]int) domain.State {
	t.Helper()
	s, err := domain.New(pegs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestScreen_Valid(t *testing.T) {
	state := domain.Initial(3, 3)
	raw := proposer.RawResponse{
		ID:   "r1",
		Text: "Move: A -> C\nResult: A=[3,2] B=[] C=[1]\nRationale: smallest first",
	}

	cand, verdict := NewScreener(DefaultConfig()).Screen(raw, state)

	if verdict != VerdictValid {
		t.Fatalf("verdict = %s, want valid", verdict)
	}
	if cand.Flagged {
		t.Error("valid candidate must not be flagged")
	}
	if cand.Move != (domain.Move{From: 0, To: 2}) {
		t.Errorf("move = %s", cand.Move)
	}
	if cand.Fingerprint == "" {
		t.Error("valid candidate must carry a fingerprint")
	}
	if cand.Rationale != "smallest first" {
		t.Errorf("rationale = %q", cand.Rationale)
	}
}

func TestScreen_OverLength(t *testing.T) {
	state := domain.Initial(3, 3)
	// A degenerate repetition loop: well-formed but far over the ceiling.
	raw := proposer.RawResponse{
		ID:   "r1",
		Text: "Move: A -> C\nResult: A=[3,2] B=[] C=[1]\nRationale: " + strings.Repeat("wait, ", 500),
	}

	cand, verdict := NewScreener(Config{RationaleCeiling: 200}).Screen(raw, state)

	if verdict != VerdictOverLength {
		t.Fatalf("verdict = %s, want over_length", verdict)
	}
	if !cand.Flagged {
		t.Error("flagged candidate must carry Flagged")
	}
}

func TestScreen_Malformed(t *testing.T) {
	state := domain.Initial(3, 3)
	tests := []struct {
		name string
		text string
	}{
		{"prose", "The smallest disk should probably move somewhere sensible."},
		{"move without result", "Move: A -> C"},
		{"result without move", "Result: A=[3,2] B=[] C=[1]"},
		{"unparseable result", "Move: A -> C\nResult: A=[banana] B=[] C=[]"},
		{"wrong peg count", "Move: A -> C\nResult: A=[3,2] B=[1]"},
	}

	s := NewScreener(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, verdict := s.Screen(proposer.RawResponse{ID: "r", Text: tt.text}, state)
			if verdict != VerdictMalformed {
				t.Errorf("verdict = %s, want malformed", verdict)
			}
		})
	}
}

func TestScreen_IllegalMove(t *testing.T) {
	// A=[3] B=[2] C=[1]: A -> B would place disk 3 on disk 2. The
	// claimed result parses cleanly, so the legality check is what trips.
	state := mustState(t, [][]int{{3}, {2}, {1}})
	raw := proposer.RawResponse{
		ID:   "r1",
		Text: "Move: A -> B\nResult: A=[] B=[3,2] C=[1]\nRationale: consolidate",
	}

	_, verdict := NewScreener(DefaultConfig()).Screen(raw, state)

	if verdict != VerdictIllegalMove {
		t.Fatalf("verdict = %s, want illegal_move", verdict)
	}
}

func TestScreen_LargerOntoSmallerIsFlagged(t *testing.T) {
	// Container A=[3,1], container B=[2]: a candidate claiming to move
	// disk 3 onto B must always be flagged (3 > 2), whatever it claims
	// the result to be.
	state := mustState(t, [][]int{{3, 1}, {2}, {}})
	raw := proposer.RawResponse{
		ID:   "r1",
		Text: "Move: A -> B\nResult: A=[1] B=[3,2] C=[]\nRationale: big disk first",
	}

	cand, verdict := NewScreener(DefaultConfig()).Screen(raw, state)

	// "A -> B" can only mean the top of A (disk 1), but the claimed
	// result pretends disk 3 slid under disk 2. The deterministic
	// recomputation catches the lie before it can vote.
	if verdict != VerdictStateMismatch {
		t.Fatalf("verdict = %s, want state_mismatch", verdict)
	}
	if !cand.Flagged {
		t.Error("flagged candidate must carry Flagged")
	}
}

func TestScreen_StateMismatch(t *testing.T) {
	state := domain.Initial(3, 3)
	raw := proposer.RawResponse{
		ID:   "r1",
		Text: "Move: A -> C\nResult: A=[3,2] B=[1] C=[]\nRationale: sure",
	}

	_, verdict := NewScreener(DefaultConfig()).Screen(raw, state)

	if verdict != VerdictStateMismatch {
		t.Fatalf("verdict = %s, want state_mismatch", verdict)
	}
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{VerdictValid, "valid"},
		{VerdictOverLength, "over_length"},
		{VerdictMalformed, "malformed"},
		{VerdictIllegalMove, "illegal_move"},
		{VerdictStateMismatch, "state_mismatch"},
		{Verdict(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
