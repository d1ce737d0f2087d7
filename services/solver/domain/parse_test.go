// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package domain

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	s, err := ParseState("A=[3,2] B=[] C=[1]", 3)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if got := s.Canonical(); got != "A=[3,2] B=[] C=[1]" {
		t.Errorf("Canonical() = %q", got)
	}
}

func TestParseState_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing peg", "A=[3,2,1] B=[]"},
		{"duplicate label", "A=[3] A=[2,1] C=[]"},
		{"unknown label", "A=[3,2] B=[] D=[1]"},
		{"illegal stacking", "A=[1,3] B=[2] C=[]"},
		{"not a state", "I would move the small disk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseState(tt.text, 3); !errors.Is(err, ErrMalformedState) {
				t.Errorf("ParseState(%q) error = %v, want ErrMalformedState", tt.text, err)
			}
		})
	}
}

func TestParseState_RoundTrip(t *testing.T) {
	orig, err := New([][]int{{5, 4}, {3}, {2, 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parsed, err := ParseState(orig.Canonical(), 3)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if !orig.Equal(parsed) {
		t.Errorf("round trip mismatch: %s vs %s", orig, parsed)
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		text string
		want Move
	}{
		{"A -> C", Move{From: 0, To: 2}},
		{"A->B", Move{From: 0, To: 1}},
		{"B to C", Move{From: 1, To: 2}},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.text)
		if err != nil {
			t.Errorf("ParseMove(%q): %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMove(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseMove_Rejects(t *testing.T) {
	if _, err := ParseMove("just shuffle things around"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("error = %v, want ErrIllegalMove", err)
	}
}
