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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_FullProposal(t *testing.T) {
	text := "Move: A -> C\nResult: A=[3,2] B=[] C=[1]\nRationale: free the small disk first"

	result := Parse(text)

	assert.Equal(t, "A -> C", result.MoveText)
	assert.Equal(t, "A=[3,2] B=[] C=[1]", result.ResultText)
	assert.Equal(t, "free the small disk first", result.Rationale)
	assert.True(t, result.HasMove())
	assert.True(t, result.HasResult())
}

func TestParse_FlexibleFormatting(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantMove string
	}{
		{"lowercase label", "move: A -> C\nresult: A=[1] B=[] C=[]", "A -> C"},
		{"extra whitespace", "Move :   A  ->  C\nResult:  A=[1] B=[] C=[]", "A  ->  C"},
		{"to connector", "Move: A to C\nResult: A=[1] B=[] C=[]", "A to C"},
		{"surrounding prose", "Sure! Here is my answer.\nMove: B -> C\nResult: A=[1] B=[] C=[]\nGood luck!", "B -> C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)
			assert.Equal(t, tt.wantMove, result.MoveText)
			assert.True(t, result.HasResult())
		})
	}
}

func TestParse_MissingPieces(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantMove   bool
		wantResult bool
	}{
		{"empty", "", false, false},
		{"prose only", "I think the small disk should go somewhere.", false, false},
		{"move only", "Move: A -> C", true, false},
		{"result only", "Result: A=[1] B=[] C=[]", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)
			assert.Equal(t, tt.wantMove, result.HasMove())
			assert.Equal(t, tt.wantResult, result.HasResult())
		})
	}
}

func TestParse_NeverNil(t *testing.T) {
	assert.NotNil(t, Parse(""))
	assert.NotNil(t, Parse("Move: garbage"))
}
