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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pegEntryPattern matches one "A=[5,4,3]" peg entry in canonical state text.
var pegEntryPattern = regexp.MustCompile(`([A-Z])\s*=\s*\[([0-9,\s]*)\]`)

// ParseState parses the canonical state encoding ("A=[3,2,1] B=[] C=[]")
// back into a validated State.
//
// Inputs:
//   - text: The state text. Peg labels must be contiguous starting at A.
//   - pegCount: Expected number of pegs.
//
// Outputs:
//   - State: The parsed, validated state.
//   - error: ErrMalformedState if the text does not describe exactly
//     pegCount pegs or the contents are invalid.
//
// Thread Safety: This function is safe for concurrent use.
func ParseState(text string, pegCount int) (State, error) {
	matches := pegEntryPattern.FindAllStringSubmatch(text, -1)
	if len(matches) != pegCount {
		return State{}, fmt.Errorf("%w: found %d peg entries, want %d", ErrMalformedState, len(matches), pegCount)
	}
	pegs := make([][]int, pegCount)
	for _, m := range matches {
		idx := int(m[1][0] - 'A')
		if idx < 0 || idx >= pegCount {
			return State{}, fmt.Errorf("%w: unexpected peg label %q", ErrMalformedState, m[1])
		}
		if pegs[idx] != nil {
			return State{}, fmt.Errorf("%w: peg %s listed twice", ErrMalformedState, m[1])
		}
		stack := []int{}
		body := strings.TrimSpace(m[2])
		if body != "" {
			for _, part := range strings.Split(body, ",") {
				disk, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return State{}, fmt.Errorf("%w: bad disk %q", ErrMalformedState, part)
				}
				stack = append(stack, disk)
			}
		}
		pegs[idx] = stack
	}
	for i, peg := range pegs {
		if peg == nil {
			return State{}, fmt.Errorf("%w: peg %s missing", ErrMalformedState, Peg(i))
		}
	}
	return New(pegs)
}

// ParseMove parses a move in "A -> C" or "A to C" form.
//
// Outputs:
//   - Move: The parsed move. Legality is not checked here; that is the
//     caller's concern against a concrete state.
//   - error: ErrIllegalMove wrapped with detail if the text does not parse.
func ParseMove(text string) (Move, error) {
	m := movePattern.FindStringSubmatch(text)
	if m == nil {
		return Move{}, fmt.Errorf("%w: cannot parse move from %q", ErrIllegalMove, text)
	}
	return Move{From: Peg(m[1][0] - 'A'), To: Peg(m[2][0] - 'A')}, nil
}

// movePattern accepts "A -> C", "A->C" and "A to C", case-insensitive on
// the connector but not on the peg labels.
var movePattern = regexp.MustCompile(`([A-Z])\s*(?:->|→|(?i:to))\s*([A-Z])`)
