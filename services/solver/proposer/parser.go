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
	"regexp"
	"strings"
)

// ParseResult contains the structured components extracted from raw
// proposal text.
//
// Thread Safety: This type is immutable and safe for concurrent read access.
type ParseResult struct {
	// MoveText is the raw move clause, e.g. "A -> C" (empty if absent).
	MoveText string

	// ResultText is the claimed resulting state in canonical form
	// (empty if absent).
	ResultText string

	// Rationale is the free-form reasoning text (may be empty).
	Rationale string
}

// Proposal wire format regexes with flexible matching.
// Case-insensitive on the field labels, tolerant of variable whitespace.
var (
	// moveLinePattern matches "Move: A -> C".
	moveLinePattern = regexp.MustCompile(`(?i)Move\s*:\s*([A-Z]\s*(?:->|→|to)\s*[A-Z])`)

	// resultLinePattern matches "Result: A=[..] B=[..] ..." on one line.
	resultLinePattern = regexp.MustCompile(`(?i)Result\s*:\s*((?:[A-Z]\s*=\s*\[[0-9,\s]*\]\s*)+)`)

	// rationalePattern matches "Rationale: ..." to the end of the line block.
	rationalePattern = regexp.MustCompile(`(?is)Rationale\s*:\s*(.+)$`)
)

// Parse extracts the proposal components from raw response text.
//
// Description:
//
//	The expected wire format is:
//	  Move: A -> C
//	  Result: A=[3,2] B=[] C=[1]
//	  Rationale: [free text]
//
//	Parsing never fails and never panics; absent fields are returned
//	empty and classified by the screener, not here. Errors are not used
//	for control flow.
//
// Inputs:
//
//	text - The raw proposer output.
//
// Outputs:
//
//	*ParseResult - Parsed components. Never nil.
//
// Thread Safety: This function is safe for concurrent use.
func Parse(text string) *ParseResult {
	result := &ParseResult{}

	if m := moveLinePattern.FindStringSubmatch(text); len(m) > 1 {
		result.MoveText = strings.TrimSpace(m[1])
	}
	if m := resultLinePattern.FindStringSubmatch(text); len(m) > 1 {
		result.ResultText = strings.TrimSpace(m[1])
	}
	if m := rationalePattern.FindStringSubmatch(text); len(m) > 1 {
		result.Rationale = strings.TrimSpace(m[1])
	}

	return result
}

// HasMove reports whether a move clause was found.
func (r *ParseResult) HasMove() bool { return r.MoveText != "" }

// HasResult reports whether a claimed resulting state was found.
func (r *ParseResult) HasResult() bool { return r.ResultText != "" }
