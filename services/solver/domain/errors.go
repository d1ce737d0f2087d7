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

import "errors"

// Sentinel errors for the transition model.
var (
	// ErrIllegalMove indicates a move that violates the ordering or
	// adjacency constraints for the current state.
	ErrIllegalMove = errors.New("illegal move")

	// ErrMalformedState indicates peg contents that do not form a valid
	// puzzle state (duplicate or missing disks, larger disk on smaller).
	ErrMalformedState = errors.New("malformed state")
)
