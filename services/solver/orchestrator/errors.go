// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import "errors"

// Sentinel errors for the step orchestrator.
var (
	// ErrInvariantBreach indicates an accepted candidate failed the
	// post-acceptance legality re-check. The filter and arbiter contracts
	// guarantee this cannot happen; if it does, the run aborts rather
	// than applying a corrupt transition.
	ErrInvariantBreach = errors.New("accepted move failed legality re-check")

	// ErrStepLimit indicates the run exceeded the configured MaxSteps
	// ceiling without reaching the goal.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrNotStarted indicates the initial state was already solved or
	// invalid for stepping.
	ErrNotStarted = errors.New("run not started")
)
