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

// Sink receives step and run events for external observation. Calls are
// fire-and-forget: the orchestrator never depends on a sink for
// correctness, and implementations must not block.
type Sink interface {
	// OnStep is called after each accepted step.
	OnStep(rec StepRecord)

	// OnRunEnd is called once with the final counters when the run
	// reaches a terminal state.
	OnRunEnd(snap RunSnapshot)
}

// NopSink discards all events.
type NopSink struct{}

// OnStep implements the Sink interface.
func (NopSink) OnStep(StepRecord) {}

// OnRunEnd implements the Sink interface.
func (NopSink) OnRunEnd(RunSnapshot) {}
