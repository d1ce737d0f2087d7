// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package arbiter decides, from a stream of screened candidates arriving
// across sampling rounds, the single transition to accept for the current
// step, using a first-to-ahead-by-k stopping rule with a hard round
// ceiling as the circuit breaker.
package arbiter

import (
	"sort"

	"github.com/AleutianAI/quorumstep/services/solver/screen"
)

// Tally accumulates votes for one step's voting session.
//
// Counts are keyed by candidate fingerprint; first-seen order is kept only
// for deterministic diagnostics output, never for tie resolution. A tally
// is exclusive to a single step and is never shared or reused.
//
// Thread Safety: NOT safe for concurrent use. The deciding loop is the
// only writer, and it mutates the tally strictly between rounds.
type Tally struct {
	counts    map[string]int
	firstSeen []string
	// reps holds one representative candidate per fingerprint; which of
	// the equivalent candidates represents the outcome is immaterial.
	reps map[string]screen.Candidate
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{
		counts: make(map[string]int),
		reps:   make(map[string]screen.Candidate),
	}
}

// Add records one vote for the candidate's fingerprint.
func (t *Tally) Add(c screen.Candidate) {
	if _, ok := t.counts[c.Fingerprint]; !ok {
		t.firstSeen = append(t.firstSeen, c.Fingerprint)
		t.reps[c.Fingerprint] = c
	}
	t.counts[c.Fingerprint]++
}

// Votes returns the total number of recorded votes.
func (t *Tally) Votes() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Distinct returns the number of distinct fingerprints seen.
func (t *Tally) Distinct() int { return len(t.counts) }

// Leaders returns the highest and second-highest counts and the candidate
// holding the highest. v2 is 0 when fewer than two distinct fingerprints
// exist. When several fingerprints share the highest count the returned
// leader is unspecified; callers must gate acceptance on v1-v2, which is
// then 0.
//
// The result depends only on the multiset of votes, never on arrival order.
func (t *Tally) Leaders() (leader screen.Candidate, v1, v2 int) {
	leaderFp := ""
	for _, fp := range t.firstSeen {
		n := t.counts[fp]
		switch {
		case n > v1:
			v1, v2 = n, v1
			leaderFp = fp
		case n > v2:
			v2 = n
		}
	}
	if leaderFp != "" {
		leader = t.reps[leaderFp]
	}
	return leader, v1, v2
}

// Snapshot returns fingerprint counts sorted by descending count, then
// fingerprint, for diagnostics on inconclusive steps.
func (t *Tally) Snapshot() []VoteCount {
	out := make([]VoteCount, 0, len(t.counts))
	for fp, n := range t.counts {
		vc := VoteCount{Fingerprint: fp, Votes: n}
		if rep, ok := t.reps[fp]; ok {
			vc.Move = rep.Move.String()
		}
		out = append(out, vc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	return out
}

// VoteCount is one fingerprint's line in a tally snapshot.
type VoteCount struct {
	Fingerprint string `json:"fingerprint"`
	Move        string `json:"move"`
	Votes       int    `json:"votes"`
}
