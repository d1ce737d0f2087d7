// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package domain implements the transition model for the reference puzzle:
// a fixed set of ordered pegs holding numbered disks, where a larger disk
// may never rest on a smaller one.
//
// The package is pure data and validation. It has no side effects, holds no
// global state, and is reused unchanged by both the red-flag screening path
// and the orchestrator's apply path.
//
// # State Encoding
//
// A state is a snapshot of every peg, bottom to top. The canonical text form
// labels pegs A, B, C, ... and lists disks bottom-first:
//
//	A=[5,4,3] B=[] C=[2,1]
//
// Disks are numbered 1..N by increasing size, so within a peg the numbers
// must be strictly decreasing bottom to top.
//
// # Thread Safety
//
// State values are immutable after construction. All operations return new
// values and are safe for concurrent use.
package domain

import (
	"fmt"
	"strings"
)

// Peg identifies one of the ordered containers, zero-based.
// Peg 0 renders as "A", peg 1 as "B", and so on.
type Peg int

// String returns the single-letter label for the peg.
func (p Peg) String() string {
	if p < 0 || p > 25 {
		return fmt.Sprintf("peg(%d)", int(p))
	}
	return string(rune('A' + int(p)))
}

// Move is a proposed transition: lift the top disk of From and place it on To.
// The disk is implied; only the topmost disk of a peg can ever move.
type Move struct {
	From Peg
	To   Peg
}

// String renders the move in the canonical "A -> C" form used in prompts
// and diagnostics.
func (m Move) String() string {
	return m.From.String() + " -> " + m.To.String()
}

// State is an immutable snapshot of the puzzle.
//
// Thread Safety: State values are immutable and safe for concurrent use.
type State struct {
	pegs  [][]int
	disks int
}

// Initial returns the starting state: all disks stacked on the first peg,
// largest at the bottom.
//
// Inputs:
//   - disks: Number of disks (must be >= 1).
//   - pegCount: Number of pegs (must be >= 3).
//
// Outputs:
//   - State: The initial configuration.
func Initial(disks, pegCount int) State {
	if disks < 1 {
		disks = 1
	}
	if pegCount < 3 {
		pegCount = 3
	}
	pegs := make([][]int, pegCount)
	first := make([]int, 0, disks)
	for d := disks; d >= 1; d-- {
		first = append(first, d)
	}
	pegs[0] = first
	return State{pegs: pegs, disks: disks}
}

// New builds a State from explicit peg contents (bottom to top) and
// validates it.
//
// Inputs:
//   - pegs: Per-peg disk stacks, bottom first.
//
// Outputs:
//   - State: The validated state.
//   - error: ErrMalformedState if a disk is missing, duplicated, or a larger
//     disk rests on a smaller one.
func New(pegs [][]int) (State, error) {
	total := 0
	for _, peg := range pegs {
		total += len(peg)
	}
	seen := make([]bool, total+1)
	for pi, peg := range pegs {
		for i, disk := range peg {
			if disk < 1 || disk > total {
				return State{}, fmt.Errorf("%w: disk %d out of range on peg %s", ErrMalformedState, disk, Peg(pi))
			}
			if seen[disk] {
				return State{}, fmt.Errorf("%w: disk %d appears twice", ErrMalformedState, disk)
			}
			seen[disk] = true
			if i > 0 && peg[i-1] < disk {
				return State{}, fmt.Errorf("%w: disk %d rests on smaller disk %d on peg %s", ErrMalformedState, disk, peg[i-1], Peg(pi))
			}
		}
	}
	cp := make([][]int, len(pegs))
	for i, peg := range pegs {
		cp[i] = append([]int(nil), peg...)
	}
	return State{pegs: cp, disks: total}, nil
}

// Disks returns the total number of disks in play.
func (s State) Disks() int { return s.disks }

// PegCount returns the number of pegs.
func (s State) PegCount() int { return len(s.pegs) }

// Peg returns a copy of the given peg's stack, bottom to top.
func (s State) Peg(p Peg) []int {
	if int(p) < 0 || int(p) >= len(s.pegs) {
		return nil
	}
	return append([]int(nil), s.pegs[p]...)
}

// Top returns the topmost disk of a peg, or false if the peg is empty
// or out of range.
func (s State) Top(p Peg) (int, bool) {
	if int(p) < 0 || int(p) >= len(s.pegs) || len(s.pegs[p]) == 0 {
		return 0, false
	}
	return s.pegs[p][len(s.pegs[p])-1], true
}

// PegOf returns the peg currently holding the given disk.
func (s State) PegOf(disk int) (Peg, bool) {
	for pi, peg := range s.pegs {
		for _, d := range peg {
			if d == disk {
				return Peg(pi), true
			}
		}
	}
	return 0, false
}

// IsLegal reports whether the move obeys the domain constraints:
// source and destination are distinct in-range pegs, the source is
// non-empty, and the moved disk is smaller than the destination's top
// disk (or the destination is empty).
func (s State) IsLegal(m Move) bool {
	if int(m.From) < 0 || int(m.From) >= len(s.pegs) {
		return false
	}
	if int(m.To) < 0 || int(m.To) >= len(s.pegs) {
		return false
	}
	if m.From == m.To {
		return false
	}
	moving, ok := s.Top(m.From)
	if !ok {
		return false
	}
	if top, ok := s.Top(m.To); ok && moving > top {
		return false
	}
	return true
}

// Apply returns the state after the move.
//
// Inputs:
//   - m: The move to apply.
//
// Outputs:
//   - State: The resulting state. Pure function; the receiver is unchanged.
//   - error: ErrIllegalMove if IsLegal(m) is false.
func (s State) Apply(m Move) (State, error) {
	if !s.IsLegal(m) {
		return State{}, fmt.Errorf("%w: %s in %s", ErrIllegalMove, m, s.Canonical())
	}
	pegs := make([][]int, len(s.pegs))
	for i, peg := range s.pegs {
		pegs[i] = append([]int(nil), peg...)
	}
	from, to := pegs[m.From], pegs[m.To]
	disk := from[len(from)-1]
	pegs[m.From] = from[:len(from)-1]
	pegs[m.To] = append(to, disk)
	return State{pegs: pegs, disks: s.disks}, nil
}

// LegalMoves returns every move that IsLegal permits from this state,
// ordered by (From, To).
func (s State) LegalMoves() []Move {
	var moves []Move
	for from := range s.pegs {
		for to := range s.pegs {
			m := Move{From: Peg(from), To: Peg(to)}
			if s.IsLegal(m) {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// IsGoal reports whether every disk sits on the last peg in original
// relative order.
func (s State) IsGoal() bool {
	if len(s.pegs) == 0 {
		return false
	}
	return len(s.pegs[len(s.pegs)-1]) == s.disks
}

// Equal reports whether two states have identical peg contents.
func (s State) Equal(other State) bool {
	if len(s.pegs) != len(other.pegs) || s.disks != other.disks {
		return false
	}
	for i := range s.pegs {
		if len(s.pegs[i]) != len(other.pegs[i]) {
			return false
		}
		for j := range s.pegs[i] {
			if s.pegs[i][j] != other.pegs[i][j] {
				return false
			}
		}
	}
	return true
}

// Canonical returns the canonical text form, e.g. "A=[3,2,1] B=[] C=[]".
// Fingerprints and the proposal wire format are both built on this encoding.
func (s State) Canonical() string {
	var b strings.Builder
	for pi, peg := range s.pegs {
		if pi > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Peg(pi).String())
		b.WriteString("=[")
		for i, d := range peg {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", d)
		}
		b.WriteByte(']')
	}
	return b.String()
}

// String is an alias for Canonical.
func (s State) String() string { return s.Canonical() }

// MinimumSteps returns the optimal solution length for the classic
// three-peg puzzle with the given disk count: 2^disks - 1.
func MinimumSteps(disks int) int {
	if disks < 0 || disks > 62 {
		return 0
	}
	return (1 << uint(disks)) - 1
}
