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
	"hash/fnv"
)

// Fingerprint returns a deterministic identity for a (move, resulting state)
// pair. Two proposals with the same fingerprint are votes for the same
// outcome regardless of any rationale text attached to them.
//
// The hash is FNV-1a over the canonical move and state encodings. Cheap and
// deterministic; at the cardinality of distinct outcomes per step (bounded
// by the handful of legal moves) collisions are not a practical concern.
//
// Thread Safety: This function is safe for concurrent use.
func Fingerprint(m Move, result State) string {
	h := fnv.New64a()
	h.Write([]byte(m.String()))
	h.Write([]byte{'|'})
	h.Write([]byte(result.Canonical()))
	return fmt.Sprintf("%016x", h.Sum64())
}
