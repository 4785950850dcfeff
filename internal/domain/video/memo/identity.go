// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package memo

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// ListIdentity derives a stable identity for an ordered set of raw references.
// Two lists share an identity iff they hold the same references in the same order.
func ListIdentity(refs []string) string {
	h := sha256.New()
	var n [8]byte
	for _, ref := range refs {
		binary.BigEndian.PutUint64(n[:], uint64(len(ref)))
		h.Write(n[:])
		h.Write([]byte(ref))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Key maps an arbitrary string (raw reference, list id) to a fixed-size,
// glob-safe token usable as a backend key or namespace segment.
func Key(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
