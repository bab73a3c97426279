/*
integrity.go - Checksum computation and verification

PURPOSE:
  Stamps and verifies the cryptographic checksum covering the canonical
  ledger fields. The checksum makes casual tampering (editing a stored
  value without recomputing the digest) detectable on the next load.

WHY A CRYPTOGRAPHIC HASH?
  A fast non-cryptographic hash (FNV, xxhash) can be forged trivially by
  anyone who edits the stored record. BLAKE3-256 gives well over the
  128-bit preimage resistance required to make that impractical without
  also reverse-engineering the canonical encoding.

CANONICAL ENCODING:
  balance|earned|spent|version|platformTag

  Base-10 integers joined with '|'. Fixed order, fixed textual
  representation: no locale-dependent formatting can produce an
  ambiguous input.

THREAT MODEL:
  Detects casual edits and replayed save files. A fully compromised
  device that patches the digest algorithm itself is out of scope.
*/
package ledger

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// =============================================================================
// INTEGRITY ENGINE
// =============================================================================

// Integrity computes and verifies ledger checksums. Pure: no side
// effects, no stored state beyond the platform tag mixed into digests.
type Integrity struct {
	PlatformTag string
}

// Checksum computes the hex-encoded BLAKE3-256 digest over the canonical
// encoding of the covered fields.
func (i Integrity) Checksum(balance, earned, spent, version int64) string {
	canonical := fmt.Sprintf("%d|%d|%d|%d|%s", balance, earned, spent, version, i.PlatformTag)
	sum := blake3.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the checksum over the record's own fields and
// compares it to the stored one.
func (i Integrity) Verify(r Record) bool {
	return i.Checksum(r.Balance, r.TotalCoinsEarned, r.TotalCoinsSpent, r.Version) == r.Checksum
}

// DigestPrefix truncates a digest for event payloads. Full digests never
// leave the process in telemetry.
func DigestPrefix(digest string) string {
	if len(digest) <= 8 {
		return digest
	}
	return digest[:8]
}
