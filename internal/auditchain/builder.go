package auditchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	id "gxpgovern/pkg/domain"
	dErrors "gxpgovern/pkg/domain-errors"
)

// Build completes a partial entry into a committed chain link: fresh id and
// timestamp, PrevHash taken from the previous entry, and a SHA-256 digest of
// the canonical payload.
func Build(partial Entry, prev *Entry) (Entry, error) {
	entry := partial
	entry.ID = id.NewEntryID().String()
	// TIMESTAMPTZ stores microseconds, so the hashed timestamp must not
	// carry nanoseconds that a storage round trip would strip.
	entry.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
	entry.PrevHash = ""
	if prev != nil {
		entry.PrevHash = prev.Hash
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	hash, err := hashEntry(entry)
	if err != nil {
		return Entry{}, err
	}
	entry.Hash = hash
	return entry, nil
}

// hashEntry digests the entry payload with the Hash field cleared, so a
// stored entry can be re-verified against its own content.
func hashEntry(entry Entry) (string, error) {
	entry.Hash = ""
	payload, err := StableJSON(entry)
	if err != nil {
		return "", fmt.Errorf("canonicalize audit entry: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Verify walks the chain from genesis, recomputing every hash from its own
// payload and checking each PrevHash against the predecessor.
func Verify(chain []Entry) error {
	for i, entry := range chain {
		computed, err := hashEntry(entry)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeIntegrity, fmt.Sprintf("audit entry %d cannot be canonicalized", i))
		}
		if computed != entry.Hash {
			return dErrors.New(dErrors.CodeIntegrity, fmt.Sprintf("audit entry %d hash mismatch: chain tampered", i))
		}
		if i == 0 {
			if entry.PrevHash != "" {
				return dErrors.New(dErrors.CodeIntegrity, "genesis audit entry must not carry a prev hash")
			}
			continue
		}
		if entry.PrevHash != chain[i-1].Hash {
			return dErrors.New(dErrors.CodeIntegrity, fmt.Sprintf("audit entry %d prev hash mismatch: chain tampered", i))
		}
	}
	return nil
}
