// Package dedup tracks draft fingerprints across polling cycles so proposing
// the same regulatory input twice never grows the draft collection.
package dedup

import "context"

// Index records fingerprints that have already produced a draft. The redis
// implementation shares state across instances; the in-memory one backs unit
// tests and single-node deployments.
//
// AddIfAbsent must be atomic: of any number of concurrent callers claiming
// the same fingerprint, exactly one gets true. Remove releases a claim whose
// proposal did not commit.
type Index interface {
	AddIfAbsent(ctx context.Context, fingerprint string) (bool, error)
	Remove(ctx context.Context, fingerprint string) error
}
