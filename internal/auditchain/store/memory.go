package store

import (
	"context"
	"sync"

	"gxpgovern/internal/auditchain"
)

// InMemory keeps the audit chain in append order. Suitable for tests and
// single-instance deployments without a database.
type InMemory struct {
	mu      sync.RWMutex
	entries []auditchain.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entry auditchain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, cloneEntry(entry))
	return nil
}

func (s *InMemory) List(_ context.Context) ([]auditchain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]auditchain.Entry, len(s.entries))
	for i, entry := range s.entries {
		out[i] = cloneEntry(entry)
	}
	return out, nil
}

func (s *InMemory) Tail(_ context.Context) (*auditchain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, nil
	}
	tail := cloneEntry(s.entries[len(s.entries)-1])
	return &tail, nil
}

func cloneEntry(entry auditchain.Entry) auditchain.Entry {
	out := entry
	if entry.Details != nil {
		out.Details = make(map[string]any, len(entry.Details))
		for k, v := range entry.Details {
			out.Details[k] = v
		}
	}
	return out
}
