package dedup

import (
	"context"
	"sync"
)

type InMemoryIndex struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{seen: make(map[string]struct{})}
}

// AddIfAbsent checks and records under one lock, so racing claims for the
// same fingerprint resolve to a single winner.
func (i *InMemoryIndex) AddIfAbsent(_ context.Context, fingerprint string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[fingerprint]; ok {
		return false, nil
	}
	i.seen[fingerprint] = struct{}{}
	return true, nil
}

func (i *InMemoryIndex) Remove(_ context.Context, fingerprint string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.seen, fingerprint)
	return nil
}
