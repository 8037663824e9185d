package store

import (
	"context"
	"sort"
	"sync"

	"gxpgovern/internal/draft/models"
	id "gxpgovern/pkg/domain"
	"gxpgovern/pkg/platform/sentinel"
)

// InMemory keeps the initial implementation lightweight and testable. It
// intentionally favors clarity over performance.
type InMemory struct {
	mu     sync.RWMutex
	drafts map[id.DraftID]models.DraftContent
}

func NewInMemory() *InMemory {
	return &InMemory{drafts: make(map[id.DraftID]models.DraftContent)}
}

func (s *InMemory) Save(_ context.Context, draft models.DraftContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draft.ID]; ok {
		return sentinel.ErrConflict
	}
	s.drafts[draft.ID] = cloneDraft(draft)
	return nil
}

func (s *InMemory) Update(_ context.Context, draft models.DraftContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draft.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.drafts[draft.ID] = cloneDraft(draft)
	return nil
}

func (s *InMemory) Delete(_ context.Context, draftID id.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draftID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.drafts, draftID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, draftID id.DraftID) (models.DraftContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if draft, ok := s.drafts[draftID]; ok {
		return cloneDraft(draft), nil
	}
	return models.DraftContent{}, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]models.DraftContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DraftContent, 0, len(s.drafts))
	for _, draft := range s.drafts {
		out = append(out, cloneDraft(draft))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GeneratedAt.Before(out[j].GeneratedAt)
	})
	return out, nil
}

// cloneDraft copies slice fields so callers cannot mutate stored state.
func cloneDraft(d models.DraftContent) models.DraftContent {
	out := d
	out.Comments = append([]string(nil), d.Comments...)
	out.Sources = append([]models.SourceLink(nil), d.Sources...)
	if d.ReviewedAt != nil {
		t := *d.ReviewedAt
		out.ReviewedAt = &t
	}
	return out
}
