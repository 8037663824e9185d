// Package store persists draft content. Stores are interface-driven so the
// review service stays testable and in-memory, and Postgres implementations
// can be swapped without rewiring business code.
package store

import (
	"context"

	"gxpgovern/internal/draft/models"
	id "gxpgovern/pkg/domain"
)

// DraftStore persists draft content. Archival is a status change performed
// through Update. Delete exists only to unwind a proposal whose audit entry
// never committed; reviewed drafts are never deleted.
type DraftStore interface {
	Save(ctx context.Context, draft models.DraftContent) error
	Update(ctx context.Context, draft models.DraftContent) error
	Delete(ctx context.Context, draftID id.DraftID) error
	FindByID(ctx context.Context, draftID id.DraftID) (models.DraftContent, error)
	List(ctx context.Context) ([]models.DraftContent, error)
}
