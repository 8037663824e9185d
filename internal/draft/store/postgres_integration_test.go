//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gxpgovern/internal/draft/models"
	"gxpgovern/internal/draft/store"
	id "gxpgovern/pkg/domain"
	"gxpgovern/pkg/platform/sentinel"
	"gxpgovern/pkg/testutil/containers"
)

type PostgresDraftStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresDraftStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDraftStoreSuite))
}

func (s *PostgresDraftStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresDraftStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "draft_content")
	s.Require().NoError(err)
}

func (s *PostgresDraftStoreSuite) newDraft() models.DraftContent {
	return models.DraftContent{
		ID:         id.NewDraftID(),
		ModuleID:   "mod-003",
		ChangeType: models.ChangeUpdate,
		Content:    "Updated GMP training content on data integrity requirements.",
		Rationale:  "New guidance issued by the FDA.",
		RegulatoryTrigger: models.RegulatoryReference{
			Authority:     models.AuthorityFDA,
			Document:      "Data Integrity and Compliance with Drug CGMP",
			Section:       "Guidance",
			EffectiveDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			URL:           "https://www.fda.gov/regulatory-information/guidance",
		},
		Status:      models.StatusPendingReview,
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
		Comments:    []string{},
		Sources:     []models.SourceLink{{Label: "FDA", URL: "https://www.fda.gov"}},
	}
}

func (s *PostgresDraftStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	draft := s.newDraft()
	s.Require().NoError(s.store.Save(ctx, draft))

	found, err := s.store.FindByID(ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(draft.ModuleID, found.ModuleID)
	s.Equal(draft.Content, found.Content)
	s.Equal(draft.RegulatoryTrigger.Authority, found.RegulatoryTrigger.Authority)
	s.True(draft.RegulatoryTrigger.EffectiveDate.Equal(found.RegulatoryTrigger.EffectiveDate))
	s.True(draft.GeneratedAt.Equal(found.GeneratedAt))
	s.Equal(draft.Sources, found.Sources)
	s.Empty(found.Comments)
	s.Empty(found.ReviewedBy)
	s.Nil(found.ReviewedAt)
}

func (s *PostgresDraftStoreSuite) TestFindUnknownDraft() {
	_, err := s.store.FindByID(context.Background(), id.NewDraftID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestReviewRoundTrip drives the approve-shaped update and verifies every
// reviewed field survives storage.
func (s *PostgresDraftStoreSuite) TestReviewRoundTrip() {
	ctx := context.Background()
	draft := s.newDraft()
	s.Require().NoError(s.store.Save(ctx, draft))

	reviewedAt := time.Now().UTC().Truncate(time.Microsecond)
	draft.Status = models.StatusApproved
	draft.ReviewedBy = "u-100"
	draft.ReviewedAt = &reviewedAt
	draft.Comments = append(draft.Comments, "verified against source")
	draft.AgenticAuthorized = true
	s.Require().NoError(s.store.Update(ctx, draft))

	found, err := s.store.FindByID(ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)
	s.Equal("u-100", found.ReviewedBy)
	s.Require().NotNil(found.ReviewedAt)
	s.True(reviewedAt.Equal(*found.ReviewedAt))
	s.Equal([]string{"verified against source"}, found.Comments)
	s.True(found.AgenticAuthorized)
}

func (s *PostgresDraftStoreSuite) TestUpdateUnknownDraft() {
	err := s.store.Update(context.Background(), s.newDraft())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresDraftStoreSuite) TestDelete() {
	ctx := context.Background()
	draft := s.newDraft()
	s.Require().NoError(s.store.Save(ctx, draft))
	s.Require().NoError(s.store.Delete(ctx, draft.ID))

	_, err := s.store.FindByID(ctx, draft.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(ctx, draft.ID), sentinel.ErrNotFound)
}

func (s *PostgresDraftStoreSuite) TestListOrder() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newDraft()
	older.GeneratedAt = now.Add(-time.Hour)
	newer := s.newDraft()
	newer.GeneratedAt = now
	s.Require().NoError(s.store.Save(ctx, newer))
	s.Require().NoError(s.store.Save(ctx, older))

	drafts, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal(older.ID, drafts[0].ID)
	s.Equal(newer.ID, drafts[1].ID)
}
