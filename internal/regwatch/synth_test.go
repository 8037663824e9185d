package regwatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gxpgovern/internal/draft/models"
)

type SynthSuite struct {
	suite.Suite
}

func TestSynthSuite(t *testing.T) {
	suite.Run(t, new(SynthSuite))
}

func (s *SynthSuite) ref() models.RegulatoryReference {
	return models.RegulatoryReference{
		Authority:     models.AuthorityFDA,
		Document:      "Data Integrity Guidance",
		Section:       "Guidance",
		EffectiveDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		URL:           "https://www.fda.gov/guidance",
	}
}

func (s *SynthSuite) TestSynthesize() {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	draft := Synthesize(s.ref(), "mod-003", now)

	s.False(draft.ID.IsNil())
	s.Equal("mod-003", draft.ModuleID)
	s.Equal(models.ChangeUpdate, draft.ChangeType)
	s.Equal(models.StatusPendingReview, draft.Status)
	s.Equal(now, draft.GeneratedAt)
	s.Equal(s.ref(), draft.RegulatoryTrigger)

	s.Contains(draft.Content, "Data Integrity Guidance")
	s.Contains(draft.Content, "Primary source: https://www.fda.gov/guidance")
	s.Contains(draft.Rationale, "effective on 2025-06-01")

	s.Require().Len(draft.Sources, 2)
	s.Equal("https://www.fda.gov/guidance", draft.Sources[0].URL)
	s.Equal("https://www.fda.gov", draft.Sources[1].URL)
}

func (s *SynthSuite) TestSynthesizedDraftsShareFingerprint() {
	a := Synthesize(s.ref(), "mod-003", time.Now())
	b := Synthesize(s.ref(), "mod-003", time.Now().Add(time.Hour))

	s.NotEqual(a.ID, b.ID)
	s.Equal(Fingerprint(a), Fingerprint(b))
}

func (s *SynthSuite) TestRouting() {
	routes := DefaultRouting()

	s.Equal("mod-003", routes.Route(models.AuthorityFDA))
	s.Equal("mod-002", routes.Route(models.AuthorityEMA))
	s.Equal("mod-001", routes.Route(models.AuthorityICH))

	s.Run("unmapped authority falls back to default", func() {
		table := RoutingTable{DefaultModule: "mod-001"}
		s.Equal("mod-001", table.Route(models.AuthorityPMDA))
	})
}
