package regwatch

import (
	"context"
	"time"

	"gxpgovern/internal/draft/models"
)

// Source supplies regulatory-change signals. The production implementation is
// an external regulatory-intelligence collaborator; StaticSource stands in
// until that integration lands.
type Source interface {
	Fetch(ctx context.Context) ([]models.RegulatoryReference, error)
}

// StaticSource serves a bundled set of references, filtered by an optional
// authority allow-list. References carry effective dates relative to
// construction time so repeated cycles return identical records.
type StaticSource struct {
	refs []models.RegulatoryReference
}

func NewStaticSource(allowed []models.Authority) *StaticSource {
	now := time.Now().UTC().Truncate(time.Second)
	refs := []models.RegulatoryReference{
		{
			Authority:     models.AuthorityFDA,
			Document:      "Data Integrity and Compliance with Drug CGMP — Update 2025",
			Section:       "Guidance",
			EffectiveDate: now,
			URL:           "https://www.fda.gov/regulatory-information/search-fda-guidance-documents/data-integrity-and-compliance-drug-cgmp",
		},
		{
			Authority:     models.AuthorityICH,
			Document:      "E6(R3) Good Clinical Practice — Draft for Consultation",
			Section:       "Concept Paper",
			EffectiveDate: now.AddDate(0, 0, -14),
			URL:           "https://www.ich.org/page/efficacy-guidelines",
		},
		{
			Authority:     models.AuthorityEMA,
			Document:      "GVP Module IX — Signal Management Amendment 2025",
			Section:       "Module IX",
			EffectiveDate: now.AddDate(0, 0, -7),
			URL:           "https://www.ema.europa.eu/en/human-regulatory/post-authorisation/pharmacovigilance",
		},
	}
	if len(allowed) > 0 {
		allowSet := make(map[models.Authority]bool, len(allowed))
		for _, a := range allowed {
			allowSet[a] = true
		}
		filtered := refs[:0]
		for _, ref := range refs {
			if allowSet[ref.Authority] {
				filtered = append(filtered, ref)
			}
		}
		refs = filtered
	}
	return &StaticSource{refs: refs}
}

func (s *StaticSource) Fetch(_ context.Context) ([]models.RegulatoryReference, error) {
	out := make([]models.RegulatoryReference, len(s.refs))
	copy(out, s.refs)
	return out, nil
}
