package regwatch

import (
	"fmt"
	"strings"
	"time"

	"gxpgovern/internal/draft/models"
	id "gxpgovern/pkg/domain"
)

// authorityHomes provides the origin-verification citation added alongside
// the primary source link.
var authorityHomes = map[models.Authority]string{
	models.AuthorityFDA:          "https://www.fda.gov",
	models.AuthorityEMA:          "https://www.ema.europa.eu",
	models.AuthorityICH:          "https://www.ich.org",
	models.AuthorityPMDA:         "https://www.pmda.go.jp/english/",
	models.AuthorityMHRA:         "https://www.gov.uk/government/organisations/medicines-and-healthcare-products-regulatory-agency",
	models.AuthorityCDSCO:        "https://cdsco.gov.in",
	models.AuthorityHealthCanada: "https://www.canada.ca/en/health-canada.html",
}

// Synthesize builds a candidate draft from a regulatory reference using the
// deterministic curriculum-update template. The draft always cites the
// regulatory document URL plus the authority homepage.
func Synthesize(ref models.RegulatoryReference, moduleID string, now time.Time) models.DraftContent {
	home := authorityHomes[ref.Authority]
	if home == "" {
		home = ref.URL
	}
	return models.DraftContent{
		ID:         id.NewDraftID(),
		ModuleID:   moduleID,
		ChangeType: models.ChangeUpdate,
		Content:    renderUpdateContent(ref),
		Rationale: fmt.Sprintf(
			"Regulatory trigger: %s — %s (%s). Training should be updated to ensure alignment with clarified expectations, effective on %s.",
			ref.Authority, ref.Document, ref.Section, ref.EffectiveDate.UTC().Format("2006-01-02"),
		),
		RegulatoryTrigger: ref,
		Status:            models.StatusPendingReview,
		GeneratedAt:       now.UTC(),
		Comments:          []string{},
		Sources: []models.SourceLink{
			{Label: fmt.Sprintf("%s: %s", ref.Authority, ref.Document), URL: ref.URL},
			{Label: fmt.Sprintf("%s — official site", ref.Authority), URL: home},
		},
	}
}

func renderUpdateContent(ref models.RegulatoryReference) string {
	return strings.Join([]string{
		fmt.Sprintf("Update overview: Incorporate latest %s update — %s (%s).", ref.Authority, ref.Document, ref.Section),
		"",
		"Curriculum changes:",
		"- Add a new slide explaining the update scope, applicability, and effective date.",
		"- Revise the \"key controls\" section to include specific expectations clarified by the update.",
		"- Include a short scenario-based interactive exercise demonstrating compliant vs non-compliant practice.",
		"- Add a checklist for day-to-day execution aligned to the updated guidance.",
		"",
		"Learning objectives to add/refine:",
		"- Learner can summarize the update and identify impacted processes.",
		"- Learner can apply the updated control expectations to a realistic case.",
		"- Learner can locate the relevant SOP/work instruction section(s) reflecting the update.",
		"",
		"Assessment adjustments:",
		"- Add 2 knowledge-check questions targeting the updated expectation language.",
		"- Add 1 scenario question that tests decision-making under the new guidance.",
		"",
		"Primary source: " + ref.URL,
	}, "\n")
}
