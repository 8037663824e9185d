package regwatch

import (
	"strings"
	"time"

	"gxpgovern/internal/draft/models"
)

// Fingerprint derives the canonical dedup key for a draft from its
// identifying fields. The effective date is canonicalized to UTC RFC3339 so
// equivalent instants collide even when formatted differently upstream.
func Fingerprint(d models.DraftContent) string {
	effective := ""
	if !d.RegulatoryTrigger.EffectiveDate.IsZero() {
		effective = d.RegulatoryTrigger.EffectiveDate.UTC().Format(time.RFC3339)
	}
	parts := []string{
		d.ModuleID,
		string(d.ChangeType),
		string(d.RegulatoryTrigger.Authority),
		d.RegulatoryTrigger.Document,
		d.RegulatoryTrigger.Section,
		effective,
		d.RegulatoryTrigger.URL,
	}
	return strings.ToLower(strings.Join(parts, "|"))
}

// IsDuplicate reports whether the candidate's fingerprint already appears in
// the existing collection.
func IsDuplicate(existing []models.DraftContent, candidate models.DraftContent) bool {
	fp := Fingerprint(candidate)
	for _, d := range existing {
		if Fingerprint(d) == fp {
			return true
		}
	}
	return false
}
