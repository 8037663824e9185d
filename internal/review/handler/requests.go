package handler

import (
	"time"

	"gxpgovern/internal/draft/models"
	dErrors "gxpgovern/pkg/domain-errors"
)

// proposeDraftRequest is the external draft payload. The effective date comes
// in as a string; unparseable dates map to the zero time so the guardrail
// evaluator flags them instead of the edge rejecting the record.
type proposeDraftRequest struct {
	ModuleID          string                     `json:"moduleId"`
	ChangeType        string                     `json:"changeType"`
	Content           string                     `json:"content"`
	Rationale         string                     `json:"rationale"`
	RegulatoryTrigger regulatoryReferenceRequest `json:"regulatoryTrigger"`
	Sources           []models.SourceLink        `json:"sources"`
}

type regulatoryReferenceRequest struct {
	Authority     string `json:"authority"`
	Document      string `json:"document"`
	Section       string `json:"section"`
	EffectiveDate string `json:"effectiveDate"`
	URL           string `json:"url"`
}

type reviewRequest struct {
	Comment string `json:"comment"`
}

func (r proposeDraftRequest) toDraft() (models.DraftContent, error) {
	authority, err := models.ParseAuthority(r.RegulatoryTrigger.Authority)
	if err != nil {
		return models.DraftContent{}, err
	}
	changeType, err := models.ParseChangeType(r.ChangeType)
	if err != nil {
		return models.DraftContent{}, err
	}
	if r.ModuleID == "" {
		return models.DraftContent{}, dErrors.New(dErrors.CodeValidation, "moduleId is required")
	}
	return models.DraftContent{
		ModuleID:   r.ModuleID,
		ChangeType: changeType,
		Content:    r.Content,
		Rationale:  r.Rationale,
		RegulatoryTrigger: models.RegulatoryReference{
			Authority:     authority,
			Document:      r.RegulatoryTrigger.Document,
			Section:       r.RegulatoryTrigger.Section,
			EffectiveDate: parseEffectiveDate(r.RegulatoryTrigger.EffectiveDate),
			URL:           r.RegulatoryTrigger.URL,
		},
		Sources: r.Sources,
	}, nil
}

// parseEffectiveDate accepts RFC3339 or plain dates. Anything else becomes
// the zero time.
func parseEffectiveDate(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
