// Package models defines the governance pipeline's core records: regulatory
// references arriving from external intelligence sources and the draft
// curriculum changes synthesized from them.
package models

import (
	"time"

	id "gxpgovern/pkg/domain"
	dErrors "gxpgovern/pkg/domain-errors"
)

// Authority is a recognized regulatory body.
type Authority string

const (
	AuthorityFDA          Authority = "FDA"
	AuthorityEMA          Authority = "EMA"
	AuthorityICH          Authority = "ICH"
	AuthorityPMDA         Authority = "PMDA"
	AuthorityMHRA         Authority = "MHRA"
	AuthorityCDSCO        Authority = "CDSCO"
	AuthorityHealthCanada Authority = "Health Canada"
)

// Authorities lists every recognized authority in stable order.
func Authorities() []Authority {
	return []Authority{
		AuthorityFDA, AuthorityEMA, AuthorityICH, AuthorityPMDA,
		AuthorityMHRA, AuthorityCDSCO, AuthorityHealthCanada,
	}
}

// ParseAuthority validates an external authority string.
func ParseAuthority(s string) (Authority, error) {
	for _, a := range Authorities() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown regulatory authority: "+s)
}

// RegulatoryReference points at a specific regulatory document. Immutable once
// received; an unparseable effective date is carried as the zero time so the
// guardrail evaluator can flag it rather than the ingress dropping the record.
type RegulatoryReference struct {
	Authority     Authority `json:"authority"`
	Document      string    `json:"document"`
	Section       string    `json:"section"`
	EffectiveDate time.Time `json:"effectiveDate"`
	URL           string    `json:"url"`
}

// ChangeType classifies what a draft proposes to do to a module.
type ChangeType string

const (
	ChangeNew     ChangeType = "new"
	ChangeUpdate  ChangeType = "update"
	ChangeRemoval ChangeType = "removal"
)

// ParseChangeType validates an external change type string.
func ParseChangeType(s string) (ChangeType, error) {
	switch ChangeType(s) {
	case ChangeNew, ChangeUpdate, ChangeRemoval:
		return ChangeType(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown change type: "+s)
}

// Status is the draft lifecycle state. Approved and archived are terminal.
type Status string

const (
	StatusPendingReview Status = "pending-review"
	StatusApproved      Status = "approved"
	StatusArchived      Status = "archived"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusArchived
}

// SourceLink is a labeled citation attached to a draft.
type SourceLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DraftContent is a proposed curriculum change. Created by the poller or an
// external proposer, mutated only through the review service, never deleted:
// archival is a status change, which is what the audit trail depends on.
type DraftContent struct {
	ID                id.DraftID          `json:"id"`
	ModuleID          string              `json:"moduleId"`
	ChangeType        ChangeType          `json:"changeType"`
	Content           string              `json:"content"`
	Rationale         string              `json:"rationale"`
	RegulatoryTrigger RegulatoryReference `json:"regulatoryTrigger"`
	Status            Status              `json:"status"`
	GeneratedAt       time.Time           `json:"generatedAt"`
	ReviewedBy        string              `json:"reviewedBy,omitempty"`
	ReviewedAt        *time.Time          `json:"reviewedAt,omitempty"`
	Comments          []string            `json:"comments"`
	Sources           []SourceLink        `json:"sources"`
	AgenticAuthorized bool                `json:"agenticAuthorized"`
}
