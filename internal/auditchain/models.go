// Package auditchain builds and verifies the tamper-evident audit log: an
// append-only sequence of hash-linked entries, the record-keeping 21 CFR Part
// 11 style controls expect.
package auditchain

import "time"

// Origin distinguishes human actions from automated pipeline actions.
type Origin string

const (
	OriginHuman     Origin = "human"
	OriginAutomated Origin = "automated"
)

// Governance actions recorded in the chain.
const (
	ActionContentProposed       = "CONTENT_PROPOSED"
	ActionContentApproved       = "CONTENT_APPROVED"
	ActionContentRejected       = "CONTENT_REJECTED"
	ActionRevisionRequested     = "CONTENT_REVISION_REQUESTED"
	ActionAgenticAuthorized     = "AGENTIC_AUTHORIZED"
	ActionContentApprovalDenied = "CONTENT_APPROVAL_DENIED"
	ActionDenied                = "ACTION_DENIED"
)

// Entry is one link in the chain. PrevHash of entry n equals Hash of entry
// n-1; the genesis entry has no PrevHash. Entries are produced exclusively by
// Build and never edited after commit.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName"`
	ActorRole  string         `json:"actorRole"`
	Origin     Origin         `json:"origin"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Details    map[string]any `json:"details"`
	PrevHash   string         `json:"prevHash,omitempty"`
	Hash       string         `json:"hash"`
}
