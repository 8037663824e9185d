// Package guardrail evaluates draft content against deterministic compliance
// policy. Evaluation is pure domain logic - no I/O, no side effects - because
// the same function runs at generation time and again at the moment of
// approval, and both calls must agree.
package guardrail

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"gxpgovern/internal/draft/models"
)

// Severity ranks a guardrail issue.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Issue is one finding from one rule.
type Issue struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Report is the full evaluation result. BlockApprove is true iff any issue is
// error severity; OK is its negation. Reports are derived, never stored as
// the source of truth.
type Report struct {
	OK           bool    `json:"ok"`
	BlockApprove bool    `json:"blockApprove"`
	Issues       []Issue `json:"issues"`
}

var provisionalPattern = regexp.MustCompile(`(?i)draft|consultation`)

// Evaluator applies the rule set. It never mutates the draft.
type Evaluator struct {
	cfg Config
}

func New(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate runs every rule (no short-circuiting) and aggregates issues.
func (e *Evaluator) Evaluate(d models.DraftContent) Report {
	issues := []Issue{}

	// Rule 1: source whitelist. Failing the primary-source check blocks
	// approval outright.
	if !e.hostWhitelisted(d.RegulatoryTrigger.Authority, d.RegulatoryTrigger.URL) {
		issues = append(issues, Issue{
			Message:  "Source is not a recognized primary regulator domain",
			Severity: SeverityError,
		})
	}

	// Rule 2: draft/consultation detector.
	if provisionalPattern.MatchString(d.RegulatoryTrigger.Document) {
		issues = append(issues, Issue{
			Message:  "Document appears to be a draft/consultation. Ensure provisional treatment.",
			Severity: SeverityWarn,
		})
	}

	// Rule 3: effective-date validity. Ingress carries unparseable dates as
	// the zero time.
	if d.RegulatoryTrigger.EffectiveDate.IsZero() {
		issues = append(issues, Issue{
			Message:  "Missing or invalid effective date",
			Severity: SeverityError,
		})
	}

	// Rule 4: minimum content length.
	if len(d.Content) < e.cfg.MinContentLength {
		issues = append(issues, Issue{
			Message:  "Proposed content too short to be actionable",
			Severity: SeverityWarn,
		})
	}

	// Rule 5: minimum rationale length.
	if len(d.Rationale) < e.cfg.MinRationaleLength {
		issues = append(issues, Issue{
			Message:  "Rationale is insufficient",
			Severity: SeverityWarn,
		})
	}

	// Rule 6: domain-alignment heuristic over content+rationale+document.
	if !e.aligned(d) {
		issues = append(issues, Issue{
			Message:  "Draft may not align with target module subject matter",
			Severity: SeverityWarn,
		})
	}

	blocked := false
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			blocked = true
			break
		}
	}
	return Report{OK: !blocked, BlockApprove: blocked, Issues: issues}
}

func (e *Evaluator) hostWhitelisted(authority models.Authority, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range e.cfg.AuthorityHosts[authority] {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// aligned returns true when no keyword set is configured for the module or
// the combined text hits the configured share of it.
func (e *Evaluator) aligned(d models.DraftContent) bool {
	keywords := e.cfg.ModuleKeywords[d.ModuleID]
	if len(keywords) == 0 {
		return true
	}
	blob := strings.ToLower(d.Content + " " + d.Rationale + " " + d.RegulatoryTrigger.Document)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(blob, strings.ToLower(kw)) {
			matched++
		}
	}
	required := int(math.Ceil(float64(len(keywords)) * e.cfg.AlignmentThreshold))
	return matched >= required
}
