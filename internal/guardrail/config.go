package guardrail

import "gxpgovern/internal/draft/models"

// Config holds the deterministic rule tables. Defaults mirror the registered
// primary-source domains of each authority and the curriculum keyword sets
// used for domain-alignment scoring.
type Config struct {
	// AuthorityHosts whitelists source hostnames per authority. A host
	// matches exactly or as a subdomain, never by substring.
	AuthorityHosts map[models.Authority][]string
	// ModuleKeywords drives the alignment heuristic: the combined draft text
	// must hit AlignmentThreshold of the target module's keyword set.
	ModuleKeywords map[string][]string

	MinContentLength   int
	MinRationaleLength int
	AlignmentThreshold float64
}

func DefaultConfig() Config {
	return Config{
		AuthorityHosts: map[models.Authority][]string{
			models.AuthorityFDA:          {"fda.gov"},
			models.AuthorityEMA:          {"ema.europa.eu", "europa.eu"},
			models.AuthorityHealthCanada: {"canada.ca", "hc-sc.gc.ca"},
			models.AuthorityPMDA:         {"pmda.go.jp"},
			models.AuthorityMHRA:         {"gov.uk", "mhra.gov.uk"},
			models.AuthorityCDSCO:        {"cdsco.gov.in", "nha.gov.in"},
			models.AuthorityICH:          {"ich.org"},
		},
		ModuleKeywords: map[string][]string{
			"mod-001": {"gcp", "consent", "investigator", "irb", "iec", "clinical trial"},
			"mod-002": {"pharmacovigilance", "signal", "adverse", "safety", "meddra"},
			"mod-003": {"gmp", "capa", "deviation", "batch", "alcoa", "manufacturing"},
			"mod-004": {"ctd", "ectd", "submission", "regulatory affairs"},
			"mod-005": {"quality assurance", "audit", "tmf", "oversight"},
			"mod-006": {"monitoring", "site", "protocol", "clinical"},
		},
		MinContentLength:   40,
		MinRationaleLength: 20,
		AlignmentThreshold: 0.3,
	}
}
