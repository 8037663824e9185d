package regwatch

import "gxpgovern/internal/draft/models"

// RoutingTable maps each authority to the training modules it can affect, in
// priority order. Route picks the first match and falls back to the default
// module for unmapped authorities.
type RoutingTable struct {
	Routes        map[models.Authority][]string
	DefaultModule string
}

// DefaultRouting mirrors the curriculum layout: GCP (mod-001),
// pharmacovigilance (mod-002), GMP (mod-003), regulatory affairs (mod-004),
// QA (mod-005), clinical operations (mod-006).
func DefaultRouting() RoutingTable {
	return RoutingTable{
		Routes: map[models.Authority][]string{
			models.AuthorityFDA:          {"mod-003", "mod-005", "mod-006"},
			models.AuthorityEMA:          {"mod-002", "mod-006"},
			models.AuthorityICH:          {"mod-001", "mod-004", "mod-006"},
			models.AuthorityPMDA:         {"mod-004"},
			models.AuthorityMHRA:         {"mod-002", "mod-003"},
			models.AuthorityCDSCO:        {"mod-003", "mod-004"},
			models.AuthorityHealthCanada: {"mod-002", "mod-004"},
		},
		DefaultModule: "mod-001",
	}
}

// Route returns the target module for an authority, first match wins.
func (t RoutingTable) Route(authority models.Authority) string {
	if modules := t.Routes[authority]; len(modules) > 0 {
		return modules[0]
	}
	return t.DefaultModule
}
