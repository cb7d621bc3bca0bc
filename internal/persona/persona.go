// Package persona defines the reviewer viewpoints that generate scenarios and
// how a requested scenario count is split between them.
package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// Built-in persona identifiers.
const (
	IDProductOwner   = "product-owner"
	IDQAEngineer     = "qa-engineer"
	IDProductManager = "product-manager"
	IDTechLead       = "tech-lead"
	IDGeneralist     = "generalist"
)

var defaults = []bdd.PersonaSpec{
	{
		ID:   IDProductOwner,
		Rank: 1,
		Name: "Product Owner",
		Focus: "End-user value and experience. Cover the main user journeys and intuitive happy paths, " +
			"different kinds of users, and outcomes that can be measured against business goals.",
	},
	{
		ID:   IDQAEngineer,
		Rank: 2,
		Name: "QA Engineer",
		Focus: "Test coverage. Cover boundaries and validations, error handling, invalid data, " +
			"unexpected situations, behaviour under load and failures of external dependencies.",
	},
	{
		ID:   IDProductManager,
		Rank: 3,
		Name: "Product Manager",
		Focus: "Business rules and compliance. Cover critical business rules, regulatory constraints, " +
			"the needs of different stakeholders and measurable KPIs.",
	},
	{
		ID:   IDTechLead,
		Rank: 4,
		Name: "Tech Lead",
		Focus: "Technical feasibility. Cover performance, integrations with external systems, " +
			"security and data protection, scalability and concurrency.",
	},
}

var generalist = bdd.PersonaSpec{
	ID:   IDGeneralist,
	Rank: 1,
	Name: "BDD Analyst",
	Focus: "Balanced coverage of the story: the main success path first, then the failures " +
		"and boundaries a careful reviewer would expect.",
}

// Roster is an ordered, read-only set of personas. Index 0 has the highest
// priority. The zero value is an empty roster.
type Roster struct {
	specs []bdd.PersonaSpec
}

// NewRoster validates specs and returns them ordered by rank. IDs must be
// unique and non-empty; ranks must be unique.
func NewRoster(specs []bdd.PersonaSpec) (Roster, error) {
	if len(specs) == 0 {
		return Roster{}, fmt.Errorf("persona: roster must not be empty")
	}
	ids := make(map[string]bool, len(specs))
	ranks := make(map[int]string, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s.ID) == "" {
			return Roster{}, fmt.Errorf("persona: empty id")
		}
		if ids[s.ID] {
			return Roster{}, fmt.Errorf("persona: duplicate id %q", s.ID)
		}
		if other, ok := ranks[s.Rank]; ok {
			return Roster{}, fmt.Errorf("persona: %q and %q share rank %d", other, s.ID, s.Rank)
		}
		ids[s.ID] = true
		ranks[s.Rank] = s.ID
	}

	sorted := append([]bdd.PersonaSpec(nil), specs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	for i := range sorted {
		if sorted[i].Name == "" {
			sorted[i].Name = sorted[i].ID
		}
	}
	return Roster{specs: sorted}, nil
}

// Default returns the four-persona roster used in multi-agent mode.
func Default() Roster {
	return Roster{specs: append([]bdd.PersonaSpec(nil), defaults...)}
}

// Single returns the one implicit persona used in single mode.
func Single() Roster {
	return Roster{specs: []bdd.PersonaSpec{generalist}}
}

// ForMode returns the roster a generation mode runs with.
func ForMode(mode bdd.Mode) Roster {
	if mode == bdd.ModeMultiAgent {
		return Default()
	}
	return Single()
}

// FromConfig overlays overrides onto the default roster. An override whose ID
// matches a built-in persona replaces its non-empty fields; any other
// override is added as a new persona.
func FromConfig(overrides []bdd.PersonaSpec) (Roster, error) {
	if len(overrides) == 0 {
		return Default(), nil
	}
	merged := append([]bdd.PersonaSpec(nil), defaults...)
	index := make(map[string]int, len(merged))
	for i, s := range merged {
		index[s.ID] = i
	}
	for _, o := range overrides {
		i, ok := index[o.ID]
		if !ok {
			index[o.ID] = len(merged)
			merged = append(merged, o)
			continue
		}
		if o.Rank != 0 {
			merged[i].Rank = o.Rank
		}
		if o.Name != "" {
			merged[i].Name = o.Name
		}
		if o.Focus != "" {
			merged[i].Focus = o.Focus
		}
	}
	return NewRoster(merged)
}

// Len returns the number of personas.
func (r Roster) Len() int { return len(r.specs) }

// Specs returns a copy of the personas in priority order.
func (r Roster) Specs() []bdd.PersonaSpec {
	return append([]bdd.PersonaSpec(nil), r.specs...)
}

// Lookup returns the persona with the given ID.
func (r Roster) Lookup(id string) (bdd.PersonaSpec, bool) {
	for _, s := range r.specs {
		if s.ID == id {
			return s, true
		}
	}
	return bdd.PersonaSpec{}, false
}

// IDs returns persona IDs in priority order.
func (r Roster) IDs() []string {
	ids := make([]string, len(r.specs))
	for i, s := range r.specs {
		ids[i] = s.ID
	}
	return ids
}
