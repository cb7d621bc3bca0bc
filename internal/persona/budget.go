package persona

import "github.com/dusk-indust/scenariogen/internal/bdd"

// Assignment is the number of scenarios one persona is asked for.
type Assignment struct {
	Persona bdd.PersonaSpec
	// Share is the persona's part of the requested count.
	Share int
	// Ask is Share plus headroom; it is what the prompt requests.
	Ask int
}

// Budgets splits n scenarios across the roster. Each persona gets n/k, the
// remainder goes one each to the highest-priority personas, and personas
// whose share is zero are omitted. Headroom is added to every non-zero share.
//
// For n=6 over four personas the shares are 2, 2, 1, 1.
func Budgets(r Roster, n, headroom int) []Assignment {
	k := r.Len()
	if k == 0 || n <= 0 {
		return nil
	}
	if headroom < 0 {
		headroom = 0
	}
	base, rem := n/k, n%k
	out := make([]Assignment, 0, k)
	for i, spec := range r.specs {
		share := base
		if i < rem {
			share++
		}
		if share == 0 {
			continue
		}
		out = append(out, Assignment{Persona: spec, Share: share, Ask: share + headroom})
	}
	return out
}
