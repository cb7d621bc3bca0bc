package orchestrator

import "github.com/dusk-indust/scenariogen/internal/bdd"

// NotesPlan says how many notes of each kind one persona contributes to the
// collaboration summary.
type NotesPlan struct {
	Insights    int
	Concerns    int
	Suggestions int
}

// DefaultNotesPlan keeps two insights, one concern and one suggestion per
// persona.
var DefaultNotesPlan = NotesPlan{Insights: 2, Concerns: 1, Suggestions: 1}

// MergeNotes builds the collaboration summary from persona results in
// priority order. Only personas that produced drafts are listed; notes whose
// normalized text was already taken from a higher-priority persona are
// skipped.
func MergeNotes(results []PersonaResult, plan NotesPlan) bdd.CollaborationSummary {
	var (
		sum  bdd.CollaborationSummary
		seen = make(map[string]bool)
	)
	take := func(dst *[]string, notes []string, limit int) {
		taken := 0
		for _, n := range notes {
			if taken >= limit {
				return
			}
			key := bdd.NormalizeTitle(n)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			*dst = append(*dst, n)
			taken++
		}
	}

	for _, r := range results {
		if r.Err != nil || len(r.Drafts) == 0 {
			continue
		}
		sum.Personas = append(sum.Personas, r.Assignment.Persona.ID)
		notes := r.Document.Notes
		take(&sum.KeyInsights, notes.Insights, plan.Insights)
		take(&sum.MainConcerns, notes.Concerns, plan.Concerns)
		take(&sum.Suggestions, notes.Suggestions, plan.Suggestions)
	}
	return sum
}
