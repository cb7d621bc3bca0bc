// Package consolidate merges per-persona draft batches into the final,
// exactly sized scenario list.
package consolidate

import (
	"sort"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// Batch is the classified output of one persona.
type Batch struct {
	Persona string
	Rank    int
	Drafts  []bdd.ClassifiedDraft
}

// Outcome is the consolidated list plus the count diagnostics.
type Outcome struct {
	Scenarios         []bdd.Scenario
	Requested         int
	Achieved          int
	CountSatisfied    bool
	DuplicatesDropped int
}

// entry is a draft with its place in the flattened, priority-ordered list.
type entry struct {
	flat  int
	draft bdd.ClassifiedDraft
}

// Consolidate flattens batches by persona rank then draft position, drops
// later drafts whose normalized title was already seen, and cuts the list to
// cfg.RequestedCount. When the cut would lose every scenario of a requested
// type (negative or edge case), the first such scenario past the cut replaces
// the lowest-priority positive scenario kept. Short lists are returned as-is
// with CountSatisfied false.
//
// The function is pure; equal inputs give equal outcomes.
func Consolidate(batches []Batch, cfg bdd.GenerationConfig) Outcome {
	n := cfg.RequestedCount
	unique, dropped := dedup(flatten(batches))

	kept := unique
	if len(unique) > n {
		kept = truncate(unique, n, requiredTypes(cfg))
	}

	out := Outcome{
		Scenarios:         make([]bdd.Scenario, len(kept)),
		Requested:         n,
		Achieved:          len(kept),
		CountSatisfied:    len(kept) == n,
		DuplicatesDropped: dropped,
	}
	for i, e := range kept {
		out.Scenarios[i] = bdd.Scenario{
			Title:   e.draft.Title,
			Steps:   append([]bdd.Step(nil), e.draft.Steps...),
			Type:    e.draft.Type,
			Persona: e.draft.Persona,
		}
	}
	return out
}

func flatten(batches []Batch) []entry {
	ordered := append([]Batch(nil), batches...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	var out []entry
	for _, b := range ordered {
		drafts := append([]bdd.ClassifiedDraft(nil), b.Drafts...)
		sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].Position < drafts[j].Position })
		for _, d := range drafts {
			if d.Persona == "" {
				d.Persona = b.Persona
			}
			out = append(out, entry{flat: len(out), draft: d})
		}
	}
	return out
}

func dedup(entries []entry) ([]entry, int) {
	seen := make(map[string]bool, len(entries))
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		key := bdd.NormalizeTitle(e.draft.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out, len(entries) - len(out)
}

func requiredTypes(cfg bdd.GenerationConfig) []bdd.ScenarioType {
	var types []bdd.ScenarioType
	if cfg.IncludeNegative {
		types = append(types, bdd.TypeNegative)
	}
	if cfg.IncludeEdgeCases {
		types = append(types, bdd.TypeEdgeCase)
	}
	return types
}

func truncate(unique []entry, n int, required []bdd.ScenarioType) []entry {
	head := append([]entry(nil), unique[:n]...)
	tail := unique[n:]

	for _, t := range required {
		if hasType(head, t) {
			continue
		}
		in := firstOfType(tail, t)
		if in < 0 {
			continue
		}
		out := lastPositive(head)
		if out < 0 {
			continue
		}
		head[out] = tail[in]
	}

	sort.SliceStable(head, func(i, j int) bool { return head[i].flat < head[j].flat })
	return head
}

func hasType(entries []entry, t bdd.ScenarioType) bool {
	return firstOfType(entries, t) >= 0
}

func firstOfType(entries []entry, t bdd.ScenarioType) int {
	for i, e := range entries {
		if e.draft.Type == t {
			return i
		}
	}
	return -1
}

// lastPositive returns the index of the positive entry with the lowest
// priority, or -1.
func lastPositive(entries []entry) int {
	idx := -1
	for i, e := range entries {
		if e.draft.Type == bdd.TypePositive && (idx < 0 || e.flat > entries[idx].flat) {
			idx = i
		}
	}
	return idx
}
