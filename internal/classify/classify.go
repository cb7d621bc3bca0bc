// Package classify assigns a scenario type to parsed drafts using keyword
// rules over the title and step text.
//
// Precedence: negative keywords, then edge-case keywords, then positive. The
// type label a model writes next to a scenario is kept on the draft for
// display but never decides the type.
package classify

import (
	"strings"
	"unicode"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// Keywords match the start of a lower-case word, so stems such as "inválid"
// cover inválido/inválida/inválidos while "edge" does not match
// "acknowledge".
var (
	negativeKeywords = []string{
		"fail", "error", "invalid", "denied", "unavailable", "reject",
		"unauthorized", "incorrect", "wrong",
		"erro", "falha", "inválid", "negad", "indisponível",
		"incorret", "negativ",
	}

	edgeKeywords = []string{
		"boundary", "maximum", "minimum", "empty", "zero", "limit",
		"concurrent", "extreme", "edge",
		"limite", "máximo", "mínimo", "vazi", "extremo", "simultâne",
	}
)

// Classify returns the type for a single draft.
func Classify(d bdd.Draft) bdd.ScenarioType {
	words := tokens(d)
	switch {
	case matchesAny(words, negativeKeywords):
		return bdd.TypeNegative
	case matchesAny(words, edgeKeywords):
		return bdd.TypeEdgeCase
	}
	return bdd.TypePositive
}

// ClassifyAll classifies drafts in order. The input slice is not modified.
func ClassifyAll(drafts []bdd.Draft) []bdd.ClassifiedDraft {
	out := make([]bdd.ClassifiedDraft, len(drafts))
	for i, d := range drafts {
		out[i] = bdd.ClassifiedDraft{Draft: d.WithSource(d.Persona, d.Position), Type: Classify(d)}
	}
	return out
}

// Count tallies classified drafts by type.
func Count(drafts []bdd.ClassifiedDraft) map[bdd.ScenarioType]int {
	counts := make(map[bdd.ScenarioType]int, 3)
	for _, d := range drafts {
		counts[d.Type]++
	}
	return counts
}

// tokens splits the lower-cased title and step text into words.
func tokens(d bdd.Draft) []string {
	var b strings.Builder
	b.WriteString(strings.ToLower(d.Title))
	for _, s := range d.Steps {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(s.Text))
	}
	return strings.FieldsFunc(b.String(), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesAny(words, keywords []string) bool {
	for _, w := range words {
		for _, k := range keywords {
			if strings.HasPrefix(w, k) {
				return true
			}
		}
	}
	return false
}
