package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// CoherenceIssue is a structural problem found in a consolidated scenario.
type CoherenceIssue struct {
	Scenario    string
	Description string
}

// CheckCoherence performs a lightweight structural scan of consolidated
// scenarios: every scenario should set up context with Given, end with an
// outcome under Then, keep Given before When before Then, and not repeat a
// step. Issues are advisory; the pipeline logs them and carries on.
func CheckCoherence(scenarios []bdd.Scenario) []CoherenceIssue {
	var issues []CoherenceIssue
	add := func(sc bdd.Scenario, format string, args ...any) {
		issues = append(issues, CoherenceIssue{Scenario: sc.Title, Description: fmt.Sprintf(format, args...)})
	}

	for _, sc := range scenarios {
		var hasGiven, hasThen bool
		last := bdd.StepKind("")
		seen := make(map[string]bool, len(sc.Steps))

		for i, st := range sc.Steps {
			if i == 0 && st.Kind == bdd.StepAnd {
				add(sc, "first step uses And")
			}

			kind := st.Kind
			if kind == bdd.StepAnd {
				kind = last
			}
			if phase(kind) < phase(last) {
				add(sc, "%s step %q follows a %s step", st.Kind, st.Text, last)
			}
			switch kind {
			case bdd.StepGiven:
				hasGiven = true
			case bdd.StepThen:
				hasThen = true
			}
			if kind != "" {
				last = kind
			}

			key := strings.ToLower(strings.Join(strings.Fields(st.Text), " "))
			if seen[key] {
				add(sc, "step %q repeated", st.Text)
			}
			seen[key] = true
		}

		if !hasGiven {
			add(sc, "no Given step")
		}
		if !hasThen {
			add(sc, "no Then step")
		}
	}
	return issues
}

func phase(k bdd.StepKind) int {
	switch k {
	case bdd.StepGiven:
		return 1
	case bdd.StepWhen:
		return 2
	case bdd.StepThen:
		return 3
	default:
		return 0
	}
}
