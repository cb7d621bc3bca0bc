// Package prompt builds the system and user prompts sent to the model for
// one persona.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// system is identical for every persona so that answers share one layout the
// parser understands.
const system = `You are an expert in Behavior-Driven Development who writes acceptance scenarios in Gherkin.

Rules:
1. Write every step with exactly one keyword: Given, When, Then or And.
2. Keep steps specific, testable and free of implementation details.
3. Use the present tense.
4. Give every scenario a short, unique title.
5. Label every scenario with one type: positive, negative or edge_case.

Answer in this layout and nothing else:

Feature: <feature name>
  <one line describing the feature>

  Scenario 1: <title> [<type>]
    Given <initial context>
    When <action>
    Then <expected outcome>
    And <additional check>

  Scenario 2: <title> [<type>]
    Given <initial context>
    When <action>
    Then <expected outcome>

After the scenarios you may add these optional sections:

Insights:
- <insight>

Concerns:
- <concern>

Suggestions:
- <suggestion>`

// Build returns the system and user prompts asking persona for budget
// scenarios about story. It is pure: equal inputs give equal prompts.
func Build(story string, cfg bdd.GenerationConfig, persona bdd.PersonaSpec, budget int) (string, string) {
	return system, user(story, cfg, persona, budget)
}

func user(story string, cfg bdd.GenerationConfig, persona bdd.PersonaSpec, budget int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are reviewing this story as the %s.\n", persona.Name)
	if persona.Focus != "" {
		fmt.Fprintf(&b, "Your focus: %s\n", persona.Focus)
	}

	b.WriteString("\nUser story:\n")
	b.WriteString(strings.TrimSpace(story))
	b.WriteString("\n\nRequirements:\n")
	fmt.Fprintf(&b, "- Write exactly %d %s, no more and no fewer.\n", budget, bdd.Plural(budget, "scenario", "scenarios"))
	b.WriteString("- Number them starting at 1 using the heading \"Scenario N: <title> [<type>]\".\n")
	b.WriteString("- Include at least one success scenario.\n")
	if cfg.IncludeNegative {
		b.WriteString("- Include negative scenarios: errors, validation failures and rejected input.\n")
	}
	if cfg.IncludeEdgeCases {
		b.WriteString("- Include edge cases: boundaries, limits, empty values and extreme inputs.\n")
	}
	b.WriteString("- Stay within your focus area.\n")
	return b.String()
}
