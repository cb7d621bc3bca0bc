package render

import (
	"strings"
	"testing"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/parser"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []bdd.Scenario{
	{
		Title:   "Pay with saved card",
		Type:    bdd.TypePositive,
		Persona: "product-owner",
		Steps: []bdd.Step{
			{Kind: bdd.StepGiven, Text: "a shopper with a saved card"},
			{Kind: bdd.StepWhen, Text: "they confirm the order"},
			{Kind: bdd.StepThen, Text: "the payment is captured"},
		},
	},
	{
		Title:   "Expired card",
		Type:    bdd.TypeNegative,
		Persona: "qa-engineer",
		Steps: []bdd.Step{
			{Kind: bdd.StepGiven, Text: "an expired saved card"},
			{Kind: bdd.StepWhen, Text: "they confirm the order"},
			{Kind: bdd.StepThen, Text: "the payment is refused"},
			{Kind: bdd.StepAnd, Text: "the cart is kept"},
		},
	},
}

func TestRender_Layout(t *testing.T) {
	story := "As a shopper I want to pay with a saved card. Checkout should be fast.\nSecond line."
	got := Render(sample, story, "")

	want := `Feature: As a shopper I want to pay with a saved card.
  As a shopper I want to pay with a saved card. Checkout should be fast.
  Second line.

  Scenario 1: Pay with saved card [positive]
    Given a shopper with a saved card
    When they confirm the order
    Then the payment is captured

  Scenario 2: Expired card [negative]
    Given an expired saved card
    When they confirm the order
    Then the payment is refused
    And the cart is kept
`
	assert.Equal(t, want, got.Text)
	assert.Equal(t, "As a shopper I want to pay with a saved card.", got.FeatureName)
	assert.Equal(t, strings.TrimSpace(story), got.FeatureDescription)
}

func TestRender_RoundTrip(t *testing.T) {
	got := Render(sample, "Saved card checkout for returning shoppers", "Saved cards")
	doc := parser.ParseDocument(got.Text)

	assert.Equal(t, "Saved cards", doc.Feature.Name)
	require.Len(t, doc.Drafts, len(sample))
	for i, d := range doc.Drafts {
		assert.Equal(t, sample[i].Title, d.Title)
		assert.Equal(t, string(sample[i].Type), d.TypeHint)
		require.Len(t, d.Steps, len(sample[i].Steps))
		for j, st := range d.Steps {
			assert.Equal(t, sample[i].Steps[j], st)
		}
	}
}

func TestRender_StoryWithGherkinStaysDescription(t *testing.T) {
	story := "Replace the legacy checkout.\n" +
		"Scenario: legacy flow\n" +
		"Given the old checkout\n" +
		"Then it still works\n" +
		"Concerns: downtime\n" +
		"- keep the old URL"
	got := Render(sample, story, "Checkout")

	assert.Contains(t, got.Text, "  \\Scenario: legacy flow\n")
	assert.Contains(t, got.Text, "  Replace the legacy checkout.\n")

	doc := parser.ParseDocument(got.Text)
	require.Len(t, doc.Drafts, len(sample))
	assert.Equal(t, "Pay with saved card", doc.Drafts[0].Title)
	assert.Empty(t, doc.Notes.Concerns)
	assert.Equal(t, strings.Split(story, "\n"), doc.Feature.Description)
}

func TestRender_BoldInsideTitleAndStep(t *testing.T) {
	scenarios := []bdd.Scenario{{
		Title: "Apply **promo** code",
		Type:  bdd.TypePositive,
		Steps: []bdd.Step{
			{Kind: bdd.StepGiven, Text: "a cart with a **sale** item"},
			{Kind: bdd.StepWhen, Text: "they enter **SAVE10**"},
			{Kind: bdd.StepThen, Text: "the total drops"},
		},
	}}
	doc := parser.ParseDocument(Render(scenarios, "Promo codes", "").Text)

	require.Len(t, doc.Drafts, 1)
	assert.Equal(t, "Apply **promo** code", doc.Drafts[0].Title)
	assert.Equal(t, scenarios[0].Steps, doc.Drafts[0].Steps)
}

func TestRender_NoScenarios(t *testing.T) {
	got := Render(nil, "A story about nothing", "")
	assert.Equal(t, "Feature: A story about nothing\n  A story about nothing\n", got.Text)
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "Given title", FeatureName("story text here", "  Given title "))
	assert.Equal(t, "First line", FeatureName("\n\n  First line\nSecond line", ""))
	assert.Equal(t, "Untitled feature", FeatureName("   ", ""))

	long := strings.Repeat("word ", 30)
	name := FeatureName(long, "")
	assert.LessOrEqual(t, runewidth.StringWidth(name), MaxFeatureNameWidth)
	assert.True(t, strings.HasSuffix(name, "..."))

	wide := strings.Repeat("購", 40)
	assert.LessOrEqual(t, runewidth.StringWidth(FeatureName(wide, "")), MaxFeatureNameWidth)
}
