// Package bdd holds the data model shared by every stage of scenario
// generation: drafts produced by the parser, classified drafts, consolidated
// scenarios and the final result handed back to callers.
package bdd

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// StepKind is the leading keyword of a scenario step.
type StepKind string

const (
	StepGiven StepKind = "Given"
	StepWhen  StepKind = "When"
	StepThen  StepKind = "Then"
	StepAnd   StepKind = "And"
)

// Step is one Given/When/Then/And line. Text excludes the keyword.
type Step struct {
	Kind StepKind `json:"kind"`
	Text string   `json:"text"`
}

// String renders the step in canonical form, e.g. "Given a cart".
func (s Step) String() string {
	if s.Text == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + " " + s.Text
}

// ScenarioType is the intent category assigned by the classifier.
type ScenarioType string

const (
	TypePositive ScenarioType = "positive"
	TypeNegative ScenarioType = "negative"
	TypeEdgeCase ScenarioType = "edge_case"
)

// ParseScenarioType maps a free-form type label (English or Portuguese) to a
// ScenarioType. The second return value is false when the label is unknown.
func ParseScenarioType(label string) (ScenarioType, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer("-", " ", "_", " ").Replace(l)
	l = strings.Join(strings.Fields(l), " ")
	switch l {
	case "positive", "positivo", "happy path", "success", "sucesso":
		return TypePositive, true
	case "negative", "negativo", "error", "erro", "failure", "falha":
		return TypeNegative, true
	case "edge case", "edge", "edgecase", "caso extremo", "extremo", "limite", "boundary":
		return TypeEdgeCase, true
	}
	return "", false
}

// Draft is a scenario extracted directly from raw model text. Drafts are
// values: stages that need to attach data build new ones.
type Draft struct {
	Persona  string `json:"persona,omitempty"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Steps    []Step `json:"steps"`
	TypeHint string `json:"typeHint,omitempty"`
}

// WithSource returns a copy of d attributed to persona at the given
// within-batch position.
func (d Draft) WithSource(persona string, position int) Draft {
	out := d
	out.Persona = persona
	out.Position = position
	out.Steps = append([]Step(nil), d.Steps...)
	return out
}

// Kinds returns the step-kind sequence of the draft.
func (d Draft) Kinds() []StepKind {
	kinds := make([]StepKind, len(d.Steps))
	for i, s := range d.Steps {
		kinds[i] = s.Kind
	}
	return kinds
}

// ClassifiedDraft pairs a draft with the type the classifier assigned to it.
type ClassifiedDraft struct {
	Draft
	Type ScenarioType `json:"type"`
}

// Scenario is one entry of a consolidated result.
type Scenario struct {
	Title   string       `json:"title"`
	Steps   []Step       `json:"steps"`
	Type    ScenarioType `json:"type"`
	Persona string       `json:"persona"`
}

// PersonaSpec describes one reviewer viewpoint. Lower Rank means higher
// priority.
type PersonaSpec struct {
	ID    string `json:"id" yaml:"id"`
	Rank  int    `json:"rank" yaml:"rank"`
	Name  string `json:"name" yaml:"name"`
	Focus string `json:"focus" yaml:"focus"`
}

// NormalizeTitle returns the dedup key for a scenario title: case-folded with
// runs of whitespace collapsed to a single space.
func NormalizeTitle(title string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(strings.Join(strings.Fields(title), " "))
}

// Plural returns one when n is 1 and many otherwise.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// PersonaFailure records a persona that contributed nothing to a result.
type PersonaFailure struct {
	Persona string `json:"persona"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ParseStats counts how drafts were recovered from raw model text.
type ParseStats struct {
	Structured int `json:"structured"`
	Fallback   int `json:"fallback"`
	Discarded  int `json:"discarded"`
}

// Add returns the element-wise sum of two stats.
func (s ParseStats) Add(o ParseStats) ParseStats {
	return ParseStats{
		Structured: s.Structured + o.Structured,
		Fallback:   s.Fallback + o.Fallback,
		Discarded:  s.Discarded + o.Discarded,
	}
}

// Notes are the free-form bullet sections a persona may append after its
// scenarios.
type Notes struct {
	Insights    []string `json:"insights,omitempty"`
	Concerns    []string `json:"concerns,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CollaborationSummary condenses the notes of every participating persona.
type CollaborationSummary struct {
	Personas     []string `json:"personas"`
	KeyInsights  []string `json:"keyInsights,omitempty"`
	MainConcerns []string `json:"mainConcerns,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Metrics describes the cost and yield of one generation request.
type Metrics struct {
	Duration             time.Duration `json:"duration"`
	DraftsTotal          int           `json:"draftsTotal"`
	DuplicatesDropped    int           `json:"duplicatesDropped"`
	PersonasParticipated int           `json:"personasParticipated"`
	ScenariosPerPersona  float64       `json:"scenariosPerPersona"`

	// DraftTypes counts every draft by type, before deduplication.
	DraftTypes map[ScenarioType]int `json:"draftTypes,omitempty"`
}

// Result is the outcome of one generation request.
type Result struct {
	RequestID          string               `json:"requestId"`
	Mode               Mode                 `json:"mode"`
	Model              string               `json:"model"`
	FeatureName        string               `json:"featureName"`
	FeatureDescription string               `json:"featureDescription"`
	Scenarios          []Scenario           `json:"scenarios"`
	RenderedText       string               `json:"renderedText"`
	Requested          int                  `json:"requested"`
	Achieved           int                  `json:"achieved"`
	CountSatisfied     bool                 `json:"countSatisfied"`
	PersonaFailures    []PersonaFailure     `json:"personaFailures,omitempty"`
	ParseStats         ParseStats           `json:"parseStats"`
	Summary            CollaborationSummary `json:"summary"`
	Metrics            Metrics              `json:"metrics"`
}
