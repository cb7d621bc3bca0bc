package mcptools

import "github.com/dusk-indust/scenariogen/internal/bdd"

// --- MCP Tool Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.

// GenerateScenariosInput is the input for the generate_scenarios MCP tool.
// Unset fields fall back to the server's configured defaults.
type GenerateScenariosInput struct {
	Story            string   `json:"story" jsonschema:"the user story to generate scenarios for (10-5000 characters)"`
	Count            int      `json:"count,omitempty" jsonschema:"number of scenarios to return (1-20)"`
	Mode             string   `json:"mode,omitempty" jsonschema:"single or multi_agent"`
	IncludeNegative  *bool    `json:"includeNegative,omitempty" jsonschema:"ensure at least one negative scenario"`
	IncludeEdgeCases *bool    `json:"includeEdgeCases,omitempty" jsonschema:"ensure at least one edge case scenario"`
	Model            string   `json:"model,omitempty" jsonschema:"model identifier"`
	Temperature      *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 1"`
	TimeoutSeconds   int      `json:"timeoutSeconds,omitempty" jsonschema:"per-persona timeout in seconds"`
}

// GenerateScenariosOutput is the result of the generate_scenarios MCP tool.
type GenerateScenariosOutput struct {
	RequestID       string                   `json:"requestId"`
	FeatureName     string                   `json:"featureName"`
	Text            string                   `json:"text"`
	Scenarios       []bdd.Scenario           `json:"scenarios"`
	Requested       int                      `json:"requested"`
	Achieved        int                      `json:"achieved"`
	CountSatisfied  bool                     `json:"countSatisfied"`
	PersonaFailures []bdd.PersonaFailure     `json:"personaFailures,omitempty"`
	Summary         bdd.CollaborationSummary `json:"summary"`
}

// ParseScenariosInput is the input for the parse_scenarios MCP tool.
type ParseScenariosInput struct {
	Text string `json:"text" jsonschema:"Gherkin or free-form text containing Given/When/Then scenarios"`
}

// ParseScenariosOutput is the result of the parse_scenarios MCP tool.
type ParseScenariosOutput struct {
	FeatureName string           `json:"featureName,omitempty"`
	Scenarios   []ParsedScenario `json:"scenarios"`
	Stats       bdd.ParseStats   `json:"stats"`
}

// ParsedScenario is one scenario recovered by parse_scenarios.
type ParsedScenario struct {
	Title string           `json:"title"`
	Type  bdd.ScenarioType `json:"type"`
	Steps []bdd.Step       `json:"steps"`
}

// ListPersonasInput is the input for the list_personas MCP tool.
type ListPersonasInput struct {
	Mode string `json:"mode,omitempty" jsonschema:"single or multi_agent (default: multi_agent)"`
}

// ListPersonasOutput is the result of the list_personas MCP tool.
type ListPersonasOutput struct {
	Personas []bdd.PersonaSpec `json:"personas"`
}

// ListRunsInput is the input for the list_runs MCP tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs (default: 20)"`
}

// ListRunsOutput is the result of the list_runs MCP tool.
type ListRunsOutput struct {
	Runs []RunSummary `json:"runs"`
}

// RunSummary is a brief overview of one recorded run.
type RunSummary struct {
	RequestID      string `json:"requestId"`
	CreatedAt      string `json:"createdAt"`
	Mode           string `json:"mode"`
	FeatureName    string `json:"featureName"`
	Requested      int    `json:"requested"`
	Achieved       int    `json:"achieved"`
	CountSatisfied bool   `json:"countSatisfied"`
}
