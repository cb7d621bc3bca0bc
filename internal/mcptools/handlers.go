package mcptools

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/classify"
	"github.com/dusk-indust/scenariogen/internal/history"
	"github.com/dusk-indust/scenariogen/internal/orchestrator"
	"github.com/dusk-indust/scenariogen/internal/parser"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultRunLimit = 20

// ScenarioService handles MCP tool calls. It wraps an Orchestrator for
// generation and, when a history store is set, records every run.
type ScenarioService struct {
	gen      orchestrator.Orchestrator
	defaults bdd.GenerationConfig
	roster   persona.Roster
	history  *history.Store
}

// NewScenarioService creates a ScenarioService. defaults fills every field a
// generate_scenarios call leaves unset; roster is reported by list_personas
// for multi_agent mode.
func NewScenarioService(gen orchestrator.Orchestrator, defaults bdd.GenerationConfig, roster persona.Roster) *ScenarioService {
	if roster.Len() == 0 {
		roster = persona.Default()
	}
	return &ScenarioService{gen: gen, defaults: defaults, roster: roster}
}

// SetHistory enables run recording and the list_runs tool.
func (s *ScenarioService) SetHistory(store *history.Store) {
	s.history = store
}

// GenerateScenarios runs one generation request. Validation failures and
// the no-scenarios condition are returned as tool errors; partial results
// carry their persona failures in the output.
func (s *ScenarioService) GenerateScenarios(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateScenariosInput,
) (*mcp.CallToolResult, GenerateScenariosOutput, error) {
	cfg := s.config(input)

	res, err := s.gen.Generate(ctx, input.Story, cfg)
	if err != nil {
		return nil, GenerateScenariosOutput{}, err
	}

	if s.history != nil {
		if _, err := s.history.Record(ctx, input.Story, res); err != nil {
			log.Printf("WARNING: mcptools: record run %s: %v", res.RequestID, err)
		}
	}

	return nil, GenerateScenariosOutput{
		RequestID:       res.RequestID,
		FeatureName:     res.FeatureName,
		Text:            res.RenderedText,
		Scenarios:       res.Scenarios,
		Requested:       res.Requested,
		Achieved:        res.Achieved,
		CountSatisfied:  res.CountSatisfied,
		PersonaFailures: res.PersonaFailures,
		Summary:         res.Summary,
	}, nil
}

func (s *ScenarioService) config(input GenerateScenariosInput) bdd.GenerationConfig {
	cfg := s.defaults
	if input.Count != 0 {
		cfg.RequestedCount = input.Count
	}
	if input.Mode != "" {
		cfg.Mode = bdd.Mode(input.Mode)
	}
	if input.IncludeNegative != nil {
		cfg.IncludeNegative = *input.IncludeNegative
	}
	if input.IncludeEdgeCases != nil {
		cfg.IncludeEdgeCases = *input.IncludeEdgeCases
	}
	if input.Model != "" {
		cfg.Model = input.Model
	}
	if input.Temperature != nil {
		cfg.Temperature = *input.Temperature
	}
	if input.TimeoutSeconds != 0 {
		cfg.TimeoutSeconds = input.TimeoutSeconds
	}
	return cfg
}

// ParseScenarios extracts and classifies scenarios from text without calling
// the model.
func (s *ScenarioService) ParseScenarios(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseScenariosInput,
) (*mcp.CallToolResult, ParseScenariosOutput, error) {
	if input.Text == "" {
		return nil, ParseScenariosOutput{}, fmt.Errorf("text is required")
	}
	doc := parser.ParseDocument(input.Text)
	scenarios := make([]ParsedScenario, 0, len(doc.Drafts))
	for _, d := range classify.ClassifyAll(doc.Drafts) {
		scenarios = append(scenarios, ParsedScenario{Title: d.Title, Type: d.Type, Steps: d.Steps})
	}
	return nil, ParseScenariosOutput{
		FeatureName: doc.Feature.Name,
		Scenarios:   scenarios,
		Stats:       doc.Stats,
	}, nil
}

// ListPersonas reports the personas a mode runs with, in priority order.
func (s *ScenarioService) ListPersonas(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListPersonasInput,
) (*mcp.CallToolResult, ListPersonasOutput, error) {
	switch bdd.Mode(input.Mode) {
	case "", bdd.ModeMultiAgent:
		return nil, ListPersonasOutput{Personas: s.roster.Specs()}, nil
	case bdd.ModeSingle:
		return nil, ListPersonasOutput{Personas: persona.Single().Specs()}, nil
	default:
		return nil, ListPersonasOutput{}, fmt.Errorf("unknown mode %q", input.Mode)
	}
}

// ListRuns returns recent runs from the history store, newest first.
func (s *ScenarioService) ListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	if s.history == nil {
		return nil, ListRunsOutput{}, fmt.Errorf("run history is disabled")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	out := ListRunsOutput{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunSummary{
			RequestID:      r.RequestID,
			CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
			Mode:           string(r.Mode),
			FeatureName:    r.FeatureName,
			Requested:      r.Requested,
			Achieved:       r.Achieved,
			CountSatisfied: r.CountSatisfied,
		})
	}
	return nil, out, nil
}
