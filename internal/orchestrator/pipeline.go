package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/classify"
	"github.com/dusk-indust/scenariogen/internal/consolidate"
	"github.com/dusk-indust/scenariogen/internal/gateway"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/dusk-indust/scenariogen/internal/render"
	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Orchestrator = (*Pipeline)(nil)

// Failure kinds recorded in bdd.PersonaFailure besides gateway error kinds.
const FailureNoDrafts = "no_drafts"

// Pipeline implements Orchestrator. It splits the requested count across
// personas, dispatches them through a FanOut and reports progress through a
// ProgressReporter.
type Pipeline struct {
	cfg      Config
	progress *ProgressReporter
	fanout   *FanOut
}

// NewPipeline creates a Pipeline that calls the model through completer.
func NewPipeline(cfg Config, completer gateway.Completer) *Pipeline {
	progress := NewProgressReporter()
	return &Pipeline{
		cfg:      cfg,
		progress: progress,
		fanout:   NewFanOut(completer, progress.Emit),
	}
}

// Progress returns a channel that emits progress events.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when the
// pipeline is no longer needed.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// Generate runs one request end to end. Invalid input fails before any model
// call. If every persona comes back empty the result is a
// *bdd.GenerationError wrapping bdd.ErrNoScenarios and each persona's
// failure; otherwise persona failures and under-generation are reported in
// the result.
func (p *Pipeline) Generate(ctx context.Context, story string, cfg bdd.GenerationConfig) (*bdd.Result, error) {
	if err := bdd.ValidateStory(story); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := uuid.NewString()
	roster := p.cfg.rosterFor(cfg.Mode)
	assignments := persona.Budgets(roster, cfg.RequestedCount, cfg.Headroom)

	log.Printf("pipeline: %s: %s mode, %d scenarios over %d personas", requestID, cfg.Mode, cfg.RequestedCount, len(assignments))

	results := p.fanout.Run(ctx, requestID, story, cfg, assignments)

	var (
		batches  = make([]consolidate.Batch, 0, len(results))
		failures []bdd.PersonaFailure
		causes   []error
		drafts   []bdd.ClassifiedDraft
		stats    bdd.ParseStats
	)
	for _, r := range results {
		id := r.Assignment.Persona.ID
		switch {
		case r.Err != nil:
			log.Printf("WARNING: pipeline: %s: persona %s failed: %v", requestID, id, r.Err)
			failures = append(failures, bdd.PersonaFailure{Persona: id, Kind: string(r.Err.Kind), Message: r.Err.Error()})
			causes = append(causes, r.Err)
			continue
		case len(r.Drafts) == 0:
			log.Printf("WARNING: pipeline: %s: persona %s returned no usable scenarios", requestID, id)
			failures = append(failures, bdd.PersonaFailure{Persona: id, Kind: FailureNoDrafts, Message: "answer contained no scenarios"})
		}
		if r.Document.Stats.Fallback > 0 || r.Document.Stats.Discarded > 0 {
			log.Printf("pipeline: %s: persona %s parse: %d structured, %d fallback, %d discarded",
				requestID, id, r.Document.Stats.Structured, r.Document.Stats.Fallback, r.Document.Stats.Discarded)
		}
		stats = stats.Add(r.Document.Stats)
		drafts = append(drafts, r.Drafts...)
		batches = append(batches, consolidate.Batch{Persona: id, Rank: r.Assignment.Persona.Rank, Drafts: r.Drafts})
	}

	total := len(drafts)
	if total == 0 {
		genErr := &bdd.GenerationError{
			Stage:    "orchestrate",
			Err:      bdd.ErrNoScenarios,
			Failures: failures,
			Causes:   causes,
		}
		if len(assignments) == 1 {
			genErr.Persona = assignments[0].Persona.ID
		}
		return nil, genErr
	}

	outcome := consolidate.Consolidate(batches, cfg)
	if !outcome.CountSatisfied {
		log.Printf("WARNING: pipeline: %s: %d of %d scenarios produced", requestID, outcome.Achieved, outcome.Requested)
	}
	for _, issue := range CheckCoherence(outcome.Scenarios) {
		log.Printf("WARNING: pipeline: %s: scenario %q: %s", requestID, issue.Scenario, issue.Description)
	}

	rendered := render.Render(outcome.Scenarios, story, featureTitle(results))
	summary := MergeNotes(results, DefaultNotesPlan)

	metrics := bdd.Metrics{
		Duration:             time.Since(start),
		DraftsTotal:          total,
		DuplicatesDropped:    outcome.DuplicatesDropped,
		PersonasParticipated: len(summary.Personas),
		DraftTypes:           classify.Count(drafts),
	}
	if metrics.PersonasParticipated > 0 {
		metrics.ScenariosPerPersona = float64(total) / float64(metrics.PersonasParticipated)
	}

	log.Printf("pipeline: %s: %d drafts, %d duplicates dropped, %d/%d scenarios in %s",
		requestID, total, outcome.DuplicatesDropped, outcome.Achieved, outcome.Requested, metrics.Duration.Round(time.Millisecond))

	return &bdd.Result{
		RequestID:          requestID,
		Mode:               cfg.Mode,
		Model:              cfg.Model,
		FeatureName:        rendered.FeatureName,
		FeatureDescription: rendered.FeatureDescription,
		Scenarios:          outcome.Scenarios,
		RenderedText:       rendered.Text,
		Requested:          outcome.Requested,
		Achieved:           outcome.Achieved,
		CountSatisfied:     outcome.CountSatisfied,
		PersonaFailures:    failures,
		ParseStats:         stats,
		Summary:            summary,
		Metrics:            metrics,
	}, nil
}

// featureTitle returns the first feature name written by a persona, in
// priority order.
func featureTitle(results []PersonaResult) string {
	for _, r := range results {
		if r.Err == nil && r.Document.Feature.Name != "" {
			return r.Document.Feature.Name
		}
	}
	return ""
}

// DescribeFailures formats persona failures for display, one per line.
func DescribeFailures(failures []bdd.PersonaFailure) string {
	var s string
	for _, f := range failures {
		s += fmt.Sprintf("%s: %s (%s)\n", f.Persona, f.Kind, f.Message)
	}
	return s
}
