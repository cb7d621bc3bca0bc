// Package orchestrator runs one generation request: it asks every persona of
// the selected roster for its share of scenarios, in parallel, then hands the
// batches to consolidation and rendering.
package orchestrator

import (
	"context"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// ProgressEvent is emitted to the user while personas are working.
type ProgressEvent struct {
	RequestID string
	Persona   string
	Status    ProgressStatus
	Message   string
	// Drafts is the number of drafts a persona produced; set on completion.
	Drafts int
}

// ProgressStatus is the state of one persona within a request.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Orchestrator turns a user story into a consolidated scenario result.
type Orchestrator interface {
	// Generate validates the request, runs the personas and consolidates
	// their drafts. Per-persona failures are reported in the result; only
	// validation errors and the no-scenarios condition are returned as
	// errors.
	Generate(ctx context.Context, story string, cfg bdd.GenerationConfig) (*bdd.Result, error)

	// Progress returns a channel that emits progress events.
	Progress() <-chan ProgressEvent
}
