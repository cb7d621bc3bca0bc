package orchestrator

import (
	"context"
	"time"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/classify"
	"github.com/dusk-indust/scenariogen/internal/gateway"
	"github.com/dusk-indust/scenariogen/internal/parser"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/dusk-indust/scenariogen/internal/prompt"
	"golang.org/x/sync/errgroup"
)

// PersonaResult holds the outcome of one persona's branch.
type PersonaResult struct {
	// Assignment is what the persona was asked for.
	Assignment persona.Assignment

	// Document is everything the parser recovered from the answer.
	Document parser.Document

	// Drafts are the parsed drafts, attributed and classified.
	Drafts []bdd.ClassifiedDraft

	// Err is non-nil if the model call failed.
	Err *gateway.TransportError

	// Elapsed is the wall time of the branch.
	Elapsed time.Duration
}

// FanOut runs persona branches in parallel. A failing branch never cancels
// its siblings: the error is recorded in its PersonaResult instead.
type FanOut struct {
	completer  gateway.Completer
	onProgress func(ProgressEvent)
}

// NewFanOut creates a FanOut that calls the model through completer.
// onProgress is called synchronously from each goroutine; it may be nil.
func NewFanOut(completer gateway.Completer, onProgress func(ProgressEvent)) *FanOut {
	return &FanOut{
		completer:  completer,
		onProgress: onProgress,
	}
}

// Run executes one branch per assignment: build prompts, call the model
// under a per-persona timeout, parse, classify. The pool is sized to the
// number of assignments. Results are indexed like assignments, so their
// order never depends on which call returned first.
func (f *FanOut) Run(ctx context.Context, requestID, story string, cfg bdd.GenerationConfig, assignments []persona.Assignment) []PersonaResult {
	results := make([]PersonaResult, len(assignments))
	if len(assignments) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(assignments))

	for _, a := range assignments {
		f.emit(ProgressEvent{RequestID: requestID, Persona: a.Persona.ID, Status: ProgressPending})
	}

	for i, a := range assignments {
		g.Go(func() error {
			results[i] = f.branch(gctx, requestID, story, cfg, a)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (f *FanOut) branch(ctx context.Context, requestID, story string, cfg bdd.GenerationConfig, a persona.Assignment) PersonaResult {
	start := time.Now()
	id := a.Persona.ID
	f.emit(ProgressEvent{RequestID: requestID, Persona: id, Status: ProgressWorking})

	system, user := prompt.Build(story, cfg, a.Persona, a.Ask)

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	raw, err := f.completer.Complete(callCtx, gateway.Request{
		System:      system,
		User:        user,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		te := gateway.AsTransportError(err)
		f.emit(ProgressEvent{RequestID: requestID, Persona: id, Status: ProgressFailed, Message: te.Error()})
		return PersonaResult{Assignment: a, Err: te, Elapsed: time.Since(start)}
	}

	doc := parser.ParseDocument(raw)
	drafts := make([]bdd.Draft, len(doc.Drafts))
	for j, d := range doc.Drafts {
		drafts[j] = d.WithSource(id, j)
	}

	f.emit(ProgressEvent{RequestID: requestID, Persona: id, Status: ProgressComplete, Drafts: len(drafts)})
	return PersonaResult{
		Assignment: a,
		Document:   doc,
		Drafts:     classify.ClassifyAll(drafts),
		Elapsed:    time.Since(start),
	}
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
