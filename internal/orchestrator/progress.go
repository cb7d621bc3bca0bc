package orchestrator

import (
	"fmt"
	"sync"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// ProgressReporter emits progress events through a buffered channel. Emit
// may race Close; events emitted after Close are dropped.
type ProgressReporter struct {
	mu     sync.RWMutex
	closed bool
	ch     chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full or closed, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	if pr.closed {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Further calls do nothing.
func (pr *ProgressReporter) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	pr.closed = true
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Persona)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Persona)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete (%d %s)", event.Persona, event.Drafts, bdd.Plural(event.Drafts, "draft", "drafts"))
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Persona, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Persona)
	}
}

// FormatRequestHeader formats the header printed before a request's progress
// lines: "[{id}] {mode}, {n} scenarios".
func FormatRequestHeader(requestID string, mode string, n int) string {
	return fmt.Sprintf("[%s] %s, %d %s", requestID, mode, n, bdd.Plural(n, "scenario", "scenarios"))
}
