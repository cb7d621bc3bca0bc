package bdd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoScenarios is the terminal failure returned when no persona produced a
// usable draft.
var ErrNoScenarios = errors.New("no scenarios produced")

// ValidationError reports a story or configuration that was rejected before
// any model call.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// GenerationError is a request-level failure. Stage names the pipeline step
// that failed; Persona is set when a single persona is to blame.
type GenerationError struct {
	Stage   string
	Persona string
	Err     error

	// Failures lists what went wrong for each persona.
	Failures []PersonaFailure

	// Causes holds the underlying per-persona errors. They are reachable
	// with errors.As alongside Err.
	Causes []error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("generation: ")
	b.WriteString(e.Stage)
	if e.Persona != "" {
		fmt.Fprintf(&b, " (persona %s)", e.Persona)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	for i, f := range e.Failures {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s: %s", f.Persona, f.Kind, f.Message)
	}
	return b.String()
}

// Unwrap returns Err followed by the per-persona causes.
func (e *GenerationError) Unwrap() []error {
	errs := make([]error, 0, 1+len(e.Causes))
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return append(errs, e.Causes...)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
