// Package gateway sends prompts to a language model and returns its text.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Request is one chat completion call.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completer returns the model's text answer for a request. Deadlines and
// cancellation are carried by ctx.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts an ordinary function to the Completer interface.
type Func func(ctx context.Context, req Request) (string, error)

// Complete calls f(ctx, req).
func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Compile-time interface checks.
var (
	_ Completer = Func(nil)
	_ Completer = (*OpenAIClient)(nil)
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindUnknown   ErrorKind = "unknown"
)

// TransportError is a failed model call.
type TransportError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s: %s (HTTP %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the call may succeed if repeated.
func (e *TransportError) Retryable() bool {
	return e.Kind == KindRateLimit || e.StatusCode >= 500
}

// AsTransportError classifies any error returned by a Completer. Errors that
// are already a *TransportError are returned as-is; deadline errors become
// KindTimeout and everything else KindUnknown. A nil err yields nil.
func AsTransportError(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	if isTimeout(err) {
		return &TransportError{Kind: KindTimeout, Err: err}
	}
	return &TransportError{Kind: KindUnknown, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
