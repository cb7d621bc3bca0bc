package bdd

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Mode selects between one implicit persona and the full persona roster.
type Mode string

const (
	ModeSingle     Mode = "single"
	ModeMultiAgent Mode = "multi_agent"
)

// Story length bounds, counted in runes after trimming.
const (
	MinStoryLength = 10
	MaxStoryLength = 5000
)

// MaxRequestedCount caps how many scenarios a single request may ask for.
const MaxRequestedCount = 20

// GenerationConfig controls one generation request.
type GenerationConfig struct {
	// Model is the provider model identifier.
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature in [0, 1].
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// RequestedCount is the exact number of scenarios the result must hold.
	RequestedCount int `json:"requestedCount" yaml:"requestedCount"`

	IncludeNegative  bool `json:"includeNegative" yaml:"includeNegative"`
	IncludeEdgeCases bool `json:"includeEdgeCases" yaml:"includeEdgeCases"`

	Mode Mode `json:"mode" yaml:"mode"`

	// TimeoutSeconds bounds each persona's model call.
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`

	// Headroom is the number of extra scenarios asked of every persona that
	// has a non-zero share, to absorb duplicates dropped in consolidation.
	Headroom int `json:"headroom,omitempty" yaml:"headroom,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		Model:           "gpt-4o-mini",
		Temperature:     0.3,
		RequestedCount:  3,
		IncludeNegative: true,
		Mode:            ModeSingle,
		TimeoutSeconds:  30,
	}
}

// Timeout returns TimeoutSeconds as a duration.
func (c GenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the configuration before any model call is made.
func (c GenerationConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Model) == "":
		return &ValidationError{Field: "model", Reason: "must not be empty"}
	case c.Temperature < 0 || c.Temperature > 1:
		return &ValidationError{Field: "temperature", Reason: fmt.Sprintf("must be in [0, 1], got %g", c.Temperature)}
	case c.RequestedCount < 1:
		return &ValidationError{Field: "requestedCount", Reason: fmt.Sprintf("must be at least 1, got %d", c.RequestedCount)}
	case c.RequestedCount > MaxRequestedCount:
		return &ValidationError{Field: "requestedCount", Reason: fmt.Sprintf("must be at most %d, got %d", MaxRequestedCount, c.RequestedCount)}
	case c.Mode != ModeSingle && c.Mode != ModeMultiAgent:
		return &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", c.Mode)}
	case c.TimeoutSeconds <= 0:
		return &ValidationError{Field: "timeoutSeconds", Reason: fmt.Sprintf("must be positive, got %d", c.TimeoutSeconds)}
	case c.Headroom < 0:
		return &ValidationError{Field: "headroom", Reason: fmt.Sprintf("must not be negative, got %d", c.Headroom)}
	}
	return nil
}

// ValidateStory checks the user story length bounds.
func ValidateStory(story string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(story))
	switch {
	case n == 0:
		return &ValidationError{Field: "story", Reason: "must not be empty"}
	case n < MinStoryLength:
		return &ValidationError{Field: "story", Reason: fmt.Sprintf("must be at least %d characters, got %d", MinStoryLength, n)}
	case n > MaxStoryLength:
		return &ValidationError{Field: "story", Reason: fmt.Sprintf("must be at most %d characters, got %d", MaxStoryLength, n)}
	}
	return nil
}
