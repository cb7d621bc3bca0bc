package main

import (
	"fmt"

	"github.com/dusk-indust/scenariogen/internal/config"
	"github.com/dusk-indust/scenariogen/internal/gateway"
	"github.com/dusk-indust/scenariogen/internal/history"
	"github.com/dusk-indust/scenariogen/internal/orchestrator"
)

// env is the wiring shared by commands that talk to the model or the
// history store.
type env struct {
	cfg *config.ProjectConfig
}

func loadEnv(flags *globalFlags) (*env, error) {
	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return nil, err
	}
	if flags.Verbose {
		cfg.Verbose = true
	}
	return &env{cfg: cfg}, nil
}

// completer builds the model client. baseURL, when set, overrides the
// config file.
func (e *env) completer(baseURL string) (gateway.Completer, error) {
	key := e.cfg.APIKey()
	if key == "" {
		name := e.cfg.APIKeyEnv
		if name == "" {
			name = config.DefaultAPIKeyEnv
		}
		return nil, fmt.Errorf("no API key: set %s", name)
	}

	opts := []gateway.ClientOption{gateway.WithMaxRetries(e.cfg.MaxRetries)}
	if baseURL == "" {
		baseURL = e.cfg.BaseURL
	}
	if baseURL != "" {
		opts = append(opts, gateway.WithBaseURL(baseURL))
	}
	return gateway.NewOpenAIClient(key, opts...), nil
}

// pipeline builds a Pipeline with the configured persona roster.
func (e *env) pipeline(completer gateway.Completer) (*orchestrator.Pipeline, error) {
	roster, err := e.cfg.Roster()
	if err != nil {
		return nil, err
	}
	return orchestrator.NewPipeline(orchestrator.Config{Roster: roster}, completer), nil
}

// openHistory opens the history store. It returns nil without error when
// history is disabled.
func (e *env) openHistory(path string) (*history.Store, error) {
	if path == "" {
		var err error
		if path, err = e.cfg.ResolveHistoryPath(); err != nil {
			return nil, err
		}
	}
	if path == "" {
		return nil, nil
	}
	return history.New(path)
}
