package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"gopkg.in/yaml.v3"
)

// DefaultAPIKeyEnv is the environment variable read for the model API key
// when the config file names none.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// ProjectConfig holds project-level settings loaded from scenariogen.yml.
// Pointer fields distinguish "unset" from an explicit zero value.
type ProjectConfig struct {
	Model            string            `yaml:"model,omitempty"`
	Temperature      *float64          `yaml:"temperature,omitempty"`
	Count            int               `yaml:"count,omitempty"`
	IncludeNegative  *bool             `yaml:"includeNegative,omitempty"`
	IncludeEdgeCases *bool             `yaml:"includeEdgeCases,omitempty"`
	Mode             string            `yaml:"mode,omitempty"`
	TimeoutSeconds   int               `yaml:"timeoutSeconds,omitempty"`
	Headroom         int               `yaml:"headroom,omitempty"`
	APIKeyEnv        string            `yaml:"apiKeyEnv,omitempty"`
	BaseURL          string            `yaml:"baseURL,omitempty"`
	MaxRetries       int               `yaml:"maxRetries,omitempty"`
	HistoryPath      string            `yaml:"historyPath,omitempty"`
	DisableHistory   bool              `yaml:"disableHistory,omitempty"`
	Verbose          bool              `yaml:"verbose,omitempty"`
	Personas         []bdd.PersonaSpec `yaml:"personas,omitempty"`
}

// Load attempts to read scenariogen.yml or scenariogen.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"scenariogen.yml", "scenariogen.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Generation returns bdd.DefaultConfig with every value set in the file
// applied on top. The result is not validated.
func (c *ProjectConfig) Generation() bdd.GenerationConfig {
	g := bdd.DefaultConfig()
	if c.Model != "" {
		g.Model = c.Model
	}
	if c.Temperature != nil {
		g.Temperature = *c.Temperature
	}
	if c.Count != 0 {
		g.RequestedCount = c.Count
	}
	if c.IncludeNegative != nil {
		g.IncludeNegative = *c.IncludeNegative
	}
	if c.IncludeEdgeCases != nil {
		g.IncludeEdgeCases = *c.IncludeEdgeCases
	}
	if c.Mode != "" {
		g.Mode = bdd.Mode(c.Mode)
	}
	if c.TimeoutSeconds != 0 {
		g.TimeoutSeconds = c.TimeoutSeconds
	}
	g.Headroom = c.Headroom
	return g
}

// Roster returns the multi-agent persona roster: the built-in personas with
// the file's overrides applied.
func (c *ProjectConfig) Roster() (persona.Roster, error) {
	return persona.FromConfig(c.Personas)
}

// APIKey reads the model API key from the configured environment variable.
func (c *ProjectConfig) APIKey() string {
	env := c.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// ResolveHistoryPath returns the history database path, or "" when history
// is disabled. Without an explicit path the database lives under the user
// config directory.
func (c *ProjectConfig) ResolveHistoryPath() (string, error) {
	if c.DisableHistory {
		return "", nil
	}
	if c.HistoryPath != "" {
		return c.HistoryPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate history: %w", err)
	}
	return filepath.Join(dir, "scenariogen", "history.db"), nil
}
