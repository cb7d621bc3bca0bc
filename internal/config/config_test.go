package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_Missing_ZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
	assert.Equal(t, bdd.DefaultConfig(), cfg.Generation())
}

func TestLoad_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenariogen.yaml", `
model: gpt-4o
temperature: 0
count: 6
includeNegative: false
includeEdgeCases: true
mode: multi_agent
timeoutSeconds: 45
headroom: 1
maxRetries: 2
baseURL: http://localhost:8080
personas:
  - id: qa-engineer
    focus: Accessibility and keyboard navigation.
  - id: security
    rank: 5
    name: Security Reviewer
    focus: Abuse cases.
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	g := cfg.Generation()
	assert.Equal(t, "gpt-4o", g.Model)
	assert.Equal(t, 0.0, g.Temperature)
	assert.Equal(t, 6, g.RequestedCount)
	assert.False(t, g.IncludeNegative)
	assert.True(t, g.IncludeEdgeCases)
	assert.Equal(t, bdd.ModeMultiAgent, g.Mode)
	assert.Equal(t, 45, g.TimeoutSeconds)
	assert.Equal(t, 1, g.Headroom)
	require.NoError(t, g.Validate())
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)

	r, err := cfg.Roster()
	require.NoError(t, err)
	assert.Equal(t, []string{
		persona.IDProductOwner, persona.IDQAEngineer, persona.IDProductManager, persona.IDTechLead, "security",
	}, r.IDs())
	qa, ok := r.Lookup(persona.IDQAEngineer)
	require.True(t, ok)
	assert.Equal(t, "QA Engineer", qa.Name)
	assert.Equal(t, "Accessibility and keyboard navigation.", qa.Focus)
}

func TestLoad_PrefersYML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenariogen.yml", "model: from-yml\n")
	writeFile(t, dir, "scenariogen.yaml", "model: from-yaml\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yml", cfg.Model)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scenariogen.yml", "count: [not a number\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: scenariogen.yml")
}

func TestAPIKey(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "default-key")
	t.Setenv("ALT_KEY", "alt-key")

	assert.Equal(t, "default-key", (&ProjectConfig{}).APIKey())
	assert.Equal(t, "alt-key", (&ProjectConfig{APIKeyEnv: "ALT_KEY"}).APIKey())
}

func TestResolveHistoryPath(t *testing.T) {
	path, err := (&ProjectConfig{DisableHistory: true, HistoryPath: "x.db"}).ResolveHistoryPath()
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = (&ProjectConfig{HistoryPath: "runs.db"}).ResolveHistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "runs.db", path)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path, err = (&ProjectConfig{}).ResolveHistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "history.db", filepath.Base(path))
	assert.Equal(t, "scenariogen", filepath.Base(filepath.Dir(path)))
}
