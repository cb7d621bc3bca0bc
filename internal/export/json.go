// Package export writes generation results to files: Gherkin text, a
// markdown report or JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// DefaultFileName is used when the caller asks for a file without naming one.
const DefaultFileName = "bdd_scenarios.txt"

// ResultExport is the top-level JSON export structure.
type ResultExport struct {
	ExportedAt string `json:"exportedAt"`
	*bdd.Result
	Failures []string `json:"failures,omitempty"`
}

// ExportResult wraps a result with export metadata.
func ExportResult(res *bdd.Result) *ResultExport {
	out := &ResultExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Result:     res,
	}
	for _, f := range res.PersonaFailures {
		out.Failures = append(out.Failures, fmt.Sprintf("%s: %s", f.Persona, f.Kind))
	}
	return out
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *bdd.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ExportResult(res)); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// Markdown renders res as a markdown report: feature heading, one
// sub-heading per scenario with its steps indented beneath, then the
// collaboration summary when there is one.
func Markdown(res *bdd.Result) string {
	var b strings.Builder
	b.WriteString("# BDD Scenarios\n\n")
	fmt.Fprintf(&b, "## Feature: %s\n\n", res.FeatureName)

	for i, sc := range res.Scenarios {
		fmt.Fprintf(&b, "### Scenario %d: %s [%s]\n", i+1, sc.Title, sc.Type)
		for _, st := range sc.Steps {
			fmt.Fprintf(&b, "    %s\n", st)
		}
		b.WriteString("\n")
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
		b.WriteString("\n")
	}
	section("Key insights", res.Summary.KeyInsights)
	section("Main concerns", res.Summary.MainConcerns)
	section("Suggestions", res.Summary.Suggestions)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// WriteFile writes res to path, picking the format from the extension:
// .json for JSON, .md for the markdown report, anything else for the
// rendered Gherkin text. Parent directories are created as needed.
func WriteFile(path string, res *bdd.Result) error {
	if path == "" {
		path = DefaultFileName
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(f, res)
	case ".md":
		_, err = io.WriteString(f, Markdown(res))
	default:
		_, err = io.WriteString(f, res.RenderedText)
	}
	if err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return f.Close()
}
