// Package render turns consolidated scenarios into the Gherkin-style text
// shown to users and written to .feature files.
package render

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/parser"
	"github.com/mattn/go-runewidth"
)

// MaxFeatureNameWidth is the display width feature names are truncated to.
const MaxFeatureNameWidth = 60

const (
	featureIndent  = "  "
	scenarioIndent = "  "
	stepIndent     = "    "
)

// Rendered is the text form of a result.
type Rendered struct {
	FeatureName        string
	FeatureDescription string
	Text               string
}

// Render formats scenarios under a Feature header. featureTitle, usually the
// feature name a persona wrote, wins over the name derived from story. Story
// lines that would read back as structure are escaped with parser.Literal.
func Render(scenarios []bdd.Scenario, story, featureTitle string) Rendered {
	name := FeatureName(story, featureTitle)
	desc := strings.TrimSpace(story)

	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\n", name)
	for _, l := range strings.Split(desc, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			b.WriteString(featureIndent + parser.Escape(l) + "\n")
		}
	}

	for i, sc := range scenarios {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%sScenario %d: %s [%s]\n", scenarioIndent, i+1, sc.Title, sc.Type)
		for _, st := range sc.Steps {
			b.WriteString(stepIndent + st.String() + "\n")
		}
	}

	return Rendered{
		FeatureName:        name,
		FeatureDescription: desc,
		Text:               b.String(),
	}
}

// FeatureName picks the feature name: title when non-blank, otherwise the
// first sentence of the story's first non-blank line. The result is at most
// MaxFeatureNameWidth cells wide.
func FeatureName(story, title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = firstSentence(story)
	}
	if name == "" {
		name = "Untitled feature"
	}
	return runewidth.Truncate(name, MaxFeatureNameWidth, "...")
}

func firstSentence(story string) string {
	for _, l := range strings.Split(story, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if i := sentenceEnd(l); i > 0 {
			return strings.TrimSpace(l[:i])
		}
		return l
	}
	return ""
}

// sentenceEnd returns the byte index just past the first sentence-ending
// punctuation followed by a space, or -1.
func sentenceEnd(s string) int {
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				return i + 1
			}
		}
	}
	return -1
}
