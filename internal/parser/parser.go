// Package parser recovers scenario drafts from free-form model output.
//
// Model text is only loosely structured: headings may carry markdown hashes
// or bold markers, steps may be bulleted or numbered, the whole answer may be
// wrapped in a code fence, and some answers contain steps with no scenario
// heading at all. The parser tolerates all of these and never fails; the
// worst case is an empty Document.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/scenariogen/internal/bdd"
)

// FeatureHeader is the optional "Feature:" block at the top of an answer.
type FeatureHeader struct {
	Name        string   `json:"name,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Document is everything recovered from one model answer.
type Document struct {
	Feature FeatureHeader  `json:"feature"`
	Drafts  []bdd.Draft    `json:"drafts"`
	Notes   bdd.Notes      `json:"notes"`
	Stats   bdd.ParseStats `json:"stats"`
}

var (
	fenceRe     = regexp.MustCompile("^(```|~~~)")
	headingMdRe = regexp.MustCompile(`^#{1,6}\s*`)
	quoteRe     = regexp.MustCompile(`^>\s*`)
	bulletRe    = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+`)
	ruleRe      = regexp.MustCompile(`^[-*_=]{3,}$`)

	scenarioKw = `(?:scenario outline|scenario|esquema do cen[áa]rio|cen[áa]rio)`

	scenarioLabel = `(?:\s*[\[(]([^\])]+)[\])])?`

	// "Scenario: Title", "Cenário (negativo): Título"
	scenarioRe = regexp.MustCompile(`(?i)^` + scenarioKw + scenarioLabel + `\s*:\s*(.*)$`)
	// "Scenario 1: Title", "Scenario 2 - Title", "Scenario #3 [edge] Title"
	scenarioNumRe = regexp.MustCompile(`(?i)^` + scenarioKw + `\s*#?\d+` + scenarioLabel + `(?:\s*[:.\-–]\s*|\s+|$)(.*)$`)

	featureRe = regexp.MustCompile(`(?i)^(?:feature|funcionalidade|caracter[íi]stica)\s*:\s*(.*)$`)
	typeRe    = regexp.MustCompile(`(?i)^(?:type|tipo)\s*:\s*(.+)$`)
	notesRe   = regexp.MustCompile(`(?i)^(insights?|concerns?|preocupa[çc][õo]es|suggestions?|sugest[õo]es)\s*(:\s*(.*))?$`)
	labelRe   = regexp.MustCompile(`\s*[\[(]\s*([^\[\]()]+?)\s*[\])]\s*$`)

	stepRe = regexp.MustCompile(`(?i)^(given|when|then|and|but|dados|dadas|dado|dada|quando|então|entao|mas|e)(?:\s*:\s*|\s+)(.+)$`)
)

var stepKinds = map[string]bdd.StepKind{
	"given": bdd.StepGiven, "dado": bdd.StepGiven, "dada": bdd.StepGiven,
	"dados": bdd.StepGiven, "dadas": bdd.StepGiven,
	"when": bdd.StepWhen, "quando": bdd.StepWhen,
	"then": bdd.StepThen, "então": bdd.StepThen, "entao": bdd.StepThen,
	"and": bdd.StepAnd, "but": bdd.StepAnd, "e": bdd.StepAnd, "mas": bdd.StepAnd,
}

// Parse returns the drafts found in raw, in order of appearance.
func Parse(raw string) []bdd.Draft {
	return ParseDocument(raw).Drafts
}

// line is one cleaned input line.
type line struct {
	text    string
	heading bool // had markdown heading hashes
	literal bool // escaped with Literal; always plain text
}

// Literal starts a line that is read as plain text, whatever it looks like.
const Literal = `\`

// ParseDocument parses raw model output into a Document.
//
// If any scenario heading is present the text is read in structured mode:
// each heading opens a block that runs until the next heading, notes section
// or end of text, and blocks without steps are discarded. Otherwise every run
// of consecutive step lines becomes a draft titled by the closest plain line
// above it.
func ParseDocument(raw string) Document {
	lines := clean(raw)
	p := &state{structured: hasHeading(lines)}
	for _, ln := range lines {
		p.feed(ln)
	}
	p.flush()
	return p.doc
}

func clean(raw string) []line {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []line
	for _, s := range strings.Split(raw, "\n") {
		if ln, ok := cleanLine(s); ok {
			out = append(out, ln)
		}
	}
	return out
}

// cleanLine strips markdown decoration from s. Fence lines are dropped.
func cleanLine(s string) (line, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, Literal) {
		return line{text: strings.TrimSpace(s[len(Literal):]), literal: true}, true
	}
	if fenceRe.MatchString(s) {
		return line{}, false
	}
	var ln line
	if loc := headingMdRe.FindStringIndex(s); loc != nil {
		ln.heading = true
		s = s[loc[1]:]
	}
	s = quoteRe.ReplaceAllString(s, "")
	s = bulletRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(unbold(s))
	if ruleRe.MatchString(s) {
		s = ""
	}
	ln.text = s
	return ln, true
}

// unbold drops the bold markers around a leading keyword, as in
// "**Given** a user" or "**Scenario 1:** Login", or around the whole line.
// Markers inside the text are kept.
func unbold(s string) string {
	if !strings.HasPrefix(s, "**") {
		return s
	}
	rest := s[2:]
	i := strings.Index(rest, "**")
	if i < 0 {
		return s
	}
	return rest[:i] + rest[i+2:]
}

// unwrapBold returns s without bold markers that enclose all of it.
func unwrapBold(s string) string {
	if len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") &&
		!strings.Contains(s[2:len(s)-2], "**") {
		return strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

// Escape returns s ready to be embedded as a description line: unchanged
// when ParseDocument reads it back as the same plain text, otherwise
// prefixed with Literal.
func Escape(s string) string {
	s = strings.TrimSpace(s)
	ln, ok := cleanLine(s)
	if ok && !ln.literal && ln.text == s && !structural(ln) {
		return s
	}
	return Literal + s
}

// structural reports whether ln would open or feed a block or section.
func structural(ln line) bool {
	t := ln.text
	if _, _, ok := matchScenario(t); ok {
		return true
	}
	if _, ok := matchStep(t); ok {
		return true
	}
	if m := notesRe.FindStringSubmatch(t); m != nil && (m[2] != "" || ln.heading) {
		return true
	}
	return featureRe.MatchString(t) || typeRe.MatchString(t)
}

func hasHeading(lines []line) bool {
	for _, ln := range lines {
		if ln.literal {
			continue
		}
		if _, _, ok := matchScenario(ln.text); ok {
			return true
		}
	}
	return false
}

// matchScenario reports whether text is a scenario heading and returns its
// title and type label.
func matchScenario(text string) (title, hint string, ok bool) {
	for _, re := range []*regexp.Regexp{scenarioNumRe, scenarioRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		title, hint = splitLabel(strings.TrimSpace(m[2]))
		title = unwrapBold(title)
		if label := strings.TrimSpace(m[1]); label != "" {
			if _, known := bdd.ParseScenarioType(label); known {
				hint = label
			}
		}
		return title, hint, true
	}
	return "", "", false
}

// splitLabel strips a trailing "[type]" or "(type)" from title when the
// bracketed text names a scenario type.
func splitLabel(title string) (string, string) {
	m := labelRe.FindStringSubmatchIndex(title)
	if m == nil {
		return title, ""
	}
	label := title[m[2]:m[3]]
	if tm := typeRe.FindStringSubmatch(label); tm != nil {
		label = strings.TrimSpace(tm[1])
	}
	if _, ok := bdd.ParseScenarioType(label); !ok {
		return title, ""
	}
	return strings.TrimSpace(title[:m[0]]), label
}

func matchStep(text string) (bdd.Step, bool) {
	m := stepRe.FindStringSubmatch(text)
	if m == nil {
		return bdd.Step{}, false
	}
	kind, ok := stepKinds[strings.ToLower(m[1])]
	if !ok {
		return bdd.Step{}, false
	}
	return bdd.Step{Kind: kind, Text: unwrapBold(strings.TrimSpace(m[2]))}, true
}

type section int

const (
	sectionNone section = iota
	sectionFeature
	sectionBlock
	sectionNotes
)

type state struct {
	doc        Document
	structured bool
	section    section

	featureSeen bool
	notes       *[]string

	// open block
	open    bool
	title   string
	hint    string
	steps   []bdd.Step
	pending string // fallback title candidate
}

func (p *state) feed(ln line) {
	text := ln.text
	if text == "" {
		if !p.structured && p.section == sectionBlock {
			p.flush()
			p.section = sectionNone
		}
		return
	}

	if ln.literal {
		p.addText(text)
		return
	}

	if title, hint, ok := matchScenario(text); ok {
		p.flush()
		p.open, p.title, p.hint = true, title, hint
		p.section = sectionBlock
		return
	}

	if m := featureRe.FindStringSubmatch(text); m != nil && !p.featureSeen {
		p.flush()
		p.featureSeen = true
		p.doc.Feature.Name = strings.TrimSpace(m[1])
		p.section = sectionFeature
		return
	}

	if m := notesRe.FindStringSubmatch(text); m != nil && (m[2] != "" || ln.heading) {
		p.flush()
		p.section = sectionNotes
		p.notes = p.notesFor(m[1])
		if item := strings.TrimSpace(m[3]); item != "" {
			*p.notes = append(*p.notes, item)
		}
		return
	}

	if m := typeRe.FindStringSubmatch(text); m != nil && p.open {
		p.hint = strings.TrimSpace(m[1])
		return
	}

	if step, ok := matchStep(text); ok {
		p.addStep(step)
		return
	}

	p.addText(text)
}

func (p *state) addStep(step bdd.Step) {
	if p.structured {
		if p.open {
			p.steps = append(p.steps, step)
		}
		return
	}

	// A Given after the outcome of a run starts the next scenario.
	if p.open && step.Kind == bdd.StepGiven && len(p.steps) > 0 && hasOutcome(p.steps) {
		p.flush()
	}
	if !p.open {
		p.open = true
		p.title, p.hint = splitLabel(strings.TrimSuffix(p.pending, ":"))
		if p.pending != "" && p.section == sectionFeature {
			if d := p.doc.Feature.Description; len(d) > 0 && d[len(d)-1] == p.pending {
				p.doc.Feature.Description = d[:len(d)-1]
			}
		}
		p.pending = ""
		p.section = sectionBlock
	}
	p.steps = append(p.steps, step)
}

func (p *state) addText(text string) {
	switch p.section {
	case sectionFeature:
		p.doc.Feature.Description = append(p.doc.Feature.Description, text)
	case sectionNotes:
		*p.notes = append(*p.notes, text)
		return
	}
	if !p.structured {
		if p.open {
			p.flush()
			p.section = sectionNone
		}
		p.pending = text
	}
}

func (p *state) notesFor(label string) *[]string {
	l := strings.ToLower(label)
	switch {
	case strings.HasPrefix(l, "insight"):
		return &p.doc.Notes.Insights
	case strings.HasPrefix(l, "concern"), strings.HasPrefix(l, "preocupa"):
		return &p.doc.Notes.Concerns
	default:
		return &p.doc.Notes.Suggestions
	}
}

// flush closes the open block, if any.
func (p *state) flush() {
	if !p.open {
		return
	}
	p.open = false
	title, hint, steps := p.title, p.hint, p.steps
	p.title, p.hint, p.steps = "", "", nil

	if len(steps) == 0 {
		p.doc.Stats.Discarded++
		return
	}
	if title == "" {
		title = fmt.Sprintf("Scenario %d", len(p.doc.Drafts)+1)
	}
	p.doc.Drafts = append(p.doc.Drafts, bdd.Draft{
		Position: len(p.doc.Drafts),
		Title:    title,
		Steps:    steps,
		TypeHint: hint,
	})
	if p.structured {
		p.doc.Stats.Structured++
	} else {
		p.doc.Stats.Fallback++
	}
}

func hasOutcome(steps []bdd.Step) bool {
	for _, s := range steps {
		if s.Kind == bdd.StepThen {
			return true
		}
	}
	return false
}
