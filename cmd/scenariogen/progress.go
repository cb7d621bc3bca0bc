package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dusk-indust/scenariogen/internal/orchestrator"
	"golang.org/x/term"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	pendingStyle  = lipgloss.NewStyle().Faint(true)
	workingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressPrinter writes progress events as status lines, styled when the
// destination is a terminal.
type progressPrinter struct {
	w       io.Writer
	styled  bool
	mode    string
	count   int
	request string
}

func newProgressPrinter(w io.Writer, mode string, count int) *progressPrinter {
	return &progressPrinter{w: w, styled: isTTYWriter(w), mode: mode, count: count}
}

// drain prints events until ch is closed, then closes done.
func (p *progressPrinter) drain(ch <-chan orchestrator.ProgressEvent, done chan<- struct{}) {
	defer close(done)
	for ev := range ch {
		p.print(ev)
	}
}

func (p *progressPrinter) print(ev orchestrator.ProgressEvent) {
	if ev.RequestID != p.request {
		p.request = ev.RequestID
		fmt.Fprintln(p.w, p.style(headerStyle, orchestrator.FormatRequestHeader(ev.RequestID, p.mode, p.count)))
	}

	line := orchestrator.FormatProgress(ev)
	switch ev.Status {
	case orchestrator.ProgressPending:
		line = p.style(pendingStyle, line)
	case orchestrator.ProgressWorking:
		line = p.style(workingStyle, line)
	case orchestrator.ProgressComplete:
		line = p.style(completeStyle, line)
	case orchestrator.ProgressFailed:
		line = p.style(failedStyle, line)
	}
	fmt.Fprintln(p.w, line)
}

// warn prints a warning line.
func (p *progressPrinter) warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(warnStyle, "warning: "+fmt.Sprintf(format, args...)))
}

func (p *progressPrinter) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}
