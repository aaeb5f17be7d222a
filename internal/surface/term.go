package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors for terminal rendering.
var (
	purple = lipgloss.Color("99")
	gray   = lipgloss.Color("245")
	red    = lipgloss.Color("9")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(purple)
	ruleStyle   = lipgloss.NewStyle().Foreground(gray)
	statusStyle = lipgloss.NewStyle().Bold(true).Foreground(red)
	dimStyle    = lipgloss.NewStyle().Foreground(gray).Italic(true)
)

// TermSink renders surfaces as framed text blocks on a terminal writer.
type TermSink struct {
	Out io.Writer
}

// NewTermSink creates a sink writing to out.
func NewTermSink(out io.Writer) *TermSink {
	return &TermSink{Out: out}
}

// Show writes the snapshot as a titled block. The failure status is styled
// distinctly from the raw output so it stands out even when the command
// printed nothing.
func (t *TermSink) Show(s *Snapshot) error {
	var b strings.Builder

	rule := ruleStyle.Render(strings.Repeat("─", 4))
	fmt.Fprintf(&b, "%s %s %s\n", rule, titleStyle.Render(s.Name), rule)
	for _, line := range s.Lines {
		fmt.Fprintln(&b, line)
	}
	if s.Truncated {
		fmt.Fprintln(&b, dimStyle.Render("(output truncated)"))
	}
	if s.Failed {
		fmt.Fprintln(&b, statusStyle.Render(s.Status))
	}

	if _, err := io.WriteString(t.Out, b.String()); err != nil {
		return fmt.Errorf("writing surface %s: %w", s.Name, err)
	}
	return nil
}
