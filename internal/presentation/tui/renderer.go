package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/aretw0/intake/pkg/domain"
)

// Renderer turns reply text into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a Renderer that renders markdown using glamour.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return PlainRenderer
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainRenderer returns the text unchanged with a trailing newline.
func PlainRenderer(text string) (string, error) {
	return strings.TrimRight(text, "\n") + "\n", nil
}

// FormatKeyboard numbers the quick replies so they can be picked by index.
func FormatKeyboard(labels []string, colored bool) string {
	if len(labels) == 0 {
		return ""
	}
	p := termenv.Ascii
	if colored {
		p = termenv.ColorProfile()
	}
	var b strings.Builder
	for i, label := range labels {
		idx := termenv.String(fmt.Sprintf("[%d]", i+1)).Foreground(p.Color("#60a5fa"))
		fmt.Fprintf(&b, "  %s %s\n", idx, label)
	}
	return b.String()
}

// FormMarkdown describes the form as a markdown table.
func FormMarkdown(form *domain.Form) string {
	var b strings.Builder
	b.WriteString("# Form\n\n")
	b.WriteString("| # | Field | Label | Rule | Choices |\n")
	b.WriteString("|---|-------|-------|------|---------|\n")
	for i, f := range form.Fields {
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s | %s |\n",
			i+1, f.Name, f.Caption(), f.Rule, strings.Join(f.Choices, ", "))
	}
	b.WriteString("\n")
	for i, f := range form.Fields {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Prompt)
	}
	return b.String()
}
