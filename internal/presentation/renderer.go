package presentation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultStyle is the glamour style used by the chat window
const DefaultStyle = "dark"

// Renderer formats assistant answers for a terminal of a given width
type Renderer struct {
	term  *glamour.TermRenderer
	width int
}

// NewRenderer creates a renderer wrapping at width using a glamour standard style
func NewRenderer(width int, style string) (*Renderer, error) {
	if style == "" {
		style = DefaultStyle
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{term: term, width: width}, nil
}

// Width returns the wrap width
func (r *Renderer) Width() int {
	return r.width
}

// Render reflows numbered answers, then renders markdown when present.
// Plain text is only word-wrapped.
func (r *Renderer) Render(text string) (string, error) {
	formatted := FormatAnswer(text)
	if !HasMarkdown(formatted) {
		return wordwrap.String(formatted, r.width), nil
	}

	out, err := r.term.Render(hardBreaks(formatted))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// hardBreaks turns single newlines into markdown hard line breaks so label
// lines survive paragraph reflow
func hardBreaks(text string) string {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines)-1; i++ {
		if lines[i] != "" && lines[i+1] != "" {
			lines[i] += "  "
		}
	}
	return strings.Join(lines, "\n")
}
