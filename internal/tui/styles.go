package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// KeyMap holds the chat window bindings
type KeyMap struct {
	Submit     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit:     key.NewBinding(key.WithKeys("enter")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
}

type Style struct {
	Title      lipgloss.Style
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	ErrorLabel lipgloss.Style
	Message    lipgloss.Style
	Input      lipgloss.Style
	Help       lipgloss.Style
}

func DefaultStyles() *Style {
	blue := lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	gray := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	return &Style{
		Title: lipgloss.NewStyle().Bold(true).Foreground(blue).Padding(0, 1),
		UserLabel: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(blue).
			Padding(0, 1),
		BotLabel: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f9fafb"}).
			Background(lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#374151"}).
			Padding(0, 1),
		ErrorLabel: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#dc2626")).
			Padding(0, 1),
		Message: lipgloss.NewStyle().PaddingLeft(1),
		Input: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(gray).Padding(0, 1),
	}
}
