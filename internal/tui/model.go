// Package tui is the terminal chat window in front of the chatbot service.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/acornak/healthcare-chatbot/internal/chatclient"
	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/presentation"
)

// Greeting opens every chat
const Greeting = "Dobrý deň. Moje meno je Zidan Sufurki a som váš asistent. Mojou úlohou je pomôcť Vám pri hľadaní lekára vo vašom okolí. Na začiatok mi, prosím, napíšte, akého lekára hľadáte a kde sa nachádzate."

const (
	defaultWidth  = 80
	defaultHeight = 24
	// title, input box and help line
	chromeHeight = 6
)

// Sender delivers one message to the chatbot service
type Sender interface {
	Send(ctx context.Context, message string, history conversation.Transcript) (*chatclient.Answer, error)
}

// Speaker identifies who an entry is from
type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerBot
	SpeakerError
)

// Entry is one displayed turn
type Entry struct {
	From Speaker
	Text string
}

type replyMsg struct {
	message string
	answer  *chatclient.Answer
	err     error
}

// Options configures the chat window
type Options struct {
	// SendHistory replays earlier exchanges as the request conversation
	SendHistory bool
	// MarkdownStyle is a glamour standard style name
	MarkdownStyle string
}

type Model struct {
	client  Sender
	opts    Options
	keyMap  KeyMap
	style   *Style
	entries []Entry
	history conversation.Transcript

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *presentation.Renderer

	inflight bool
	width    int
	height   int
}

// New creates the chat window opened with the greeting
func New(client Sender, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Napíšte správu..."
	input.CharLimit = 1000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(defaultWidth, defaultHeight-chromeHeight)
	vp.KeyMap = viewport.KeyMap{
		PageUp:   DefaultKeyMap.ScrollUp,
		PageDown: DefaultKeyMap.ScrollDown,
	}

	m := Model{
		client:   client,
		opts:     opts,
		keyMap:   DefaultKeyMap,
		style:    DefaultStyles(),
		entries:  []Entry{{From: SpeakerBot, Text: Greeting}},
		input:    input,
		viewport: vp,
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.resize()
	return m
}

// Entries returns the displayed turns
func (m Model) Entries() []Entry {
	return m.entries
}

// History returns the conversation replayed to the service
func (m Model) History() conversation.Transcript {
	return m.history
}

// Inflight reports whether a request is pending
func (m Model) Inflight() bool {
	return m.inflight
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case spinner.TickMsg:
		if !m.inflight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.inflight = false
		m.receive(msg)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.ScrollUp), key.Matches(msg, m.keyMap.ScrollDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keyMap.Submit):
			return m.submit()
		}
		if m.inflight {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if m.inflight || text == "" {
		return m, nil
	}

	m.entries = append(m.entries, Entry{From: SpeakerUser, Text: text})
	m.input.Reset()
	m.inflight = true
	m.refresh()

	return m, tea.Batch(m.send(text), m.spinner.Tick)
}

func (m Model) send(text string) tea.Cmd {
	var history conversation.Transcript
	if m.opts.SendHistory && len(m.history) > 0 {
		history = append(conversation.Transcript(nil), m.history...)
	}
	client := m.client

	return func() tea.Msg {
		answer, err := client.Send(context.Background(), text, history)
		return replyMsg{message: text, answer: answer, err: err}
	}
}

func (m *Model) receive(msg replyMsg) {
	if msg.err != nil {
		m.entries = append(m.entries, Entry{From: SpeakerError, Text: msg.err.Error()})
		return
	}

	m.entries = append(m.entries, Entry{From: SpeakerBot, Text: msg.answer.Message})
	if msg.answer.OK() {
		m.history = m.history.Append(
			conversation.NewUserTurn(msg.message),
			conversation.NewAssistantTurn(msg.answer.Message),
		)
	}
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-chromeHeight)
	m.input.Width = max(10, m.width-6)

	renderer, err := presentation.NewRenderer(max(20, m.width-4), m.opts.MarkdownStyle)
	if err == nil {
		m.renderer = renderer
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderEntries() string {
	width := max(20, m.width-4)
	var b strings.Builder
	for _, e := range m.entries {
		var label string
		text := e.Text
		switch e.From {
		case SpeakerUser:
			label = m.style.UserLabel.Render("Vy")
			text = wordwrap.String(text, width)
		case SpeakerError:
			label = m.style.ErrorLabel.Render("Chyba")
			text = wordwrap.String(text, width)
		default:
			label = m.style.BotLabel.Render("Asistent")
			text = m.renderAnswer(text, width)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(m.style.Message.Render(text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderAnswer(text string, width int) string {
	if m.renderer == nil {
		return wordwrap.String(presentation.FormatAnswer(text), width)
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return wordwrap.String(presentation.FormatAnswer(text), width)
	}
	return out
}

func (m Model) View() string {
	title := m.style.Title.Render("Hľadanie lekára")

	input := m.input.View()
	if m.inflight {
		input = fmt.Sprintf("%s čakám na odpoveď...", m.spinner.View())
	}

	help := m.style.Help.Render("Enter odoslať · PgUp/PgDn posúvať · Esc koniec")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		m.style.Input.Width(max(10, m.width-2)).Render(input),
		help,
	)
}
