// Package tagfield is a terminal tag input with suggestions, built on the
// tags engine.
package tagfield

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/standup/internal/tags"
)

// ErrAborted is returned by Run when the user pressed ctrl+c.
var ErrAborted = errors.New("tag selection aborted")

var (
	accentColor = lipgloss.Color("#7C3AED")
	mutedColor  = lipgloss.Color("#6B7280")

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 1).
			MarginRight(1)

	suggestionStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	activeSuggestionStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(accentColor).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Model is the bubbletea model of the tag field.
type Model struct {
	engine  *tags.Engine
	input   textinput.Model
	done    bool
	aborted bool
}

// New creates a focused tag field over index with selected pre-filled.
func New(index tags.Index, selected []string) Model {
	ti := textinput.New()
	ti.Placeholder = "add a tag…"
	ti.Prompt = "# "
	ti.CharLimit = 64
	ti.Focus()

	e := tags.NewEngine(index, selected)
	e.Focus()
	return Model{engine: e, input: ti}
}

// Selected returns the committed tags.
func (m Model) Selected() []string { return m.engine.Selected() }

// Aborted reports whether the user cancelled with ctrl+c.
func (m Model) Aborted() bool { return m.aborted }

// Done reports whether the user finished editing.
func (m Model) Done() bool { return m.done }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	case "up":
		m.engine.Up()
		return m, nil
	case "down":
		m.engine.Down()
		return m, nil
	case "tab":
		if tag, ok := m.engine.ActiveCandidate(); ok {
			m.engine.Click(tag)
			m.input.SetValue("")
		}
		return m, nil
	case "enter":
		if _, ok := m.engine.Enter(); ok {
			m.input.SetValue("")
		}
		return m, nil
	case "esc":
		if m.engine.Visible() {
			m.engine.Escape()
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case "backspace":
		if m.input.Value() == "" {
			m.engine.Backspace()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.engine.Type(v)
	}
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	for _, t := range m.engine.Selected() {
		b.WriteString(chipStyle.Render(t))
	}
	if len(m.engine.Selected()) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.engine.Visible() {
		for i, c := range m.engine.Candidates() {
			if i == m.engine.Active() {
				b.WriteString(activeSuggestionStyle.Render("› " + c))
			} else {
				b.WriteString(suggestionStyle.Render(c))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ move • enter add • tab pick • backspace remove • esc done"))
	return b.String()
}

// Run shows the tag field until the user finishes and returns the tags.
// On ctrl+c the original selection is returned with ErrAborted.
func Run(index tags.Index, selected []string) ([]string, error) {
	final, err := tea.NewProgram(New(index, selected)).Run()
	if err != nil {
		return selected, err
	}
	m := final.(Model)
	if m.aborted {
		return selected, ErrAborted
	}
	return m.Selected(), nil
}
