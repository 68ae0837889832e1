package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects a single free-text value. Secrets are echoed as dots.
type InputStep struct {
	input    textinput.Model
	key      string
	title    string
	optional bool
	when     func(*InstallState) bool
	err      string
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func optional() inputOption {
	return func(s *InputStep) { s.optional = true }
}

func when(fn func(*InstallState) bool) inputOption {
	return func(s *InputStep) { s.when = fn }
}

func NewInputStep(key, title, placeholder string, opts ...inputOption) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60
	ti.Placeholder = placeholder

	s := &InputStep{input: ti, key: key, title: title}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Skip(state *InstallState) bool {
	return s.when != nil && !s.when(state)
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && !s.optional {
			s.err = "a value is required"
			return s, nil
		}
		if value != "" {
			state.EnvVars[s.key] = value
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.err = ""
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional, press Enter to skip)"
	}
	view := fmt.Sprintf("Enter your %s%s:\n\n%s\n\n", s.title, hint, s.input.View())
	if s.err != "" {
		view += errorStyle.Render(s.err) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
