package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	label string
	value string
}

// ChoiceStep stores one of a fixed set of values under key.
type ChoiceStep struct {
	key     string
	title   string
	choices []choice
	cursor  int
	when    func(*InstallState) bool
}

func NewProviderStep() Step {
	return &ChoiceStep{
		key:   "LLM_PROVIDER",
		title: "Select your completion provider:",
		choices: []choice{
			{"Azure OpenAI", "azure"},
			{"OpenAI-compatible endpoint", "openai"},
			{"Demo (canned replies, no credentials)", "demo"},
		},
	}
}

func NewYesNoStep(key, title string, when func(*InstallState) bool) Step {
	return &ChoiceStep{
		key:     key,
		title:   title,
		choices: []choice{{"No", "false"}, {"Yes", "true"}},
		when:    when,
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Skip(state *InstallState) bool {
	return s.when != nil && !s.when(state)
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.key] = s.choices[s.cursor].value
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
