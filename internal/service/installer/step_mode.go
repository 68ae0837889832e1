package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/chatassist/internal/config"
)

// SearchModeStep picks the preferred Azure AI Search query mode.
type SearchModeStep struct {
	list list.Model
}

func NewSearchModeStep() Step {
	items := []list.Item{
		item{id: config.SearchHybrid, title: "Hybrid", desc: "vector + keyword + semantic ranking, falls back automatically"},
		item{id: config.SearchSemantic, title: "Semantic", desc: "keyword query with the semantic ranker"},
		item{id: config.SearchSimple, title: "Simple", desc: "plain keyword search"},
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select search mode"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return &SearchModeStep{list: l}
}

func (s *SearchModeStep) Init() tea.Cmd {
	return nil
}

func (s *SearchModeStep) Skip(state *InstallState) bool {
	return !ragEnabled(state)
}

func (s *SearchModeStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	s.list.SetSize(width, max(height-4, 10))

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if it, ok := s.list.SelectedItem().(item); ok {
			state.EnvVars["RAG_SEARCH_TYPE"] = it.id
			return nil, nil
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *SearchModeStep) View(state *InstallState) string {
	return s.list.View()
}
