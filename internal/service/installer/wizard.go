package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

var ErrInterrupted = errors.New("setup interrupted")

// Step represents a single step in the setup wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

// skipper is implemented by steps that only apply to some answers.
type skipper interface {
	Skip(state *InstallState) bool
}

func isAzure(s *InstallState) bool    { return s.Is("LLM_PROVIDER", "azure") }
func isOpenAI(s *InstallState) bool   { return s.Is("LLM_PROVIDER", "openai") }
func ragEnabled(s *InstallState) bool { return s.Is("ENABLE_RAG", "true") }
func telegramOn(s *InstallState) bool { return s.Is("ENABLE_TELEGRAM", "true") }

func getSteps(runtimePath string, overwrite bool) []Step {
	return []Step{
		NewProviderStep(),

		NewInputStep("AZURE_OPENAI_ENDPOINT", "Azure OpenAI endpoint", "https://<resource>.openai.azure.com", when(isAzure)),
		NewInputStep("AZURE_OPENAI_API_KEY", "Azure OpenAI API key", "", secret(), when(isAzure)),
		NewInputStep("AZURE_OPENAI_DEPLOYMENT", "chat deployment name", "gpt-4o-mini", when(isAzure)),

		NewInputStep("OPENAI_BASE_URL", "OpenAI-compatible base URL", "https://api.openai.com", when(isOpenAI)),
		NewInputStep("OPENAI_API_KEY", "API key", "sk-...", secret(), when(isOpenAI)),
		NewInputStep("OPENAI_MODEL", "model name", "gpt-4o-mini", when(isOpenAI)),

		NewYesNoStep("ENABLE_RAG", "Ground answers on an Azure AI Search index?", nil),
		NewInputStep("AZURE_SEARCH_ENDPOINT", "Azure AI Search endpoint", "https://<service>.search.windows.net", when(ragEnabled)),
		NewInputStep("AZURE_SEARCH_KEY", "Azure AI Search key", "", secret(), when(ragEnabled)),
		NewInputStep("AZURE_SEARCH_INDEX", "search index name", "documents", when(ragEnabled)),
		NewSearchModeStep(),

		NewYesNoStep("TRANSCRIPT_ENABLED", "Archive conversations to a local SQLite file?", nil),

		NewYesNoStep("ENABLE_TELEGRAM", "Enable the Telegram bot?", nil),
		NewInputStep("TELEGRAM_TOKEN", "Telegram bot token", "123456789:ABCDEF...", secret(), when(telegramOn)),
		NewInputStep("TELEGRAM_OWNER_ID", "Telegram user ID (owner)", "123456789", when(telegramOn)),

		NewSaveEnvStep(runtimePath, overwrite),
	}
}

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

type nextMsg struct{}

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel(runtimePath string, overwrite bool) model {
	return model{
		steps:       getSteps(runtimePath, overwrite),
		currentStep: 0,
		state:       NewInstallState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

// advance moves past the current step and any steps that do not apply.
func (m model) advance() (model, tea.Cmd) {
	m.currentStep++
	for m.currentStep < len(m.steps) {
		if sk, ok := m.steps[m.currentStep].(skipper); !ok || !sk.Skip(m.state) {
			break
		}
		m.currentStep++
	}
	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}
	return m, m.steps[m.currentStep].Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if nextStep == nil {
		return m.advance()
	}

	// If the step returned a different step (e.g., for branching), update current
	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	return titleStyle.Render("Setting up ChatAssist") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and writes runtimePath/.env on completion.
func RunWizard(runtimePath string, overwrite bool) (*InstallState, error) {
	p := tea.NewProgram(initialModel(runtimePath, overwrite), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if save, ok := finalModel.steps[len(finalModel.steps)-1].(*SaveEnvStep); ok && save.err != nil {
		return nil, save.err
	}
	if finalModel.quitting {
		return nil, ErrInterrupted
	}
	if finalModel.currentStep < len(finalModel.steps) {
		return nil, fmt.Errorf("setup stopped at step %d", finalModel.currentStep+1)
	}

	return finalModel.state, nil
}
