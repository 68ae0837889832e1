package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/chatassist/internal/config"
	envfile "github.com/sandevgo/chatassist/pkg/env"
)

// ErrEnvExists is returned when the runtime directory already holds a .env
// and overwriting was not requested.
var ErrEnvExists = errors.New(".env file already exists")

// SaveEnvStep validates the answers and writes them to the runtime .env.
type SaveEnvStep struct {
	runtimePath string
	overwrite   bool
	err         error
	saved       bool
}

func NewSaveEnvStep(runtimePath string, overwrite bool) Step {
	return &SaveEnvStep{runtimePath: runtimePath, overwrite: overwrite}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := SaveEnv(s.runtimePath, state.EnvVars, s.overwrite); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// RenderEnv parses vars exactly as the application would, validates the
// result and renders the non-default settings as .env content.
func RenderEnv(vars map[string]string) (string, error) {
	opts := env.Options{Environment: vars}

	cfg := &config.AppConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return "", &config.Error{Reason: "parse answers", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	out, err := envfile.MarshalEnv(cfg)
	if err != nil {
		return "", err
	}

	if cfg.EnableTelegram {
		tg := &config.TelegramConfig{}
		if err := env.ParseWithOptions(tg, opts); err != nil {
			return "", &config.Error{Setting: "TELEGRAM_OWNER_ID", Reason: "parse telegram answers", Err: err}
		}
		tgOut, err := envfile.MarshalEnv(tg)
		if err != nil {
			return "", err
		}
		out += tgOut
	}
	return out, nil
}

// SaveEnv writes the rendered answers to runtimePath/.env and seeds
// SYSTEM.md with the configured system prompt when it is missing.
func SaveEnv(runtimePath string, vars map[string]string, overwrite bool) error {
	content, err := RenderEnv(vars)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(runtimePath, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(envPath); err == nil && !overwrite {
		return fmt.Errorf("%w at %s", ErrEnvExists, envPath)
	}
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		return err
	}

	systemPath := filepath.Join(runtimePath, "SYSTEM.md")
	if _, err := os.Stat(systemPath); errors.Is(err, os.ErrNotExist) {
		prompt := vars["SYSTEM_PROMPT"]
		if prompt == "" {
			prompt = defaultSystemPrompt()
		}
		if err := os.WriteFile(systemPath, []byte(prompt+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", systemPath, err)
		}
	}
	return nil
}

func defaultSystemPrompt() string {
	cfg := &config.AppConfig{}
	_ = env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}})
	return cfg.SystemPrompt
}
