package prompt

import (
	"os"
	"strings"

	"github.com/sandevgo/chatassist/internal/core"
)

// System resolves the system prompt. SYSTEM.md in the runtime directory wins
// over SYSTEM_PROMPT and is re-read on every call so edits apply without a
// restart.
type System struct {
	cfg core.PromptConfig
}

func NewSystem(cfg core.PromptConfig) *System {
	return &System{
		cfg: cfg,
	}
}

func (p *System) Build() string {
	if content, err := os.ReadFile(p.cfg.GetSystemPath()); err == nil {
		if text := strings.TrimSpace(string(content)); text != "" {
			return text
		}
	}
	return p.cfg.GetSystemPrompt()
}
