package command

import (
	"github.com/sandevgo/chatassist/internal/core"
)

// Chat is the slice of the agent the commands operate on.
type Chat interface {
	Clear(sessionID string)
	Status(sessionID string) core.Status
}

func NewCommands(chat Chat) []core.Command {
	return []core.Command{
		NewClearCommand(chat),
		NewStatusCommand(chat),
	}
}
