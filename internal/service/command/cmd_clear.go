package command

import (
	"context"

	"github.com/sandevgo/chatassist/internal/core"
)

type ClearCommand struct {
	chat      Chat
	formatter *ResponseFormatter
}

func NewClearCommand(chat Chat) core.Command {
	return &ClearCommand{
		chat:      chat,
		formatter: NewResponseFormatter(),
	}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Clear the conversation history"
}

func (c *ClearCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.chat.Clear(sessionID)
	return c.formatter.Success("Conversation cleared"), nil
}
