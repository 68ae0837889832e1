package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/chatassist/internal/core"
)

type StatusCommand struct {
	chat      Chat
	formatter *ResponseFormatter
}

func NewStatusCommand(chat Chat) core.Command {
	return &StatusCommand{
		chat:      chat,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show model settings and conversation stats"
}

func (c *StatusCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	st := c.chat.Status(sessionID)

	model := st.Model
	if st.DemoMode {
		model += " (demo)"
	}
	rag := "disabled"
	if st.RAGEnabled {
		rag = fmt.Sprintf("%s (%s)", st.SearchIndex, st.SearchType)
	}

	return c.formatter.Combine(
		c.formatter.Info(st.Title),
		c.formatter.Label("Model", model),
		c.formatter.Label("Temperature", strconv.FormatFloat(st.Temperature, 'f', -1, 64)),
		c.formatter.Label("Max tokens", strconv.Itoa(st.MaxTokens)),
		c.formatter.Label("History limit", strconv.Itoa(st.HistoryLimit)),
		c.formatter.Label("RAG", rag),
		c.formatter.Section("📊", "Conversation", c.formatter.List([]string{
			fmt.Sprintf("Messages: %d", st.Messages),
			fmt.Sprintf("Characters: %d", st.TotalChars),
			fmt.Sprintf("Estimated tokens: %d", st.EstimatedToken),
		})),
	), nil
}
