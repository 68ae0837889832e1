package llm

import (
	"fmt"
	"strings"

	"github.com/sandevgo/chatassist/internal/core"
)

const contextPreamble = "Use the following context information to answer the user's question. " +
	"If the context doesn't contain relevant information, say so and provide a general response."

const contextInstructions = `Instructions:
- Base your answer primarily on the provided context
- If you reference specific information, mention the source
- If the context is insufficient, acknowledge this and provide what help you can
- Be conversational and helpful`

// ContextPrompt renders retrieved snippets as a system message body. Each
// snippet text is cut to maxChars runes; maxChars <= 0 disables the cut.
func ContextPrompt(snippets []core.Snippet, maxChars int) string {
	if len(snippets) == 0 {
		return ""
	}

	parts := make([]string, 0, len(snippets))
	for i, s := range snippets {
		source := s.SourceID
		if source == "" {
			source = fmt.Sprintf("Document %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, source, truncateRunes(s.Text, maxChars)))
	}

	var b strings.Builder
	b.WriteString(contextPreamble)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\n")
	b.WriteString(contextInstructions)
	return b.String()
}

// BuildMessages assembles the chat payload: system prompt, optional context
// block, then the conversation turns in order.
func BuildMessages(req core.CompletionRequest, maxChars int) []Message {
	messages := make([]Message, 0, len(req.Turns)+2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, Message{Role: string(core.RoleSystem), Content: req.SystemPrompt})
	}
	if block := ContextPrompt(req.Snippets, maxChars); block != "" {
		messages = append(messages, Message{Role: string(core.RoleSystem), Content: block})
	}
	for _, t := range req.Turns {
		messages = append(messages, Message{Role: string(t.Role), Content: t.Text})
	}
	return messages
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
