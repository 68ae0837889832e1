package agent

import (
	"errors"
	"fmt"

	"github.com/sandevgo/chatassist/internal/providers/llm"
)

// UserMessage turns a Run error into the text shown in the chat window.
func (a *Agent) UserMessage(err error) string {
	if errors.Is(err, ErrEmptyMessage) {
		return "Please enter a message."
	}
	return "I apologize, but I encountered an error: " + a.describe(err)
}

func (a *Agent) describe(err error) string {
	var ce *llm.CompletionError
	if !errors.As(err, &ce) {
		return err.Error()
	}

	switch ce.Kind {
	case llm.KindAuth:
		return "Authentication failed. Please check your API key."
	case llm.KindNotFound:
		return fmt.Sprintf("Model deployment '%s' not found. Please verify your deployment name.", a.appCfg.GetModel())
	case llm.KindRateLimit:
		return "Rate limit exceeded. Please wait and try again."
	case llm.KindTimeout:
		return "Request timed out. Please try again."
	case llm.KindConnection, llm.KindServer:
		return "The AI service is unavailable right now. Please try again later."
	case llm.KindCanceled:
		return "The request was cancelled."
	case llm.KindMalformed:
		return "The AI service returned an unexpected response."
	default:
		return ce.Error()
	}
}
