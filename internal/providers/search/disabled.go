package search

import (
	"context"

	"github.com/sandevgo/chatassist/internal/core"
)

// Disabled is the retriever used when RAG is switched off.
type Disabled struct{}

func (Disabled) Retrieve(context.Context, string, int) ([]core.Snippet, error) {
	return []core.Snippet{}, nil
}
