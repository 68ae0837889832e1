package core

import "context"

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error)
}

type Embedder interface {
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
}

type TokenCounter interface {
	Count(text string) int
}
