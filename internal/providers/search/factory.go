package search

import (
	"context"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
)

// NewRetriever returns Disabled unless RAG is switched on.
func NewRetriever(ctx context.Context, cfg *config.AppConfig, embedder core.Embedder) core.Retriever {
	logger := log.FromCtx(ctx)
	if !cfg.EnableRAG {
		logger.Info().Msg("retrieval disabled")
		return Disabled{}
	}

	logger.Info().
		Str("index", cfg.SearchIndex).
		Str("mode", cfg.RAGSearchType).
		Bool("vector", embedder != nil).
		Msg("retrieval enabled")

	return NewAzureSearch(AzureConfig{
		Endpoint:       cfg.SearchEndpoint,
		APIKey:         cfg.SearchKey,
		Index:          cfg.SearchIndex,
		APIVersion:     cfg.SearchAPIVersion,
		Mode:           cfg.RAGSearchType,
		SemanticConfig: cfg.RAGSemantic,
		VectorField:    cfg.RAGVectorField,
		Timeout:        cfg.GetRequestTimeout(),
	}, embedder)
}
