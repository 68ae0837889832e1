package llm

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
)

// OpenAICompatible sends to any endpoint implementing /v1/chat/completions.
type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	Timeout      time.Duration
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	if cfg.AuthHeader == "" {
		cfg.AuthHeader, cfg.AuthPrefix = "Authorization", "Bearer "
	}
	return &OpenAICompatible{
		baseProvider: newBaseProvider(strings.TrimRight(cfg.BaseURL, "/"), cfg.APIKey, cfg.Model, cfg.Timeout),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) Send(ctx context.Context, messages []Message, maxTokens int, temperature float64) (core.CompletionResult, error) {
	payload := map[string]any{
		"model":       o.model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"stream":      false,
	}

	headers := make(map[string]string)
	if o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	return o.postChat(ctx, "/v1/chat/completions", payload, headers)
}
