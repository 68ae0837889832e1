package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
)

// NewSender creates the Sender selected by LLM_PROVIDER.
func NewSender(ctx context.Context, cfg *config.AppConfig) (Sender, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.GetModel()).
		Msg("starting llm provider")

	switch cfg.Provider {
	case config.ProviderAzure:
		return NewAzure(AzureConfig{
			Endpoint:            cfg.AzureEndpoint,
			APIKey:              cfg.AzureAPIKey,
			Deployment:          cfg.AzureDeployment,
			APIVersion:          cfg.AzureAPIVersion,
			EmbeddingDeployment: cfg.AzureEmbeddingDeployment,
			Timeout:             cfg.GetRequestTimeout(),
		}), nil
	case config.ProviderOpenAI:
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.GetRequestTimeout(),
		}), nil
	case config.ProviderDemo:
		log.FromCtx(ctx).Warn().Msg("demo mode activated, replies are simulated")
		return NewDemo(time.Second, 2*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewClientFromConfig wires the configured sender into a retrying Client.
func NewClientFromConfig(ctx context.Context, cfg *config.AppConfig) (*Client, error) {
	sender, err := NewSender(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(sender, ClientConfig{
		Timeout:         cfg.GetRequestTimeout(),
		MaxRetries:      cfg.MaxRetries,
		BaseDelay:       cfg.RetryBaseDelay,
		MaxDelay:        cfg.RetryMaxDelay,
		Jitter:          cfg.RetryJitter,
		SnippetMaxChars: cfg.SnippetMaxChars,
	}), nil
}

// EmbedderFor returns the query embedder backing hybrid search, or nil when
// the sender has none.
func EmbedderFor(s Sender) core.Embedder {
	if e, ok := s.(core.Embedder); ok {
		return e
	}
	return nil
}

func (c *Client) Embedder() core.Embedder {
	return EmbedderFor(c.sender)
}
