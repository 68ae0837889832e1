package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
)

// Azure talks to an Azure OpenAI resource. The deployment name selects the
// model; the embedding deployment serves query vectors for hybrid search.
type Azure struct {
	baseProvider
	apiVersion          string
	embeddingDeployment string
}

type AzureConfig struct {
	Endpoint            string
	APIKey              string
	Deployment          string
	APIVersion          string
	EmbeddingDeployment string
	Timeout             time.Duration
}

func NewAzure(cfg AzureConfig) *Azure {
	return &Azure{
		baseProvider:        newBaseProvider(strings.TrimRight(cfg.Endpoint, "/"), cfg.APIKey, cfg.Deployment, cfg.Timeout),
		apiVersion:          cfg.APIVersion,
		embeddingDeployment: cfg.EmbeddingDeployment,
	}
}

func (a *Azure) deploymentPath(deployment, op string) string {
	return "/openai/deployments/" + url.PathEscape(deployment) + "/" + op +
		"?api-version=" + url.QueryEscape(a.apiVersion)
}

func (a *Azure) headers() map[string]string {
	return map[string]string{"api-key": a.apiKey}
}

func (a *Azure) Send(ctx context.Context, messages []Message, maxTokens int, temperature float64) (core.CompletionResult, error) {
	payload := map[string]any{
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"stream":      false,
	}
	return a.postChat(ctx, a.deploymentPath(a.model, "chat/completions"), payload, a.headers())
}

// EncodeQuery returns the embedding vector of text.
func (a *Azure) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.doRequest(ctx, http.MethodPost, a.deploymentPath(a.embeddingDeployment, "embeddings"),
		map[string]any{"input": text}, a.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, malformed("decode embeddings: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, malformed("empty embedding")
	}
	return result.Data[0].Embedding, nil
}
