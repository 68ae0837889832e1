package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
)

// maxErrorBody caps how much of a failed response body ends up in errors.
const maxErrorBody = 512

// Message is one entry of the chat completions "messages" array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sender performs a single chat completion HTTP attempt. Retrying is the
// Client's job.
type Sender interface {
	Send(ctx context.Context, messages []Message, maxTokens int, temperature float64) (core.CompletionResult, error)
	Model() string
}

type baseProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func newBaseProvider(baseURL, apiKey, model string, timeout time.Duration) baseProvider {
	return baseProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (b *baseProvider) Model() string {
	return b.model
}

func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, newTransportError(fmt.Errorf("request: %w", err))
	}
	return resp, nil
}

// postChat sends one chat completion request and decodes an OpenAI-shaped
// response.
func (b *baseProvider) postChat(ctx context.Context, path string, payload any, headers map[string]string) (core.CompletionResult, error) {
	resp, err := b.doRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return core.CompletionResult{}, err
	}
	defer resp.Body.Close()

	res, err := parseOpenAIResponse(resp)
	if err != nil {
		return core.CompletionResult{}, err
	}
	if res.Model == "" {
		res.Model = b.model
	}
	return res, nil
}

// readBody reads the full response body, or a truncated one on error status.
func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &CompletionError{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(data)),
		}
	}
	return data, nil
}

func parseOpenAIResponse(resp *http.Response) (core.CompletionResult, error) {
	data, err := readBody(resp)
	if err != nil {
		return core.CompletionResult{}, err
	}

	var result struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage *core.Usage `json:"usage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.CompletionResult{}, malformed("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.CompletionResult{}, malformed("empty choices")
	}

	choice := result.Choices[0]
	out := core.CompletionResult{
		Model:        result.Model,
		FinishReason: choice.FinishReason,
	}
	if choice.Message.Content != nil {
		out.Text = *choice.Message.Content
	}
	if result.Usage != nil {
		out.Usage = *result.Usage
	}
	return out, nil
}
