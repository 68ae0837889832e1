package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
)

const (
	ModeHybrid   = "hybrid"
	ModeSemantic = "semantic"
	ModeSimple   = "simple"
)

type AzureConfig struct {
	Endpoint       string
	APIKey         string
	Index          string
	APIVersion     string
	Mode           string
	SemanticConfig string
	VectorField    string
	Timeout        time.Duration
}

// AzureSearch queries an Azure AI Search index over REST. Hybrid and
// semantic modes degrade to simpler query types when the service rejects
// them.
type AzureSearch struct {
	client   *http.Client
	cfg      AzureConfig
	embedder core.Embedder
}

// NewAzureSearch creates the retriever. embedder may be nil, in which case
// hybrid queries are sent without a vector.
func NewAzureSearch(cfg AzureConfig, embedder core.Embedder) *AzureSearch {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Mode == "" {
		cfg.Mode = ModeHybrid
	}
	return &AzureSearch{
		client:   &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		embedder: embedder,
	}
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type searchRequest struct {
	Search                string        `json:"search"`
	Top                   int           `json:"top"`
	Count                 bool          `json:"count"`
	QueryType             string        `json:"queryType,omitempty"`
	SemanticConfiguration string        `json:"semanticConfiguration,omitempty"`
	VectorQueries         []vectorQuery `json:"vectorQueries,omitempty"`
}

func (s *AzureSearch) Retrieve(ctx context.Context, query string, topK int) ([]core.Snippet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []core.Snippet{}, &RetrievalError{Err: errors.New("empty query")}
	}
	if topK <= 0 {
		return []core.Snippet{}, nil
	}

	logger := log.FromCtx(ctx)
	var lastErr error
	for _, mode := range s.chain() {
		req, err := s.buildRequest(ctx, mode, query, topK)
		if err != nil {
			return []core.Snippet{}, err
		}

		docs, err := s.search(ctx, req)
		if err == nil {
			snippets := toSnippets(docs, topK)
			logger.Debug().
				Str("mode", mode).
				Int("hits", len(docs)).
				Int("snippets", len(snippets)).
				Msg("search completed")
			return snippets, nil
		}

		lastErr = &RetrievalError{Mode: mode, StatusCode: statusOf(err), Err: err}
		if ctx.Err() != nil {
			break
		}
		logger.Warn().Err(err).Str("mode", mode).Msg("search failed")
	}
	return []core.Snippet{}, lastErr
}

// chain lists the query types to try, best first.
func (s *AzureSearch) chain() []string {
	switch s.cfg.Mode {
	case ModeHybrid:
		return []string{ModeHybrid, ModeSemantic, ModeSimple}
	case ModeSemantic:
		return []string{ModeSemantic, ModeSimple}
	default:
		return []string{ModeSimple}
	}
}

func (s *AzureSearch) buildRequest(ctx context.Context, mode, query string, topK int) (searchRequest, error) {
	req := searchRequest{Search: query, Top: topK, Count: true}
	if mode == ModeSimple {
		return req, nil
	}

	req.QueryType = "semantic"
	req.SemanticConfiguration = s.cfg.SemanticConfig
	if mode != ModeHybrid || s.embedder == nil {
		return req, nil
	}

	vec, err := s.embedder.EncodeQuery(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return req, &RetrievalError{Mode: mode, Err: err}
		}
		log.FromCtx(ctx).Warn().Err(err).Msg("query embedding failed, searching without vector")
		return req, nil
	}
	req.VectorQueries = []vectorQuery{{
		Kind:   "vector",
		Vector: vec,
		K:      topK,
		Fields: s.cfg.VectorField,
	}}
	return req, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

func (s *AzureSearch) search(ctx context.Context, body searchRequest) ([]document, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	endpoint := s.cfg.Endpoint + "/indexes/" + url.PathEscape(s.cfg.Index) +
		"/docs/search?api-version=" + url.QueryEscape(s.cfg.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.cfg.APIKey)
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(raw) > 256 {
			raw = raw[:256]
		}
		return nil, &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(raw))}
	}

	var result struct {
		Value []document `json:"value"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return result.Value, nil
}
