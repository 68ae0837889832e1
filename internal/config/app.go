package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatassist/pkg/log"
)

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderDemo   = "demo"

	SearchHybrid   = "hybrid"
	SearchSemantic = "semantic"
	SearchSimple   = "simple"
)

type AppConfig struct {
	RuntimePath string `env:"CHAT_RUNTIME_PATH" envDefault:".chatassist"`
	Provider    string `env:"LLM_PROVIDER" envDefault:"azure"`

	// Azure OpenAI
	AzureEndpoint            string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey              string `env:"AZURE_OPENAI_API_KEY"`
	AzureDeployment          string `env:"AZURE_OPENAI_DEPLOYMENT"`
	AzureAPIVersion          string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-02-01"`
	AzureEmbeddingDeployment string `env:"AZURE_OPENAI_EMBEDDING_DEPLOYMENT" envDefault:"text-embedding-ada-002"`
	ModelName                string `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`

	// OpenAI-compatible endpoints
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL"`

	// Azure AI Search
	SearchEndpoint   string `env:"AZURE_SEARCH_ENDPOINT"`
	SearchKey        string `env:"AZURE_SEARCH_KEY"`
	SearchIndex      string `env:"AZURE_SEARCH_INDEX"`
	SearchAPIVersion string `env:"AZURE_SEARCH_API_VERSION" envDefault:"2023-11-01"`

	// Retrieval
	EnableRAG       bool   `env:"ENABLE_RAG" envDefault:"false"`
	RAGTopK         int    `env:"RAG_TOP_K" envDefault:"5"`
	RAGSearchType   string `env:"RAG_SEARCH_TYPE" envDefault:"hybrid"`
	RAGSemantic     string `env:"RAG_SEMANTIC_CONFIG" envDefault:"default"`
	RAGVectorField  string `env:"RAG_VECTOR_FIELD" envDefault:"contentVector"`
	SnippetMaxChars int    `env:"RAG_SNIPPET_MAX_CHARS" envDefault:"2000"`

	// Generation
	AppTitle     string  `env:"APP_TITLE" envDefault:"AI Chat Assistant"`
	SystemPrompt string  `env:"SYSTEM_PROMPT" envDefault:"You are a helpful AI assistant. Provide clear, accurate, and helpful responses."`
	MaxTokens    int     `env:"MAX_TOKENS" envDefault:"1000"`
	Temperature  float64 `env:"TEMPERATURE" envDefault:"0.7"`
	HistoryLimit int     `env:"CONVERSATION_HISTORY_LIMIT" envDefault:"50"`

	// Sessions
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"168h"`
	MaxSessions    int           `env:"MAX_SESSIONS" envDefault:"1000"`

	// Requests
	RequestTimeoutSeconds int           `env:"REQUEST_TIMEOUT" envDefault:"30"`
	MaxRetries            int           `env:"MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay        time.Duration `env:"RETRY_BASE_DELAY" envDefault:"500ms"`
	RetryMaxDelay         time.Duration `env:"RETRY_MAX_DELAY" envDefault:"10s"`
	RetryJitter           time.Duration `env:"RETRY_JITTER" envDefault:"50ms"`

	// Transport Flags
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8501"`
	EnableWeb      bool   `env:"ENABLE_WEB" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`

	TranscriptEnabled bool `env:"TRANSCRIPT_ENABLED" envDefault:"false"`
}

// LoadAppConfig parses the environment and validates the result. A missing
// required setting is reported as *Error.
func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, &Error{Reason: "parse environment", Err: err}
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to load app config")
	}
	return c
}

func (c *AppConfig) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	switch c.Provider {
	case ProviderAzure:
		if err := required(
			"AZURE_OPENAI_ENDPOINT", c.AzureEndpoint,
			"AZURE_OPENAI_API_KEY", c.AzureAPIKey,
			"AZURE_OPENAI_DEPLOYMENT", c.AzureDeployment,
		); err != nil {
			return err
		}
	case ProviderOpenAI:
		if err := required(
			"OPENAI_BASE_URL", c.OpenAIBaseURL,
			"OPENAI_API_KEY", c.OpenAIAPIKey,
			"OPENAI_MODEL", c.OpenAIModel,
		); err != nil {
			return err
		}
	case ProviderDemo:
	default:
		return &Error{Setting: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.Provider)}
	}

	if c.EnableRAG {
		if err := required(
			"AZURE_SEARCH_ENDPOINT", c.SearchEndpoint,
			"AZURE_SEARCH_KEY", c.SearchKey,
			"AZURE_SEARCH_INDEX", c.SearchIndex,
		); err != nil {
			err.Reason = "is required when RAG is enabled"
			return err
		}
	}

	switch {
	case c.MaxTokens <= 0:
		return &Error{Setting: "MAX_TOKENS", Reason: "must be positive"}
	case c.Temperature < 0 || c.Temperature > 1:
		return &Error{Setting: "TEMPERATURE", Reason: "must be within [0, 1]"}
	case c.HistoryLimit <= 0:
		return &Error{Setting: "CONVERSATION_HISTORY_LIMIT", Reason: "must be positive"}
	case c.RAGTopK < 0:
		return &Error{Setting: "RAG_TOP_K", Reason: "must not be negative"}
	case c.RetryJitter < 0:
		return &Error{Setting: "RETRY_JITTER", Reason: "must not be negative"}
	case c.MaxRetries < 0:
		return &Error{Setting: "MAX_RETRIES", Reason: "must not be negative"}
	case c.RequestTimeoutSeconds <= 0:
		return &Error{Setting: "REQUEST_TIMEOUT", Reason: "must be positive"}
	case c.SessionIdleTTL < 0:
		return &Error{Setting: "SESSION_IDLE_TTL", Reason: "must not be negative"}
	case c.MaxSessions < 0:
		return &Error{Setting: "MAX_SESSIONS", Reason: "must not be negative"}
	case c.SnippetMaxChars <= 0:
		return &Error{Setting: "RAG_SNIPPET_MAX_CHARS", Reason: "must be positive"}
	}

	c.RAGSearchType = strings.ToLower(strings.TrimSpace(c.RAGSearchType))
	switch c.RAGSearchType {
	case SearchHybrid, SearchSemantic, SearchSimple:
	default:
		return &Error{Setting: "RAG_SEARCH_TYPE", Reason: fmt.Sprintf("unknown search type %q", c.RAGSearchType)}
	}

	return nil
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) *Error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &Error{Setting: pairs[i], Reason: "is required"}
		}
	}
	return nil
}

func (c *AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c *AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c *AppConfig) GetSystemPrompt() string {
	return c.SystemPrompt
}

func (c *AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "transcripts.db")
}

func (c *AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c *AppConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GetModel returns the model identifier the active provider talks to.
func (c *AppConfig) GetModel() string {
	switch c.Provider {
	case ProviderAzure:
		return c.AzureDeployment
	case ProviderOpenAI:
		return c.OpenAIModel
	default:
		return "demo-model"
	}
}

func (c *AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
