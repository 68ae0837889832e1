package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAzureEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "secret")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini")
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	setAzureEnv(t)
	t.Setenv("CHAT_RUNTIME_PATH", t.TempDir())

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderAzure, cfg.Provider)
	assert.Equal(t, "2024-02-01", cfg.AzureAPIVersion)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryJitter)
	assert.Equal(t, 5, cfg.RAGTopK)
	assert.Equal(t, SearchHybrid, cfg.RAGSearchType)
	assert.False(t, cfg.EnableRAG)
	assert.Equal(t, "AI Chat Assistant", cfg.AppTitle)
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel())
}

func TestLoadAppConfig_EnvOverrides(t *testing.T) {
	setAzureEnv(t)
	t.Setenv("CHAT_RUNTIME_PATH", t.TempDir())
	t.Setenv("MAX_TOKENS", "256")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("CONVERSATION_HISTORY_LIMIT", "4")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("MAX_RETRIES", "0")
	t.Setenv("RETRY_BASE_DELAY", "10ms")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, 4, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBaseDelay)
}

func TestLoadAppConfig_EmptyValueFallsBackToDefault(t *testing.T) {
	setAzureEnv(t)
	t.Setenv("CHAT_RUNTIME_PATH", t.TempDir())
	t.Setenv("MAX_TOKENS", "")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MaxTokens)
}

func TestLoadAppConfig_RelativeRuntimePath(t *testing.T) {
	setAzureEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CHAT_RUNTIME_PATH", "runtime")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "runtime"), cfg.GetRuntimePath())
	assert.Equal(t, filepath.Join(home, "runtime", "SYSTEM.md"), cfg.GetSystemPath())
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			Provider:              ProviderAzure,
			AzureEndpoint:         "https://example.openai.azure.com",
			AzureAPIKey:           "secret",
			AzureDeployment:       "gpt",
			RAGTopK:               5,
			RAGSearchType:         SearchHybrid,
			SnippetMaxChars:       2000,
			MaxTokens:             100,
			Temperature:           0.5,
			HistoryLimit:          10,
			RequestTimeoutSeconds: 30,
			MaxRetries:            3,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *AppConfig)
		wantSetting string
	}{
		{name: "valid", mutate: func(c *AppConfig) {}},
		{name: "missing endpoint", mutate: func(c *AppConfig) { c.AzureEndpoint = "" }, wantSetting: "AZURE_OPENAI_ENDPOINT"},
		{name: "missing key", mutate: func(c *AppConfig) { c.AzureAPIKey = " " }, wantSetting: "AZURE_OPENAI_API_KEY"},
		{name: "missing deployment", mutate: func(c *AppConfig) { c.AzureDeployment = "" }, wantSetting: "AZURE_OPENAI_DEPLOYMENT"},
		{name: "demo needs nothing", mutate: func(c *AppConfig) {
			c.Provider = ProviderDemo
			c.AzureEndpoint, c.AzureAPIKey, c.AzureDeployment = "", "", ""
		}},
		{name: "openai needs model", mutate: func(c *AppConfig) {
			c.Provider = ProviderOpenAI
			c.OpenAIBaseURL = "http://localhost:8080"
			c.OpenAIAPIKey = "k"
		}, wantSetting: "OPENAI_MODEL"},
		{name: "unknown provider", mutate: func(c *AppConfig) { c.Provider = "bard" }, wantSetting: "LLM_PROVIDER"},
		{name: "rag without index", mutate: func(c *AppConfig) {
			c.EnableRAG = true
			c.SearchEndpoint = "https://search.example.net"
			c.SearchKey = "k"
		}, wantSetting: "AZURE_SEARCH_INDEX"},
		{name: "zero max tokens", mutate: func(c *AppConfig) { c.MaxTokens = 0 }, wantSetting: "MAX_TOKENS"},
		{name: "temperature above one", mutate: func(c *AppConfig) { c.Temperature = 1.5 }, wantSetting: "TEMPERATURE"},
		{name: "negative temperature", mutate: func(c *AppConfig) { c.Temperature = -0.1 }, wantSetting: "TEMPERATURE"},
		{name: "zero history limit", mutate: func(c *AppConfig) { c.HistoryLimit = 0 }, wantSetting: "CONVERSATION_HISTORY_LIMIT"},
		{name: "negative top k", mutate: func(c *AppConfig) { c.RAGTopK = -1 }, wantSetting: "RAG_TOP_K"},
		{name: "negative retries", mutate: func(c *AppConfig) { c.MaxRetries = -1 }, wantSetting: "MAX_RETRIES"},
		{name: "negative idle ttl", mutate: func(c *AppConfig) { c.SessionIdleTTL = -time.Minute }, wantSetting: "SESSION_IDLE_TTL"},
		{name: "negative session cap", mutate: func(c *AppConfig) { c.MaxSessions = -1 }, wantSetting: "MAX_SESSIONS"},
		{name: "unknown search type", mutate: func(c *AppConfig) { c.RAGSearchType = "fuzzy" }, wantSetting: "RAG_SEARCH_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()

			if tt.wantSetting == "" {
				require.NoError(t, err)
				return
			}

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %v", err)
			assert.Equal(t, tt.wantSetting, cfgErr.Setting)
		})
	}
}

func TestLoadAppConfig_MissingRequired(t *testing.T) {
	t.Setenv("CHAT_RUNTIME_PATH", t.TempDir())
	t.Setenv("LLM_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "")

	_, err := LoadAppConfig()

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")
}

func TestLoadAppConfig_BadNumber(t *testing.T) {
	setAzureEnv(t)
	t.Setenv("MAX_TOKENS", "lots")

	_, err := LoadAppConfig()

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
}
