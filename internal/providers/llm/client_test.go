package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"model": "gpt-4o-mini",
	"choices": [{"message": {"role": "assistant", "content": "I'm well"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
}`

func testClient(t *testing.T, handler http.HandlerFunc, maxRetries int, timeout time.Duration) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sender := NewAzure(AzureConfig{
		Endpoint:   srv.URL,
		APIKey:     "test-key",
		Deployment: "chat",
		APIVersion: "2024-02-01",
	})
	return NewClient(sender, ClientConfig{
		Timeout:         timeout,
		MaxRetries:      maxRetries,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		SnippetMaxChars: 2000,
	}), &calls
}

func userRequest(text string) core.CompletionRequest {
	return core.CompletionRequest{
		SystemPrompt: "be helpful",
		Turns:        []core.Turn{core.NewTurn(core.RoleUser, text)},
		MaxTokens:    100,
		Temperature:  0.7,
	}
}

func TestClient_Complete_Success(t *testing.T) {
	var got struct {
		Messages    []Message `json:"messages"`
		MaxTokens   int       `json:"max_tokens"`
		Temperature float64   `json:"temperature"`
		Stream      bool      `json:"stream"`
	}

	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/chat/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(okBody))
	}, 3, time.Second)

	res, err := client.Complete(context.Background(), userRequest("How are you?"))
	require.NoError(t, err)

	assert.Equal(t, "I'm well", res.Text)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.Equal(t, "stop", res.FinishReason)
	assert.Equal(t, 15, res.Usage.TotalTokens)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "be helpful"}, got.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "How are you?"}, got.Messages[1])
	assert.Equal(t, 100, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.False(t, got.Stream)
}

func TestClient_Complete_Retries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantKind  Kind
		wantCalls int32
		wantIs    error
	}{
		{name: "server error retried", status: http.StatusInternalServerError, wantKind: KindServer, wantCalls: 4, wantIs: ErrTransient},
		{name: "bad gateway retried", status: http.StatusBadGateway, wantKind: KindServer, wantCalls: 4, wantIs: ErrTransient},
		{name: "rate limit retried", status: http.StatusTooManyRequests, wantKind: KindRateLimit, wantCalls: 4, wantIs: ErrTransient},
		{name: "unauthorized fatal", status: http.StatusUnauthorized, wantKind: KindAuth, wantCalls: 1, wantIs: ErrFatal},
		{name: "forbidden fatal", status: http.StatusForbidden, wantKind: KindAuth, wantCalls: 1, wantIs: ErrFatal},
		{name: "not found fatal", status: http.StatusNotFound, wantKind: KindNotFound, wantCalls: 1, wantIs: ErrFatal},
		{name: "bad request fatal", status: http.StatusBadRequest, wantKind: KindBadRequest, wantCalls: 1, wantIs: ErrFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			}, 3, time.Second)

			_, err := client.Complete(context.Background(), userRequest("hi"))
			require.Error(t, err)

			var ce *CompletionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.Equal(t, tt.status, ce.StatusCode)
			assert.EqualValues(t, tt.wantCalls, ce.Attempts)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.EqualValues(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestClient_Complete_RecoversAfterTransientFailures(t *testing.T) {
	var n int32
	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okBody))
	}, 3, time.Second)

	res, err := client.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "I'm well", res.Text)
	assert.EqualValues(t, 3, atomic.LoadInt32(calls))
}

func TestClient_Complete_ZeroRetries(t *testing.T) {
	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 0, time.Second)

	_, err := client.Complete(context.Background(), userRequest("hi"))
	assert.ErrorIs(t, err, ErrTransient)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestClient_Complete_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "no choices", body: `{"choices": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, 3, time.Second)

			_, err := client.Complete(context.Background(), userRequest("hi"))
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrTransient)
			assert.NotErrorIs(t, err, ErrFatal)
			assert.EqualValues(t, 1, atomic.LoadInt32(calls))
		})
	}
}

func TestClient_Complete_NullContent(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null},"finish_reason":"content_filter"}]}`))
	}, 0, time.Second)

	res, err := client.Complete(context.Background(), userRequest("hi"))
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Equal(t, "content_filter", res.FinishReason)
	assert.Equal(t, "chat", res.Model)
}

func TestClient_Complete_PerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 1, 20*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), userRequest("hi"))

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTimeout, ce.Kind)
	assert.ErrorIs(t, err, ErrTransient)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Complete_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: url, Model: "m"}), ClientConfig{
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
	})

	_, err := client.Complete(context.Background(), userRequest("hi"))

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindConnection, ce.Kind)
	assert.Equal(t, 2, ce.Attempts)
}

func TestKindForTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "caller canceled", err: fmt.Errorf("request: %w", context.Canceled), want: KindCanceled},
		{name: "deadline", err: fmt.Errorf("request: %w", context.DeadlineExceeded), want: KindTimeout},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: KindConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindForTransport(tt.err))
		})
	}
}

func TestClient_Complete_CallerCancelIsNotRetried(t *testing.T) {
	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 3, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := client.Complete(ctx, userRequest("hi"))

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindCanceled, ce.Kind)
	assert.Equal(t, 1, ce.Attempts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestClient_Complete_Validation(t *testing.T) {
	client, calls := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okBody))
	}, 3, time.Second)

	empty := userRequest("hi")
	empty.Turns = nil
	_, err := client.Complete(context.Background(), empty)
	assert.ErrorIs(t, err, ErrFatal)

	noTokens := userRequest("hi")
	noTokens.MaxTokens = 0
	_, err = client.Complete(context.Background(), noTokens)
	assert.ErrorIs(t, err, ErrFatal)

	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestOpenAICompatible_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "local-model", payload["model"])
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	sender := NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "local-model"})
	res, err := sender.Send(context.Background(), []Message{{Role: "user", Content: "hi"}}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "I'm well", res.Text)
}

func TestAzure_EncodeQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/embed/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	a := NewAzure(AzureConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "chat", EmbeddingDeployment: "embed", APIVersion: "2024-02-01"})
	vec, err := a.EncodeQuery(context.Background(), "deploy steps")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	client := NewClient(a, ClientConfig{})
	assert.NotNil(t, client.Embedder())
}

func TestCompletionError_Is(t *testing.T) {
	for _, k := range []Kind{KindTimeout, KindConnection, KindServer, KindRateLimit} {
		err := error(&CompletionError{Kind: k})
		assert.True(t, errors.Is(err, ErrTransient), k.String())
		assert.False(t, errors.Is(err, ErrFatal), k.String())
	}
	for _, k := range []Kind{KindAuth, KindNotFound, KindBadRequest, KindCanceled} {
		err := error(&CompletionError{Kind: k})
		assert.True(t, errors.Is(err, ErrFatal), k.String())
		assert.False(t, errors.Is(err, ErrTransient), k.String())
	}
}
