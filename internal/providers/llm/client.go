package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
	"github.com/sandevgo/chatassist/pkg/retry"
)

type ClientConfig struct {
	Timeout         time.Duration
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	Jitter          time.Duration
	SnippetMaxChars int
}

// Client wraps a Sender with request validation, prompt assembly, a
// per-attempt timeout and bounded retry of transient failures.
type Client struct {
	sender Sender
	cfg    ClientConfig
}

func NewClient(sender Sender, cfg ClientConfig) *Client {
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return &Client{sender: sender, cfg: cfg}
}

func (c *Client) Model() string {
	return c.sender.Model()
}

func (c *Client) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	if len(req.Turns) == 0 {
		return core.CompletionResult{}, &CompletionError{Kind: KindBadRequest, Err: errors.New("no conversation turns")}
	}
	if req.MaxTokens <= 0 {
		return core.CompletionResult{}, &CompletionError{Kind: KindBadRequest, Err: fmt.Errorf("max tokens must be positive, got %d", req.MaxTokens)}
	}

	logger := log.FromCtx(ctx)
	messages := BuildMessages(req, c.cfg.SnippetMaxChars)

	retrier := retry.NewRetrier(&retry.Config{
		MaxRetries:    c.cfg.MaxRetries,
		BackoffFactor: 2,
		InitialDelay:  c.cfg.BaseDelay,
		MaxDelay:      c.cfg.MaxDelay,
		Jitter:        c.cfg.Jitter,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn().Err(err).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("completion attempt failed, retrying")
		},
	})

	var (
		result   core.CompletionResult
		lastErr  *CompletionError
		attempts int
	)

	err := retrier.Do(ctx, func() error {
		attempts++
		res, err := c.attempt(ctx, messages, req)
		if err == nil {
			result = res
			return nil
		}

		lastErr = asCompletionError(err)
		if !lastErr.Kind.Transient() {
			return retry.Permanent(lastErr)
		}
		return lastErr
	})
	if err == nil {
		logger.Debug().
			Int("attempts", attempts).
			Int("total_tokens", result.Usage.TotalTokens).
			Msg("completion received")
		return result, nil
	}

	if lastErr == nil {
		return core.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}
	lastErr.Attempts = attempts
	return core.CompletionResult{}, lastErr
}

// attempt bounds a single send by the configured timeout. A deadline hit
// inside the attempt is a timeout even if the sender reported it differently.
func (c *Client) attempt(ctx context.Context, messages []Message, req core.CompletionRequest) (core.CompletionResult, error) {
	actx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	res, err := c.sender.Send(actx, messages, req.MaxTokens, req.Temperature)
	if err != nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		return res, &CompletionError{Kind: KindTimeout, Err: err}
	}
	return res, err
}

func asCompletionError(err error) *CompletionError {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce
	}
	return newTransportError(err)
}
