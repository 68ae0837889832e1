package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/chatassist/internal/config"
	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/internal/service/conversation"
	"github.com/sandevgo/chatassist/pkg/log"
)

const apology = "I apologize, but I couldn't generate a response."

var ErrEmptyMessage = errors.New("message cannot be empty")

type PromptBuilder interface {
	Build() string
}

// Agent runs one user turn end to end: store, retrieve, complete, store.
type Agent struct {
	appCfg    *config.AppConfig
	ai        core.Completer
	retriever core.Retriever
	prompt    PromptBuilder
	sessions  *conversation.Sessions
	archive   core.TranscriptRepository
	tokens    core.TokenCounter
}

// NewAgent wires the agent. archive and tokens are optional and may be nil.
func NewAgent(
	appCfg *config.AppConfig,
	ai core.Completer,
	retriever core.Retriever,
	prompt PromptBuilder,
	archive core.TranscriptRepository,
	tokens core.TokenCounter,
) *Agent {
	sessions := conversation.NewSessions(
		appCfg.HistoryLimit,
		conversation.WithIdleTTL(appCfg.SessionIdleTTL),
		conversation.WithMaxSessions(appCfg.MaxSessions),
	)
	return &Agent{
		appCfg:    appCfg,
		ai:        ai,
		retriever: retriever,
		prompt:    prompt,
		sessions:  sessions,
		archive:   archive,
		tokens:    tokens,
	}
}

func (a *Agent) Run(ctx context.Context, sessionID string, input string) (core.CompletionResult, error) {
	logger := log.FromCtx(ctx)

	input = strings.TrimSpace(input)
	if input == "" {
		return core.CompletionResult{}, ErrEmptyMessage
	}

	store := a.sessions.Get(sessionID)
	userTurn := core.NewTurn(core.RoleUser, input)
	store.Append(userTurn)
	turns := store.Snapshot()

	snippets := a.retrieve(ctx, input)

	req := core.CompletionRequest{
		SystemPrompt: a.prompt.Build(),
		Snippets:     snippets,
		Turns:        turns,
		MaxTokens:    a.appCfg.MaxTokens,
		Temperature:  a.appCfg.Temperature,
	}

	logger.Info().
		Str("session", sessionID).
		Int("turns", len(turns)).
		Int("snippets", len(snippets)).
		Int("chars", len(input)).
		Msg("sending completion request")

	res, err := a.ai.Complete(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("session", sessionID).Msg("completion failed")
		return core.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	res.Text = strings.TrimSpace(res.Text)
	if res.Text == "" {
		res.Text = apology
	}
	if res.Model == "" {
		res.Model = a.appCfg.GetModel()
	}
	if res.Usage.TotalTokens == 0 && a.tokens != nil {
		res.Usage = a.estimateUsage(req, res.Text)
	}

	replyTurn := core.NewTurn(core.RoleAssistant, res.Text)
	store.Append(replyTurn)

	a.archiveTurns(ctx, sessionID, userTurn, replyTurn)
	return res, nil
}

func (a *Agent) retrieve(ctx context.Context, query string) []core.Snippet {
	if !a.appCfg.EnableRAG || a.appCfg.RAGTopK == 0 {
		return nil
	}

	snippets, err := a.retriever.Retrieve(ctx, query, a.appCfg.RAGTopK)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("retrieval failed, answering without context")
		return nil
	}
	return snippets
}

func (a *Agent) archiveTurns(ctx context.Context, sessionID string, turns ...core.Turn) {
	if a.archive == nil {
		return
	}
	for _, t := range turns {
		if err := a.archive.AddTurn(ctx, sessionID, t); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to archive turn")
			return
		}
	}
}

func (a *Agent) estimateUsage(req core.CompletionRequest, reply string) core.Usage {
	prompt := a.tokens.Count(req.SystemPrompt)
	for _, s := range req.Snippets {
		prompt += a.tokens.Count(s.Text)
	}
	for _, t := range req.Turns {
		prompt += a.tokens.Count(t.Text)
	}
	completion := a.tokens.Count(reply)
	return core.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// Clear destroys the session's store. The next turn starts a fresh one.
func (a *Agent) Clear(sessionID string) {
	a.sessions.End(sessionID)
}

func (a *Agent) History(sessionID string) []core.Turn {
	if st, ok := a.sessions.Peek(sessionID); ok {
		return st.Snapshot()
	}
	return []core.Turn{}
}

func (a *Agent) Status(sessionID string) core.Status {
	st := core.Status{
		Title:        a.appCfg.AppTitle,
		Provider:     a.appCfg.Provider,
		Model:        a.appCfg.GetModel(),
		Temperature:  a.appCfg.Temperature,
		MaxTokens:    a.appCfg.MaxTokens,
		HistoryLimit: a.appCfg.HistoryLimit,
		RAGEnabled:   a.appCfg.EnableRAG,
		DemoMode:     a.appCfg.Provider == config.ProviderDemo,
	}
	if st.RAGEnabled {
		st.SearchIndex = a.appCfg.SearchIndex
		st.SearchType = a.appCfg.RAGSearchType
	}

	if store, ok := a.sessions.Peek(sessionID); ok {
		st.Messages, st.TotalChars = store.Stats()
		if a.tokens != nil {
			for _, t := range store.Snapshot() {
				st.EstimatedToken += a.tokens.Count(t.Text)
			}
		} else {
			st.EstimatedToken = st.TotalChars / 4
		}
	}
	return st
}
