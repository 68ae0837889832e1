package core

import (
	"context"
	"time"
)

type TranscriptRepository interface {
	AddTurn(ctx context.Context, sessionID string, turn Turn) error
	GetTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
}

type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	LastTurn  time.Time `json:"last_turn"`
}
