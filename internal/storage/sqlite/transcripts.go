package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/sandevgo/chatassist/pkg/log"
)

// TranscriptRepo is the append-only archive of finished exchanges. The live
// conversation never reads from it.
type TranscriptRepo struct {
	db *sql.DB
}

func NewTranscriptRepo(db *sql.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

func (r *TranscriptRepo) AddTurn(ctx context.Context, sessionID string, turn core.Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `INSERT INTO transcripts (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, sessionID, string(turn.Role), turn.Text, ts.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// GetTurns returns the last limit turns of a session, oldest first.
func (r *TranscriptRepo) GetTurns(ctx context.Context, sessionID string, limit int) ([]core.Turn, error) {
	query := `SELECT role, content, created_at FROM transcripts WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var (
			role, content string
			created       int64
		)
		if err := rows.Scan(&role, &content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, core.Turn{
			Role:      core.Role(role),
			Text:      content,
			Timestamp: time.UnixMilli(created),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from the query, flip to chronological
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded transcript turns")
	return turns, nil
}

// ListSessions returns the most recently active sessions first.
func (r *TranscriptRepo) ListSessions(ctx context.Context, limit int) ([]core.SessionSummary, error) {
	query := `SELECT session_id, COUNT(*), MAX(created_at) FROM transcripts
		GROUP BY session_id ORDER BY MAX(created_at) DESC, session_id LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []core.SessionSummary
	for rows.Next() {
		var (
			s    core.SessionSummary
			last int64
		)
		if err := rows.Scan(&s.SessionID, &s.Turns, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.LastTurn = time.UnixMilli(last)
		out = append(out, s)
	}
	return out, rows.Err()
}
