package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *TranscriptRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTranscriptRepo(db)
}

func TestTranscriptRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	turns := []core.Turn{
		{Role: core.RoleUser, Text: "Hi", Timestamp: base},
		{Role: core.RoleAssistant, Text: "Hello", Timestamp: base.Add(time.Second)},
		{Role: core.RoleUser, Text: "How are you?", Timestamp: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		require.NoError(t, repo.AddTurn(ctx, "s1", turn))
	}
	require.NoError(t, repo.AddTurn(ctx, "s2", core.Turn{Role: core.RoleUser, Text: "other", Timestamp: base.Add(time.Hour)}))

	got, err := repo.GetTurns(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Hi", got[0].Text)
	assert.Equal(t, core.RoleAssistant, got[1].Role)
	assert.True(t, got[2].Timestamp.Equal(base.Add(2*time.Second)))

	last, err := repo.GetTurns(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "Hello", last[0].Text)

	sessions, err := repo.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].SessionID)
	assert.Equal(t, 1, sessions[0].Turns)
	assert.Equal(t, "s1", sessions[1].SessionID)
	assert.Equal(t, 3, sessions[1].Turns)
}

func TestTranscriptRepo_Empty(t *testing.T) {
	repo := newTestRepo(t)

	turns, err := repo.GetTurns(context.Background(), "none", 5)
	require.NoError(t, err)
	assert.Empty(t, turns)

	sessions, err := repo.ListSessions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
