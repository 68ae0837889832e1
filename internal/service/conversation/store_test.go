package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(turns []core.Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Text
	}
	return out
}

func TestStore_Append(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		in    []string
		want  []string
	}{
		{name: "under limit", limit: 5, in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "at limit", limit: 2, in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "drops oldest", limit: 2, in: []string{"a", "b", "c"}, want: []string{"b", "c"}},
		{name: "limit one", limit: 1, in: []string{"a", "b", "c"}, want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.limit)
			for _, text := range tt.in {
				s.Append(core.NewTurn(core.RoleUser, text))
				assert.LessOrEqual(t, s.Len(), tt.limit)
			}
			assert.Equal(t, tt.want, texts(s.Snapshot()))
		})
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(3)
	s.Append(core.NewTurn(core.RoleUser, "a"))

	snap := s.Snapshot()
	snap[0].Text = "changed"

	assert.Equal(t, "a", s.Snapshot()[0].Text)
}

func TestStore_ClearAndStats(t *testing.T) {
	s := NewStore(3)
	s.Append(core.NewTurn(core.RoleUser, "héllo"))
	s.Append(core.NewTurn(core.RoleAssistant, "hi"))

	turns, chars := s.Stats()
	assert.Equal(t, 2, turns)
	assert.Equal(t, 7, chars)

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Snapshot())
}

func TestNewStore_InvalidLimit(t *testing.T) {
	assert.Panics(t, func() { NewStore(0) })
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(core.NewTurn(core.RoleUser, fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, s.Len())
}

func TestSessions(t *testing.T) {
	sessions := NewSessions(2)

	a := sessions.Get("a")
	a.Append(core.NewTurn(core.RoleUser, "x"))
	require.Same(t, a, sessions.Get("a"))

	b := sessions.Get("b")
	assert.Zero(t, b.Len())
	assert.Equal(t, 2, sessions.Len())
	assert.Equal(t, 2, b.Limit())

	_, ok := sessions.Peek("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, sessions.Len())

	sessions.End("a")
	assert.Equal(t, 1, sessions.Len())
	assert.Zero(t, sessions.Get("a").Len())
}
