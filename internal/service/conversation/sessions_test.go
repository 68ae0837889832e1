package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/chatassist/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedSessions(clock *fakeClock, opts ...Option) *Sessions {
	s := NewSessions(4, opts...)
	s.now = clock.now
	return s
}

func TestSessions_IdleStoresAreReclaimed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newClockedSessions(clock, WithIdleTTL(time.Hour))

	s.Get("old").Append(core.NewTurn(core.RoleUser, "hi"))
	clock.advance(30 * time.Minute)
	s.Get("fresh")
	assert.Equal(t, 2, s.Len())

	clock.advance(45 * time.Minute)
	_, ok := s.Peek("old")
	assert.False(t, ok, "idle store must not be visible")
	assert.Equal(t, 1, s.Len())

	// a returning session starts over
	assert.Zero(t, s.Get("old").Len())
}

func TestSessions_GetRefreshesIdleTimer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newClockedSessions(clock, WithIdleTTL(time.Hour))

	st := s.Get("a")
	for i := 0; i < 5; i++ {
		clock.advance(50 * time.Minute)
		require.Same(t, st, s.Get("a"))
	}
}

func TestSessions_CapEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newClockedSessions(clock, WithMaxSessions(3))

	for _, id := range []string{"a", "b", "c"} {
		s.Get(id)
		clock.advance(time.Second)
	}
	s.Get("a")
	clock.advance(time.Second)

	s.Get("d")

	assert.Equal(t, 3, s.Len())
	_, ok := s.Peek("b")
	assert.False(t, ok, "least recently used store is evicted")
	for _, id := range []string{"a", "c", "d"} {
		_, ok := s.Peek(id)
		assert.True(t, ok, id)
	}
}

func TestSessions_ManyDistinctIDsStayBounded(t *testing.T) {
	s := NewSessions(4, WithMaxSessions(100))
	for i := 0; i < 1000; i++ {
		s.Get(fmt.Sprintf("visitor-%d", i))
	}
	assert.Equal(t, 100, s.Len())
}
