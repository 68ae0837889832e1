package conversation

import (
	"sync"

	"github.com/sandevgo/chatassist/internal/core"
)

// Store holds one session's turns in order, capped at limit. When an append
// pushes it over the cap the oldest turns are dropped.
type Store struct {
	mu    sync.RWMutex
	limit int
	turns []core.Turn
}

// NewStore panics on a non-positive limit; config validation rules that out.
func NewStore(limit int) *Store {
	if limit <= 0 {
		panic("conversation: limit must be positive")
	}
	return &Store{limit: limit}
}

func (s *Store) Append(turn core.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turn)
	if over := len(s.turns) - s.limit; over > 0 {
		// copy so the dropped prefix can be collected
		s.turns = append([]core.Turn(nil), s.turns[over:]...)
	}
}

// Snapshot returns a copy of the turns, oldest first.
func (s *Store) Snapshot() []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.turns = nil
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

func (s *Store) Limit() int {
	return s.limit
}

// Stats reports the turn count and the total characters across all turns.
func (s *Store) Stats() (turns, chars int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.turns {
		chars += len([]rune(t.Text))
	}
	return len(s.turns), chars
}
