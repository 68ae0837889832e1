package conversation

import (
	"sync"
	"time"
)

// Sessions maps session ids to their stores. Each front-end conversation
// (browser cookie, Telegram chat, terminal) gets its own id.
//
// Stores idle for longer than the idle TTL are dropped, and once maxLive
// stores exist the least recently used one is evicted to make room. A zero
// TTL or cap disables that bound.
type Sessions struct {
	mu      sync.Mutex
	limit   int
	idleTTL time.Duration
	maxLive int
	now     func() time.Time
	stores  map[string]*session
}

type session struct {
	store    *Store
	lastUsed time.Time
}

type Option func(*Sessions)

func WithIdleTTL(d time.Duration) Option {
	return func(s *Sessions) { s.idleTTL = d }
}

func WithMaxSessions(n int) Option {
	return func(s *Sessions) { s.maxLive = n }
}

func NewSessions(limit int, opts ...Option) *Sessions {
	s := &Sessions{
		limit:  limit,
		now:    time.Now,
		stores: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the store for id, creating an empty one on first use.
func (s *Sessions) Get(id string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.stores[id]; ok && !s.expired(sess, now) {
		sess.lastUsed = now
		return sess.store
	}

	s.sweep(now)
	if s.maxLive > 0 {
		for len(s.stores) >= s.maxLive {
			s.evictOldest()
		}
	}

	sess := &session{store: NewStore(s.limit), lastUsed: now}
	s.stores[id] = sess
	return sess.store
}

// Peek returns the store for id without creating it or refreshing its idle
// timer.
func (s *Sessions) Peek(id string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.stores[id]
	if !ok || s.expired(sess, s.now()) {
		return nil, false
	}
	return sess.store, true
}

// End destroys the store for id.
func (s *Sessions) End(id string) {
	s.mu.Lock()
	delete(s.stores, id)
	s.mu.Unlock()
}

// Len reports the number of live stores.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.stores)
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(sess.lastUsed) > s.idleTTL
}

func (s *Sessions) sweep(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, sess := range s.stores {
		if s.expired(sess, now) {
			delete(s.stores, id)
		}
	}
}

func (s *Sessions) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
		found    bool
	)
	for id, sess := range s.stores {
		if !found || sess.lastUsed.Before(oldest) {
			oldestID, oldest, found = id, sess.lastUsed, true
		}
	}
	if found {
		delete(s.stores, oldestID)
	}
}
