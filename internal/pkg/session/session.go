package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

var ErrNotFound = errors.New("session not found")

// Session is one live entry of a Store.
type Session[T any] struct {
	ID        string
	Owner     string
	Value     T
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store keeps in-process sessions keyed by a random id and scoped to an
// owner. Lookups with a different owner behave as if the session is absent.
type Store[T any] struct {
	mu       sync.RWMutex
	sessions map[string]*Session[T]
	now      func() time.Time
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		sessions: make(map[string]*Session[T]),
		now:      time.Now,
	}
}

// Issue registers value under a fresh id.
func (s *Store[T]) Issue(owner string, value T) *Session[T] {
	now := s.now()
	sess := &Session[T]{
		ID:        uuid.NewString(),
		Owner:     strings.TrimSpace(owner),
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session and marks it as used.
func (s *Store[T]) Get(owner, id string) (*Session[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	if !ok || sess.Owner != strings.TrimSpace(owner) {
		return nil, ErrNotFound
	}
	sess.UpdatedAt = s.now()
	return sess, nil
}

func (s *Store[T]) Revoke(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	if !ok || sess.Owner != strings.TrimSpace(owner) {
		return ErrNotFound
	}
	delete(s.sessions, sess.ID)
	return nil
}

// ListActive returns the owner's sessions, most recently used first.
func (s *Store[T]) ListActive(owner string) []*Session[T] {
	owner = strings.TrimSpace(owner)
	s.mu.RLock()
	out := make([]*Session[T], 0)
	for _, sess := range s.sessions {
		if sess.Owner == owner {
			out = append(out, sess)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Each calls fn for every live session. fn must not call back into the store.
func (s *Store[T]) Each(fn func(*Session[T])) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		fn(sess)
	}
}

// EvictIdle drops sessions not used within ttl and returns how many went.
func (s *Store[T]) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cutoff := s.now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
