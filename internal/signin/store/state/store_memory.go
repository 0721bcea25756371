package state

import (
	"context"
	"sync"
	"time"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/requestcontext"
)

type entry struct {
	state   models.AuthenticationState
	expires time.Time
}

// InMemoryStore keeps journeys in process. Expired entries are dropped on
// access.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[id.JourneyID]entry
	ttl     time.Duration
}

type MemoryOption func(*InMemoryStore)

func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.JourneyID]entry),
		ttl:     DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Load(ctx context.Context, journeyID id.JourneyID) (models.AuthenticationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[journeyID]
	if !ok {
		return models.AuthenticationState{}, sentinel.ErrNotFound
	}
	if !requestcontext.Now(ctx).Before(e.expires) {
		delete(s.entries, journeyID)
		return models.AuthenticationState{}, sentinel.ErrExpired
	}
	return e.state, nil
}

func (s *InMemoryStore) Save(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := requestcontext.Now(ctx)
	current := int64(0)
	if e, ok := s.entries[st.JourneyID]; ok && now.Before(e.expires) {
		current = e.state.Version
	}
	if current != st.Version {
		return models.AuthenticationState{}, sentinel.ErrStaleVersion
	}

	st.Version++
	s.entries[st.JourneyID] = entry{state: st, expires: now.Add(s.ttl)}
	return st, nil
}
