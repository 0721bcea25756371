package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/requestcontext"
)

// Justification: the version check and TTL expiry are what the journey
// service relies on to reject lost updates; handler tests do not reach them.
type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory(WithMemoryTTL(time.Minute))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newState() models.AuthenticationState {
	return models.NewAuthenticationState(id.NewJourneyID(), models.OAuthContext{ClientID: "client"}, "https://client.example/cb", s.now)
}

// =============================================================================
// Load / Save
// =============================================================================

func (s *InMemoryStoreSuite) TestSaveAndLoad() {
	s.Run("new journey is saved at version 1", func() {
		saved, err := s.store.Save(s.ctx, s.newState())
		s.Require().NoError(err)
		s.Equal(int64(1), saved.Version)

		loaded, err := s.store.Load(s.ctx, saved.JourneyID)
		s.Require().NoError(err)
		s.Equal(saved, loaded)
	})

	s.Run("unknown journey is not found", func() {
		_, err := s.store.Load(s.ctx, id.NewJourneyID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("loaded copy is independent of later saves", func() {
		saved, err := s.store.Save(s.ctx, s.newState())
		s.Require().NoError(err)

		next, err := s.store.Save(s.ctx, saved.OnEmailSet("a@example.org"))
		s.Require().NoError(err)
		s.Equal(int64(2), next.Version)
		s.Empty(saved.EmailAddress)
	})
}

// =============================================================================
// Optimistic concurrency
// =============================================================================

func (s *InMemoryStoreSuite) TestStaleVersion() {
	saved, err := s.store.Save(s.ctx, s.newState())
	s.Require().NoError(err)

	_, err = s.store.Save(s.ctx, saved.OnEmailSet("first@example.org"))
	s.Require().NoError(err)

	_, err = s.store.Save(s.ctx, saved.OnEmailSet("second@example.org"))
	s.ErrorIs(err, sentinel.ErrStaleVersion)

	loaded, err := s.store.Load(s.ctx, saved.JourneyID)
	s.Require().NoError(err)
	s.Equal("first@example.org", loaded.EmailAddress)
}

func (s *InMemoryStoreSuite) TestSaveOfUnknownJourneyAtHigherVersionIsStale() {
	st := s.newState()
	st.Version = 3
	_, err := s.store.Save(s.ctx, st)
	s.ErrorIs(err, sentinel.ErrStaleVersion)
}

// =============================================================================
// Expiry
// =============================================================================

func (s *InMemoryStoreSuite) TestExpiry() {
	saved, err := s.store.Save(s.ctx, s.newState())
	s.Require().NoError(err)

	s.Run("each save extends the lifetime", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(50*time.Second))
		saved, err = s.store.Save(later, saved)
		s.Require().NoError(err)

		_, err = s.store.Load(requestcontext.WithTime(context.Background(), s.now.Add(90*time.Second)), saved.JourneyID)
		s.NoError(err)
	})

	s.Run("idle journey expires", func() {
		expired := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Minute))
		_, err := s.store.Load(expired, saved.JourneyID)
		s.ErrorIs(err, sentinel.ErrExpired)

		_, err = s.store.Load(expired, saved.JourneyID)
		s.ErrorIs(err, sentinel.ErrNotFound, "expired entries are dropped")
	})
}
