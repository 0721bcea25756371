//go:build integration

package state_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"teacherid/internal/signin/models"
	"teacherid/internal/signin/store/state"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *state.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = state.NewRedis(s.redis.Client, state.WithTTL(time.Hour))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func newState() models.AuthenticationState {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return models.NewAuthenticationState(id.NewJourneyID(), models.OAuthContext{
		ClientID:       "client",
		Scopes:         []string{models.ScopeTrn},
		TrnRequirement: models.TrnRequirementRequired,
	}, "https://client.example/cb", started)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	st := newState().
		OnEmailSet("a@example.org").
		OnEmailVerified(nil).
		OnDateOfBirthSet(dob).
		OnHasTrnSet(true).
		OnTrnSet("1234567")

	saved, err := s.store.Save(ctx, st)
	s.Require().NoError(err)
	s.Equal(int64(1), saved.Version)

	loaded, err := s.store.Load(ctx, st.JourneyID)
	s.Require().NoError(err)
	s.Equal(saved.JourneyID, loaded.JourneyID)
	s.Equal(saved.OAuth, loaded.OAuth)
	s.True(loaded.EmailAddressVerified)
	s.Require().NotNil(loaded.DateOfBirth)
	s.True(dob.Equal(*loaded.DateOfBirth))
	s.Require().NotNil(loaded.HasTrn)
	s.True(*loaded.HasTrn)
	s.Equal("1234567", loaded.StatedTrn)
	s.Nil(loaded.AwardedQts, "unanswered questions stay nil")
}

func (s *RedisStoreSuite) TestNotFound() {
	_, err := s.store.Load(context.Background(), id.NewJourneyID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestStaleVersion() {
	ctx := context.Background()
	saved, err := s.store.Save(ctx, newState())
	s.Require().NoError(err)

	_, err = s.store.Save(ctx, saved.OnEmailSet("first@example.org"))
	s.Require().NoError(err)

	_, err = s.store.Save(ctx, saved.OnEmailSet("second@example.org"))
	s.ErrorIs(err, sentinel.ErrStaleVersion)
}

// TestConcurrentSaves verifies that exactly one of several writers holding
// the same version wins.
func (s *RedisStoreSuite) TestConcurrentSaves() {
	ctx := context.Background()
	saved, err := s.store.Save(ctx, newState())
	s.Require().NoError(err)

	const writers = 10
	var wg sync.WaitGroup
	var wins, stale, other atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Save(ctx, saved.OnMobileNumberSet("07700900000"))
			switch {
			case err == nil:
				wins.Add(1)
			case err == sentinel.ErrStaleVersion:
				stale.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one save should win")
	s.Equal(int32(writers-1), stale.Load())
	s.Equal(int32(0), other.Load())
}

func (s *RedisStoreSuite) TestTTL() {
	ctx := context.Background()
	store := state.NewRedis(s.redis.Client, state.WithTTL(10*time.Minute))
	saved, err := store.Save(ctx, newState())
	s.Require().NoError(err)

	ttl, err := s.redis.Client.TTL(ctx, "signin:journey:"+saved.JourneyID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 9*time.Minute)
	s.LessOrEqual(ttl, 10*time.Minute)
}
