//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"teacherid/internal/signin/models"
	"teacherid/internal/signin/store/user"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.PostgresStore
	dob      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(user.Migrate(context.Background(), s.postgres.Pool))
	s.store = user.NewPostgres(s.postgres.Pool)
	s.dob = time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "trn_tokens", "users"))
}

func (s *PostgresStoreSuite) newUser(email, trn string) models.NewUser {
	return models.NewUser{
		EmailAddress:    email,
		FirstName:       "Jo",
		LastName:        "Bloggs",
		DateOfBirth:     &s.dob,
		Trn:             trn,
		TrnLookupStatus: models.TrnLookupStatusFound,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u, err := s.store.CreateUserWithTrn(ctx, s.newUser("jo@example.org", "1234567"))
	s.Require().NoError(err)

	byTrn, err := s.store.FindByTrn(ctx, "1234567")
	s.Require().NoError(err)
	s.Equal(u.ID, byTrn.ID)
	s.Require().NotNil(byTrn.DateOfBirth)
	s.True(s.dob.Equal(*byTrn.DateOfBirth))

	byEmail, err := s.store.FindByEmail(ctx, "JO@example.org")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)

	_, err = s.store.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestTrnUniqueness() {
	ctx := context.Background()
	_, err := s.store.CreateUserWithTrn(ctx, s.newUser("first@example.org", "1234567"))
	s.Require().NoError(err)

	_, err = s.store.CreateUserWithTrn(ctx, s.newUser("second@example.org", "1234567"))
	s.ErrorIs(err, models.ErrTrnAlreadyAssigned)

	s.Run("accounts without a trn do not collide", func() {
		_, err := s.store.CreateUser(ctx, s.newUser("a@example.org", ""))
		s.Require().NoError(err)
		_, err = s.store.CreateUser(ctx, s.newUser("b@example.org", ""))
		s.Require().NoError(err)
	})

	s.Run("elevation onto a taken trn is rejected", func() {
		u, err := s.store.FindByEmail(ctx, "a@example.org")
		s.Require().NoError(err)
		s.ErrorIs(s.store.ElevateTrnVerificationLevel(ctx, u.ID, "1234567"), models.ErrTrnAlreadyAssigned)
	})
}

func (s *PostgresStoreSuite) TestEmailUniqueness() {
	ctx := context.Background()
	_, err := s.store.CreateUser(ctx, s.newUser("jo@example.org", ""))
	s.Require().NoError(err)
	_, err = s.store.CreateUser(ctx, s.newUser("jo@example.org", ""))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindExistingAccount() {
	ctx := context.Background()
	u, err := s.store.CreateUser(ctx, s.newUser("first@example.org", ""))
	s.Require().NoError(err)

	acc, err := s.store.FindExistingAccount(ctx, "jo", "BLOGGS", s.dob, "new@example.org")
	s.Require().NoError(err)
	s.Equal(u.ID, acc.UserID)

	_, err = s.store.FindExistingAccount(ctx, "Jo", "Bloggs", s.dob, "first@example.org")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCreateUserWithToken() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveTrnToken(ctx, models.TrnToken{
		Token:        "tok",
		Trn:          "2222222",
		EmailAddress: "t@example.org",
		Expires:      time.Now().Add(time.Hour),
	}))

	u, err := s.store.CreateUserWithToken(ctx, s.newUser("t@example.org", "2222222"), "tok")
	s.Require().NoError(err)

	tok, err := s.store.FindTrnToken(ctx, "tok")
	s.Require().NoError(err)
	s.Equal(u.ID, tok.UserID)

	s.Run("claimed token rolls back the second registration", func() {
		_, err := s.store.CreateUserWithToken(ctx, s.newUser("again@example.org", "3333333"), "tok")
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByEmail(ctx, "again@example.org")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestUpdateEmail() {
	ctx := context.Background()
	u, err := s.store.CreateUser(ctx, s.newUser("old@example.org", ""))
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateEmail(ctx, u.ID, "new@example.org"))
	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("new@example.org", found.EmailAddress)

	s.ErrorIs(s.store.UpdateEmail(ctx, id.NewUserID(), "x@example.org"), sentinel.ErrNotFound)
}
