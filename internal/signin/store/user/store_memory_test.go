package user

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

// Justification: the journey tests mock the repository, so the TRN
// uniqueness and duplicate-account rules are only exercised here.
type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	dob   time.Time
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s.dob = time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newUser(email, trn string) models.NewUser {
	return models.NewUser{
		EmailAddress:    email,
		FirstName:       "Jo",
		LastName:        "Bloggs",
		DateOfBirth:     &s.dob,
		Trn:             trn,
		TrnLookupStatus: models.TrnLookupStatusFound,
	}
}

// =============================================================================
// Creation
// =============================================================================

func (s *InMemoryStoreSuite) TestCreate() {
	s.Run("defaults type and verification level", func() {
		u, err := s.store.CreateUserWithTrn(s.ctx, s.newUser("Jo@Example.org ", "1234567"))
		s.Require().NoError(err)
		s.Equal(models.UserTypeDefault, u.Type)
		s.Equal(models.TrnVerificationLevelLow, u.TrnVerificationLevel)
		s.Equal("jo@example.org", u.EmailAddress)
		s.Equal(requestcontext.Now(s.ctx), u.Created)

		found, err := s.store.FindByTrn(s.ctx, "1234567")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("CreateUser never records a trn", func() {
		u, err := s.store.CreateUser(s.ctx, s.newUser("core@example.org", "7777777"))
		s.Require().NoError(err)
		s.Empty(u.Trn)

		_, err = s.store.FindByTrn(s.ctx, "7777777")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("second account for a trn is rejected", func() {
		_, err := s.store.CreateUserWithTrn(s.ctx, s.newUser("other@example.org", "1234567"))
		s.ErrorIs(err, models.ErrTrnAlreadyAssigned)

		_, err = s.store.FindByEmail(s.ctx, "other@example.org")
		s.ErrorIs(err, sentinel.ErrNotFound, "nothing is written on conflict")
	})

	s.Run("second account for an email is a conflict", func() {
		_, err := s.store.CreateUser(s.ctx, s.newUser("JO@example.org", ""))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *InMemoryStoreSuite) TestCreateUserWithToken() {
	s.Require().NoError(s.store.SaveTrnToken(s.ctx, models.TrnToken{Token: "tok", Trn: "2222222", EmailAddress: "t@example.org"}))

	u, err := s.store.CreateUserWithToken(s.ctx, s.newUser("t@example.org", "2222222"), "tok")
	s.Require().NoError(err)

	tok, err := s.store.FindTrnToken(s.ctx, "tok")
	s.Require().NoError(err)
	s.True(tok.IsUsed())
	s.Equal(u.ID, tok.UserID)

	_, err = s.store.CreateUserWithToken(s.ctx, s.newUser("x@example.org", "3333333"), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// =============================================================================
// Queries
// =============================================================================

func (s *InMemoryStoreSuite) TestFindExistingAccount() {
	first, err := s.store.CreateUser(s.ctx, s.newUser("first@example.org", ""))
	s.Require().NoError(err)
	later := requestcontext.WithTime(s.ctx, requestcontext.Now(s.ctx).Add(time.Hour))
	_, err = s.store.CreateUser(later, s.newUser("second@example.org", ""))
	s.Require().NoError(err)

	s.Run("matches name case-insensitively and returns the oldest", func() {
		acc, err := s.store.FindExistingAccount(s.ctx, "JO", "bloggs", s.dob, "new@example.org")
		s.Require().NoError(err)
		s.Equal(first.ID, acc.UserID)
		s.Equal("first@example.org", acc.EmailAddress)
	})

	s.Run("excludes the address being registered", func() {
		acc, err := s.store.FindExistingAccount(s.ctx, "Jo", "Bloggs", s.dob, "first@example.org")
		s.Require().NoError(err)
		s.Equal("second@example.org", acc.EmailAddress)
	})

	s.Run("different date of birth does not match", func() {
		_, err := s.store.FindExistingAccount(s.ctx, "Jo", "Bloggs", s.dob.AddDate(0, 0, 1), "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestFindByID_ReturnsCopy() {
	u, err := s.store.CreateUser(s.ctx, s.newUser("a@example.org", ""))
	s.Require().NoError(err)

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	found.FirstName = "Changed"

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Jo", again.FirstName)

	_, err = s.store.FindByID(s.ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestFindByMobileNumber() {
	nu := s.newUser("a@example.org", "")
	nu.MobileNumber = "07700900001"
	u, err := s.store.CreateUser(s.ctx, nu)
	s.Require().NoError(err)

	found, err := s.store.FindByMobileNumber(s.ctx, "07700900001")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.store.FindByMobileNumber(s.ctx, "")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// =============================================================================
// Updates
// =============================================================================

func (s *InMemoryStoreSuite) TestUpdateEmail() {
	u, err := s.store.CreateUser(s.ctx, s.newUser("old@example.org", ""))
	s.Require().NoError(err)
	_, err = s.store.CreateUser(s.ctx, s.newUser("taken@example.org", ""))
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateEmail(s.ctx, u.ID, "New@example.org"))
	found, err := s.store.FindByEmail(s.ctx, "new@example.org")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.store.FindByEmail(s.ctx, "old@example.org")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.UpdateEmail(s.ctx, u.ID, "taken@example.org"), sentinel.ErrConflict)
	s.ErrorIs(s.store.UpdateEmail(s.ctx, id.NewUserID(), "x@example.org"), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestElevateTrnVerificationLevel() {
	u, err := s.store.CreateUser(s.ctx, s.newUser("a@example.org", ""))
	s.Require().NoError(err)
	_, err = s.store.CreateUserWithTrn(s.ctx, s.newUser("owner@example.org", "9999999"))
	s.Require().NoError(err)

	s.ErrorIs(s.store.ElevateTrnVerificationLevel(s.ctx, u.ID, "9999999"), models.ErrTrnAlreadyAssigned)

	s.Require().NoError(s.store.ElevateTrnVerificationLevel(s.ctx, u.ID, "1111111"))
	found, err := s.store.FindByTrn(s.ctx, "1111111")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal(models.TrnVerificationLevelMedium, found.TrnVerificationLevel)
	s.Equal(models.TrnLookupStatusFound, found.TrnLookupStatus)
}
