package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/requestcontext"
)

// InMemoryStore keeps accounts in process. Returned users are copies.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]models.User
	byEmail map[string]id.UserID
	byTrn   map[string]id.UserID
	tokens  map[string]models.TrnToken
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
		byTrn:   make(map[string]id.UserID),
		tokens:  make(map[string]models.TrnToken),
	}
}

// CreateUser registers an account without a TRN.
func (s *InMemoryStore) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	nu.Trn = ""
	return s.create(ctx, nu)
}

func (s *InMemoryStore) CreateUserWithTrn(ctx context.Context, nu models.NewUser) (*models.User, error) {
	return s.create(ctx, nu)
}

// CreateUserWithToken registers the account and marks the token used.
func (s *InMemoryStore) CreateUserWithToken(ctx context.Context, nu models.NewUser, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u, err := s.insertLocked(ctx, nu)
	if err != nil {
		return nil, err
	}
	t.UserID = u.ID
	s.tokens[token] = t
	return u, nil
}

func (s *InMemoryStore) create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(ctx, nu)
}

func (s *InMemoryStore) insertLocked(ctx context.Context, nu models.NewUser) (*models.User, error) {
	u := newUserFrom(nu, id.NewUserID())
	if _, taken := s.byEmail[u.EmailAddress]; taken {
		return nil, sentinel.ErrConflict
	}
	if u.Trn != "" {
		if _, taken := s.byTrn[u.Trn]; taken {
			return nil, models.ErrTrnAlreadyAssigned
		}
	}

	now := requestcontext.Now(ctx)
	u.Created, u.Updated = now, now
	s.users[u.ID] = *u
	s.byEmail[u.EmailAddress] = u.ID
	if u.Trn != "" {
		s.byTrn[u.Trn] = u.ID
	}
	out := *u
	return &out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(s.byEmail, normalizeEmail(email))
}

// FindByMobileNumber returns the oldest account registered with mobile.
func (s *InMemoryStore) FindByMobileNumber(_ context.Context, mobile string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.User
	for _, u := range s.users {
		if mobile == "" || u.MobileNumber != mobile {
			continue
		}
		if found == nil || u.Created.Before(found.Created) {
			found = &u
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return found, nil
}

func (s *InMemoryStore) FindByTrn(_ context.Context, trn string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(s.byTrn, trn)
}

func (s *InMemoryStore) lookupLocked(index map[string]id.UserID, key string) (*models.User, error) {
	userID, ok := index[key]
	if !ok || key == "" {
		return nil, sentinel.ErrNotFound
	}
	u := s.users[userID]
	return &u, nil
}

// FindExistingAccount returns the oldest account with the same name and date
// of birth registered under a different email address.
func (s *InMemoryStore) FindExistingAccount(_ context.Context, firstName, lastName string, dateOfBirth time.Time, excludeEmail string) (*models.ExistingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exclude := normalizeEmail(excludeEmail)
	var matches []models.User
	for _, u := range s.users {
		if u.DateOfBirth == nil || !u.DateOfBirth.Equal(dateOfBirth) {
			continue
		}
		if !strings.EqualFold(u.FirstName, firstName) || !strings.EqualFold(u.LastName, lastName) {
			continue
		}
		if u.EmailAddress == exclude {
			continue
		}
		matches = append(matches, u)
	}
	if len(matches) == 0 {
		return nil, sentinel.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Created.Before(matches[j].Created) })
	m := matches[0]
	return &models.ExistingAccount{UserID: m.ID, EmailAddress: m.EmailAddress, MobileNumber: m.MobileNumber}, nil
}

func (s *InMemoryStore) UpdateEmail(ctx context.Context, userID id.UserID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	email = normalizeEmail(email)
	if owner, taken := s.byEmail[email]; taken && owner != userID {
		return sentinel.ErrConflict
	}
	delete(s.byEmail, u.EmailAddress)
	u.EmailAddress = email
	u.Updated = requestcontext.Now(ctx)
	s.users[userID] = u
	s.byEmail[email] = userID
	return nil
}

// ElevateTrnVerificationLevel records a verified TRN at the Medium level.
func (s *InMemoryStore) ElevateTrnVerificationLevel(ctx context.Context, userID id.UserID, trn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byTrn[trn]; taken && owner != userID {
		return models.ErrTrnAlreadyAssigned
	}
	if u.Trn != "" && u.Trn != trn {
		delete(s.byTrn, u.Trn)
	}
	u.Trn = trn
	u.TrnLookupStatus = models.TrnLookupStatusFound
	u.TrnVerificationLevel = models.TrnVerificationLevelMedium
	u.Updated = requestcontext.Now(ctx)
	s.users[userID] = u
	s.byTrn[trn] = userID
	return nil
}

func (s *InMemoryStore) SaveTrnToken(_ context.Context, token models.TrnToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

func (s *InMemoryStore) FindTrnToken(_ context.Context, token string) (models.TrnToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[token]
	if !ok {
		return models.TrnToken{}, sentinel.ErrNotFound
	}
	return t, nil
}
