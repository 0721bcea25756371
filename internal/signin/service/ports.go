package service

import (
	"context"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// StateStore loads and saves journey state with optimistic versioning.
type StateStore interface {
	Load(ctx context.Context, journeyID id.JourneyID) (models.AuthenticationState, error)
	Save(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error)
}

// AccountFinder resolves the account behind a verified contact or a TRN
// token. Finders return sentinel.ErrNotFound.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByMobileNumber(ctx context.Context, mobile string) (*models.User, error)
	FindTrnToken(ctx context.Context, token string) (models.TrnToken, error)
}
