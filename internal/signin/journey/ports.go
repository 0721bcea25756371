package journey

import (
	"context"
	"time"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// LinkResolver turns a step of a journey kind into a URL.
type LinkResolver interface {
	StepURL(kind Kind, step Step, journeyID id.JourneyID) string
}

// TrnLookuper resolves the answers so far into a TRN lookup outcome. It never
// fails: timeouts and matcher errors resolve as no match.
type TrnLookuper interface {
	Lookup(ctx context.Context, criteria models.TrnLookupCriteria) models.TrnLookupResult
}

// UserRepository persists accounts. Create and update methods return
// models.ErrTrnAlreadyAssigned when the TRN belongs to another account;
// finders return sentinel.ErrNotFound.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.NewUser) (*models.User, error)
	CreateUserWithTrn(ctx context.Context, user models.NewUser) (*models.User, error)
	CreateUserWithToken(ctx context.Context, user models.NewUser, token string) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByTrn(ctx context.Context, trn string) (*models.User, error)
	FindExistingAccount(ctx context.Context, firstName, lastName string, dateOfBirth time.Time, excludeEmail string) (*models.ExistingAccount, error)
	UpdateEmail(ctx context.Context, userID id.UserID, email string) error
	ElevateTrnVerificationLevel(ctx context.Context, userID id.UserID, trn string) error
}

// SessionEstablisher signs the caller in as user.
type SessionEstablisher interface {
	SignIn(ctx context.Context, user *models.User) error
}

// TicketRaiser hands a support ticket off for manual handling. Failures are
// logged by the journey and never block it.
type TicketRaiser interface {
	RaiseSupportTicket(ctx context.Context, ticket models.SupportTicket) error
}
