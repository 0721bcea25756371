package user

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
	txcontext "teacherid/pkg/platform/tx"
	"teacherid/pkg/requestcontext"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation     = "23505"
	trnConstraint       = "users_trn_key"
	emailConstraint     = "users_email_address_key"
	userColumns         = "user_id, user_type, email_address, mobile_number, first_name, middle_name, last_name, preferred_name, date_of_birth, trn, trn_lookup_status, trn_verification_level, created, updated"
	insertUserStatement = "INSERT INTO users (" + userColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)"
)

// PostgresStore persists accounts in Postgres. The TRN uniqueness rule is
// enforced by the users_trn_key constraint.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate users schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) db(ctx context.Context) txcontext.Querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	nu.Trn = ""
	return s.insert(ctx, nu)
}

func (s *PostgresStore) CreateUserWithTrn(ctx context.Context, nu models.NewUser) (*models.User, error) {
	return s.insert(ctx, nu)
}

// CreateUserWithToken registers the account and claims the token in one
// transaction. A token that is missing or already claimed is not found.
func (s *PostgresStore) CreateUserWithToken(ctx context.Context, nu models.NewUser, token string) (*models.User, error) {
	var created *models.User
	err := txcontext.RunInTx(ctx, s.pool, func(ctx context.Context) error {
		u, err := s.insert(ctx, nu)
		if err != nil {
			return err
		}
		tag, err := s.db(ctx).Exec(ctx,
			"UPDATE trn_tokens SET user_id = $1 WHERE token = $2 AND user_id IS NULL",
			uuid.UUID(u.ID), token)
		if err != nil {
			return fmt.Errorf("claim trn token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return sentinel.ErrNotFound
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PostgresStore) insert(ctx context.Context, nu models.NewUser) (*models.User, error) {
	u := newUserFrom(nu, id.NewUserID())
	now := requestcontext.Now(ctx).UTC()
	u.Created, u.Updated = now, now

	_, err := s.db(ctx).Exec(ctx, insertUserStatement,
		uuid.UUID(u.ID), string(u.Type), u.EmailAddress, u.MobileNumber,
		u.FirstName, u.MiddleName, u.LastName, u.PreferredName,
		u.DateOfBirth, nullable(u.Trn), string(u.TrnLookupStatus), string(u.TrnVerificationLevel),
		u.Created, u.Updated,
	)
	if err != nil {
		return nil, translateWriteError(err, "insert user")
	}
	return u, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, "user_id = $1", uuid.UUID(userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "email_address = $1", normalizeEmail(email))
}

// FindByMobileNumber returns the oldest account registered with mobile.
func (s *PostgresStore) FindByMobileNumber(ctx context.Context, mobile string) (*models.User, error) {
	if mobile == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, "mobile_number = $1 ORDER BY created LIMIT 1", mobile)
}

func (s *PostgresStore) FindByTrn(ctx context.Context, trn string) (*models.User, error) {
	if trn == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, "trn = $1", trn)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db(ctx).QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindExistingAccount(ctx context.Context, firstName, lastName string, dateOfBirth time.Time, excludeEmail string) (*models.ExistingAccount, error) {
	var (
		userID uuid.UUID
		acc    models.ExistingAccount
	)
	err := s.db(ctx).QueryRow(ctx, `
		SELECT user_id, email_address, mobile_number FROM users
		WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
		  AND date_of_birth = $3 AND email_address <> $4
		ORDER BY created
		LIMIT 1`,
		firstName, lastName, dateOfBirth, normalizeEmail(excludeEmail),
	).Scan(&userID, &acc.EmailAddress, &acc.MobileNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find existing account: %w", err)
	}
	acc.UserID = id.UserID(userID)
	return &acc, nil
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, userID id.UserID, email string) error {
	tag, err := s.db(ctx).Exec(ctx,
		"UPDATE users SET email_address = $1, updated = $2 WHERE user_id = $3",
		normalizeEmail(email), requestcontext.Now(ctx).UTC(), uuid.UUID(userID))
	if err != nil {
		return translateWriteError(err, "update email")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ElevateTrnVerificationLevel(ctx context.Context, userID id.UserID, trn string) error {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE users SET trn = $1, trn_lookup_status = $2, trn_verification_level = $3, updated = $4
		WHERE user_id = $5`,
		trn, string(models.TrnLookupStatusFound), string(models.TrnVerificationLevelMedium),
		requestcontext.Now(ctx).UTC(), uuid.UUID(userID))
	if err != nil {
		return translateWriteError(err, "elevate trn verification level")
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveTrnToken(ctx context.Context, t models.TrnToken) error {
	var userID *uuid.UUID
	if !t.UserID.IsNil() {
		u := uuid.UUID(t.UserID)
		userID = &u
	}
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO trn_tokens (token, trn, email_address, first_name, middle_name, last_name, date_of_birth, expires, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token) DO UPDATE SET expires = EXCLUDED.expires`,
		t.Token, t.Trn, normalizeEmail(t.EmailAddress), t.FirstName, t.MiddleName, t.LastName,
		t.DateOfBirth, t.Expires, userID)
	if err != nil {
		return fmt.Errorf("save trn token: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindTrnToken(ctx context.Context, token string) (models.TrnToken, error) {
	var (
		t      models.TrnToken
		userID *uuid.UUID
	)
	err := s.db(ctx).QueryRow(ctx, `
		SELECT token, trn, email_address, first_name, middle_name, last_name, date_of_birth, expires, user_id
		FROM trn_tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.Trn, &t.EmailAddress, &t.FirstName, &t.MiddleName, &t.LastName, &t.DateOfBirth, &t.Expires, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TrnToken{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.TrnToken{}, fmt.Errorf("find trn token: %w", err)
	}
	if userID != nil {
		t.UserID = id.UserID(*userID)
	}
	return t, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		trn    *string
	)
	var userType, lookupStatus, trnLevel string
	err := row.Scan(&userID, &userType, &u.EmailAddress, &u.MobileNumber,
		&u.FirstName, &u.MiddleName, &u.LastName, &u.PreferredName,
		&u.DateOfBirth, &trn, &lookupStatus, &trnLevel, &u.Created, &u.Updated)
	if err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Type = models.UserType(userType)
	u.TrnLookupStatus = models.TrnLookupStatus(lookupStatus)
	u.TrnVerificationLevel = models.TrnVerificationLevel(trnLevel)
	if trn != nil {
		u.Trn = *trn
	}
	return &u, nil
}

// translateWriteError maps unique violations to the repository's sentinels.
func translateWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case trnConstraint:
			return models.ErrTrnAlreadyAssigned
		case emailConstraint:
			return sentinel.ErrConflict
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
