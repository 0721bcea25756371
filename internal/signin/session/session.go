// Package session issues the signed session token a completed sign-in
// leaves behind.
//
// The journey signs a user in from deep inside a service call, far from the
// HTTP response. The handler installs a Recorder in the request context and
// writes whatever token the Manager recorded into a cookie afterwards.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	dErrors "teacherid/pkg/domain-errors"
	"teacherid/pkg/requestcontext"
)

// CookieName is the cookie the handler stores the session token in.
const CookieName = "teacherid_session"

// Claims are the session token claims.
type Claims struct {
	UserID    string `json:"user_id"`
	UserType  string `json:"user_type"`
	JourneyID string `json:"journey_id,omitempty"`
	Trn       string `json:"trn,omitempty"`
	jwt.RegisteredClaims
}

// Token is a signed session token and its expiry.
type Token struct {
	Value   string
	UserID  id.UserID
	Expires time.Time
}

// Manager signs and validates HS256 session tokens.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewManager(signingKey, issuer string, ttl time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// SignIn issues a token for user and records it on the request. Without a
// Recorder in ctx the token is issued and dropped.
func (m *Manager) SignIn(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("session: nil user")
	}
	tok, err := m.Issue(ctx, user)
	if err != nil {
		return err
	}
	if rec := RecorderFrom(ctx); rec != nil {
		rec.record(tok)
	}
	return nil
}

// Issue signs a token for user valid from the request time.
func (m *Manager) Issue(ctx context.Context, user *models.User) (Token, error) {
	now := requestcontext.Now(ctx)
	expires := now.Add(m.ttl)
	claims := Claims{
		UserID:   user.ID.String(),
		UserType: string(user.Type),
		Trn:      user.Trn,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	if journeyID := requestcontext.JourneyID(ctx); !journeyID.IsNil() {
		claims.JourneyID = journeyID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, UserID: user.ID, Expires: expires}, nil
}

// Validate parses a token issued by this manager.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	return claims, nil
}

// Recorder collects the token issued while handling one request.
type Recorder struct {
	mu    sync.Mutex
	token *Token
}

func (r *Recorder) record(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = &t
}

// Token returns the last token recorded, if any.
func (r *Recorder) Token() (Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token == nil {
		return Token{}, false
	}
	return *r.token, true
}

type recorderKey struct{}

// WithRecorder installs a fresh Recorder in ctx.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

func RecorderFrom(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}
