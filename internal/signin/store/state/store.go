// Package state persists AuthenticationState values between requests.
//
// Saves are optimistic: a state carries the Version it was loaded at, and a
// save fails with sentinel.ErrStaleVersion if another request saved first.
package state

import (
	"context"
	"time"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
)

// DefaultTTL is how long an idle journey survives.
const DefaultTTL = time.Hour

// Store loads and saves journey state.
//
// Load returns sentinel.ErrNotFound for an unknown journey and
// sentinel.ErrExpired when the journey outlived its TTL. Save returns the
// stored copy with Version advanced by one; a new journey is saved with
// Version 0.
type Store interface {
	Load(ctx context.Context, journeyID id.JourneyID) (models.AuthenticationState, error)
	Save(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error)
}
