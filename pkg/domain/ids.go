// Package domain holds identifier primitives shared across the sign-in
// packages. Each identifier is a distinct named UUID type so that a journey
// id can never be passed where a user id is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "teacherid/pkg/domain-errors"
)

type (
	// UserID identifies a registered teacher account.
	UserID uuid.UUID
	// JourneyID identifies a single sign-in journey (the "asid" query value).
	JourneyID uuid.UUID
	// TicketID identifies a support ticket raised for manual TRN resolution.
	TicketID uuid.UUID
)

func parseID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID parses a user id from external input.
// Errors carry CodeInvalidInput.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s, "user id")
	return UserID(u), err
}

// ParseJourneyID parses the journey id carried in the asid query parameter.
func ParseJourneyID(s string) (JourneyID, error) {
	u, err := parseID(s, "journey id")
	return JourneyID(u), err
}

func ParseTicketID(s string) (TicketID, error) {
	u, err := parseID(s, "ticket id")
	return TicketID(u), err
}

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewJourneyID() JourneyID { return JourneyID(uuid.New()) }
func NewTicketID() TicketID   { return TicketID(uuid.New()) }

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id JourneyID) String() string { return uuid.UUID(id).String() }
func (id TicketID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id JourneyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TicketID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps ids readable in JSON. Unmarshal accepts the nil id so
// an unset field survives a round trip.

func (id UserID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id JourneyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id TicketID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *JourneyID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TicketID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
