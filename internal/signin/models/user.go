package models

import (
	"errors"
	"time"

	id "teacherid/pkg/domain"
)

// ErrTrnAlreadyAssigned is returned by user repositories when a write would
// give a TRN to a second account.
var ErrTrnAlreadyAssigned = errors.New("trn already assigned to another user")

type UserType string

const (
	UserTypeDefault UserType = "default"
	UserTypeStaff   UserType = "staff"
)

// TrnVerificationLevel records how strongly a user's TRN has been verified.
type TrnVerificationLevel string

const (
	TrnVerificationLevelLow    TrnVerificationLevel = "low"
	TrnVerificationLevelMedium TrnVerificationLevel = "medium"
)

// User is a registered account.
type User struct {
	ID                   id.UserID
	Type                 UserType
	EmailAddress         string
	MobileNumber         string
	FirstName            string
	MiddleName           string
	LastName             string
	PreferredName        string
	DateOfBirth          *time.Time
	Trn                  string
	TrnLookupStatus      TrnLookupStatus
	TrnVerificationLevel TrnVerificationLevel
	Created              time.Time
	Updated              time.Time
}

func (u *User) IsStaff() bool {
	return u != nil && u.Type == UserTypeStaff
}

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Type                 UserType
	EmailAddress         string
	MobileNumber         string
	FirstName            string
	MiddleName           string
	LastName             string
	PreferredName        string
	DateOfBirth          *time.Time
	Trn                  string
	TrnLookupStatus      TrnLookupStatus
	TrnVerificationLevel TrnVerificationLevel
}

// ExistingAccount is a possible duplicate of the account being registered,
// or the account that already owns a TRN.
type ExistingAccount struct {
	UserID       id.UserID
	EmailAddress string
	MobileNumber string
}

// TrnToken is a pre-authorized invitation carrying verified identity fields.
type TrnToken struct {
	Token        string
	Trn          string
	EmailAddress string
	FirstName    string
	MiddleName   string
	LastName     string
	DateOfBirth  *time.Time
	Expires      time.Time
	// UserID is set once the token registered an account.
	UserID id.UserID
}

func (t TrnToken) IsExpired(now time.Time) bool {
	return !t.Expires.IsZero() && !now.Before(t.Expires)
}

func (t TrnToken) IsUsed() bool { return !t.UserID.IsNil() }

// SupportTicket asks a human to resolve a TRN that could not be matched.
type SupportTicket struct {
	ID           id.TicketID
	JourneyID    id.JourneyID
	UserID       id.UserID
	ClientID     string
	Reason       string
	EmailAddress string
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	StatedTrn    string
	NINumber     string
	IttProvider  string
	Raised       time.Time
}

const (
	TicketReasonTrnPending           = "trn_pending"
	TicketReasonCannotAccessTrnEmail = "cannot_access_trn_owner_email"
)
