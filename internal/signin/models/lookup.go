package models

import "time"

// TrnLookupStatus is the outcome of matching the user against teacher records.
type TrnLookupStatus string

const (
	TrnLookupStatusNone    TrnLookupStatus = "none"
	TrnLookupStatusPending TrnLookupStatus = "pending"
	TrnLookupStatusFound   TrnLookupStatus = "found"
)

// TrnLookupState is an ordered progression; later values imply earlier ones.
type TrnLookupState int

const (
	TrnLookupStateNone TrnLookupState = iota
	// TrnLookupStateComplete means the lookup concluded and no answers may change.
	TrnLookupStateComplete
	TrnLookupStateExistingTrnFound
	TrnLookupStateEmailOfExistingAccountForTrnVerified
)

func (s TrnLookupState) String() string {
	switch s {
	case TrnLookupStateNone:
		return "none"
	case TrnLookupStateComplete:
		return "complete"
	case TrnLookupStateExistingTrnFound:
		return "existing_trn_found"
	case TrnLookupStateEmailOfExistingAccountForTrnVerified:
		return "email_of_existing_account_for_trn_verified"
	default:
		return "unknown"
	}
}

// TrnLookupCriteria is what the matcher is queried with. NINumber and Trn
// must already be normalized.
type TrnLookupCriteria struct {
	FirstName       string
	MiddleName      string
	LastName        string
	PreferredName   string
	DateOfBirth     *time.Time
	EmailAddress    string
	IttProviderName string
	NINumber        string
	Trn             string
	AwardedQts      *bool
}

// TrnCandidate is one record returned by the matcher.
type TrnCandidate struct {
	Trn         string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	NINumber    string
}

// TrnLookupResult is the resolved outcome of a lookup. Trn is only set when
// Status is Found.
type TrnLookupResult struct {
	Status     TrnLookupStatus
	Trn        string
	Candidates int
}
