package models

import (
	"time"

	id "teacherid/pkg/domain"
)

// HandOff names a journey variant entered explicitly from another variant.
type HandOff string

const (
	HandOffNone                        HandOff = ""
	HandOffElevateTrnVerificationLevel HandOff = "elevate"
	HandOffTrnToken                    HandOff = "trn-token"
)

// AuthenticationState is everything the user has told us during one journey
// plus the outcome of the TRN lookup.
//
// It is a value. Events are value-receiver methods that return the updated
// copy, so every mutation is an explicit assignment at the call site:
//
//	st = st.OnEmailSet("a@example.org")
//
// Pointer bools distinguish "not answered" (nil) from an answer of false.
type AuthenticationState struct {
	JourneyID     id.JourneyID `json:"journey_id"`
	Version       int64        `json:"version"`
	OAuth         OAuthContext `json:"oauth"`
	PostSignInURL string       `json:"post_sign_in_url"`
	HandOff       HandOff      `json:"hand_off,omitempty"`
	Started       time.Time    `json:"started"`

	EmailAddress         string `json:"email_address,omitempty"`
	EmailAddressVerified bool   `json:"email_address_verified"`
	MobileNumber         string `json:"mobile_number,omitempty"`
	MobileNumberVerified bool   `json:"mobile_number_verified"`

	FirstName        string     `json:"first_name,omitempty"`
	MiddleName       string     `json:"middle_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	HasPreferredName *bool      `json:"has_preferred_name,omitempty"`
	PreferredName    string     `json:"preferred_name,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`

	HasNationalInsuranceNumber *bool  `json:"has_ni_number,omitempty"`
	NationalInsuranceNumber    string `json:"ni_number,omitempty"`
	HasTrn                     *bool  `json:"has_trn,omitempty"`
	StatedTrn                  string `json:"stated_trn,omitempty"`
	AwardedQts                 *bool  `json:"awarded_qts,omitempty"`
	HasIttProvider             *bool  `json:"has_itt_provider,omitempty"`
	IttProviderName            string `json:"itt_provider_name,omitempty"`

	Trn                  string               `json:"trn,omitempty"`
	TrnLookupStatus      TrnLookupStatus      `json:"trn_lookup_status,omitempty"`
	TrnLookup            TrnLookupState       `json:"trn_lookup"`
	TrnOwner             *ExistingAccount     `json:"trn_owner,omitempty"`
	TrnVerificationLevel TrnVerificationLevel `json:"trn_verification_level,omitempty"`
	ElevationSuccessful  *bool                `json:"elevation_successful,omitempty"`
	TrnToken             string               `json:"trn_token,omitempty"`
	SupportTicketRaised  bool                 `json:"support_ticket_raised"`

	ExistingAccountSearched bool             `json:"existing_account_searched"`
	ExistingAccount         *ExistingAccount `json:"existing_account,omitempty"`
	ExistingAccountChosen   *bool            `json:"existing_account_chosen,omitempty"`

	UserID           id.UserID `json:"user_id"`
	UserType         UserType  `json:"user_type,omitempty"`
	FirstTimeSignIn  bool      `json:"first_time_sign_in"`
	SignInCompletion time.Time `json:"sign_in_completed"`
}

// NewAuthenticationState starts an empty journey for an authorization request.
func NewAuthenticationState(journeyID id.JourneyID, oauth OAuthContext, postSignInURL string, now time.Time) AuthenticationState {
	return AuthenticationState{
		JourneyID:     journeyID,
		OAuth:         oauth,
		PostSignInURL: postSignInURL,
		Started:       now,
	}
}

func (s AuthenticationState) IsSignedIn() bool { return !s.UserID.IsNil() }

func (s AuthenticationState) EmailSet() bool         { return s.EmailAddress != "" }
func (s AuthenticationState) MobileSet() bool        { return s.MobileNumber != "" }
func (s AuthenticationState) NameSet() bool          { return s.FirstName != "" && s.LastName != "" }
func (s AuthenticationState) PreferredNameSet() bool { return s.HasPreferredName != nil }
func (s AuthenticationState) DateOfBirthSet() bool   { return s.DateOfBirth != nil }

// TrnTokenApplied is true once a pre-authorized token seeded the journey.
func (s AuthenticationState) TrnTokenApplied() bool { return s.TrnToken != "" }

// ExistingAccountFound is true when a possible duplicate account was found.
func (s AuthenticationState) ExistingAccountFound() bool { return s.ExistingAccount != nil }

// ExistingAccountResolved is true when there is no candidate or the user chose.
func (s AuthenticationState) ExistingAccountResolved() bool {
	return s.ExistingAccount == nil || s.ExistingAccountChosen != nil
}

// ExistingAccountChosenTrue reports the user said the candidate is theirs.
func (s AuthenticationState) ExistingAccountChosenTrue() bool {
	return isTrue(s.ExistingAccountChosen)
}

func (s AuthenticationState) NationalInsuranceNumberAnswered() bool {
	return s.HasNationalInsuranceNumber != nil && (!*s.HasNationalInsuranceNumber || s.NationalInsuranceNumber != "")
}

func (s AuthenticationState) TrnAnswered() bool {
	return s.HasTrn != nil && (!*s.HasTrn || s.StatedTrn != "")
}

func (s AuthenticationState) AwardedQtsAnswered() bool {
	return s.AwardedQts != nil && (!*s.AwardedQts || s.HasIttProvider != nil)
}

// LookupQuestionsAnswered is true once every question feeding the TRN lookup
// has an answer.
func (s AuthenticationState) LookupQuestionsAnswered() bool {
	return s.NationalInsuranceNumberAnswered() && s.TrnAnswered() && s.AwardedQtsAnswered()
}

// LookupOpen is true until the lookup concludes. Answers may only change
// while it is open.
func (s AuthenticationState) LookupOpen() bool { return s.TrnLookup == TrnLookupStateNone }

func (s AuthenticationState) LookupConcluded() bool { return s.TrnLookup >= TrnLookupStateComplete }

// RequiresTrnVerificationLevelElevation is true when a signed-in default user
// reached the end of the journey for a strict client without a Medium level.
func (s AuthenticationState) RequiresTrnVerificationLevelElevation() bool {
	return s.OAuth.TrnMatchPolicy == TrnMatchPolicyStrict &&
		s.IsSignedIn() &&
		s.UserType != UserTypeStaff &&
		s.TrnVerificationLevel != TrnVerificationLevelMedium &&
		s.ElevationSuccessful == nil
}

// LookupCriteria builds matcher criteria from the answers. Normalizing the NI
// number and TRN is left to the resolver.
func (s AuthenticationState) LookupCriteria() TrnLookupCriteria {
	c := TrnLookupCriteria{
		FirstName:    s.FirstName,
		MiddleName:   s.MiddleName,
		LastName:     s.LastName,
		DateOfBirth:  s.DateOfBirth,
		EmailAddress: s.EmailAddress,
		AwardedQts:   s.AwardedQts,
	}
	if isTrue(s.HasPreferredName) {
		c.PreferredName = s.PreferredName
	}
	if isTrue(s.HasNationalInsuranceNumber) {
		c.NINumber = s.NationalInsuranceNumber
	}
	if isTrue(s.HasTrn) {
		c.Trn = s.StatedTrn
	}
	if isTrue(s.AwardedQts) && isTrue(s.HasIttProvider) {
		c.IttProviderName = s.IttProviderName
	}
	return c
}

// NewUser builds the account to register from the answers.
func (s AuthenticationState) NewUser() NewUser {
	u := NewUser{
		Type:                 UserTypeDefault,
		EmailAddress:         s.EmailAddress,
		MobileNumber:         s.MobileNumber,
		FirstName:            s.FirstName,
		MiddleName:           s.MiddleName,
		LastName:             s.LastName,
		DateOfBirth:          s.DateOfBirth,
		Trn:                  s.Trn,
		TrnLookupStatus:      s.TrnLookupStatus,
		TrnVerificationLevel: TrnVerificationLevelLow,
	}
	if isTrue(s.HasPreferredName) {
		u.PreferredName = s.PreferredName
	}
	return u
}

// OnEmailSet records a new email address. Changing the address invalidates
// verification and any existing-account match.
func (s AuthenticationState) OnEmailSet(email string) AuthenticationState {
	if email == s.EmailAddress {
		return s
	}
	s.EmailAddress = email
	s.EmailAddressVerified = false
	return s.clearExistingAccount()
}

// OnEmailVerified marks the email verified. A non-nil user already owns the
// address and the journey signs in as that user.
func (s AuthenticationState) OnEmailVerified(user *User) AuthenticationState {
	s.EmailAddressVerified = true
	if user != nil {
		s = s.OnSignedIn(user)
	}
	return s
}

func (s AuthenticationState) OnMobileNumberSet(mobile string) AuthenticationState {
	if mobile != s.MobileNumber {
		s.MobileNumberVerified = false
	}
	s.MobileNumber = mobile
	return s
}

func (s AuthenticationState) OnMobileVerified(user *User) AuthenticationState {
	s.MobileNumberVerified = true
	if user != nil {
		s = s.OnSignedIn(user)
	}
	return s
}

func (s AuthenticationState) OnNameSet(first, middle, last string) AuthenticationState {
	s.FirstName, s.MiddleName, s.LastName = first, middle, last
	return s.clearExistingAccount()
}

func (s AuthenticationState) OnPreferredNameSet(has bool, name string) AuthenticationState {
	s.HasPreferredName = boolPtr(has)
	if has {
		s.PreferredName = name
	} else {
		s.PreferredName = ""
	}
	return s
}

func (s AuthenticationState) OnDateOfBirthSet(dob time.Time) AuthenticationState {
	d := time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	s.DateOfBirth = &d
	return s.clearExistingAccount()
}

// OnExistingAccountSearched records the result of searching for a duplicate
// account. A nil candidate means none was found.
func (s AuthenticationState) OnExistingAccountSearched(candidate *ExistingAccount) AuthenticationState {
	s.ExistingAccountSearched = true
	s.ExistingAccount = candidate
	s.ExistingAccountChosen = nil
	return s
}

func (s AuthenticationState) OnExistingAccountChosen(isTheirs bool) AuthenticationState {
	s.ExistingAccountChosen = boolPtr(isTheirs)
	return s
}

func (s AuthenticationState) OnHasNationalInsuranceNumberSet(has bool) AuthenticationState {
	s.HasNationalInsuranceNumber = boolPtr(has)
	if !has {
		s.NationalInsuranceNumber = ""
	}
	return s
}

func (s AuthenticationState) OnNationalInsuranceNumberSet(ni string) AuthenticationState {
	s.HasNationalInsuranceNumber = boolPtr(true)
	s.NationalInsuranceNumber = ni
	return s
}

func (s AuthenticationState) OnHasTrnSet(has bool) AuthenticationState {
	s.HasTrn = boolPtr(has)
	if !has {
		s.StatedTrn = ""
	}
	return s
}

func (s AuthenticationState) OnTrnSet(trn string) AuthenticationState {
	s.HasTrn = boolPtr(true)
	s.StatedTrn = trn
	return s
}

func (s AuthenticationState) OnAwardedQtsSet(awarded bool) AuthenticationState {
	s.AwardedQts = boolPtr(awarded)
	if !awarded {
		s.HasIttProvider = nil
		s.IttProviderName = ""
	}
	return s
}

func (s AuthenticationState) OnHasIttProviderSet(has bool, providerName string) AuthenticationState {
	s.HasIttProvider = boolPtr(has)
	if has {
		s.IttProviderName = providerName
	} else {
		s.IttProviderName = ""
	}
	return s
}

// OnTrnLookupCompleted records a lookup outcome. Concluded closes the lookup
// so answers can no longer change.
func (s AuthenticationState) OnTrnLookupCompleted(trn string, status TrnLookupStatus, concluded bool) AuthenticationState {
	s.Trn = trn
	s.TrnLookupStatus = status
	if concluded && s.TrnLookup < TrnLookupStateComplete {
		s.TrnLookup = TrnLookupStateComplete
	}
	return s
}

// OnTrnLookupCompletedForTrnAlreadyInUse records that the matched TRN belongs
// to another account.
func (s AuthenticationState) OnTrnLookupCompletedForTrnAlreadyInUse(owner ExistingAccount) AuthenticationState {
	s.TrnOwner = &owner
	s.TrnLookup = TrnLookupStateExistingTrnFound
	return s
}

// OnEmailVerifiedOfExistingAccountForTrn records that the user proved access
// to the TRN owner's email address.
func (s AuthenticationState) OnEmailVerifiedOfExistingAccountForTrn() AuthenticationState {
	if s.TrnLookup == TrnLookupStateExistingTrnFound {
		s.TrnLookup = TrnLookupStateEmailOfExistingAccountForTrnVerified
	}
	return s
}

// OnTrnOwnerEmailChosen records which address the merged account keeps.
func (s AuthenticationState) OnTrnOwnerEmailChosen(email string) AuthenticationState {
	s.EmailAddress = email
	s.EmailAddressVerified = true
	return s
}

// OnUserRegistered records a newly created account and signs in as it.
func (s AuthenticationState) OnUserRegistered(user *User) AuthenticationState {
	s = s.OnSignedIn(user)
	s.Trn = user.Trn
	s.FirstTimeSignIn = true
	return s
}

// OnSignedIn binds the journey to user. Identity fields missing from the
// state are filled from the account.
func (s AuthenticationState) OnSignedIn(user *User) AuthenticationState {
	s.UserID = user.ID
	s.UserType = user.Type
	s.FirstTimeSignIn = false
	s.TrnVerificationLevel = user.TrnVerificationLevel
	if user.Trn != "" {
		s.Trn = user.Trn
	}
	if user.TrnLookupStatus != "" {
		s.TrnLookupStatus = user.TrnLookupStatus
	}
	if s.EmailAddress == "" {
		s.EmailAddress = user.EmailAddress
		s.EmailAddressVerified = true
	}
	if s.FirstName == "" && s.LastName == "" {
		s.FirstName, s.MiddleName, s.LastName = user.FirstName, user.MiddleName, user.LastName
	}
	if s.DateOfBirth == nil {
		s.DateOfBirth = user.DateOfBirth
	}
	return s
}

// OnTrnTokenApplied seeds the state from a pre-authorized token.
func (s AuthenticationState) OnTrnTokenApplied(token TrnToken) AuthenticationState {
	s.TrnToken = token.Token
	s.EmailAddress = token.EmailAddress
	s.EmailAddressVerified = true
	s.FirstName, s.MiddleName, s.LastName = token.FirstName, token.MiddleName, token.LastName
	s.DateOfBirth = token.DateOfBirth
	s.Trn = token.Trn
	s.TrnLookupStatus = TrnLookupStatusFound
	s.TrnLookup = TrnLookupStateComplete
	return s
}

// OnTrnVerificationElevated records the outcome of the elevation lookup.
func (s AuthenticationState) OnTrnVerificationElevated(trn string, successful bool) AuthenticationState {
	s.ElevationSuccessful = boolPtr(successful)
	if successful {
		s.Trn = trn
		s.TrnLookupStatus = TrnLookupStatusFound
		s.TrnVerificationLevel = TrnVerificationLevelMedium
	}
	return s
}

func (s AuthenticationState) OnHandOff(kind HandOff) AuthenticationState {
	s.HandOff = kind
	return s
}

func (s AuthenticationState) OnSupportTicketRaised() AuthenticationState {
	s.SupportTicketRaised = true
	return s
}

// OnSignInCompleted stamps the time the journey redirected back to the client.
func (s AuthenticationState) OnSignInCompleted(now time.Time) AuthenticationState {
	s.SignInCompletion = now
	return s
}

func (s AuthenticationState) clearExistingAccount() AuthenticationState {
	s.ExistingAccountSearched = false
	s.ExistingAccount = nil
	s.ExistingAccountChosen = nil
	return s
}

func boolPtr(b bool) *bool { return &b }

func isTrue(b *bool) bool { return b != nil && *b }
