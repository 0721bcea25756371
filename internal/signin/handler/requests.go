package handler

import (
	"net/url"
	"strings"
	"time"

	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/models"
	dErrors "teacherid/pkg/domain-errors"
)

// StartRequest is the body of POST /sign-in: the authorization request the
// journey serves and where to send the user once signed in.
type StartRequest struct {
	ClientID                         string   `json:"client_id"`
	Scopes                           []string `json:"scopes"`
	RedirectURI                      string   `json:"redirect_uri"`
	TrnRequirement                   string   `json:"trn_requirement"`
	TrnMatchPolicy                   string   `json:"trn_match_policy"`
	LegacyTrnJourney                 bool     `json:"legacy_trn_journey"`
	RaiseTrnResolutionSupportTickets bool     `json:"raise_trn_resolution_support_tickets"`
	PostSignInURL                    string   `json:"post_sign_in_url"`
}

func (r *StartRequest) Normalize() {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.PostSignInURL = strings.TrimSpace(r.PostSignInURL)
	r.TrnRequirement = strings.ToLower(strings.TrimSpace(r.TrnRequirement))
	r.TrnMatchPolicy = strings.ToLower(strings.TrimSpace(r.TrnMatchPolicy))
	scopes := r.Scopes[:0]
	for _, s := range r.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	r.Scopes = scopes
}

func (r *StartRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if r.PostSignInURL == "" {
		return dErrors.New(dErrors.CodeValidation, "post_sign_in_url is required")
	}
	if u, err := url.Parse(r.PostSignInURL); err != nil || !u.IsAbs() {
		return dErrors.New(dErrors.CodeValidation, "post_sign_in_url must be an absolute url")
	}
	switch models.TrnRequirement(r.TrnRequirement) {
	case "", models.TrnRequirementNone, models.TrnRequirementOptional, models.TrnRequirementRequired:
	default:
		return dErrors.New(dErrors.CodeValidation, "trn_requirement must be none, optional or required")
	}
	switch models.TrnMatchPolicy(r.TrnMatchPolicy) {
	case "", models.TrnMatchPolicyDefault, models.TrnMatchPolicyStrict:
	default:
		return dErrors.New(dErrors.CodeValidation, "trn_match_policy must be default or strict")
	}
	return nil
}

// OAuthContext converts the request into the journey's view of the client.
func (r *StartRequest) OAuthContext() models.OAuthContext {
	requirement := models.TrnRequirement(r.TrnRequirement)
	if requirement == "" {
		requirement = models.TrnRequirementNone
	}
	policy := models.TrnMatchPolicy(r.TrnMatchPolicy)
	if policy == "" {
		policy = models.TrnMatchPolicyDefault
	}
	return models.OAuthContext{
		ClientID:                         r.ClientID,
		Scopes:                           r.Scopes,
		RedirectURI:                      r.RedirectURI,
		TrnRequirement:                   requirement,
		TrnMatchPolicy:                   policy,
		LegacyTrnJourney:                 r.LegacyTrnJourney,
		RaiseTrnResolutionSupportTickets: r.RaiseTrnResolutionSupportTickets,
	}
}

// TrnTokenRequest is the body of POST /sign-in/trn-token.
type TrnTokenRequest struct {
	Token string `json:"token"`
}

func (r *TrnTokenRequest) Normalize() { r.Token = strings.TrimSpace(r.Token) }

func (r *TrnTokenRequest) Validate() error {
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// ChooseEmailRequest picks the address the TRN owner's account keeps.
type ChooseEmailRequest struct {
	Email string `json:"email"`
}

func (r *ChooseEmailRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *ChooseEmailRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

// AnswerRequest carries the answer to any question step. Only the fields of
// the submitted step are read.
type AnswerRequest struct {
	Email            string `json:"email"`
	MobileNumber     string `json:"mobile_number"`
	FirstName        string `json:"first_name"`
	MiddleName       string `json:"middle_name"`
	LastName         string `json:"last_name"`
	HasPreferredName *bool  `json:"has_preferred_name"`
	PreferredName    string `json:"preferred_name"`
	DateOfBirth      string `json:"date_of_birth"`
	IsYourAccount    *bool  `json:"is_your_account"`
	HasNiNumber      *bool  `json:"has_ni_number"`
	NiNumber         string `json:"ni_number"`
	HasTrn           *bool  `json:"has_trn"`
	Trn              string `json:"trn"`
	AwardedQts       *bool  `json:"awarded_qts"`
	HasIttProvider   *bool  `json:"has_itt_provider"`
	IttProviderName  string `json:"itt_provider_name"`

	dateOfBirth time.Time
}

func (r *AnswerRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.MobileNumber = strings.ReplaceAll(strings.TrimSpace(r.MobileNumber), " ", "")
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PreferredName = strings.TrimSpace(r.PreferredName)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.NiNumber = strings.TrimSpace(r.NiNumber)
	r.Trn = strings.TrimSpace(r.Trn)
	r.IttProviderName = strings.TrimSpace(r.IttProviderName)
}

// Validate checks the format of whatever was supplied. Required fields are
// checked per step by For.
func (r *AnswerRequest) Validate() error {
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid email address")
	}
	if len(r.FirstName) > 200 || len(r.MiddleName) > 200 || len(r.LastName) > 200 || len(r.PreferredName) > 200 {
		return dErrors.New(dErrors.CodeValidation, "names must be at most 200 characters")
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, r.DateOfBirth)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be formatted YYYY-MM-DD")
		}
		r.dateOfBirth = dob
	}
	return nil
}

type applyFunc = func(models.AuthenticationState) (models.AuthenticationState, error)

// For returns the state event recording the answer to step.
func (r *AnswerRequest) For(step journey.Step) (applyFunc, error) {
	event := func(fn func(models.AuthenticationState) models.AuthenticationState) (applyFunc, error) {
		return func(st models.AuthenticationState) (models.AuthenticationState, error) {
			return fn(st), nil
		}, nil
	}

	switch step {
	case journey.StepEmail:
		if r.Email == "" {
			return nil, required("email")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState { return st.OnEmailSet(r.Email) })
	case journey.StepPhone:
		if r.MobileNumber == "" {
			return nil, required("mobile_number")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnMobileNumberSet(r.MobileNumber)
		})
	case journey.StepName:
		if r.FirstName == "" || r.LastName == "" {
			return nil, required("first_name and last_name")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnNameSet(r.FirstName, r.MiddleName, r.LastName)
		})
	case journey.StepPreferredName:
		if r.HasPreferredName == nil {
			return nil, required("has_preferred_name")
		}
		if *r.HasPreferredName && r.PreferredName == "" {
			return nil, required("preferred_name")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnPreferredNameSet(*r.HasPreferredName, r.PreferredName)
		})
	case journey.StepDateOfBirth:
		if r.dateOfBirth.IsZero() {
			return nil, required("date_of_birth")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnDateOfBirthSet(r.dateOfBirth)
		})
	case journey.StepAccountExists:
		if r.IsYourAccount == nil {
			return nil, required("is_your_account")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnExistingAccountChosen(*r.IsYourAccount)
		})
	case journey.StepHasNiNumber:
		if r.HasNiNumber == nil {
			return nil, required("has_ni_number")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnHasNationalInsuranceNumberSet(*r.HasNiNumber)
		})
	case journey.StepNiNumber:
		if r.NiNumber == "" {
			return nil, required("ni_number")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnNationalInsuranceNumberSet(r.NiNumber)
		})
	case journey.StepHasTrn:
		if r.HasTrn == nil {
			return nil, required("has_trn")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState { return st.OnHasTrnSet(*r.HasTrn) })
	case journey.StepTrn:
		if r.Trn == "" {
			return nil, required("trn")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState { return st.OnTrnSet(r.Trn) })
	case journey.StepAwardedQts:
		if r.AwardedQts == nil {
			return nil, required("awarded_qts")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnAwardedQtsSet(*r.AwardedQts)
		})
	case journey.StepIttProvider:
		if r.HasIttProvider == nil {
			return nil, required("has_itt_provider")
		}
		if *r.HasIttProvider && r.IttProviderName == "" {
			return nil, required("itt_provider_name")
		}
		return event(func(st models.AuthenticationState) models.AuthenticationState {
			return st.OnHasIttProviderSet(*r.HasIttProvider, r.IttProviderName)
		})
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, "step "+step.String()+" takes no answer")
}

func required(field string) error {
	return dErrors.New(dErrors.CodeValidation, field+" is required")
}
