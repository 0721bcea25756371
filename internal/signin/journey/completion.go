package journey

import (
	"context"
	"errors"
	"strings"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	dErrors "teacherid/pkg/domain-errors"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/requestcontext"
)

// Advance moves past current, first running the kind's lookup when current is
// a lookup-triggering step.
func (j Journey) Advance(ctx context.Context, current Step) (Outcome, error) {
	if !j.graph.has(current) {
		return Outcome{}, unknownStepError(j.kind, current)
	}

	st := j.state
	var err error
	if current == StepDateOfBirth && (j.kind == KindCore || j.kind == KindTrnLookup) {
		if st, err = j.searchExistingAccount(ctx, st); err != nil {
			return Outcome{}, err
		}
	}
	if j.graph.triggers(current, st) {
		if j.kind == KindElevateTrnVerificationLevel {
			st, err = j.elevate(ctx, st)
		} else {
			st, err = j.runTrnLookup(ctx, st)
		}
		if err != nil {
			return Outcome{}, err
		}
	}
	return j.redirectAfter(ctx, st, current)
}

// OnEmailVerified is called once a one-time code sent to an email address is
// confirmed. user is the account that already owns the address, if any.
func (j Journey) OnEmailVerified(ctx context.Context, user *models.User, current Step) (Outcome, error) {
	if !j.graph.has(current) {
		return Outcome{}, unknownStepError(j.kind, current)
	}
	if j.incompatibleUser(user) {
		return j.forbidden(ctx, user, current), nil
	}

	st := j.state
	switch current {
	case StepExistingAccountEmailConfirmation:
		owner, err := j.existingAccountUser(ctx, user)
		if err != nil {
			return Outcome{}, err
		}
		st = st.OnSignedIn(owner)
		if err := j.establishSession(ctx, owner); err != nil {
			return Outcome{}, err
		}
		j.logAudit(ctx, "signed_in_existing_account", "user_id", owner.ID.String())
	case StepTrnInUse:
		st = st.OnEmailVerifiedOfExistingAccountForTrn()
	default:
		st = st.OnEmailVerified(user)
		if user != nil {
			if err := j.establishSession(ctx, user); err != nil {
				return Outcome{}, err
			}
			j.logAudit(ctx, "signed_in", "user_id", user.ID.String(), "via", "email")
		}
	}
	return j.with(st).Advance(ctx, current)
}

// OnMobileVerified is called once a one-time code sent to a mobile number is
// confirmed. user is the account that already owns the number, if any.
func (j Journey) OnMobileVerified(ctx context.Context, user *models.User, current Step) (Outcome, error) {
	if j.kind == KindStaff || j.kind == KindElevateTrnVerificationLevel || j.kind == KindLegacyTrn {
		return Outcome{}, unsupportedError(j.kind, "mobile verification")
	}
	if !j.graph.has(current) {
		return Outcome{}, unknownStepError(j.kind, current)
	}
	if j.incompatibleUser(user) {
		return j.forbidden(ctx, user, current), nil
	}

	st := j.state.OnMobileVerified(user)
	if user != nil {
		if err := j.establishSession(ctx, user); err != nil {
			return Outcome{}, err
		}
		j.logAudit(ctx, "signed_in", "user_id", user.ID.String(), "via", "mobile")
	}
	return j.with(st).Advance(ctx, current)
}

// CreateUser registers the account described by the state and signs in.
func (j Journey) CreateUser(ctx context.Context, current Step) (Outcome, error) {
	if !j.graph.has(current) {
		return Outcome{}, unknownStepError(j.kind, current)
	}
	switch j.kind {
	case KindCore:
		return j.createUser(ctx, current, j.state, j.state.NewUser())
	case KindTrnLookup, KindLegacyTrn:
		if current == StepTrnInUseCannotAccessEmail {
			return j.createUserWithoutTrn(ctx, current)
		}
		return j.createUserWithTrn(ctx, current)
	case KindTrnToken:
		return j.createUserWithToken(ctx, current)
	}
	return Outcome{}, unsupportedError(j.kind, "user creation")
}

// ApplyTrnToken hands a fresh lookup-capable journey off to the TRN token
// journey.
func (j Journey) ApplyTrnToken(ctx context.Context, token models.TrnToken) (Outcome, error) {
	if j.kind != KindTrnLookup && j.kind != KindLegacyTrn {
		return Outcome{}, unsupportedError(j.kind, "trn tokens")
	}
	st := j.state
	if st.EmailSet() || st.IsSignedIn() {
		return Outcome{}, dErrors.New(dErrors.CodeBadRequest, "a trn token can only be applied before any answers are given")
	}
	if token.IsExpired(requestcontext.Now(ctx)) {
		return Outcome{}, dErrors.New(dErrors.CodeBadRequest, "trn token has expired")
	}

	st = st.OnTrnTokenApplied(token).OnHandOff(models.HandOffTrnToken)
	j.logAudit(ctx, "trn_token_applied")
	return Outcome{
		State:       st,
		RedirectURL: j.deps.Links.StepURL(KindTrnToken, trnTokenGraph.start, st.JourneyID),
	}, nil
}

// ChooseTrnOwnerEmail finishes the "TRN already in use" path: the user proved
// access to the owning account and picks which address that account keeps.
func (j Journey) ChooseTrnOwnerEmail(ctx context.Context, current Step, email string) (Outcome, error) {
	if j.kind != KindTrnLookup && j.kind != KindLegacyTrn {
		return Outcome{}, unsupportedError(j.kind, "choosing the trn owner email")
	}
	if current != StepTrnInUseChooseEmail {
		return Outcome{}, unknownStepError(j.kind, current)
	}
	st := j.state
	if !j.CanAccessStep(current) || st.TrnOwner == nil {
		return Outcome{}, inaccessibleStepError(j.kind, current, current)
	}
	email = strings.TrimSpace(email)
	if !strings.EqualFold(email, st.TrnOwner.EmailAddress) && !strings.EqualFold(email, st.EmailAddress) {
		return Outcome{}, dErrors.New(dErrors.CodeValidation, "email must be one of the offered addresses")
	}

	owner, err := j.deps.Users.FindByID(ctx, st.TrnOwner.UserID)
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trn owner")
	}
	if !strings.EqualFold(owner.EmailAddress, email) {
		if err := j.deps.Users.UpdateEmail(ctx, owner.ID, email); err != nil {
			return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update trn owner email")
		}
		updated := *owner
		updated.EmailAddress = email
		owner = &updated
	}

	st = st.OnTrnOwnerEmailChosen(email).OnSignedIn(owner)
	if err := j.establishSession(ctx, owner); err != nil {
		return Outcome{}, err
	}
	j.logAudit(ctx, "signed_in_trn_owner", "user_id", owner.ID.String())
	return j.redirectAfter(ctx, st, current)
}

// redirectAfter computes the redirect for st having just left current. A
// finished journey either hands off to elevation or returns to the client.
func (j Journey) redirectAfter(ctx context.Context, st models.AuthenticationState, current Step) (Outcome, error) {
	nj := j.with(st)
	if !nj.IsFinished() {
		url, err := nj.NextStepURL(current)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{State: st, RedirectURL: url}, nil
	}

	if j.kind != KindElevateTrnVerificationLevel && st.RequiresTrnVerificationLevelElevation() {
		st = st.OnHandOff(models.HandOffElevateTrnVerificationLevel)
		j.logAudit(ctx, "trn_verification_elevation_required", "user_id", st.UserID.String())
		return Outcome{
			State:       st,
			RedirectURL: j.deps.Links.StepURL(KindElevateTrnVerificationLevel, elevateGraph.start, st.JourneyID),
		}, nil
	}

	st = st.OnSignInCompleted(requestcontext.Now(ctx))
	j.deps.Metrics.IncrementCompletion(j.kind.String())
	j.logAudit(ctx, "sign_in_completed", "user_id", st.UserID.String(), "first_time_sign_in", st.FirstTimeSignIn)
	return Outcome{State: st, RedirectURL: st.PostSignInURL}, nil
}

func (j Journey) incompatibleUser(user *models.User) bool {
	if j.kind == KindStaff {
		return !user.IsStaff()
	}
	return user.IsStaff()
}

func (j Journey) forbidden(ctx context.Context, user *models.User, current Step) Outcome {
	attrs := []any{"step", current.String()}
	if user != nil {
		attrs = append(attrs, "user_id", user.ID.String(), "user_type", string(user.Type))
	}
	j.deps.logger().WarnContext(ctx, "account type not permitted for journey",
		append([]any{"journey_id", j.state.JourneyID.String(), "journey_kind", j.kind.String()}, attrs...)...)
	j.deps.Metrics.IncrementForbidden(j.kind.String())
	return Outcome{State: j.state, Forbidden: true}
}

func (j Journey) establishSession(ctx context.Context, user *models.User) error {
	if err := j.deps.Sessions.SignIn(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to establish session")
	}
	return nil
}

// existingAccountUser returns the account behind the duplicate the user
// claimed, preferring the one the verifier already loaded.
func (j Journey) existingAccountUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user != nil {
		return user, nil
	}
	if j.state.ExistingAccount == nil {
		return nil, inaccessibleStepError(j.kind, StepAccountExists, StepExistingAccountEmailConfirmation)
	}
	owner, err := j.deps.Users.FindByID(ctx, j.state.ExistingAccount.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load existing account")
	}
	return owner, nil
}

// searchExistingAccount looks for a duplicate registration once name and
// date of birth are known.
func (j Journey) searchExistingAccount(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	if st.ExistingAccountSearched || !st.NameSet() || !st.DateOfBirthSet() {
		return st, nil
	}
	candidate, err := j.deps.Users.FindExistingAccount(ctx, st.FirstName, st.LastName, *st.DateOfBirth, st.EmailAddress)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return st.OnExistingAccountSearched(nil), nil
	case err != nil:
		return st, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search for existing account")
	}
	j.logAudit(ctx, "existing_account_found", "existing_user_id", candidate.UserID.String())
	return st.OnExistingAccountSearched(candidate), nil
}

// runTrnLookup queries the matcher with the answers so far. A match or a
// fully answered question set concludes the lookup; a concluded TRN that
// already belongs to an account diverts into the "TRN in use" path.
func (j Journey) runTrnLookup(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	res := j.deps.Lookup.Lookup(ctx, st.LookupCriteria())
	concluded := res.Status == models.TrnLookupStatusFound || st.LookupQuestionsAnswered()
	st = st.OnTrnLookupCompleted(res.Trn, res.Status, concluded)

	j.deps.logger().InfoContext(ctx, "trn lookup completed",
		"journey_id", st.JourneyID.String(),
		"journey_kind", j.kind.String(),
		"status", string(res.Status),
		"candidates", res.Candidates,
		"concluded", concluded,
	)

	if !concluded || res.Trn == "" {
		return st, nil
	}
	owner, err := j.deps.Users.FindByTrn(ctx, res.Trn)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return st, nil
	case err != nil:
		return st, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check trn ownership")
	}
	return j.trnInUse(ctx, st, owner), nil
}

func (j Journey) trnInUse(ctx context.Context, st models.AuthenticationState, owner *models.User) models.AuthenticationState {
	st = st.OnTrnLookupCompletedForTrnAlreadyInUse(models.ExistingAccount{
		UserID:       owner.ID,
		EmailAddress: owner.EmailAddress,
		MobileNumber: owner.MobileNumber,
	})
	j.deps.Metrics.IncrementTrnInUse()
	j.logAudit(ctx, "trn_in_use", "owner_user_id", owner.ID.String())
	return st
}

// elevate runs the lookup with the NI number and TRN the signed-in user gave.
// Anything other than a single match that can be recorded is unsuccessful.
func (j Journey) elevate(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	res := j.deps.Lookup.Lookup(ctx, st.LookupCriteria())
	if res.Status != models.TrnLookupStatusFound || res.Trn == "" {
		j.logAudit(ctx, "trn_verification_elevation_failed", "user_id", st.UserID.String(), "status", string(res.Status))
		return st.OnTrnVerificationElevated("", false), nil
	}

	err := j.deps.Users.ElevateTrnVerificationLevel(ctx, st.UserID, res.Trn)
	switch {
	case errors.Is(err, models.ErrTrnAlreadyAssigned):
		j.logAudit(ctx, "trn_verification_elevation_failed", "user_id", st.UserID.String(), "reason", "trn_in_use")
		return st.OnTrnVerificationElevated("", false), nil
	case err != nil:
		return st, dErrors.Wrap(err, dErrors.CodeInternal, "failed to elevate trn verification level")
	}
	j.logAudit(ctx, "trn_verification_elevated", "user_id", st.UserID.String())
	return st.OnTrnVerificationElevated(res.Trn, true), nil
}

func (j Journey) createUser(ctx context.Context, current Step, st models.AuthenticationState, nu models.NewUser) (Outcome, error) {
	user, err := j.deps.Users.CreateUser(ctx, nu)
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return j.registered(ctx, current, st, user)
}

// registered signs in as a newly created user and moves on.
func (j Journey) registered(ctx context.Context, current Step, st models.AuthenticationState, user *models.User) (Outcome, error) {
	st = st.OnUserRegistered(user)
	if err := j.establishSession(ctx, user); err != nil {
		return Outcome{}, err
	}
	j.logAudit(ctx, "user_registered", "user_id", user.ID.String(), "trn_lookup_status", string(user.TrnLookupStatus))
	return j.redirectAfter(ctx, st, current)
}

func (j Journey) createUserWithTrn(ctx context.Context, current Step) (Outcome, error) {
	st := j.state
	if st.TrnLookup >= models.TrnLookupStateExistingTrnFound {
		return j.redirectToTrnInUse(st), nil
	}
	if st.OAuth.TrnRequirement == models.TrnRequirementRequired &&
		st.TrnLookupStatus != models.TrnLookupStatusFound &&
		st.TrnLookupStatus != models.TrnLookupStatusPending {
		j.deps.logger().WarnContext(ctx, "client requires a trn and none was matched or claimed",
			"journey_id", st.JourneyID.String(), "client_id", st.OAuth.ClientID)
		j.deps.Metrics.IncrementForbidden(j.kind.String())
		return Outcome{State: st, Forbidden: true}, nil
	}

	user, err := j.deps.Users.CreateUserWithTrn(ctx, st.NewUser())
	if errors.Is(err, models.ErrTrnAlreadyAssigned) {
		owner, ferr := j.deps.Users.FindByTrn(ctx, st.Trn)
		if ferr != nil {
			return Outcome{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load trn owner")
		}
		return j.redirectToTrnInUse(j.trnInUse(ctx, st, owner)), nil
	}
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	st = j.maybeRaiseTicket(ctx, st, user.ID)
	return j.registered(ctx, current, st, user)
}

// createUserWithoutTrn registers a user who cannot reach the TRN owner's
// mailbox. The TRN is left for support to resolve.
func (j Journey) createUserWithoutTrn(ctx context.Context, current Step) (Outcome, error) {
	st := j.state
	nu := st.NewUser()
	nu.Trn = ""
	nu.TrnLookupStatus = models.TrnLookupStatusPending

	user, err := j.deps.Users.CreateUser(ctx, nu)
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	st = j.raiseTicket(ctx, st, user.ID, models.TicketReasonCannotAccessTrnEmail)
	return j.registered(ctx, current, st, user)
}

func (j Journey) createUserWithToken(ctx context.Context, current Step) (Outcome, error) {
	st := j.state
	nu := st.NewUser()
	nu.TrnLookupStatus = models.TrnLookupStatusFound

	user, err := j.deps.Users.CreateUserWithToken(ctx, nu, st.TrnToken)
	if errors.Is(err, models.ErrTrnAlreadyAssigned) {
		owner, ferr := j.deps.Users.FindByTrn(ctx, st.Trn)
		if ferr != nil {
			return Outcome{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load trn owner")
		}
		st = st.OnSignedIn(owner)
		if err := j.establishSession(ctx, owner); err != nil {
			return Outcome{}, err
		}
		j.logAudit(ctx, "signed_in_trn_owner", "user_id", owner.ID.String(), "via", "trn_token")
		return j.redirectAfter(ctx, st, current)
	}
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return j.registered(ctx, current, st, user)
}

func (j Journey) redirectToTrnInUse(st models.AuthenticationState) Outcome {
	return Outcome{State: st, RedirectURL: j.deps.Links.StepURL(j.kind, StepTrnInUse, st.JourneyID)}
}

func (j Journey) maybeRaiseTicket(ctx context.Context, st models.AuthenticationState, userID id.UserID) models.AuthenticationState {
	if st.TrnLookupStatus != models.TrnLookupStatusPending || !st.OAuth.RaiseTrnResolutionSupportTickets {
		return st
	}
	return j.raiseTicket(ctx, st, userID, models.TicketReasonTrnPending)
}

// raiseTicket hands a ticket to the raiser. Failures are logged only.
func (j Journey) raiseTicket(ctx context.Context, st models.AuthenticationState, userID id.UserID, reason string) models.AuthenticationState {
	if st.SupportTicketRaised || j.deps.Tickets == nil {
		return st
	}
	ticket := models.SupportTicket{
		ID:           id.NewTicketID(),
		JourneyID:    st.JourneyID,
		UserID:       userID,
		ClientID:     st.OAuth.ClientID,
		Reason:       reason,
		EmailAddress: st.EmailAddress,
		FirstName:    st.FirstName,
		LastName:     st.LastName,
		DateOfBirth:  st.DateOfBirth,
		StatedTrn:    st.StatedTrn,
		NINumber:     st.NationalInsuranceNumber,
		IttProvider:  st.IttProviderName,
		Raised:       requestcontext.Now(ctx),
	}
	if err := j.deps.Tickets.RaiseSupportTicket(ctx, ticket); err != nil {
		j.deps.logger().ErrorContext(ctx, "failed to raise support ticket",
			"journey_id", st.JourneyID.String(), "reason", reason, "error", err)
		j.deps.Metrics.IncrementSupportTicket(reason, "failed")
		return st
	}
	j.deps.Metrics.IncrementSupportTicket(reason, "raised")
	j.logAudit(ctx, "support_ticket_raised", "ticket_id", ticket.ID.String(), "reason", reason)
	return st.OnSupportTicketRaised()
}

func (j Journey) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append([]any{
		"event", event,
		"log_type", "audit",
		"journey_id", j.state.JourneyID.String(),
		"journey_kind", j.kind.String(),
	}, attrs...)
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		args = append(args, "request_id", reqID)
	}
	j.deps.logger().InfoContext(ctx, event, args...)
}
