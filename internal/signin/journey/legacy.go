package journey

import "teacherid/internal/signin/models"

// The legacy TRN journey asks for the TRN up front, has no phone or
// preferred-name questions and runs the lookup once, from the final question.
var legacyTrnGraph = graph{
	start: StepEmail,
	steps: []Step{
		StepEmail, StepEmailConfirmation, StepResendEmailConfirmation,
		StepHasTrn, StepTrn, StepName, StepDateOfBirth,
		StepHasNiNumber, StepNiNumber, StepAwardedQts, StepIttProvider,
		StepCheckAnswers,
		StepTrnInUse, StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail,
	},
	next:     legacyTrnNext,
	previous: legacyTrnPrevious,
	access:   legacyTrnAccess,
	finished: signedIn,
	triggersLookup: func(step Step, st models.AuthenticationState) bool {
		return st.LookupOpen() && !st.IsSignedIn() &&
			(step == StepAwardedQts || step == StepIttProvider) &&
			st.LookupQuestionsAnswered()
	},
}

func legacyTrnNext(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepEmail, StepResendEmailConfirmation:
		return StepEmailConfirmation
	case StepEmailConfirmation:
		switch {
		case st.IsSignedIn():
			return StepNone
		case legacyTrnAccess(StepCheckAnswers, st):
			return StepCheckAnswers
		}
		return StepHasTrn
	case StepHasTrn:
		if isTrue(st.HasTrn) {
			return StepTrn
		}
		return StepName
	case StepTrn:
		return StepName
	case StepName:
		return StepDateOfBirth
	case StepDateOfBirth:
		return StepHasNiNumber
	case StepHasNiNumber:
		if isTrue(st.HasNationalInsuranceNumber) {
			return StepNiNumber
		}
		return StepAwardedQts
	case StepNiNumber:
		return StepAwardedQts
	case StepAwardedQts:
		if !st.LookupConcluded() && isTrue(st.AwardedQts) {
			return StepIttProvider
		}
		return StepCheckAnswers
	case StepIttProvider:
		return StepCheckAnswers
	}
	return trnInUseNext(step, st, func(Step, models.AuthenticationState) Step { return StepNone })
}

func legacyTrnPrevious(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepEmailConfirmation:
		return StepEmail
	case StepResendEmailConfirmation, StepHasTrn:
		return StepEmailConfirmation
	case StepTrn:
		return StepHasTrn
	case StepName:
		if isTrue(st.HasTrn) {
			return StepTrn
		}
		return StepHasTrn
	case StepDateOfBirth:
		return StepName
	case StepHasNiNumber:
		return StepDateOfBirth
	case StepNiNumber:
		return StepHasNiNumber
	case StepAwardedQts:
		if isTrue(st.HasNationalInsuranceNumber) {
			return StepNiNumber
		}
		return StepHasNiNumber
	case StepIttProvider:
		return StepAwardedQts
	case StepCheckAnswers:
		if st.LookupConcluded() {
			return StepNone
		}
		if isTrue(st.AwardedQts) {
			return StepIttProvider
		}
		return StepAwardedQts
	}
	return trnInUsePrevious(step)
}

func legacyTrnAccess(step Step, st models.AuthenticationState) bool {
	switch step {
	case StepCheckAnswers:
		return !st.IsSignedIn() && st.EmailAddressVerified && st.NameSet() && st.DateOfBirthSet() &&
			st.LookupQuestionsAnswered() &&
			(st.TrnLookup == models.TrnLookupStateComplete || st.TrnLookup == models.TrnLookupStateExistingTrnFound)
	case StepTrnInUse, StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail:
		return trnInUseAccess(step, st)
	}

	if step == StepEmail {
		return st.LookupOpen()
	}
	if st.IsSignedIn() || !st.LookupOpen() {
		return false
	}
	switch step {
	case StepEmailConfirmation, StepResendEmailConfirmation:
		return st.EmailSet()
	case StepHasTrn:
		return st.EmailAddressVerified
	case StepTrn:
		return st.EmailAddressVerified && isTrue(st.HasTrn)
	case StepName:
		return st.EmailAddressVerified && st.TrnAnswered()
	case StepDateOfBirth:
		return st.EmailAddressVerified && st.TrnAnswered() && st.NameSet()
	case StepHasNiNumber:
		return st.EmailAddressVerified && st.TrnAnswered() && st.NameSet() && st.DateOfBirthSet()
	case StepNiNumber:
		return legacyTrnAccess(StepHasNiNumber, st) && isTrue(st.HasNationalInsuranceNumber)
	case StepAwardedQts:
		return legacyTrnAccess(StepHasNiNumber, st) && st.NationalInsuranceNumberAnswered()
	case StepIttProvider:
		return legacyTrnAccess(StepAwardedQts, st) && isTrue(st.AwardedQts)
	}
	return false
}
