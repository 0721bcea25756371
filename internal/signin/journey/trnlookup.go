package journey

import (
	"slices"

	"teacherid/internal/signin/models"
)

// trnLookupTriggers are the steps after which the TRN lookup reruns with the
// answers collected so far, until a match or the final question concludes it.
var trnLookupTriggers = []Step{
	StepDateOfBirth, StepHasNiNumber, StepNiNumber, StepHasTrn, StepTrn, StepAwardedQts, StepIttProvider,
}

var trnLookupGraph = graph{
	start: StepEmail,
	steps: []Step{
		StepEmail, StepEmailConfirmation, StepResendEmailConfirmation,
		StepPhone, StepPhoneConfirmation, StepResendPhoneConfirmation,
		StepName, StepPreferredName, StepDateOfBirth,
		StepAccountExists, StepExistingAccountEmailConfirmation,
		StepHasNiNumber, StepNiNumber, StepHasTrn, StepTrn, StepAwardedQts, StepIttProvider,
		StepCheckAnswers,
		StepTrnInUse, StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail,
	},
	next:     trnLookupNext,
	previous: trnLookupPrevious,
	access:   trnLookupAccess,
	finished: signedIn,
	triggersLookup: func(step Step, st models.AuthenticationState) bool {
		return st.LookupOpen() && !st.IsSignedIn() && slices.Contains(trnLookupTriggers, step)
	},
}

func trnLookupAllAnswered(st models.AuthenticationState) bool {
	return trnLookupAccess(StepCheckAnswers, st)
}

func trnLookupNext(step Step, st models.AuthenticationState) Step {
	concluded := st.LookupConcluded()
	switch step {
	case StepEmailConfirmation, StepPhoneConfirmation:
		switch {
		case st.IsSignedIn():
			return StepNone
		case trnLookupAllAnswered(st):
			return StepCheckAnswers
		}
		if step == StepEmailConfirmation {
			return StepPhone
		}
		return StepName
	case StepName:
		if trnLookupAllAnswered(st) {
			return StepCheckAnswers
		}
		return StepPreferredName
	case StepPreferredName:
		if trnLookupAllAnswered(st) {
			return StepCheckAnswers
		}
		return StepDateOfBirth
	case StepDateOfBirth:
		switch {
		case existingAccountPending(st):
			return StepAccountExists
		case concluded:
			return StepCheckAnswers
		}
		return StepHasNiNumber
	case StepAccountExists:
		switch {
		case st.ExistingAccountChosenTrue():
			return StepExistingAccountEmailConfirmation
		case concluded:
			return StepCheckAnswers
		}
		return StepHasNiNumber
	case StepHasNiNumber:
		switch {
		case concluded:
			return StepCheckAnswers
		case isTrue(st.HasNationalInsuranceNumber):
			return StepNiNumber
		}
		return StepHasTrn
	case StepNiNumber:
		if concluded {
			return StepCheckAnswers
		}
		return StepHasTrn
	case StepHasTrn:
		switch {
		case concluded:
			return StepCheckAnswers
		case isTrue(st.HasTrn):
			return StepTrn
		}
		return StepAwardedQts
	case StepTrn:
		if concluded {
			return StepCheckAnswers
		}
		return StepAwardedQts
	case StepAwardedQts:
		if !concluded && isTrue(st.AwardedQts) {
			return StepIttProvider
		}
		return StepCheckAnswers
	case StepIttProvider:
		return StepCheckAnswers
	}
	return trnInUseNext(step, st, coreNext)
}

// trnInUseNext covers CheckAnswers and the "TRN already in use" sub-path,
// shared by both lookup-capable kinds.
func trnInUseNext(step Step, st models.AuthenticationState, fallback func(Step, models.AuthenticationState) Step) Step {
	switch step {
	case StepCheckAnswers:
		switch st.TrnLookup {
		case models.TrnLookupStateExistingTrnFound:
			return StepTrnInUse
		case models.TrnLookupStateEmailOfExistingAccountForTrnVerified:
			return StepTrnInUseChooseEmail
		}
		return StepNone
	case StepTrnInUse:
		return StepTrnInUseChooseEmail
	case StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail:
		return StepNone
	}
	return fallback(step, st)
}

func trnInUsePrevious(step Step) Step {
	switch step {
	case StepTrnInUse:
		return StepCheckAnswers
	case StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail:
		return StepTrnInUse
	}
	return StepNone
}

func trnLookupPrevious(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepHasNiNumber:
		if st.ExistingAccountFound() {
			return StepAccountExists
		}
		return StepDateOfBirth
	case StepNiNumber:
		return StepHasNiNumber
	case StepHasTrn:
		if isTrue(st.HasNationalInsuranceNumber) {
			return StepNiNumber
		}
		return StepHasNiNumber
	case StepTrn:
		return StepHasTrn
	case StepAwardedQts:
		if isTrue(st.HasTrn) {
			return StepTrn
		}
		return StepHasTrn
	case StepIttProvider:
		return StepAwardedQts
	case StepCheckAnswers:
		// Once concluded the answers are locked; only a declined duplicate
		// account can still be revisited, until the TRN owner is known.
		if st.LookupConcluded() {
			if existingAccountDeclined(st) && st.TrnLookup == models.TrnLookupStateComplete {
				return StepAccountExists
			}
			return StepNone
		}
		if isTrue(st.AwardedQts) {
			return StepIttProvider
		}
		return StepAwardedQts
	case StepTrnInUse, StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail:
		return trnInUsePrevious(step)
	}
	return corePrevious(step, st)
}

// lookupQuestionsReady is true once the personal details are in and any
// duplicate account has been declined.
func lookupQuestionsReady(st models.AuthenticationState) bool {
	return personalDetailsAnswered(st) &&
		st.ExistingAccountSearched &&
		st.ExistingAccountResolved() &&
		!st.ExistingAccountChosenTrue()
}

func trnLookupAccess(step Step, st models.AuthenticationState) bool {
	switch step {
	case StepAccountExists:
		return coreAccess(step, st) && duplicateAnswerOpen(st)
	case StepExistingAccountEmailConfirmation:
		return coreAccess(step, st)
	case StepCheckAnswers:
		return !st.IsSignedIn() && lookupQuestionsReady(st) &&
			(st.TrnLookup == models.TrnLookupStateComplete || st.TrnLookup == models.TrnLookupStateExistingTrnFound)
	case StepTrnInUse, StepTrnInUseChooseEmail, StepTrnInUseCannotAccessEmail:
		return st.ExistingAccountResolved() && !st.ExistingAccountChosenTrue() && trnInUseAccess(step, st)
	}

	if st.IsSignedIn() || !st.LookupOpen() {
		return false
	}
	switch step {
	case StepHasNiNumber:
		return lookupQuestionsReady(st)
	case StepNiNumber:
		return lookupQuestionsReady(st) && isTrue(st.HasNationalInsuranceNumber)
	case StepHasTrn:
		return lookupQuestionsReady(st) && st.NationalInsuranceNumberAnswered()
	case StepTrn:
		return lookupQuestionsReady(st) && st.NationalInsuranceNumberAnswered() && isTrue(st.HasTrn)
	case StepAwardedQts:
		return lookupQuestionsReady(st) && st.NationalInsuranceNumberAnswered() && st.TrnAnswered()
	case StepIttProvider:
		return lookupQuestionsReady(st) && st.NationalInsuranceNumberAnswered() && st.TrnAnswered() && isTrue(st.AwardedQts)
	}
	return coreAccess(step, st)
}

// duplicateAnswerOpen reports whether the duplicate-account answer may still
// change. A concluded lookup with a TRN owner freezes a declined answer; a
// duplicate found alongside the concluding lookup must still be answered.
func duplicateAnswerOpen(st models.AuthenticationState) bool {
	if st.TrnLookup <= models.TrnLookupStateComplete {
		return true
	}
	return !existingAccountDeclined(st)
}

func trnInUseAccess(step Step, st models.AuthenticationState) bool {
	if st.IsSignedIn() {
		return false
	}
	if step == StepTrnInUseChooseEmail {
		return st.TrnLookup == models.TrnLookupStateEmailOfExistingAccountForTrnVerified
	}
	return trnOwnerReconciliation(st)
}
