package journey

import "teacherid/internal/signin/models"

var coreGraph = graph{
	start: StepEmail,
	steps: []Step{
		StepEmail, StepEmailConfirmation, StepResendEmailConfirmation,
		StepPhone, StepPhoneConfirmation, StepResendPhoneConfirmation,
		StepName, StepPreferredName, StepDateOfBirth,
		StepAccountExists, StepExistingAccountEmailConfirmation,
		StepCheckAnswers,
	},
	next:     coreNext,
	previous: corePrevious,
	access:   coreAccess,
	finished: signedIn,
}

func coreAllAnswered(st models.AuthenticationState) bool {
	return coreAccess(StepCheckAnswers, st)
}

func coreNext(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepEmail, StepResendEmailConfirmation:
		return StepEmailConfirmation
	case StepEmailConfirmation:
		switch {
		case st.IsSignedIn():
			return StepNone
		case coreAllAnswered(st):
			return StepCheckAnswers
		}
		return StepPhone
	case StepPhone, StepResendPhoneConfirmation:
		return StepPhoneConfirmation
	case StepPhoneConfirmation:
		switch {
		case st.IsSignedIn():
			return StepNone
		case coreAllAnswered(st):
			return StepCheckAnswers
		}
		return StepName
	case StepName:
		if coreAllAnswered(st) {
			return StepCheckAnswers
		}
		return StepPreferredName
	case StepPreferredName:
		if coreAllAnswered(st) {
			return StepCheckAnswers
		}
		return StepDateOfBirth
	case StepDateOfBirth:
		if existingAccountPending(st) {
			return StepAccountExists
		}
		return StepCheckAnswers
	case StepAccountExists:
		if st.ExistingAccountChosenTrue() {
			return StepExistingAccountEmailConfirmation
		}
		return StepCheckAnswers
	}
	return StepNone
}

func corePrevious(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepEmailConfirmation:
		return StepEmail
	case StepResendEmailConfirmation, StepPhone:
		return StepEmailConfirmation
	case StepPhoneConfirmation:
		return StepPhone
	case StepResendPhoneConfirmation, StepName:
		return StepPhoneConfirmation
	case StepPreferredName:
		return StepName
	case StepDateOfBirth:
		return StepPreferredName
	case StepAccountExists:
		return StepDateOfBirth
	case StepExistingAccountEmailConfirmation:
		return StepAccountExists
	case StepCheckAnswers:
		if existingAccountDeclined(st) {
			return StepAccountExists
		}
		return StepDateOfBirth
	}
	return StepNone
}

func coreAccess(step Step, st models.AuthenticationState) bool {
	if step == StepEmail {
		return true
	}
	if st.IsSignedIn() {
		return false
	}
	switch step {
	case StepEmailConfirmation, StepResendEmailConfirmation:
		return st.EmailSet()
	case StepPhone:
		return st.EmailAddressVerified
	case StepPhoneConfirmation, StepResendPhoneConfirmation:
		return st.EmailAddressVerified && st.MobileSet()
	case StepName:
		return contactVerified(st)
	case StepPreferredName:
		return contactVerified(st) && st.NameSet()
	case StepDateOfBirth:
		return contactVerified(st) && st.NameSet() && st.PreferredNameSet()
	case StepAccountExists:
		return personalDetailsAnswered(st) && st.ExistingAccountFound()
	case StepExistingAccountEmailConfirmation:
		return personalDetailsAnswered(st) && st.ExistingAccountChosenTrue()
	case StepCheckAnswers:
		return personalDetailsAnswered(st) &&
			st.ExistingAccountSearched &&
			st.ExistingAccountResolved() &&
			!st.ExistingAccountChosenTrue()
	}
	return false
}
