package journey

import "teacherid/internal/signin/models"

// The TRN token journey starts from a pre-authorized token that already
// supplies the email, TRN, name and date of birth.
var trnTokenGraph = graph{
	start: StepLanding,
	steps: []Step{
		StepLanding, StepPhone, StepPhoneConfirmation, StepResendPhoneConfirmation,
		StepPreferredName, StepCheckAnswers,
	},
	next:     trnTokenNext,
	previous: trnTokenPrevious,
	access:   trnTokenAccess,
	finished: signedIn,
}

func trnTokenNext(step Step, st models.AuthenticationState) Step {
	switch step {
	case StepLanding:
		return StepPhone
	case StepPhone, StepResendPhoneConfirmation:
		return StepPhoneConfirmation
	case StepPhoneConfirmation:
		switch {
		case st.IsSignedIn():
			return StepNone
		case trnTokenAccess(StepCheckAnswers, st):
			return StepCheckAnswers
		}
		return StepPreferredName
	case StepPreferredName:
		return StepCheckAnswers
	}
	return StepNone
}

func trnTokenPrevious(step Step, _ models.AuthenticationState) Step {
	switch step {
	case StepPhone:
		return StepLanding
	case StepPhoneConfirmation:
		return StepPhone
	case StepResendPhoneConfirmation, StepPreferredName:
		return StepPhoneConfirmation
	case StepCheckAnswers:
		return StepPreferredName
	}
	return StepNone
}

func trnTokenAccess(step Step, st models.AuthenticationState) bool {
	if !st.TrnTokenApplied() || st.IsSignedIn() {
		return false
	}
	switch step {
	case StepLanding, StepPhone:
		return true
	case StepPhoneConfirmation, StepResendPhoneConfirmation:
		return st.MobileSet()
	case StepPreferredName:
		return st.MobileNumberVerified
	case StepCheckAnswers:
		return st.MobileNumberVerified && st.PreferredNameSet()
	}
	return false
}
