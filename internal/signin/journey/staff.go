package journey

import "teacherid/internal/signin/models"

// Staff sign in with email only; registration is not offered.
var staffGraph = graph{
	start:    StepEmail,
	steps:    []Step{StepEmail, StepEmailConfirmation, StepResendEmailConfirmation},
	next:     staffNext,
	previous: staffPrevious,
	access:   staffAccess,
	finished: signedIn,
}

func staffNext(step Step, _ models.AuthenticationState) Step {
	switch step {
	case StepEmail, StepResendEmailConfirmation:
		return StepEmailConfirmation
	}
	return StepNone
}

func staffPrevious(step Step, _ models.AuthenticationState) Step {
	switch step {
	case StepEmailConfirmation:
		return StepEmail
	case StepResendEmailConfirmation:
		return StepEmailConfirmation
	}
	return StepNone
}

func staffAccess(step Step, st models.AuthenticationState) bool {
	switch step {
	case StepEmail:
		return true
	case StepEmailConfirmation, StepResendEmailConfirmation:
		return !st.IsSignedIn() && st.EmailSet()
	}
	return false
}
