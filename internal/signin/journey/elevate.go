package journey

import "teacherid/internal/signin/models"

// The elevation journey is entered by hand-off once a signed-in user needs a
// Medium TRN verification level. Its lookup runs from CheckAnswers.
var elevateGraph = graph{
	start:    StepLanding,
	steps:    []Step{StepLanding, StepTrn, StepNiNumber, StepCheckAnswers},
	next:     elevateNext,
	previous: elevatePrevious,
	access:   elevateAccess,
	finished: func(st models.AuthenticationState) bool { return st.ElevationSuccessful != nil },
	triggersLookup: func(step Step, st models.AuthenticationState) bool {
		return step == StepCheckAnswers && st.IsSignedIn() && st.ElevationSuccessful == nil
	},
}

func elevateNext(step Step, _ models.AuthenticationState) Step {
	switch step {
	case StepLanding:
		return StepTrn
	case StepTrn:
		return StepNiNumber
	case StepNiNumber:
		return StepCheckAnswers
	}
	return StepNone
}

func elevatePrevious(step Step, _ models.AuthenticationState) Step {
	switch step {
	case StepTrn:
		return StepLanding
	case StepNiNumber:
		return StepTrn
	case StepCheckAnswers:
		return StepNiNumber
	}
	return StepNone
}

func elevateAccess(step Step, st models.AuthenticationState) bool {
	if !st.IsSignedIn() || st.ElevationSuccessful != nil {
		return false
	}
	switch step {
	case StepLanding, StepTrn:
		return true
	case StepNiNumber:
		return st.StatedTrn != ""
	case StepCheckAnswers:
		return st.StatedTrn != "" && st.NationalInsuranceNumber != ""
	}
	return false
}
