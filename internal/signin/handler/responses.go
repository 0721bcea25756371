package handler

import "teacherid/internal/signin/journey"

// StepResponse describes the step a user is on.
type StepResponse struct {
	JourneyID string `json:"journey_id"`
	Kind      string `json:"kind"`
	Step      string `json:"step"`
	BackURL   string `json:"back_url,omitempty"`
	Email     string `json:"email,omitempty"`
	SignedIn  bool   `json:"signed_in"`
}

func newStepResponse(j journey.Journey, step journey.Step) *StepResponse {
	st := j.State()
	resp := &StepResponse{
		JourneyID: st.JourneyID.String(),
		Kind:      j.Kind().String(),
		Step:      step.String(),
		Email:     st.EmailAddress,
		SignedIn:  st.IsSignedIn(),
	}
	if back, ok := j.TryPreviousStepURL(step); ok {
		resp.BackURL = back
	}
	return resp
}
