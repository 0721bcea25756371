package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/models"
	dErrors "teacherid/pkg/domain-errors"
)

func boolPtr(b bool) *bool { return &b }

func TestAnswerRequestFor(t *testing.T) {
	cases := []struct {
		name  string
		step  journey.Step
		req   AnswerRequest
		check func(t *testing.T, st models.AuthenticationState)
	}{
		{
			name: "preferred name",
			step: journey.StepPreferredName,
			req:  AnswerRequest{HasPreferredName: boolPtr(true), PreferredName: "Jo"},
			check: func(t *testing.T, st models.AuthenticationState) {
				require.NotNil(t, st.HasPreferredName)
				assert.True(t, *st.HasPreferredName)
				assert.Equal(t, "Jo", st.PreferredName)
			},
		},
		{
			name: "ni number",
			step: journey.StepNiNumber,
			req:  AnswerRequest{NiNumber: "AB123456C"},
			check: func(t *testing.T, st models.AuthenticationState) {
				assert.Equal(t, "AB123456C", st.NationalInsuranceNumber)
			},
		},
		{
			name: "no itt provider",
			step: journey.StepIttProvider,
			req:  AnswerRequest{HasIttProvider: boolPtr(false)},
			check: func(t *testing.T, st models.AuthenticationState) {
				require.NotNil(t, st.HasIttProvider)
				assert.False(t, *st.HasIttProvider)
			},
		},
		{
			name: "awarded qts",
			step: journey.StepAwardedQts,
			req:  AnswerRequest{AwardedQts: boolPtr(true)},
			check: func(t *testing.T, st models.AuthenticationState) {
				require.NotNil(t, st.AwardedQts)
				assert.True(t, *st.AwardedQts)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apply, err := tc.req.For(tc.step)
			require.NoError(t, err)
			st, err := apply(models.AuthenticationState{})
			require.NoError(t, err)
			tc.check(t, st)
		})
	}
}

func TestAnswerRequestFor_Rejects(t *testing.T) {
	cases := []struct {
		name string
		step journey.Step
		req  AnswerRequest
		code dErrors.Code
	}{
		{"missing answer", journey.StepHasTrn, AnswerRequest{}, dErrors.CodeValidation},
		{"preferred name without a name", journey.StepPreferredName, AnswerRequest{HasPreferredName: boolPtr(true)}, dErrors.CodeValidation},
		{"itt provider without a name", journey.StepIttProvider, AnswerRequest{HasIttProvider: boolPtr(true)}, dErrors.CodeValidation},
		{"step without a question", journey.StepLanding, AnswerRequest{}, dErrors.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.For(tc.step)
			assert.True(t, dErrors.HasCode(err, tc.code))
		})
	}
}

func TestAnswerRequestValidate(t *testing.T) {
	req := AnswerRequest{DateOfBirth: " 1990-05-17 "}
	req.Normalize()
	require.NoError(t, req.Validate())
	apply, err := req.For(journey.StepDateOfBirth)
	require.NoError(t, err)
	st, err := apply(models.AuthenticationState{})
	require.NoError(t, err)
	require.NotNil(t, st.DateOfBirth)
	assert.Equal(t, "1990-05-17", st.DateOfBirth.Format("2006-01-02"))

	bad := AnswerRequest{DateOfBirth: "17/05/1990"}
	assert.True(t, dErrors.HasCode(bad.Validate(), dErrors.CodeValidation))
}
