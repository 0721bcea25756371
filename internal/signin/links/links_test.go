package links

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teacherid/internal/signin/journey"
	id "teacherid/pkg/domain"
)

func TestStepURL(t *testing.T) {
	journeyID := id.NewJourneyID()

	t.Run("absolute base", func(t *testing.T) {
		r := New("https://signin.example/")
		assert.Equal(t,
			"https://signin.example/sign-in/trn/has-nino?asid="+journeyID.String(),
			r.StepURL(journey.KindTrnLookup, journey.StepHasNiNumber, journeyID))
	})

	t.Run("root relative", func(t *testing.T) {
		r := New("")
		assert.Equal(t,
			"/sign-in/elevate/landing?asid="+journeyID.String(),
			r.StepURL(journey.KindElevateTrnVerificationLevel, journey.StepLanding, journeyID))
	})
}

func TestStepPath(t *testing.T) {
	assert.Equal(t, "/sign-in/legacy-trn/check-answers", StepPath(journey.KindLegacyTrn, journey.StepCheckAnswers))
}
