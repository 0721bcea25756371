package journey

import "teacherid/internal/signin/models"

// Select picks the top-level journey kind for an authorization request. The
// elevation and TRN token kinds are only entered by hand-off.
func Select(oauth models.OAuthContext) Kind {
	lookup := oauth.RequiresTrnLookup()
	switch {
	case lookup && (oauth.HasScope(models.ScopeTrn) || oauth.LegacyTrnJourney):
		return KindLegacyTrn
	case lookup:
		return KindTrnLookup
	case oauth.RequiresStaffAccount():
		return KindStaff
	default:
		return KindCore
	}
}

// KindFor returns the kind that owns st: a recorded hand-off wins, otherwise
// the top-level selection.
func KindFor(st models.AuthenticationState) Kind {
	switch st.HandOff {
	case models.HandOffElevateTrnVerificationLevel:
		return KindElevateTrnVerificationLevel
	case models.HandOffTrnToken:
		return KindTrnToken
	}
	return Select(st.OAuth)
}

// Materialize builds the live journey for a stored state.
func Materialize(st models.AuthenticationState, deps Deps) Journey {
	kind := KindFor(st)
	g, _ := graphFor(kind)
	return Journey{kind: kind, graph: g, state: st, deps: deps}
}
