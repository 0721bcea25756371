package journey

import (
	"slices"

	"teacherid/internal/signin/models"
)

// graph is one journey kind's step-transition table. next and previous are
// written independently: forward edges depend on what is still missing,
// backward edges on what must already have been answered.
type graph struct {
	start    Step
	steps    []Step
	next     func(Step, models.AuthenticationState) Step
	previous func(Step, models.AuthenticationState) Step
	access   func(Step, models.AuthenticationState) bool
	finished func(models.AuthenticationState) bool
	// triggersLookup reports whether advancing from the step runs the kind's
	// lookup. Nil for kinds without one.
	triggersLookup func(Step, models.AuthenticationState) bool
}

// graphFor is the single dispatch point over Kind.
func graphFor(kind Kind) (graph, bool) {
	switch kind {
	case KindCore:
		return coreGraph, true
	case KindTrnLookup:
		return trnLookupGraph, true
	case KindLegacyTrn:
		return legacyTrnGraph, true
	case KindStaff:
		return staffGraph, true
	case KindElevateTrnVerificationLevel:
		return elevateGraph, true
	case KindTrnToken:
		return trnTokenGraph, true
	}
	return graph{}, false
}

func (g graph) has(step Step) bool {
	return step != StepNone && slices.Contains(g.steps, step)
}

func (g graph) triggers(step Step, st models.AuthenticationState) bool {
	return g.triggersLookup != nil && g.triggersLookup(step, st)
}

func isTrue(b *bool) bool { return b != nil && *b }

func signedIn(st models.AuthenticationState) bool { return st.IsSignedIn() }

// contactVerified is true once both the email and the mobile are confirmed.
func contactVerified(st models.AuthenticationState) bool {
	return st.EmailAddressVerified && st.MobileNumberVerified
}

// personalDetailsAnswered covers the questions every public journey asks.
func personalDetailsAnswered(st models.AuthenticationState) bool {
	return contactVerified(st) && st.NameSet() && st.PreferredNameSet() && st.DateOfBirthSet()
}

// existingAccountDeclined is true when a duplicate was found and the user
// said it is not theirs.
func existingAccountDeclined(st models.AuthenticationState) bool {
	return st.ExistingAccountFound() && st.ExistingAccountChosen != nil && !*st.ExistingAccountChosen
}

// existingAccountPending is true when a duplicate was found and the user has
// not declined it.
func existingAccountPending(st models.AuthenticationState) bool {
	return st.ExistingAccountFound() && !existingAccountDeclined(st)
}

// trnOwnerReconciliation covers the "TRN already in use" sub-path.
func trnOwnerReconciliation(st models.AuthenticationState) bool {
	return st.TrnLookup == models.TrnLookupStateExistingTrnFound ||
		st.TrnLookup == models.TrnLookupStateEmailOfExistingAccountForTrnVerified
}
