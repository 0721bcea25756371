package journey

import (
	dErrors "teacherid/pkg/domain-errors"
)

// Step names a page of a sign-in journey. A step only has meaning inside the
// journey kinds whose graph contains it.
type Step string

// StepNone marks the logical end of a graph.
const StepNone Step = ""

const (
	StepLanding                          Step = "landing"
	StepEmail                            Step = "email"
	StepEmailConfirmation                Step = "email-confirmation"
	StepResendEmailConfirmation          Step = "resend-email-confirmation"
	StepPhone                            Step = "phone"
	StepPhoneConfirmation                Step = "phone-confirmation"
	StepResendPhoneConfirmation          Step = "resend-phone-confirmation"
	StepName                             Step = "name"
	StepPreferredName                    Step = "preferred-name"
	StepDateOfBirth                      Step = "date-of-birth"
	StepAccountExists                    Step = "account-exists"
	StepExistingAccountEmailConfirmation Step = "existing-account-email-confirmation"
	StepHasNiNumber                      Step = "has-nino"
	StepNiNumber                         Step = "nino"
	StepHasTrn                           Step = "has-trn"
	StepTrn                              Step = "trn"
	StepAwardedQts                       Step = "awarded-qts"
	StepIttProvider                      Step = "itt-provider"
	StepCheckAnswers                     Step = "check-answers"
	StepTrnInUse                         Step = "trn-in-use"
	StepTrnInUseChooseEmail              Step = "trn-in-use-choose-email"
	StepTrnInUseCannotAccessEmail        Step = "trn-in-use-cannot-access-email"
)

func (s Step) String() string {
	if s == StepNone {
		return "<none>"
	}
	return string(s)
}

// Kind is the closed set of journey variants.
type Kind int

const (
	KindCore Kind = iota + 1
	KindTrnLookup
	KindLegacyTrn
	KindStaff
	KindElevateTrnVerificationLevel
	KindTrnToken
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{KindCore, KindTrnLookup, KindLegacyTrn, KindStaff, KindElevateTrnVerificationLevel, KindTrnToken}

func (k Kind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindTrnLookup:
		return "trn"
	case KindLegacyTrn:
		return "legacy-trn"
	case KindStaff:
		return "staff"
	case KindElevateTrnVerificationLevel:
		return "elevate"
	case KindTrnToken:
		return "trn-token"
	default:
		return "unknown"
	}
}

// ParseKind parses the journey kind segment of a step URL.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeNotFound, "unknown journey "+s)
}
