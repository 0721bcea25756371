package models

import "slices"

type TrnRequirement string

const (
	TrnRequirementNone     TrnRequirement = "none"
	TrnRequirementOptional TrnRequirement = "optional"
	TrnRequirementRequired TrnRequirement = "required"
)

type TrnMatchPolicy string

const (
	TrnMatchPolicyDefault TrnMatchPolicy = "default"
	TrnMatchPolicyStrict  TrnMatchPolicy = "strict"
)

// Scopes that influence journey selection.
const (
	ScopeTrn       = "trn"
	ScopeDqtRead   = "dqt:read"
	ScopeUserRead  = "user:read"
	ScopeUserWrite = "user:write"
)

// OAuthContext is the slice of the authorization request the journey needs.
type OAuthContext struct {
	ClientID                         string         `json:"client_id"`
	Scopes                           []string       `json:"scopes,omitempty"`
	RedirectURI                      string         `json:"redirect_uri,omitempty"`
	TrnRequirement                   TrnRequirement `json:"trn_requirement,omitempty"`
	TrnMatchPolicy                   TrnMatchPolicy `json:"trn_match_policy,omitempty"`
	LegacyTrnJourney                 bool           `json:"legacy_trn_journey,omitempty"`
	RaiseTrnResolutionSupportTickets bool           `json:"raise_trn_resolution_support_tickets,omitempty"`
}

func (o OAuthContext) HasScope(scope string) bool {
	return slices.Contains(o.Scopes, scope)
}

// RequiresTrnLookup is true when the client asks for a TRN in any form.
func (o OAuthContext) RequiresTrnLookup() bool {
	if o.TrnRequirement == TrnRequirementOptional || o.TrnRequirement == TrnRequirementRequired {
		return true
	}
	return o.HasScope(ScopeTrn) || o.HasScope(ScopeDqtRead)
}

// RequiresStaffAccount is true for the staff administration scopes.
func (o OAuthContext) RequiresStaffAccount() bool {
	return o.HasScope(ScopeUserRead) || o.HasScope(ScopeUserWrite)
}
