// Package user stores registered teacher accounts and TRN tokens.
//
// Writes that would give a TRN to a second account fail with
// models.ErrTrnAlreadyAssigned; a second account for an email address fails
// with sentinel.ErrConflict. Finders return sentinel.ErrNotFound.
package user

import (
	"strings"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newUserFrom(nu models.NewUser, userID id.UserID) *models.User {
	u := &models.User{
		ID:                   userID,
		Type:                 nu.Type,
		EmailAddress:         normalizeEmail(nu.EmailAddress),
		MobileNumber:         nu.MobileNumber,
		FirstName:            nu.FirstName,
		MiddleName:           nu.MiddleName,
		LastName:             nu.LastName,
		PreferredName:        nu.PreferredName,
		DateOfBirth:          nu.DateOfBirth,
		Trn:                  nu.Trn,
		TrnLookupStatus:      nu.TrnLookupStatus,
		TrnVerificationLevel: nu.TrnVerificationLevel,
	}
	if u.Type == "" {
		u.Type = models.UserTypeDefault
	}
	if u.TrnVerificationLevel == "" {
		u.TrnVerificationLevel = models.TrnVerificationLevelLow
	}
	return u
}
