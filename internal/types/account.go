package types

import "github.com/dim-stef/therapy-backend/internal/models"

type AccountKind string

const (
	AccountRegular   AccountKind = "regular"
	AccountTherapist AccountKind = "therapist"
)

// Account is the resolved capability of an authenticated user: either a
// regular account, or a therapist account carrying the therapist record.
// Code that needs therapist-only data takes it from here instead of
// re-checking the profile flag and assuming a row exists.
type Account struct {
	Kind      AccountKind
	Profile   models.Profile
	Therapist *models.Therapist
}

func (a Account) TherapistAccount() (*models.Therapist, bool) {
	if a.Kind != AccountTherapist || a.Therapist == nil {
		return nil, false
	}
	return a.Therapist, true
}
