package utils

import (
	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/types"
)

// LoadAccount resolves the capability of a user: regular account, or
// therapist account with the therapist record attached.
func LoadAccount(userID uint) (types.Account, error) {
	var profile models.Profile

	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return types.Account{}, err
	}

	account := types.Account{Kind: types.AccountRegular, Profile: profile}

	if !profile.IsTherapist {
		return account, nil
	}

	var therapist models.Therapist

	if err := db.DB.Where("user_id = ?", userID).First(&therapist).Error; err != nil {
		return types.Account{}, err
	}

	account.Kind = types.AccountTherapist
	account.Therapist = &therapist

	return account, nil
}
