package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile carries the display identity of a user plus the payment
// provider linkage for therapist accounts. StripeID and the account link
// fields are written only by the payment bridge, never by clients.
type Profile struct {
	gorm.Model

	Surrogate   string `gorm:"uniqueIndex;size:36;not null"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Avatar      string
	IsTherapist bool `gorm:"not null;default:false"`

	StripeID          string `gorm:"size:40"`
	StripeAccountLink string
	LinkCreated       int64 // unix seconds
	LinkExpiresAt     int64 // unix seconds

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Surrogate == "" {
		p.Surrogate = uuid.NewString()
	}
	return nil
}
