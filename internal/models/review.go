package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review holds a single star rating. One review per (user, therapist)
// pair, enforced by the composite unique index.
type Review struct {
	gorm.Model

	Surrogate   string `gorm:"uniqueIndex;size:36;not null"`
	UserID      uint   `gorm:"not null;uniqueIndex:idx_review_user_therapist"`
	TherapistID uint   `gorm:"not null;uniqueIndex:idx_review_user_therapist"`
	Stars       int    `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Therapist Therapist `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.Surrogate == "" {
		r.Surrogate = uuid.NewString()
	}
	return nil
}
