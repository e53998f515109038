package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionPending          = "PENDING"
	SessionApproved         = "APPROVED"
	SessionRejected         = "REJECTED"
	SessionPaymentCompleted = "PAYMENT_COMPLETED"
)

type TherapySession struct {
	gorm.Model

	Surrogate   string    `gorm:"uniqueIndex;size:36;not null"`
	UserID      uint      `gorm:"not null;index"`
	TherapistID uint      `gorm:"not null;index"`
	StartDate   time.Time `gorm:"not null"`
	EndDate     time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;default:'PENDING'"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Therapist Therapist `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (s *TherapySession) BeforeCreate(tx *gorm.DB) error {
	if s.Surrogate == "" {
		s.Surrogate = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionPending
	}
	return nil
}

// Sessions last exactly one hour; the end is derived from the start on
// every save and is never independently settable.
func (s *TherapySession) BeforeSave(tx *gorm.DB) error {
	s.EndDate = s.StartDate.Add(time.Hour)
	return nil
}
