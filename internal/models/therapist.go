package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TherapistStatusInactive = "inactive"
	TherapistStatusActive   = "active"
)

type Therapist struct {
	gorm.Model

	Surrogate string `gorm:"uniqueIndex;size:36;not null"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	Bio       string `gorm:"size:300"`
	Phone     string `gorm:"size:30"`

	// Verification fields: tax number, tax office, bank account and the
	// two sides of an identity document. Reviewed out-of-band; Status
	// flips to active only through that process.
	AFM     string `gorm:"size:60"`
	DOY     string `gorm:"size:300"`
	IBAN    string `gorm:"size:40"`
	IDFront string
	IDBack  string

	Credits int64  `gorm:"not null;default:0"` // cents
	Status  string `gorm:"not null;default:'inactive'"`

	// Relationships
	User                User                 `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Specialties         []TherapistSpecialty `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AvailableTimeRanges []AvailableTimeRange `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sessions            []TherapySession     `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reviews             []Review             `gorm:"foreignKey:TherapistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (t *Therapist) BeforeCreate(tx *gorm.DB) error {
	if t.Surrogate == "" {
		t.Surrogate = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TherapistStatusInactive
	}
	return nil
}

type TherapistSpecialty struct {
	gorm.Model

	TherapistID uint   `gorm:"not null;index"`
	Specialty   string `gorm:"size:50;not null"`
}

// AvailableTimeRange is one weekly availability window. Windows are
// replaced wholesale, never patched individually.
type AvailableTimeRange struct {
	gorm.Model

	TherapistID uint   `gorm:"not null;index"`
	Weekday     int    `gorm:"not null"`        // 1 (Monday) through 7 (Sunday)
	Start       string `gorm:"size:5;not null"` // "HH:MM"
	End         string `gorm:"size:5;not null"` // "HH:MM"
}
