package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentEvent records every provider webhook event this system acted on.
// The unique EventID makes redelivered events detectable before any state
// is touched; Payload keeps the raw event for audit.
type PaymentEvent struct {
	gorm.Model

	EventID string         `gorm:"uniqueIndex;not null"`
	Type    string         `gorm:"not null"`
	Payload datatypes.JSON `gorm:"type:jsonb"`
}
