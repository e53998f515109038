package services

import (
	"errors"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentEventKind is the closed set of provider event kinds this system
// reacts to. Everything else maps to EventIgnored.
type PaymentEventKind int

const (
	EventIgnored PaymentEventKind = iota
	EventPaymentSucceeded
)

func ClassifyEvent(eventType string) PaymentEventKind {
	switch eventType {
	case "checkout.session.completed", "payment_intent.succeeded":
		return EventPaymentSucceeded
	default:
		return EventIgnored
	}
}

// EventSeen reports whether a provider event id has already been
// processed.
func EventSeen(eventID string) (bool, error) {
	var count int64

	if err := db.DB.Model(&models.PaymentEvent{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// RecordEvent stores a handled provider event for audit and replay
// detection. Returns false when the event id was already processed.
func RecordEvent(eventID, eventType string, payload []byte) (bool, error) {
	event := models.PaymentEvent{
		EventID: eventID,
		Type:    eventType,
		Payload: datatypes.JSON(payload),
	}

	if err := db.DB.Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// CompletePayment moves the session identified by its surrogate id into
// PAYMENT_COMPLETED and credits the therapist with the session amount
// minus the platform fee. Provider delivery is at-least-once, so applying
// this to an already-completed session is a no-op and the credit is
// granted exactly once.
func CompletePayment(sessionSurrogate string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var therapySession models.TherapySession

		if err := tx.Where("surrogate = ?", sessionSurrogate).First(&therapySession).Error; err != nil {
			return err
		}

		if therapySession.Status == models.SessionPaymentCompleted {
			return nil
		}

		therapySession.Status = models.SessionPaymentCompleted

		if err := tx.Save(&therapySession).Error; err != nil {
			return err
		}

		return tx.Model(&models.Therapist{}).
			Where("id = ?", therapySession.TherapistID).
			UpdateColumn("credits", gorm.Expr("credits + ?", int64(SessionAmountCents-PlatformFeeCents))).Error
	})
}
