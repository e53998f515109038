package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dim-stef/therapy-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Therapist{},
		&models.TherapistSpecialty{},
		&models.AvailableTimeRange{},
		&models.TherapySession{},
		&models.Review{},
		&models.PaymentEvent{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

func seedUserAndTherapist(t *testing.T, db *gorm.DB, email string) (models.User, models.Therapist) {
	t.Helper()

	user := models.User{Name: "u", Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	therapist := models.Therapist{UserID: user.ID}
	if err := db.Create(&therapist).Error; err != nil {
		t.Fatalf("create therapist: %v", err)
	}

	return user, therapist
}

func TestSessionEndDateAlwaysDerivedFromStart(t *testing.T) {
	db := setupDB(t)
	user, therapist := seedUserAndTherapist(t, db, "a@example.com")

	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	session := models.TherapySession{
		UserID:      user.ID,
		TherapistID: therapist.ID,
		StartDate:   start,
		EndDate:     start.Add(9 * time.Hour), // must be overwritten
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	if !session.EndDate.Equal(start.Add(time.Hour)) {
		t.Fatalf("end = %v, want %v", session.EndDate, start.Add(time.Hour))
	}

	// Tampering with the end date does not survive a save either.
	session.EndDate = start.Add(3 * time.Hour)
	if err := db.Save(&session).Error; err != nil {
		t.Fatalf("save session: %v", err)
	}

	var reloaded models.TherapySession
	if err := db.First(&reloaded, session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if !reloaded.EndDate.Equal(start.Add(time.Hour)) {
		t.Fatalf("end after save = %v, want %v", reloaded.EndDate, start.Add(time.Hour))
	}
}

func TestSessionDefaultsToPending(t *testing.T) {
	db := setupDB(t)
	user, therapist := seedUserAndTherapist(t, db, "a@example.com")

	session := models.TherapySession{
		UserID:      user.ID,
		TherapistID: therapist.ID,
		StartDate:   time.Now().UTC(),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	if session.Status != models.SessionPending {
		t.Fatalf("status = %q, want %q", session.Status, models.SessionPending)
	}
	if session.Surrogate == "" {
		t.Fatal("surrogate not assigned")
	}
}

func TestReviewUniquePerUserTherapistPair(t *testing.T) {
	db := setupDB(t)
	user, therapist := seedUserAndTherapist(t, db, "a@example.com")
	_, other := seedUserAndTherapist(t, db, "b@example.com")

	first := models.Review{UserID: user.ID, TherapistID: therapist.ID, Stars: 5}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}

	duplicate := models.Review{UserID: user.ID, TherapistID: therapist.ID, Stars: 1}
	err := db.Create(&duplicate).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicatedKey", err)
	}

	allowed := models.Review{UserID: user.ID, TherapistID: other.ID, Stars: 3}
	if err := db.Create(&allowed).Error; err != nil {
		t.Fatalf("review for different therapist: %v", err)
	}
}

func TestTherapistDefaultsToInactive(t *testing.T) {
	db := setupDB(t)
	_, therapist := seedUserAndTherapist(t, db, "a@example.com")

	if therapist.Status != models.TherapistStatusInactive {
		t.Fatalf("status = %q, want %q", therapist.Status, models.TherapistStatusInactive)
	}
}

func TestPaymentEventIDUnique(t *testing.T) {
	db := setupDB(t)

	first := models.PaymentEvent{EventID: "evt_1", Type: "payment_intent.succeeded"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}

	duplicate := models.PaymentEvent{EventID: "evt_1", Type: "payment_intent.succeeded"}
	if err := db.Create(&duplicate).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate event err = %v, want ErrDuplicatedKey", err)
	}
}
