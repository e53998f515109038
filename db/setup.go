package db

import (
	"github.com/dim-stef/therapy-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	tables := []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Therapist{},
		&models.TherapistSpecialty{},
		&models.AvailableTimeRange{},
		&models.TherapySession{},
		&models.Review{},
		&models.PaymentEvent{},
	}

	migrator := DB.Migrator()

	for _, model := range tables {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
