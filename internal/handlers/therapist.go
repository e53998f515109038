package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AvailabilityWindow struct {
	Weekday int    `json:"weekday" binding:"required,min=1,max=7"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
}

type ReplaceAvailabilityRequest struct {
	Windows []AvailabilityWindow `json:"windows"`
}

type UpdateTherapistRequest struct {
	Bio         string    `json:"bio" binding:"omitempty,max=300"`
	Phone       string    `json:"phone" binding:"omitempty,max=30"`
	AFM         string    `json:"afm" binding:"omitempty,max=60"`
	DOY         string    `json:"doy" binding:"omitempty,max=300"`
	IBAN        string    `json:"iban" binding:"omitempty,max=40"`
	IDFront     string    `json:"id_front"`
	IDBack      string    `json:"id_back"`
	Specialties *[]string `json:"specialties"`
}

type TherapistSummary struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Avatar        string               `json:"avatar,omitempty"`
	Bio           string               `json:"bio"`
	Status        string               `json:"status"`
	Specialties   []string             `json:"specialties"`
	Availability  []AvailabilityWindow `json:"availability"`
	AverageRating float64              `json:"average_rating"`
	ReviewCount   int64                `json:"review_count"`
}

// ListTherapists is the public directory: every therapist with their
// profile identity, specialties, weekly availability and the review
// aggregate computed at read time.
func ListTherapists(ctx *gin.Context) {
	var therapists []models.Therapist

	if err := db.DB.Preload("Specialties").Preload("AvailableTimeRanges").Find(&therapists).Error; err != nil {
		log.Printf("Failed to list therapists: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve therapists"})
		return
	}

	userIDs := make([]uint, 0, len(therapists))
	therapistIDs := make([]uint, 0, len(therapists))

	for _, therapist := range therapists {
		userIDs = append(userIDs, therapist.UserID)
		therapistIDs = append(therapistIDs, therapist.ID)
	}

	profiles := make(map[uint]models.Profile)

	if len(userIDs) > 0 {
		var rows []models.Profile
		if err := db.DB.Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
			log.Printf("Failed to load profiles: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve therapists"})
			return
		}
		for _, row := range rows {
			profiles[row.UserID] = row
		}
	}

	type ratingRow struct {
		TherapistID uint
		Average     float64
		Count       int64
	}

	ratings := make(map[uint]ratingRow)

	if len(therapistIDs) > 0 {
		var rows []ratingRow
		err := db.DB.Model(&models.Review{}).
			Select("therapist_id, AVG(stars) AS average, COUNT(*) AS count").
			Where("therapist_id IN ?", therapistIDs).
			Group("therapist_id").
			Scan(&rows).Error
		if err != nil {
			log.Printf("Failed to aggregate ratings: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve therapists"})
			return
		}
		for _, row := range rows {
			ratings[row.TherapistID] = row
		}
	}

	response := make([]TherapistSummary, 0, len(therapists))

	for _, therapist := range therapists {
		summary := TherapistSummary{
			ID:           therapist.Surrogate,
			Bio:          therapist.Bio,
			Status:       therapist.Status,
			Specialties:  make([]string, 0, len(therapist.Specialties)),
			Availability: make([]AvailabilityWindow, 0, len(therapist.AvailableTimeRanges)),
		}

		if profile, ok := profiles[therapist.UserID]; ok {
			summary.Name = profile.Name
			summary.Avatar = profile.Avatar
		}

		for _, specialty := range therapist.Specialties {
			summary.Specialties = append(summary.Specialties, specialty.Specialty)
		}

		for _, window := range therapist.AvailableTimeRanges {
			summary.Availability = append(summary.Availability, AvailabilityWindow{
				Weekday: window.Weekday,
				Start:   window.Start,
				End:     window.End,
			})
		}

		if rating, ok := ratings[therapist.ID]; ok {
			summary.AverageRating = rating.Average
			summary.ReviewCount = rating.Count
		}

		response = append(response, summary)
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateTherapist lets a therapist change their own bio, contact and
// verification fields, and optionally replace their specialty list
// wholesale.
func UpdateTherapist(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	account, err := utils.LoadAccount(currentUser.ID)

	if err != nil {
		log.Printf("Failed to load account: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	therapist, ok := account.TherapistAccount()

	if !ok {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only therapists can update therapist details"})
		return
	}

	var req UpdateTherapistRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.AFM != "" {
		updates["afm"] = req.AFM
	}
	if req.DOY != "" {
		updates["doy"] = req.DOY
	}
	if req.IBAN != "" {
		updates["iban"] = req.IBAN
	}
	if req.IDFront != "" {
		updates["id_front"] = req.IDFront
	}
	if req.IDBack != "" {
		updates["id_back"] = req.IDBack
	}

	if len(updates) == 0 && req.Specialties == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(therapist).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Specialties != nil {
			if err := tx.Where("therapist_id = ?", therapist.ID).Delete(&models.TherapistSpecialty{}).Error; err != nil {
				return err
			}
			for _, specialty := range *req.Specialties {
				row := models.TherapistSpecialty{TherapistID: therapist.ID, Specialty: specialty}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to update therapist: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Therapist updated successfully"})
}

// ReplaceAvailability swaps the therapist's weekly availability windows
// for the supplied set in a single transaction, so a failed replacement
// never leaves the therapist with a partial week.
func ReplaceAvailability(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	account, err := utils.LoadAccount(currentUser.ID)

	if err != nil {
		log.Printf("Failed to load account: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	therapist, ok := account.TherapistAccount()

	if !ok {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only therapists can set availability"})
		return
	}

	var req ReplaceAvailabilityRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	for _, window := range req.Windows {
		if err := validateWindow(window); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("therapist_id = ?", therapist.ID).Delete(&models.AvailableTimeRange{}).Error; err != nil {
			return err
		}

		for _, window := range req.Windows {
			row := models.AvailableTimeRange{
				TherapistID: therapist.ID,
				Weekday:     window.Weekday,
				Start:       window.Start,
				End:         window.End,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to replace availability: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"windows": req.Windows})
}

func validateWindow(window AvailabilityWindow) error {
	if window.Weekday < 1 || window.Weekday > 7 {
		return fmt.Errorf("weekday must be between 1 and 7")
	}

	start, err := time.Parse("15:04", window.Start)
	if err != nil {
		return fmt.Errorf("start must be in HH:MM format")
	}

	end, err := time.Parse("15:04", window.End)
	if err != nil {
		return fmt.Errorf("end must be in HH:MM format")
	}

	if !end.After(start) {
		return fmt.Errorf("end must be after start")
	}

	return nil
}
