package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	TherapistID string `json:"therapist_id" binding:"required"`
	Stars       int    `json:"stars" binding:"required,min=1,max=5"`
}

type UpdateReviewRequest struct {
	TherapistID string `json:"therapist_id"`
	Stars       *int   `json:"stars" binding:"omitempty,min=1,max=5"`
}

type ReviewResponse struct {
	ID          string `json:"id"`
	TherapistID string `json:"therapist_id"`
	Stars       int    `json:"stars"`
}

// CreateReview records the requester's rating for a therapist. One review
// per (user, therapist) pair; a second attempt trips the uniqueness
// constraint.
func CreateReview(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateReviewRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var therapist models.Therapist

	if err := db.DB.Where("surrogate = ?", req.TherapistID).First(&therapist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		} else {
			log.Printf("Failed to resolve therapist: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	review := models.Review{
		UserID:      currentUser.ID,
		TherapistID: therapist.ID,
		Stars:       req.Stars,
	}

	if err := db.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this therapist"})
			return
		}
		log.Printf("Failed to create review: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, ReviewResponse{
		ID:          review.Surrogate,
		TherapistID: therapist.Surrogate,
		Stars:       review.Stars,
	})
}

// UpdateReview changes the star rating and/or reassigns the review to a
// different therapist, re-resolved by external id. Owner-only.
func UpdateReview(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var review models.Review

	if err := db.DB.Where("surrogate = ? AND user_id = ?", ctx.Param("review_id"), currentUser.ID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		} else {
			log.Printf("Failed to fetch review: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var req UpdateReviewRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var therapist models.Therapist

	if req.TherapistID != "" {
		if err := db.DB.Where("surrogate = ?", req.TherapistID).First(&therapist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
			} else {
				log.Printf("Failed to resolve therapist: %v", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
		review.TherapistID = therapist.ID
	} else {
		if err := db.DB.First(&therapist, review.TherapistID).Error; err != nil {
			log.Printf("Failed to fetch therapist: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if req.Stars != nil {
		review.Stars = *req.Stars
	}

	if err := db.DB.Save(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this therapist"})
			return
		}
		log.Printf("Failed to update review: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, ReviewResponse{
		ID:          review.Surrogate,
		TherapistID: therapist.Surrogate,
		Stars:       review.Stars,
	})
}

// ListTherapistReviews returns a therapist's reviews plus the aggregate,
// both computed at read time.
func ListTherapistReviews(ctx *gin.Context) {
	var therapist models.Therapist

	if err := db.DB.Where("surrogate = ?", ctx.Param("therapist_id")).First(&therapist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		} else {
			log.Printf("Failed to resolve therapist: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var reviews []models.Review

	if err := db.DB.Where("therapist_id = ?", therapist.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		log.Printf("Failed to list reviews: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reviews"})
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	total := 0

	for _, review := range reviews {
		total += review.Stars
		response = append(response, ReviewResponse{
			ID:          review.Surrogate,
			TherapistID: therapist.Surrogate,
			Stars:       review.Stars,
		})
	}

	var average float64

	if len(reviews) > 0 {
		average = float64(total) / float64(len(reviews))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reviews":        response,
		"average_rating": average,
		"count":          len(reviews),
	})
}
