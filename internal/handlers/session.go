package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateSessionRequest struct {
	TherapistID string    `json:"therapist_id" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
}

type SessionResponse struct {
	ID          string    `json:"id"`
	TherapistID string    `json:"therapist_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSession books a one-hour session with a therapist. The booking
// party is always the authenticated user; the end time is derived from the
// start and anything the caller supplies for it is ignored.
func CreateSession(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSessionRequest

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

	therapySession := models.TherapySession{
		UserID:      currentUser.ID,
		TherapistID: therapist.ID,
		StartDate:   req.StartDate,
		Status:      models.SessionPending,
	}

	if err := db.DB.Create(&therapySession).Error; err != nil {
		log.Printf("Failed to create session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, SessionResponse{
		ID:          therapySession.Surrogate,
		TherapistID: therapist.Surrogate,
		StartDate:   therapySession.StartDate,
		EndDate:     therapySession.EndDate,
		Status:      therapySession.Status,
		CreatedAt:   therapySession.CreatedAt,
	})
}

// ListSessions returns the sessions the requester is a party to: those
// they booked, plus, for therapist accounts, those they provide. Newest
// first.
func ListSessions(ctx *gin.Context) {
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

	query := db.DB.Preload("Therapist").Order("created_at DESC")

	if therapist, ok := account.TherapistAccount(); ok {
		query = query.Where("user_id = ? OR therapist_id = ?", currentUser.ID, therapist.ID)
	} else {
		query = query.Where("user_id = ?", currentUser.ID)
	}

	var sessions []models.TherapySession

	if err := query.Find(&sessions).Error; err != nil {
		log.Printf("Failed to list sessions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	response := make([]SessionResponse, 0, len(sessions))

	for _, therapySession := range sessions {
		response = append(response, SessionResponse{
			ID:          therapySession.Surrogate,
			TherapistID: therapySession.Therapist.Surrogate,
			StartDate:   therapySession.StartDate,
			EndDate:     therapySession.EndDate,
			Status:      therapySession.Status,
			CreatedAt:   therapySession.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// ApproveSession and RejectSession are the provider-side decisions on a
// pending booking. Only the session's therapist may decide, and only while
// the session is still PENDING.
func ApproveSession(ctx *gin.Context) {
	decideSession(ctx, models.SessionApproved)
}

func RejectSession(ctx *gin.Context) {
	decideSession(ctx, models.SessionRejected)
}

func decideSession(ctx *gin.Context, status string) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var therapySession models.TherapySession

	if err := db.DB.Where("surrogate = ?", ctx.Param("session_id")).First(&therapySession).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			log.Printf("Failed to fetch session: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	account, err := utils.LoadAccount(currentUser.ID)

	if err != nil {
		log.Printf("Failed to load account: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	therapist, ok := account.TherapistAccount()

	if !ok || therapist.ID != therapySession.TherapistID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the session's therapist can decide on it"})
		return
	}

	if therapySession.Status != models.SessionPending {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Session is no longer pending"})
		return
	}

	therapySession.Status = status

	if err := db.DB.Save(&therapySession).Error; err != nil {
		log.Printf("Failed to update session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, SessionResponse{
		ID:          therapySession.Surrogate,
		TherapistID: therapist.Surrogate,
		StartDate:   therapySession.StartDate,
		EndDate:     therapySession.EndDate,
		Status:      therapySession.Status,
		CreatedAt:   therapySession.CreatedAt,
	})
}
