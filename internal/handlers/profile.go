package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/types"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=60"`
	Avatar string `json:"avatar"`
}

// UpdateProfile changes the display name and avatar of the requester's own
// profile. The role flag and payment fields are not client-writable.
func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateProfileRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var profile models.Profile

	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&profile).Error; err != nil {
		log.Printf("Failed to fetch profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&profile).Updates(updates).Error; err != nil {
		log.Printf("Failed to update profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Refresh profile data from database
	if err := db.DB.First(&profile, profile.ID).Error; err != nil {
		log.Printf("Failed to refresh profile data: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:          currentUser.Surrogate,
			Name:        profile.Name,
			Email:       currentUser.Email,
			Avatar:      profile.Avatar,
			IsTherapist: profile.IsTherapist,
		},
	})
}
