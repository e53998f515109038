package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/auth"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/services"
	"github.com/dim-stef/therapy-backend/internal/types"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name        string `json:"name" binding:"required,max=60"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	IsTherapist bool   `json:"is_therapist"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates the user, its profile and, for therapist registrations,
// the therapist record in one transaction. Payment onboarding runs after
// commit: if it fails the registration still stands and the therapist is
// provisionally onboarded until charges are confirmed enabled.
func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	var profile models.Profile

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}

		profile = models.Profile{
			UserID:      newUser.ID,
			Name:        req.Name,
			IsTherapist: req.IsTherapist,
		}

		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		if req.IsTherapist {
			therapist := models.Therapist{UserID: newUser.ID}
			if err := tx.Create(&therapist).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if req.IsTherapist {
		if err := services.OnboardTherapist(&profile, newUser.Email); err != nil {
			log.Printf("Payment onboarding failed for %s: %v", newUser.Email, err)
		}
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:          newUser.Surrogate,
			Name:        newUser.Name,
			Email:       newUser.Email,
			IsTherapist: profile.IsTherapist,
		},
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	account, err := utils.LoadAccount(existingUser.ID)

	if err != nil {
		log.Printf("Failed to load account: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:          existingUser.Surrogate,
			Name:        account.Profile.Name,
			Email:       existingUser.Email,
			Avatar:      account.Profile.Avatar,
			IsTherapist: account.Kind == types.AccountTherapist,
		},
	})
}

func Me(ctx *gin.Context) {
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

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:          currentUser.Surrogate,
			Name:        account.Profile.Name,
			Email:       currentUser.Email,
			Avatar:      account.Profile.Avatar,
			IsTherapist: account.Kind == types.AccountTherapist,
		},
	})
}
