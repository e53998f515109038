package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/services"
	"github.com/dim-stef/therapy-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
)

type CheckoutRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func GetPublishableKey(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"key": os.Getenv("STRIPE_PUBLISHABLE_KEY")})
}

// CreateAccountLink (re)runs payment onboarding for the requesting
// therapist: creates the payable account if needed and returns a fresh
// onboarding link. Safe to call again when a previous link expired.
func CreateAccountLink(ctx *gin.Context) {
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

	if _, ok := account.TherapistAccount(); !ok {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only therapists can be onboarded for payments"})
		return
	}

	profile := account.Profile

	if err := services.OnboardTherapist(&profile, currentUser.Email); err != nil {
		log.Printf("Payment onboarding failed for %s: %v", currentUser.Email, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account link"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"url":        profile.StripeAccountLink,
		"created":    profile.LinkCreated,
		"expires_at": profile.LinkExpiresAt,
	})
}

// GetAccountStatus reports whether the therapist's payable account can
// currently accept charges.
func GetAccountStatus(ctx *gin.Context) {
	profile, ok := payableProfile(ctx)

	if !ok {
		return
	}

	enabled, err := services.ChargesEnabled(profile.StripeID)

	if err != nil {
		log.Printf("Failed to query account status: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query account status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"charges_enabled": enabled})
}

func GetLoginLink(ctx *gin.Context) {
	profile, ok := payableProfile(ctx)

	if !ok {
		return
	}

	url, err := services.CreateLoginLink(profile.StripeID)

	if err != nil {
		log.Printf("Failed to create login link: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create login link"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

// CreateCheckoutSession requests a hosted checkout page for a booked
// session. Provider errors come back as a 200 with an error field, which
// the frontend surfaces inline on the payment page.
func CreateCheckoutSession(ctx *gin.Context) {
	therapySession, profile, ok := checkoutTarget(ctx)

	if !ok {
		return
	}

	checkoutID, err := services.CreateCheckoutSession(profile.StripeID, therapySession.Surrogate)

	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"sessionId": checkoutID})
}

// CreateDirectPayment is the non-hosted charge variant; returns the client
// secret to confirm on the frontend.
func CreateDirectPayment(ctx *gin.Context) {
	therapySession, profile, ok := checkoutTarget(ctx)

	if !ok {
		return
	}

	clientSecret, err := services.CreateDirectPayment(profile.StripeID, therapySession.Surrogate)

	if err != nil {
		log.Printf("Failed to create payment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// PaymentWebhook receives provider events. The raw body is verified
// against the shared webhook secret before anything else; unverifiable or
// malformed requests are rejected without touching state. Event types
// outside the handled set are acknowledged and ignored.
func PaymentWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		ctx.GetHeader("Stripe-Signature"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Webhook verification failed"})
		return
	}

	if services.ClassifyEvent(string(event.Type)) == services.EventIgnored {
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var object struct {
		Metadata map[string]string `json:"metadata"`
	}

	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
		return
	}

	sessionSurrogate := object.Metadata[services.MetadataSessionKey]

	if sessionSurrogate == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing session metadata"})
		return
	}

	seen, err := services.EventSeen(event.ID)

	if err != nil {
		log.Printf("Failed to check payment event %s: %v", event.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if seen {
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := services.CompletePayment(sessionSurrogate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown session in event metadata"})
			return
		}
		log.Printf("Failed to complete payment for session %s: %v", sessionSurrogate, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Completion is idempotent, so a lost record only costs a redundant
	// no-op on redelivery.
	if _, err := services.RecordEvent(event.ID, string(event.Type), payload); err != nil {
		log.Printf("Failed to record payment event %s: %v", event.ID, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

// payableProfile resolves the requesting therapist's profile and requires
// an existing payable account.
func payableProfile(ctx *gin.Context) (models.Profile, bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.Profile{}, false
	}

	account, err := utils.LoadAccount(currentUser.ID)

	if err != nil {
		log.Printf("Failed to load account: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.Profile{}, false
	}

	if _, ok := account.TherapistAccount(); !ok {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only therapists have payable accounts"})
		return models.Profile{}, false
	}

	if account.Profile.StripeID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Therapist is not onboarded for payments"})
		return models.Profile{}, false
	}

	return account.Profile, true
}

// checkoutTarget resolves the requester's own session by surrogate id and
// the providing therapist's payable profile.
func checkoutTarget(ctx *gin.Context) (models.TherapySession, models.Profile, bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.TherapySession{}, models.Profile{}, false
	}

	var req CheckoutRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return models.TherapySession{}, models.Profile{}, false
	}

	var therapySession models.TherapySession

	if err := db.DB.Where("surrogate = ? AND user_id = ?", req.SessionID, currentUser.ID).First(&therapySession).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			log.Printf("Failed to fetch session: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return models.TherapySession{}, models.Profile{}, false
	}

	var therapist models.Therapist

	if err := db.DB.First(&therapist, therapySession.TherapistID).Error; err != nil {
		log.Printf("Failed to fetch therapist: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.TherapySession{}, models.Profile{}, false
	}

	var profile models.Profile

	if err := db.DB.Where("user_id = ?", therapist.UserID).First(&profile).Error; err != nil {
		log.Printf("Failed to fetch therapist profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return models.TherapySession{}, models.Profile{}, false
	}

	if profile.StripeID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Therapist is not onboarded for payments"})
		return models.TherapySession{}, models.Profile{}, false
	}

	return therapySession, profile, true
}
