package router

import (
	"time"

	"github.com/dim-stef/therapy-backend/internal/handlers"
	"github.com/dim-stef/therapy-backend/internal/middleware"
	"github.com/dim-stef/therapy-backend/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		api.GET("/therapists", handlers.ListTherapists)
		api.GET("/therapists/:therapist_id/reviews", handlers.ListTherapistReviews)

		api.PUT("/profile", middleware.AuthMiddleware(), handlers.UpdateProfile)
		api.PUT("/therapist", middleware.AuthMiddleware(), handlers.UpdateTherapist)
		api.PUT("/therapist/availability", middleware.AuthMiddleware(), handlers.ReplaceAvailability)

		sessions := api.Group("/sessions", middleware.AuthMiddleware())
		{
			sessions.POST("", handlers.CreateSession)
			sessions.GET("", handlers.ListSessions)
			sessions.POST("/:session_id/approve", handlers.ApproveSession)
			sessions.POST("/:session_id/reject", handlers.RejectSession)
		}

		reviews := api.Group("/reviews", middleware.AuthMiddleware())
		{
			reviews.POST("", handlers.CreateReview)
			reviews.PUT("/:review_id", handlers.UpdateReview)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/publishable_key", handlers.GetPublishableKey)
			payments.POST("/webhook", handlers.PaymentWebhook)

			authed := payments.Group("", middleware.AuthMiddleware())
			{
				authed.POST("/checkout_session", handlers.CreateCheckoutSession)
				authed.POST("/direct", handlers.CreateDirectPayment)
				authed.POST("/account_link", handlers.CreateAccountLink)
				authed.GET("/login_link", handlers.GetLoginLink)
				authed.GET("/account", handlers.GetAccountStatus)
			}
		}
	}

	return r
}
