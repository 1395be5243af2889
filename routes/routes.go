package routes

import (
	"net/http"
	"time"

	"trustwork/handlers"
	"trustwork/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account and social sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.SignUpHandler)
		api.POST("/login", hb.SignInHandler)
		api.POST("/social", hb.SocialSignInHandler)
		api.POST("/password-reset", hb.RequestPasswordResetHandler)
		api.POST("/password-reset/confirm", hb.CompletePasswordResetHandler)

		// Protected routes (require authentication).
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.MeHandler)
		api.DELETE("/token", hb.RevokeTokenHandler)
	}
}

// RegisterProfileRoutes registers base profile endpoints.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profiles")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.GetMyProfileHandler)
		api.GET("/:id", hb.GetProfileHandler)
		api.PATCH("/:id", hb.UpdateProfileHandler)
		api.DELETE("/:id", hb.DeleteProfileHandler)
		api.POST("/:id/provider", hb.AttachProviderProfileHandler)
		api.POST("/:id/client", hb.AttachClientProfileHandler)
	}
}

// RegisterProviderRoutes registers provider reads and lifecycle mutations.
// Mutations are admin-only; the lifecycle engine is the single write path
// for risk and status fields.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/:id", hb.GetProviderHandler)
		api.GET("", hb.ListProvidersHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.POST("/:id/penalties", hb.ApplyPenaltyHandler)
		admin.POST("/:id/assessments", hb.UpdateRiskAssessmentHandler)
		admin.PUT("/:id/assessments/next", hb.ScheduleAssessmentHandler)
		admin.PUT("/:id/status", hb.SetProviderStatusHandler)
	}
}

// RegisterClientRoutes registers client reads and trust mutations.
func RegisterClientRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/clients")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/:id", hb.GetClientHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.GET("", hb.ListClientsHandler)
		admin.PUT("/:id/trust-score", hb.UpdateTrustScoreHandler)
		admin.POST("/:id/bookings", hb.RecordBookingOutcomeHandler)
		admin.POST("/:id/suspend", hb.SuspendClientHandler)
	}
}

// RegisterWarningRoutes registers the warning state machine endpoints. Users
// see and acknowledge their own warnings; everything else is admin-only.
func RegisterWarningRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/warnings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.ListMyWarningsHandler)
		api.POST("/:id/acknowledge", hb.AcknowledgeWarningHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.POST("", hb.IssueWarningHandler)
		admin.GET("", hb.ListWarningsHandler)
		admin.GET("/:id", hb.GetWarningHandler)
		admin.POST("/:id/resolve", hb.ResolveWarningHandler)
		admin.POST("/:id/activate", hb.ActivateWarningHandler)
		admin.POST("/:id/deactivate", hb.DeactivateWarningHandler)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.GET("/provider/:id", hb.ListProviderReviewsHandler)

		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.CreateReviewHandler)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		admin.DELETE("/:id", hb.DeleteReviewHandler)
	}
}

// RegisterDocumentRoutes registers identity document endpoints.
func RegisterDocumentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/documents")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/upload", hb.UploadFileHandler)
		api.POST("", hb.SubmitDocumentHandler)
		api.GET("/me", hb.ListMyDocumentsHandler)
	}
}

// RegisterAdminRoutes registers moderation and reporting endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.Use(middleware.RequireAdmin())
		api.GET("/users", hb.ListUsersHandler)
		api.GET("/profiles", hb.ListProfilesHandler)
		api.POST("/profiles/:id/restore", hb.RestoreProfileHandler)
		api.POST("/providers/assessments", hb.BulkAssessHandler)
		api.GET("/documents/pending", hb.ListPendingDocumentsHandler)
		api.POST("/documents/:id/review", hb.ReviewDocumentHandler)
		api.GET("/stats/warnings", hb.WarningStatsHandler)
		api.GET("/stats/risk", hb.RiskDistributionHandler)
		api.GET("/assessments/overdue", hb.OverdueAssessmentsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Trustwork"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterClientRoutes(r, hb)
	RegisterWarningRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterDocumentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
