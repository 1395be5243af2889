package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustwork/config"
	"trustwork/cron"
	"trustwork/database"
	clientRepoPkg "trustwork/database/repository/client"
	documentRepoPkg "trustwork/database/repository/document"
	profileRepoPkg "trustwork/database/repository/profile"
	providerRepoPkg "trustwork/database/repository/provider"
	reviewRepoPkg "trustwork/database/repository/review"
	userRepoPkg "trustwork/database/repository/user"
	warningRepoPkg "trustwork/database/repository/warning"
	"trustwork/handlers"
	"trustwork/middleware"
	"trustwork/routes"
	"trustwork/services/account"
	"trustwork/services/document"
	"trustwork/services/lifecycle"
	"trustwork/services/notification"
	"trustwork/services/profile"
	"trustwork/services/report"
	"trustwork/services/review"
	"trustwork/services/socialauth"
	"trustwork/services/storage"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	cloudinaryStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	profileRepo := profileRepoPkg.NewMongoProfileRepo()
	providerRepo := providerRepoPkg.NewMongoProviderProfileRepo()
	clientRepo := clientRepoPkg.NewMongoClientProfileRepo()
	warningRepo := warningRepoPkg.NewMongoWarningRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()
	documentRepo := documentRepoPkg.NewMongoDocumentRepo()

	// Services.
	mailer := notification.NewLogEmailService(logger)
	profileService := profile.NewService(profileRepo, providerRepo, clientRepo, logger)
	accountService := account.NewAccountService(userRepo, profileService, mailer, logger)
	socialService := socialauth.NewService(userRepo, profileService, logger)
	reviewService := review.NewService(reviewRepo, providerRepo, logger)
	documentService := document.NewService(documentRepo, profileRepo, providerRepo, cloudinaryStorage, logger)
	reporter := report.NewReporter(warningRepo, providerRepo, clientRepo, logger)

	engine, err := lifecycle.NewEngine(providerRepo, clientRepo, warningRepo, profileRepo, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize lifecycle engine: %v", err)
	}

	// Handlers.
	authHandler := handlers.NewAuthHandler(accountService, socialService)
	profileHandler := handlers.NewProfileHandler(profileService)
	providerHandler := handlers.NewProviderHandler(engine, providerRepo)
	clientHandler := handlers.NewClientHandler(engine, clientRepo, userRepo, mailer)
	warningHandler := handlers.NewWarningHandler(engine, warningRepo, userRepo, mailer)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	adminHandler := handlers.NewAdminHandler(reporter, userRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		// Auth endpoints.
		SignUpHandler:                authHandler.SignUpHandler,
		SignInHandler:                authHandler.SignInHandler,
		SocialSignInHandler:          authHandler.SocialSignInHandler,
		RevokeTokenHandler:           authHandler.RevokeTokenHandler,
		MeHandler:                    authHandler.MeHandler,
		RequestPasswordResetHandler:  authHandler.RequestPasswordResetHandler,
		CompletePasswordResetHandler: authHandler.CompletePasswordResetHandler,

		// Profile endpoints.
		GetMyProfileHandler:          profileHandler.GetMyProfileHandler,
		GetProfileHandler:            profileHandler.GetProfileHandler,
		UpdateProfileHandler:         profileHandler.UpdateProfileHandler,
		ListProfilesHandler:          profileHandler.ListProfilesHandler,
		DeleteProfileHandler:         profileHandler.DeleteProfileHandler,
		RestoreProfileHandler:        profileHandler.RestoreProfileHandler,
		AttachProviderProfileHandler: profileHandler.AttachProviderProfileHandler,
		AttachClientProfileHandler:   profileHandler.AttachClientProfileHandler,

		// Provider lifecycle endpoints.
		GetProviderHandler:          providerHandler.GetProviderHandler,
		ListProvidersHandler:        providerHandler.ListProvidersHandler,
		ApplyPenaltyHandler:         providerHandler.ApplyPenaltyHandler,
		UpdateRiskAssessmentHandler: providerHandler.UpdateRiskAssessmentHandler,
		ScheduleAssessmentHandler:   providerHandler.ScheduleAssessmentHandler,
		BulkAssessHandler:           providerHandler.BulkAssessHandler,
		SetProviderStatusHandler:    providerHandler.SetStatusHandler,

		// Client trust endpoints.
		GetClientHandler:            clientHandler.GetClientHandler,
		ListClientsHandler:          clientHandler.ListClientsHandler,
		UpdateTrustScoreHandler:     clientHandler.UpdateTrustScoreHandler,
		RecordBookingOutcomeHandler: clientHandler.RecordBookingOutcomeHandler,
		SuspendClientHandler:        clientHandler.SuspendClientHandler,

		// Warning endpoints.
		IssueWarningHandler:       warningHandler.IssueWarningHandler,
		GetWarningHandler:         warningHandler.GetWarningHandler,
		ListWarningsHandler:       warningHandler.ListWarningsHandler,
		ListMyWarningsHandler:     warningHandler.ListMyWarningsHandler,
		AcknowledgeWarningHandler: warningHandler.AcknowledgeWarningHandler,
		ResolveWarningHandler:     warningHandler.ResolveWarningHandler,
		ActivateWarningHandler:    warningHandler.ActivateWarningHandler,
		DeactivateWarningHandler:  warningHandler.DeactivateWarningHandler,

		// Review endpoints.
		CreateReviewHandler:        reviewHandler.CreateReviewHandler,
		ListProviderReviewsHandler: reviewHandler.ListProviderReviewsHandler,
		DeleteReviewHandler:        reviewHandler.DeleteReviewHandler,

		// Identity document endpoints.
		UploadFileHandler:           documentHandler.UploadFileHandler,
		SubmitDocumentHandler:       documentHandler.SubmitDocumentHandler,
		ReviewDocumentHandler:       documentHandler.ReviewDocumentHandler,
		ListMyDocumentsHandler:      documentHandler.ListMyDocumentsHandler,
		ListPendingDocumentsHandler: documentHandler.ListPendingDocumentsHandler,

		// Admin reporting endpoints.
		WarningStatsHandler:       adminHandler.WarningStatsHandler,
		RiskDistributionHandler:   adminHandler.RiskDistributionHandler,
		OverdueAssessmentsHandler: adminHandler.OverdueAssessmentsHandler,
		ListUsersHandler:          adminHandler.ListUsersHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start background maintenance jobs.
	cron.InitMaintenanceWorker(engine, reporter, mailer)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
	logger.Info("Server exited")
}
