package handlers

import (
	userRepoPkg "trustwork/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single argument.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Auth endpoints.
	SignUpHandler                gin.HandlerFunc
	SignInHandler                gin.HandlerFunc
	SocialSignInHandler          gin.HandlerFunc
	RevokeTokenHandler           gin.HandlerFunc
	MeHandler                    gin.HandlerFunc
	RequestPasswordResetHandler  gin.HandlerFunc
	CompletePasswordResetHandler gin.HandlerFunc

	// Profile endpoints.
	GetMyProfileHandler          gin.HandlerFunc
	GetProfileHandler            gin.HandlerFunc
	UpdateProfileHandler         gin.HandlerFunc
	ListProfilesHandler          gin.HandlerFunc
	DeleteProfileHandler         gin.HandlerFunc
	RestoreProfileHandler        gin.HandlerFunc
	AttachProviderProfileHandler gin.HandlerFunc
	AttachClientProfileHandler   gin.HandlerFunc

	// Provider lifecycle endpoints.
	GetProviderHandler          gin.HandlerFunc
	ListProvidersHandler        gin.HandlerFunc
	ApplyPenaltyHandler         gin.HandlerFunc
	UpdateRiskAssessmentHandler gin.HandlerFunc
	ScheduleAssessmentHandler   gin.HandlerFunc
	BulkAssessHandler           gin.HandlerFunc
	SetProviderStatusHandler    gin.HandlerFunc

	// Client trust endpoints.
	GetClientHandler            gin.HandlerFunc
	ListClientsHandler          gin.HandlerFunc
	UpdateTrustScoreHandler     gin.HandlerFunc
	RecordBookingOutcomeHandler gin.HandlerFunc
	SuspendClientHandler        gin.HandlerFunc

	// Warning endpoints.
	IssueWarningHandler       gin.HandlerFunc
	GetWarningHandler         gin.HandlerFunc
	ListWarningsHandler       gin.HandlerFunc
	ListMyWarningsHandler     gin.HandlerFunc
	AcknowledgeWarningHandler gin.HandlerFunc
	ResolveWarningHandler     gin.HandlerFunc
	ActivateWarningHandler    gin.HandlerFunc
	DeactivateWarningHandler  gin.HandlerFunc

	// Review endpoints.
	CreateReviewHandler        gin.HandlerFunc
	ListProviderReviewsHandler gin.HandlerFunc
	DeleteReviewHandler        gin.HandlerFunc

	// Identity document endpoints.
	UploadFileHandler           gin.HandlerFunc
	SubmitDocumentHandler       gin.HandlerFunc
	ReviewDocumentHandler       gin.HandlerFunc
	ListMyDocumentsHandler      gin.HandlerFunc
	ListPendingDocumentsHandler gin.HandlerFunc

	// Admin reporting endpoints.
	WarningStatsHandler       gin.HandlerFunc
	RiskDistributionHandler   gin.HandlerFunc
	OverdueAssessmentsHandler gin.HandlerFunc
	ListUsersHandler          gin.HandlerFunc
}
