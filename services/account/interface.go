// Package account handles credential accounts: registration, sign-in with
// JWT issuance, token revocation and password reset. Only bcrypt hashes and
// SHA-256 token hashes ever reach the store.
package account

import (
	"context"

	userRepo "trustwork/database/repository/user"
	"trustwork/models"
	"trustwork/services/notification"
	"trustwork/services/profile"

	"go.uber.org/zap"
)

type AccountService interface {
	// SignUp registers a credentials account and its base profile, returning
	// a signed-in response.
	SignUp(ctx context.Context, req SignUpRequest) (*models.AuthResponse, error)
	// SignIn authenticates by email and password and issues a fresh token,
	// invalidating the previous one.
	SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error)
	// RevokeToken clears the stored token hash so the current JWT stops
	// authenticating even before it expires.
	RevokeToken(ctx context.Context, userID string) error
	// InitiatePasswordReset starts a reset flow and mails the code. Returns
	// the session id the caller must present alongside the code.
	InitiatePasswordReset(ctx context.Context, email string) (string, error)
	// CompletePasswordReset verifies the code and sets the new password.
	CompletePasswordReset(ctx context.Context, sessionID, code, newPassword string) error
	// GetUser fetches an account by id.
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// SignUpRequest carries the fields needed to open an account.
type SignUpRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"`
}

// DefaultAccountService is the production implementation.
type DefaultAccountService struct {
	Repo     userRepo.UserRepository
	Profiles profile.Service
	Mailer   notification.EmailService
	Logger   *zap.Logger
}

func NewAccountService(
	repo userRepo.UserRepository,
	profiles profile.Service,
	mailer notification.EmailService,
	logger *zap.Logger,
) *DefaultAccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAccountService{Repo: repo, Profiles: profiles, Mailer: mailer, Logger: logger}
}

var _ AccountService = (*DefaultAccountService)(nil)
