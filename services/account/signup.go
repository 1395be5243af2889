package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	userRepo "trustwork/database/repository/user"
	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	var (
		hasMinLen = len(pw) >= 8
		hasUpper  = regexp.MustCompile(`[A-Z]`).MatchString(pw)
		hasLower  = regexp.MustCompile(`[a-z]`).MatchString(pw)
		hasNumber = regexp.MustCompile(`[0-9]`).MatchString(pw)
	)
	if !hasMinLen {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if !hasUpper {
		return fmt.Errorf("password must include at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must include at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must include at least one number")
	}
	return nil
}

func (s *DefaultAccountService) SignUp(ctx context.Context, req SignUpRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &lifecycle.ValidationError{Field: "email", Message: "email is required"}
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, &lifecycle.ValidationError{Field: "password", Message: err.Error()}
	}
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	// Elevated roles are assigned out of band, never at self-signup.
	if role != models.RoleCustomer && role != models.RoleProvider {
		return nil, &lifecycle.ValidationError{Field: "role", Message: fmt.Sprintf("cannot self-register as %q", role)}
	}

	if _, err := s.Repo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("account with email %s already exists: %w", email, lifecycle.ErrConflict)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.Logger.Error("SignUp: duplicate check failed", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("SignUp: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	now := time.Now()
	userObj := models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		AuthProvider: "password",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, err := utils.GenerateToken(userObj.ID, userObj.Email, string(role), tokenTTL)
	if err != nil {
		s.Logger.Error("SignUp: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	userObj.TokenHash = utils.HashToken(token)

	if err := s.Repo.Create(&userObj); err != nil {
		if errors.Is(err, userRepo.ErrDuplicate) {
			return nil, fmt.Errorf("account with email %s already exists: %w", email, lifecycle.ErrConflict)
		}
		s.Logger.Error("SignUp: failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	if _, err := s.Profiles.EnsureProfile(ctx, userObj.ID, role); err != nil {
		// The account exists; the profile will be created on first access.
		s.Logger.Warn("SignUp: failed to create profile", zap.String("userId", userObj.ID), zap.Error(err))
	}

	s.Logger.Info("account registered", zap.String("userId", userObj.ID), zap.String("role", string(role)))
	return &models.AuthResponse{
		UserID: userObj.ID,
		Email:  userObj.Email,
		Name:   userObj.Name,
		Role:   userObj.Role,
		Token:  token,
	}, nil
}

// GetUser fetches an account by id.
func (s *DefaultAccountService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", userID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// touchUser stamps updatedAt together with the given set fields.
func (s *DefaultAccountService) touchUser(userID string, set bson.M) error {
	set["updatedAt"] = time.Now()
	return s.Repo.UpdateWithDocument(userID, bson.M{"$set": set})
}
