package socialauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trustwork/config"
	userRepo "trustwork/database/repository/user"
	"trustwork/models"
	"trustwork/services/profile"
	"trustwork/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const tokenTTL = 72 * time.Hour

// Service exchanges verified provider identities for platform sessions.
type Service interface {
	// SignIn verifies the provider token, finds or creates the account and
	// issues a platform JWT.
	SignIn(ctx context.Context, provider, token string) (*models.AuthResponse, error)
}

type DefaultService struct {
	Repo     userRepo.UserRepository
	Profiles profile.Service
	Logger   *zap.Logger
}

func NewService(repo userRepo.UserRepository, profiles profile.Service, logger *zap.Logger) *DefaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultService{Repo: repo, Profiles: profiles, Logger: logger}
}

var _ Service = (*DefaultService)(nil)

func (s *DefaultService) SignIn(ctx context.Context, provider, token string) (*models.AuthResponse, error) {
	var info *UserInfo
	var err error
	switch provider {
	case "google":
		info, err = VerifyGoogleIDToken(token, config.AppConfig.GoogleClientID)
	case "facebook":
		info, err = VerifyFacebookToken(token, config.AppConfig.FacebookAppID, config.AppConfig.FacebookAppSecret)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s token verification failed: %w", provider, err)
	}

	userRec, err := s.Repo.GetByEmail(info.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.Logger.Error("social sign-in: lookup failed", zap.Error(err))
			return nil, fmt.Errorf("authentication failed, please try again")
		}
		now := time.Now()
		userRec = &models.User{
			ID:            uuid.New().String(),
			Name:          info.Name,
			Email:         info.Email,
			Role:          models.RoleCustomer,
			AuthProvider:  provider,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.Repo.Create(userRec); err != nil {
			s.Logger.Error("social sign-in: failed to create account", zap.Error(err))
			return nil, fmt.Errorf("authentication failed, please try again")
		}
		if _, err := s.Profiles.EnsureProfile(ctx, userRec.ID, userRec.Role); err != nil {
			s.Logger.Warn("social sign-in: failed to create profile", zap.String("userId", userRec.ID), zap.Error(err))
		}
		s.Logger.Info("account created via social sign-in",
			zap.String("userId", userRec.ID), zap.String("provider", provider))
	}

	jwtToken, err := utils.GenerateToken(userRec.ID, userRec.Email, string(userRec.Role), tokenTTL)
	if err != nil {
		s.Logger.Error("social sign-in: failed to generate token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	err = s.Repo.UpdateWithDocument(userRec.ID, bson.M{"$set": bson.M{
		"tokenHash": utils.HashToken(jwtToken),
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	return &models.AuthResponse{
		UserID: userRec.ID,
		Email:  userRec.Email,
		Name:   userRec.Name,
		Role:   userRec.Role,
		Token:  jwtToken,
	}, nil
}
