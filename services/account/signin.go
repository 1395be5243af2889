package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultAccountService) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	userRec, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("invalid email or password")
		}
		s.Logger.Error("SignIn: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if userRec.AuthProvider != "" && userRec.AuthProvider != "password" {
		return nil, fmt.Errorf("this account signs in with %s", userRec.AuthProvider)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	token, err := utils.GenerateToken(userRec.ID, userRec.Email, string(userRec.Role), tokenTTL)
	if err != nil {
		s.Logger.Error("SignIn: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	// Storing the new hash invalidates whatever token was issued before.
	if err := s.touchUser(userRec.ID, bson.M{"tokenHash": utils.HashToken(token)}); err != nil {
		s.Logger.Error("SignIn: failed to persist token hash", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	s.Logger.Info("account signed in", zap.String("userId", userRec.ID))
	return &models.AuthResponse{
		UserID: userRec.ID,
		Email:  userRec.Email,
		Name:   userRec.Name,
		Role:   userRec.Role,
		Token:  token,
	}, nil
}

// RevokeToken clears the stored token hash for a user.
func (s *DefaultAccountService) RevokeToken(ctx context.Context, userID string) error {
	if _, err := s.Repo.GetByID(userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("user %s: %w", userID, lifecycle.ErrNotFound)
		}
		return err
	}
	if err := s.Repo.UpdateWithDocument(userID, bson.M{"$unset": bson.M{"tokenHash": ""}}); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.Logger.Info("auth token revoked", zap.String("userId", userID))
	return nil
}
