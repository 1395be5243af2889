package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"trustwork/services/lifecycle"
	"trustwork/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxResetAttempts = 5

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// InitiatePasswordReset creates a short-lived reset session in Redis and
// mails the code. The same response is returned whether or not the email has
// an account, so the endpoint cannot be used to probe for registered emails.
func (s *DefaultAccountService) InitiatePasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	sessionID := uuid.New().String()

	userRec, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return sessionID, nil
		}
		s.Logger.Error("InitiatePasswordReset: lookup failed", zap.Error(err))
		return "", fmt.Errorf("reset failed, please try again")
	}

	code, err := generateResetCode()
	if err != nil {
		s.Logger.Error("InitiatePasswordReset: failed to generate code", zap.Error(err))
		return "", fmt.Errorf("reset failed, please try again")
	}

	session := utils.ResetSession{
		UserID:    userRec.ID,
		Email:     email,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err := utils.SaveResetSession(utils.GetAuthCacheClient(), sessionID, session); err != nil {
		s.Logger.Error("InitiatePasswordReset: failed to save session", zap.Error(err))
		return "", fmt.Errorf("reset failed, please try again")
	}

	if err := s.Mailer.SendEmail(ctx, email, "Password reset code",
		fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code)); err != nil {
		s.Logger.Warn("InitiatePasswordReset: email delivery failed", zap.Error(err))
	}
	return sessionID, nil
}

// CompletePasswordReset verifies the code, enforces the attempt limit, sets
// the new password and revokes any outstanding token.
func (s *DefaultAccountService) CompletePasswordReset(ctx context.Context, sessionID, code, newPassword string) error {
	client := utils.GetAuthCacheClient()
	session, err := utils.GetResetSession(client, sessionID)
	if err != nil {
		return fmt.Errorf("reset session not found or expired: %w", lifecycle.ErrNotFound)
	}

	if session.Code != code {
		session.Attempts++
		if session.Attempts >= maxResetAttempts {
			_ = utils.DeleteResetSession(client, sessionID)
			return fmt.Errorf("too many failed attempts, reset session closed")
		}
		if err := utils.SaveResetSession(client, sessionID, *session); err != nil {
			s.Logger.Error("CompletePasswordReset: failed to record attempt", zap.Error(err))
		}
		return fmt.Errorf("invalid reset code")
	}

	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return &lifecycle.ValidationError{Field: "password", Message: err.Error()}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("CompletePasswordReset: failed to hash password", zap.Error(err))
		return fmt.Errorf("reset failed, please try again")
	}

	err = s.Repo.UpdateWithDocument(session.UserID, bson.M{
		"$set":   bson.M{"passwordHash": string(hashed), "updatedAt": time.Now()},
		"$unset": bson.M{"tokenHash": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to set new password: %w", err)
	}

	_ = utils.DeleteResetSession(client, sessionID)
	s.Logger.Info("password reset completed", zap.String("userId", session.UserID))
	return nil
}
