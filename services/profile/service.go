// Package profile manages the role-scoped base profile and its provider or
// client extension. Mutations pass a declarative field allow-list before
// anything is written, and the completeness score is recomputed on every
// change so callers never persist it directly.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientRepo "trustwork/database/repository/client"
	profileRepo "trustwork/database/repository/profile"
	providerRepo "trustwork/database/repository/provider"
	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/services/scoring"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultClientTrustScore = 100

// Service is the profile management surface consumed by handlers.
type Service interface {
	// CreateProfile registers a profile for a user, one per user.
	CreateProfile(ctx context.Context, userID string, role models.Role) (*models.Profile, error)
	// EnsureProfile returns the user's profile, creating a default one on first access.
	EnsureProfile(ctx context.Context, userID string, role models.Role) (*models.Profile, error)
	// GetProfile fetches a profile by id, excluding soft-deleted ones.
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	// GetProfileByUser fetches the profile owned by a user.
	GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error)
	// UpdateProfile applies the allowed subset of the update for the actor and
	// recomputes completeness in the same write.
	UpdateProfile(ctx context.Context, id string, actor Actor, update ProfileUpdate) (*models.Profile, error)
	// ListProfiles pages through non-deleted profiles.
	ListProfiles(ctx context.Context, filter bson.M, page, limit int64) ([]models.Profile, error)
	// SoftDeleteProfile flags a profile deleted, recording actor and time.
	SoftDeleteProfile(ctx context.Context, id, actor string) error
	// RestoreProfile reverses a soft delete.
	RestoreProfile(ctx context.Context, id, actor string) (*models.Profile, error)
	// CreateProviderProfile attaches the provider extension, one per profile.
	CreateProviderProfile(ctx context.Context, profileID string) (*models.ProviderProfile, error)
	// CreateClientProfile attaches the client extension, one per profile.
	CreateClientProfile(ctx context.Context, profileID string) (*models.ClientProfile, error)
}

// DefaultService is the repository-backed Service implementation.
type DefaultService struct {
	Profiles  profileRepo.ProfileRepository
	Providers providerRepo.ProviderProfileRepository
	Clients   clientRepo.ClientProfileRepository
	Logger    *zap.Logger

	now func() time.Time
}

func NewService(
	profiles profileRepo.ProfileRepository,
	providers providerRepo.ProviderProfileRepository,
	clients clientRepo.ClientProfileRepository,
	logger *zap.Logger,
) *DefaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultService{
		Profiles:  profiles,
		Providers: providers,
		Clients:   clients,
		Logger:    logger,
		now:       time.Now,
	}
}

var _ Service = (*DefaultService)(nil)

func validRole(role models.Role) bool {
	switch role {
	case models.RoleCustomer, models.RoleProvider, models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return false
}

func (s *DefaultService) CreateProfile(ctx context.Context, userID string, role models.Role) (*models.Profile, error) {
	if userID == "" {
		return nil, &lifecycle.ValidationError{Field: "userId", Message: "user id is required"}
	}
	if !validRole(role) {
		return nil, &lifecycle.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	if _, err := s.Profiles.GetByUserID(userID); err == nil {
		return nil, fmt.Errorf("profile for user %s already exists: %w", userID, lifecycle.ErrConflict)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := s.now()
	p := &models.Profile{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Role:               role,
		VerificationStatus: models.VerificationUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	p.CompletenessScore = scoring.Completeness(p)
	if err := s.Profiles.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.Logger.Info("profile created", zap.String("profileId", p.ID), zap.String("userId", userID), zap.String("role", string(role)))
	return p, nil
}

func (s *DefaultService) EnsureProfile(ctx context.Context, userID string, role models.Role) (*models.Profile, error) {
	p, err := s.Profiles.GetByUserID(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	return s.CreateProfile(ctx, userID, role)
}

func (s *DefaultService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.Profiles.GetByID(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile %s: %w", id, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.Profiles.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) UpdateProfile(ctx context.Context, id string, actor Actor, update ProfileUpdate) (*models.Profile, error) {
	current, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := update.changes()
	if len(changes) == 0 {
		return current, nil
	}
	for _, c := range changes {
		if !mayWrite(c.name, actor, current.UserID) {
			return nil, &FieldPermissionError{Field: c.name, Role: actor.Role}
		}
	}
	if update.VerificationStatus != nil {
		switch *update.VerificationStatus {
		case models.VerificationUnverified, models.VerificationPending, models.VerificationVerified, models.VerificationRejected:
		default:
			return nil, &lifecycle.ValidationError{Field: "verificationStatus", Message: fmt.Sprintf("unknown status %q", *update.VerificationStatus)}
		}
	}
	if update.Role != nil && !validRole(*update.Role) {
		return nil, &lifecycle.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", *update.Role)}
	}

	set := bson.M{}
	next := *current
	for _, c := range changes {
		c.apply(&next)
		set[c.name] = c.value
	}
	set["completenessScore"] = scoring.Completeness(&next)
	set["updatedAt"] = s.now()

	if err := s.Profiles.UpdateWithDocument(id, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	next.CompletenessScore = set["completenessScore"].(int)
	next.UpdatedAt = set["updatedAt"].(time.Time)
	s.Logger.Info("profile updated",
		zap.String("profileId", id),
		zap.String("actor", actor.UserID),
		zap.Int("fields", len(changes)),
		zap.Int("completeness", next.CompletenessScore),
	)
	return &next, nil
}

func (s *DefaultService) ListProfiles(ctx context.Context, filter bson.M, page, limit int64) ([]models.Profile, error) {
	return s.Profiles.List(filter, page, limit)
}

func (s *DefaultService) SoftDeleteProfile(ctx context.Context, id, actor string) error {
	current, err := s.Profiles.GetByIDIncludeDeleted(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("profile %s: %w", id, lifecycle.ErrNotFound)
		}
		return err
	}
	if current.IsDeleted {
		return fmt.Errorf("profile %s is already deleted: %w", id, lifecycle.ErrAlreadyInState)
	}
	now := s.now()
	err = s.Profiles.UpdateWithDocument(id, bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedAt": now,
		"deletedBy": actor,
		"updatedAt": now,
	}})
	if err != nil {
		return fmt.Errorf("failed to soft-delete profile: %w", err)
	}
	s.Logger.Warn("profile soft-deleted", zap.String("profileId", id), zap.String("actor", actor))
	return nil
}

func (s *DefaultService) RestoreProfile(ctx context.Context, id, actor string) (*models.Profile, error) {
	current, err := s.Profiles.GetByIDIncludeDeleted(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile %s: %w", id, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	if !current.IsDeleted {
		return nil, fmt.Errorf("profile %s is not deleted: %w", id, lifecycle.ErrAlreadyInState)
	}
	now := s.now()
	err = s.Profiles.UpdateWithDocument(id, bson.M{
		"$set":   bson.M{"isDeleted": false, "updatedAt": now},
		"$unset": bson.M{"deletedAt": "", "deletedBy": ""},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore profile: %w", err)
	}
	current.IsDeleted = false
	current.DeletedAt = nil
	current.DeletedBy = ""
	current.UpdatedAt = now
	s.Logger.Info("profile restored", zap.String("profileId", id), zap.String("actor", actor))
	return current, nil
}

func (s *DefaultService) CreateProviderProfile(ctx context.Context, profileID string) (*models.ProviderProfile, error) {
	base, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if base.Role != models.RoleProvider {
		return nil, &lifecycle.ValidationError{Field: "role", Message: "profile role must be provider"}
	}
	if _, err := s.Providers.GetByProfileID(profileID); err == nil {
		return nil, fmt.Errorf("provider profile for %s already exists: %w", profileID, lifecycle.ErrConflict)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	factors := models.RiskFactors{NewProvider: true}
	now := s.now()
	p := &models.ProviderProfile{
		ID:          uuid.NewString(),
		ProfileID:   profileID,
		UserID:      base.UserID,
		Status:      models.ProviderProbationary,
		RiskFactors: factors,
		RiskLevel:   scoring.ProviderRiskLevelFromScore(scoring.ProviderRiskScore(factors)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Providers.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create provider profile: %w", err)
	}
	s.Logger.Info("provider profile created", zap.String("profileId", profileID), zap.String("providerId", p.ID))
	return p, nil
}

func (s *DefaultService) CreateClientProfile(ctx context.Context, profileID string) (*models.ClientProfile, error) {
	base, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if base.Role != models.RoleCustomer {
		return nil, &lifecycle.ValidationError{Field: "role", Message: "profile role must be customer"}
	}
	if _, err := s.Clients.GetByProfileID(profileID); err == nil {
		return nil, fmt.Errorf("client profile for %s already exists: %w", profileID, lifecycle.ErrConflict)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := s.now()
	c := &models.ClientProfile{
		ID:         uuid.NewString(),
		ProfileID:  profileID,
		UserID:     base.UserID,
		TrustScore: defaultClientTrustScore,
		// A brand-new client has no verified channels yet, which places it
		// one bucket above low until verification lands.
		RiskLevel:   models.MaxRiskLevel(scoring.TrustScoreRiskLevel(defaultClientTrustScore), scoring.ClientRiskLevel(defaultClientTrustScore, 0, 0, 0, 0)),
		LoyaltyTier: models.TierBronze,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Clients.Create(c); err != nil {
		return nil, fmt.Errorf("failed to create client profile: %w", err)
	}
	s.Logger.Info("client profile created", zap.String("profileId", profileID), zap.String("clientId", c.ID))
	return c, nil
}
