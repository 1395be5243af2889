package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trustwork/models"
	"trustwork/services/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memProfileRepo struct {
	byID map[string]*models.Profile
}

func newMemProfileRepo(ps ...*models.Profile) *memProfileRepo {
	r := &memProfileRepo{byID: map[string]*models.Profile{}}
	for _, p := range ps {
		r.byID[p.ID] = p
	}
	return r
}

func (r *memProfileRepo) GetByID(id string) (*models.Profile, error) {
	p, ok := r.byID[id]
	if !ok || p.IsDeleted {
		return nil, fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) GetByIDIncludeDeleted(id string) (*models.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *memProfileRepo) GetByUserID(userID string) (*models.Profile, error) {
	for _, p := range r.byID {
		if p.UserID == userID && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile for user %s: %w", userID, mongo.ErrNoDocuments)
}

func (r *memProfileRepo) Create(p *models.Profile) error {
	r.byID[p.ID] = p
	return nil
}

func (r *memProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		if v, ok := set["isDeleted"].(bool); ok {
			p.IsDeleted = v
		}
		if v, ok := set["completenessScore"].(int); ok {
			p.CompletenessScore = v
		}
	}
	return nil
}

func (r *memProfileRepo) List(filter bson.M, page, limit int64) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range r.byID {
		if !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProfileRepo) SetWarningCount(id string, count int) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	p.WarningsCount = count
	return nil
}

func (r *memProfileRepo) ClearWarningCounts(activeIDs []string) (int64, error) { return 0, nil }

type memProviderRepo struct {
	byProfile map[string]*models.ProviderProfile
}

func (r *memProviderRepo) GetByID(id string) (*models.ProviderProfile, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *memProviderRepo) GetByProfileID(profileID string) (*models.ProviderProfile, error) {
	p, ok := r.byProfile[profileID]
	if !ok {
		return nil, fmt.Errorf("provider profile for %s: %w", profileID, mongo.ErrNoDocuments)
	}
	return p, nil
}
func (r *memProviderRepo) Create(p *models.ProviderProfile) error {
	r.byProfile[p.ProfileID] = p
	return nil
}
func (r *memProviderRepo) UpdateWithDocument(id string, updateDoc bson.M) error { return nil }
func (r *memProviderRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *memProviderRepo) IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *memProviderRepo) IncrementRiskCounter(id, counter string) error { return nil }
func (r *memProviderRepo) List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error) {
	return nil, nil
}
func (r *memProviderRepo) ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error) {
	return nil, nil
}
func (r *memProviderRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) { return nil, nil }

type memClientRepo struct {
	byProfile map[string]*models.ClientProfile
}

func (r *memClientRepo) GetByID(id string) (*models.ClientProfile, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *memClientRepo) GetByProfileID(profileID string) (*models.ClientProfile, error) {
	c, ok := r.byProfile[profileID]
	if !ok {
		return nil, fmt.Errorf("client profile for %s: %w", profileID, mongo.ErrNoDocuments)
	}
	return c, nil
}
func (r *memClientRepo) Create(c *models.ClientProfile) error {
	r.byProfile[c.ProfileID] = c
	return nil
}
func (r *memClientRepo) UpdateWithDocument(id string, updateDoc bson.M) error { return nil }
func (r *memClientRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ClientProfile, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *memClientRepo) List(filter bson.M, page, limit int64) ([]models.ClientProfile, error) {
	return nil, nil
}
func (r *memClientRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) { return nil, nil }

func newTestService(profiles *memProfileRepo) *DefaultService {
	if profiles == nil {
		profiles = newMemProfileRepo()
	}
	return NewService(
		profiles,
		&memProviderRepo{byProfile: map[string]*models.ProviderProfile{}},
		&memClientRepo{byProfile: map[string]*models.ClientProfile{}},
		zap.NewNop(),
	)
}

func baseProfile(id, userID string, role models.Role) *models.Profile {
	return &models.Profile{ID: id, UserID: userID, Role: role, VerificationStatus: models.VerificationUnverified}
}

func TestCreateProfileRejectsDuplicate(t *testing.T) {
	s := newTestService(nil)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, "user-1", models.RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.VerificationUnverified, p.VerificationStatus)
	assert.Equal(t, 0, p.CompletenessScore)

	_, err = s.CreateProfile(ctx, "user-1", models.RoleCustomer)
	assert.ErrorIs(t, err, lifecycle.ErrConflict)

	_, err = s.CreateProfile(ctx, "user-2", models.Role("ghost"))
	assert.True(t, lifecycle.IsValidation(err))
}

func TestEnsureProfileCreatesOnFirstAccess(t *testing.T) {
	s := newTestService(nil)
	ctx := context.Background()

	p1, err := s.EnsureProfile(ctx, "user-1", models.RoleProvider)
	require.NoError(t, err)
	p2, err := s.EnsureProfile(ctx, "user-1", models.RoleProvider)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)
}

func TestUpdateProfileOwnerAllowList(t *testing.T) {
	repo := newMemProfileRepo(baseProfile("prof-1", "user-1", models.RoleCustomer))
	s := newTestService(repo)
	ctx := context.Background()
	owner := Actor{UserID: "user-1", Role: models.RoleCustomer}

	bio := "experienced gardener"
	updated, err := s.UpdateProfile(ctx, "prof-1", owner, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, 15, updated.CompletenessScore, "bio contributes 15 points")

	// Owners cannot touch moderation fields.
	status := models.VerificationVerified
	_, err = s.UpdateProfile(ctx, "prof-1", owner, ProfileUpdate{VerificationStatus: &status})
	var fpe *FieldPermissionError
	require.ErrorAs(t, err, &fpe)
	assert.Equal(t, "verificationStatus", fpe.Field)

	// A different user cannot edit someone else's profile.
	stranger := Actor{UserID: "user-2", Role: models.RoleCustomer}
	_, err = s.UpdateProfile(ctx, "prof-1", stranger, ProfileUpdate{Bio: &bio})
	assert.ErrorAs(t, err, &fpe)
}

func TestUpdateProfileAdminAndSuperAdmin(t *testing.T) {
	repo := newMemProfileRepo(baseProfile("prof-1", "user-1", models.RoleCustomer))
	s := newTestService(repo)
	ctx := context.Background()

	status := models.VerificationVerified
	admin := Actor{UserID: "admin-1", Role: models.RoleAdmin}
	updated, err := s.UpdateProfile(ctx, "prof-1", admin, ProfileUpdate{VerificationStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, updated.VerificationStatus)

	// Role changes are reserved for super_admin.
	role := models.RoleProvider
	_, err = s.UpdateProfile(ctx, "prof-1", admin, ProfileUpdate{Role: &role})
	var fpe *FieldPermissionError
	require.ErrorAs(t, err, &fpe)

	super := Actor{UserID: "root-1", Role: models.RoleSuperAdmin}
	updated, err = s.UpdateProfile(ctx, "prof-1", super, ProfileUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, updated.Role)
}

func TestUpdateProfileRecomputesCompleteness(t *testing.T) {
	repo := newMemProfileRepo(baseProfile("prof-1", "user-1", models.RoleCustomer))
	s := newTestService(repo)
	owner := Actor{UserID: "user-1", Role: models.RoleCustomer}

	bio := "bio"
	loc := models.Location{Code: "NBO", City: "Nairobi", Country: "KE"}
	contact := models.Contact{Phone: "+254700000000"}
	idNum := "12345678"
	updated, err := s.UpdateProfile(context.Background(), "prof-1", owner, ProfileUpdate{
		Bio: &bio, Location: &loc, Contact: &contact, IDNumber: &idNum,
	})
	require.NoError(t, err)
	// 15 + 25 + 25 + 20.
	assert.Equal(t, 85, updated.CompletenessScore)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	repo := newMemProfileRepo(baseProfile("prof-1", "user-1", models.RoleCustomer))
	s := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, s.SoftDeleteProfile(ctx, "prof-1", "admin-1"))
	_, err := s.GetProfile(ctx, "prof-1")
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)

	err = s.SoftDeleteProfile(ctx, "prof-1", "admin-1")
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyInState)

	restored, err := s.RestoreProfile(ctx, "prof-1", "admin-1")
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	_, err = s.RestoreProfile(ctx, "prof-1", "admin-1")
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyInState)
}

func TestCreateProviderProfile(t *testing.T) {
	repo := newMemProfileRepo(
		baseProfile("prof-1", "user-1", models.RoleProvider),
		baseProfile("prof-2", "user-2", models.RoleCustomer),
	)
	s := newTestService(repo)
	ctx := context.Background()

	p, err := s.CreateProviderProfile(ctx, "prof-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderProbationary, p.Status)
	assert.True(t, p.RiskFactors.NewProvider)
	assert.Equal(t, models.RiskLow, p.RiskLevel, "newProvider alone scores 20, below the medium bucket")

	_, err = s.CreateProviderProfile(ctx, "prof-1")
	assert.ErrorIs(t, err, lifecycle.ErrConflict)

	_, err = s.CreateProviderProfile(ctx, "prof-2")
	assert.True(t, lifecycle.IsValidation(err))
}

func TestCreateClientProfile(t *testing.T) {
	repo := newMemProfileRepo(baseProfile("prof-1", "user-1", models.RoleCustomer))
	s := newTestService(repo)
	ctx := context.Background()

	c, err := s.CreateClientProfile(ctx, "prof-1")
	require.NoError(t, err)
	assert.Equal(t, defaultClientTrustScore, c.TrustScore)
	assert.Equal(t, models.TierBronze, c.LoyaltyTier)
	assert.Equal(t, models.RiskMedium, c.RiskLevel, "no verified channels starts one bucket up")

	_, err = s.CreateClientProfile(ctx, "prof-1")
	assert.ErrorIs(t, err, lifecycle.ErrConflict)
}
