package document

import (
	"context"
	"fmt"
	"io"
	"strings"
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

type memDocumentRepo struct {
	byID map[string]*models.IdentityDocument
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{byID: map[string]*models.IdentityDocument{}}
}

func (r *memDocumentRepo) GetByID(id string) (*models.IdentityDocument, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *d
	return &cp, nil
}

func (r *memDocumentRepo) Create(doc *models.IdentityDocument) error {
	r.byID[doc.ID] = doc
	return nil
}

func (r *memDocumentRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	d, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, mongo.ErrNoDocuments)
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		if v, ok := set["status"].(models.DocumentStatus); ok {
			d.Status = v
		}
		if v, ok := set["reviewedBy"].(string); ok {
			d.ReviewedBy = v
		}
		if v, ok := set["rejectNote"].(string); ok {
			d.RejectNote = v
		}
	}
	return nil
}

func (r *memDocumentRepo) ListByUser(userID string) ([]models.IdentityDocument, error) {
	var out []models.IdentityDocument
	for _, d := range r.byID {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDocumentRepo) ListPending(limit int64) ([]models.IdentityDocument, error) {
	var out []models.IdentityDocument
	for _, d := range r.byID {
		if d.Status == models.DocumentPending {
			out = append(out, *d)
		}
	}
	return out, nil
}

// docProfileRepo records the sub-documents written during propagation.
type docProfileRepo struct {
	byID    map[string]*models.Profile
	updates []bson.M
}

func newDocProfileRepo(ps ...*models.Profile) *docProfileRepo {
	r := &docProfileRepo{byID: map[string]*models.Profile{}}
	for _, p := range ps {
		r.byID[p.ID] = p
	}
	return r
}

func (r *docProfileRepo) GetByID(id string) (*models.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *docProfileRepo) GetByIDIncludeDeleted(id string) (*models.Profile, error) {
	return r.GetByID(id)
}

func (r *docProfileRepo) GetByUserID(userID string) (*models.Profile, error) {
	for _, p := range r.byID {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile for user %s: %w", userID, mongo.ErrNoDocuments)
}

func (r *docProfileRepo) Create(p *models.Profile) error {
	r.byID[p.ID] = p
	return nil
}

func (r *docProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, mongo.ErrNoDocuments)
	}
	r.updates = append(r.updates, updateDoc)
	if set, ok := updateDoc["$set"].(bson.M); ok {
		if v, ok := set["verificationStatus"].(models.VerificationStatus); ok {
			p.VerificationStatus = v
		}
		if v, ok := set["identityDocumentId"].(string); ok {
			p.IdentityDocumentID = v
		}
	}
	return nil
}

func (r *docProfileRepo) List(filter bson.M, page, limit int64) ([]models.Profile, error) {
	return nil, nil
}

func (r *docProfileRepo) SetWarningCount(id string, count int) error { return nil }

func (r *docProfileRepo) ClearWarningCounts(activeIDs []string) (int64, error) { return 0, nil }

// gapProviderRepo records verification-gap updates.
type gapProviderRepo struct {
	byProfile  map[string]*models.ProviderProfile
	gapUpdates []bson.M
}

func newGapProviderRepo(ps ...*models.ProviderProfile) *gapProviderRepo {
	r := &gapProviderRepo{byProfile: map[string]*models.ProviderProfile{}}
	for _, p := range ps {
		r.byProfile[p.ProfileID] = p
	}
	return r
}

func (r *gapProviderRepo) GetByID(id string) (*models.ProviderProfile, error) {
	for _, p := range r.byProfile {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("provider %s: %w", id, mongo.ErrNoDocuments)
}

func (r *gapProviderRepo) GetByProfileID(profileID string) (*models.ProviderProfile, error) {
	p, ok := r.byProfile[profileID]
	if !ok {
		return nil, fmt.Errorf("provider for profile %s: %w", profileID, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *gapProviderRepo) Create(p *models.ProviderProfile) error {
	r.byProfile[p.ProfileID] = p
	return nil
}

func (r *gapProviderRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	r.gapUpdates = append(r.gapUpdates, updateDoc)
	return nil
}

func (r *gapProviderRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error) {
	return r.GetByID(id)
}

func (r *gapProviderRepo) IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error) {
	return r.GetByID(id)
}

func (r *gapProviderRepo) IncrementRiskCounter(id, counter string) error { return nil }

func (r *gapProviderRepo) List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *gapProviderRepo) ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *gapProviderRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	return map[models.RiskLevel]int64{}, nil
}

// fakeStorage returns a deterministic URL without touching any backend.
type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) UploadFile(ctx context.Context, r io.Reader, fileName string) (string, string, error) {
	f.uploads++
	return "https://cdn.example.com/" + fileName, "pub-" + fileName, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, publicID string) error { return nil }

func validFile() models.FileRef {
	return models.FileRef{
		URL:      "https://cdn.example.com/id-front.jpg",
		FileName: "id-front.jpg",
		FileSize: 1 << 20,
		MimeType: "image/jpeg",
	}
}

func newTestService() (*DefaultService, *memDocumentRepo, *docProfileRepo, *gapProviderRepo) {
	docs := newMemDocumentRepo()
	profiles := newDocProfileRepo(&models.Profile{
		ID:                 "profile-1",
		UserID:             "user-1",
		Role:               models.RoleProvider,
		VerificationStatus: models.VerificationUnverified,
	})
	providers := newGapProviderRepo(&models.ProviderProfile{ID: "prov-1", ProfileID: "profile-1", UserID: "user-1"})
	svc := NewService(docs, profiles, providers, &fakeStorage{}, zap.NewNop())
	return svc, docs, profiles, providers
}

func TestValidateFileRef(t *testing.T) {
	require.NoError(t, ValidateFileRef(validFile()))

	tooBig := validFile()
	tooBig.FileSize = maxFileSize + 1
	var vErr *lifecycle.ValidationError
	require.ErrorAs(t, ValidateFileRef(tooBig), &vErr)
	assert.Equal(t, "fileSize", vErr.Field)

	executable := validFile()
	executable.MimeType = "application/x-msdownload"
	require.ErrorAs(t, ValidateFileRef(executable), &vErr)
	assert.Equal(t, "mimeType", vErr.Field)
}

func TestUploadStoresFile(t *testing.T) {
	store := &fakeStorage{}
	svc := NewService(newMemDocumentRepo(), newDocProfileRepo(), newGapProviderRepo(), store, zap.NewNop())

	ref, err := svc.Upload(context.Background(), strings.NewReader("data"), "passport.png", "image/png", 2048)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/passport.png", ref.URL)
	assert.Equal(t, 1, store.uploads)

	_, err = svc.Upload(context.Background(), strings.NewReader("data"), "huge.png", "image/png", maxFileSize+1)
	var vErr *lifecycle.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, store.uploads, "invalid files never reach storage")
}

func TestSubmitDocumentFlipsProfileToPending(t *testing.T) {
	svc, _, profiles, _ := newTestService()

	doc, err := svc.SubmitDocument(context.Background(), SubmitDocumentRequest{
		UserID:    "user-1",
		ProfileID: "profile-1",
		Type:      models.DocumentPassport,
		Number:    " A1234567 ",
		Country:   "ke",
		Files:     []models.FileRef{validFile()},
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentPending, doc.Status)
	assert.Equal(t, "A1234567", doc.Number)
	assert.Equal(t, "KE", doc.Country)

	p := profiles.byID["profile-1"]
	assert.Equal(t, models.VerificationPending, p.VerificationStatus)
	assert.Equal(t, doc.ID, p.IdentityDocumentID)
}

func TestSubmitDocumentValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	var vErr *lifecycle.ValidationError
	_, err := svc.SubmitDocument(ctx, SubmitDocumentRequest{
		UserID: "user-1", ProfileID: "profile-1", Type: "library_card", Files: []models.FileRef{validFile()},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Field)

	_, err = svc.SubmitDocument(ctx, SubmitDocumentRequest{
		UserID: "user-1", ProfileID: "profile-1", Type: models.DocumentPassport,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "files", vErr.Field)

	_, err = svc.SubmitDocument(ctx, SubmitDocumentRequest{
		UserID: "user-1", ProfileID: "missing", Type: models.DocumentPassport, Files: []models.FileRef{validFile()},
	})
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestReviewDocumentApprovePropagates(t *testing.T) {
	svc, _, profiles, providers := newTestService()
	ctx := context.Background()

	doc, err := svc.SubmitDocument(ctx, SubmitDocumentRequest{
		UserID: "user-1", ProfileID: "profile-1", Type: models.DocumentNationalID, Files: []models.FileRef{validFile()},
	})
	require.NoError(t, err)

	reviewed, err := svc.ReviewDocument(ctx, doc.ID, true, "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentApproved, reviewed.Status)
	assert.Equal(t, "admin-1", reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	assert.Equal(t, models.VerificationVerified, profiles.byID["profile-1"].VerificationStatus)
	require.Len(t, providers.gapUpdates, 1)
	pull, ok := providers.gapUpdates[0]["$pull"].(bson.M)
	require.True(t, ok, "approval clears the identity gap")
	assert.Equal(t, identityGap, pull["riskFactors.verificationGaps"])

	// A second review of the same document is rejected.
	_, err = svc.ReviewDocument(ctx, doc.ID, false, "changed my mind", "admin-2")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestReviewDocumentRejectRequiresNote(t *testing.T) {
	svc, _, profiles, providers := newTestService()
	ctx := context.Background()

	doc, err := svc.SubmitDocument(ctx, SubmitDocumentRequest{
		UserID: "user-1", ProfileID: "profile-1", Type: models.DocumentNationalID, Files: []models.FileRef{validFile()},
	})
	require.NoError(t, err)

	var vErr *lifecycle.ValidationError
	_, err = svc.ReviewDocument(ctx, doc.ID, false, "   ", "admin-1")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rejectNote", vErr.Field)

	reviewed, err := svc.ReviewDocument(ctx, doc.ID, false, "photo is unreadable", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentRejected, reviewed.Status)
	assert.Equal(t, "photo is unreadable", reviewed.RejectNote)

	assert.Equal(t, models.VerificationRejected, profiles.byID["profile-1"].VerificationStatus)
	require.Len(t, providers.gapUpdates, 1)
	add, ok := providers.gapUpdates[0]["$addToSet"].(bson.M)
	require.True(t, ok, "rejection records the identity gap")
	assert.Equal(t, identityGap, add["riskFactors.verificationGaps"])
}

func TestReviewDocumentMissing(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ReviewDocument(context.Background(), "missing", true, "", "admin-1")
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}
