// Package document manages identity-document capture and review. Documents
// move through pending/approved/rejected, and review outcomes feed the base
// profile's verification status and the provider's verification gaps.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	documentRepo "trustwork/database/repository/document"
	profileRepo "trustwork/database/repository/profile"
	providerRepo "trustwork/database/repository/provider"
	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/services/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxFileSize = 10 << 20 // 10MB

// identityGap is the verification gap recorded on providers whose identity
// document is missing or rejected.
const identityGap = "identity_document"

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ValidateFileRef checks size and mime type only; contents are opaque here.
func ValidateFileRef(f models.FileRef) error {
	if f.FileSize <= 0 || f.FileSize > maxFileSize {
		return &lifecycle.ValidationError{Field: "fileSize", Message: "file must be non-empty and at most 10MB"}
	}
	if !allowedMimeTypes[strings.ToLower(f.MimeType)] {
		return &lifecycle.ValidationError{Field: "mimeType", Message: fmt.Sprintf("mime type %q is not allowed", f.MimeType)}
	}
	return nil
}

// SubmitDocumentRequest carries a new identity document submission.
type SubmitDocumentRequest struct {
	UserID    string              `json:"userId"`
	ProfileID string              `json:"profileId"`
	Type      models.DocumentType `json:"type"`
	Number    string              `json:"number"`
	Country   string              `json:"country"`
	Files     []models.FileRef    `json:"files"`
}

// Service is the identity-document surface consumed by handlers.
type Service interface {
	// Upload validates and stores one file, returning its reference.
	Upload(ctx context.Context, r io.Reader, fileName, mimeType string, size int64) (*models.FileRef, error)
	// SubmitDocument records a submission and flips the profile to pending review.
	SubmitDocument(ctx context.Context, req SubmitDocumentRequest) (*models.IdentityDocument, error)
	// ReviewDocument approves or rejects a pending submission.
	ReviewDocument(ctx context.Context, documentID string, approve bool, note, reviewer string) (*models.IdentityDocument, error)
	// ListUserDocuments lists a user's submissions.
	ListUserDocuments(ctx context.Context, userID string) ([]models.IdentityDocument, error)
	// ListPending lists submissions awaiting review, oldest first.
	ListPending(ctx context.Context, limit int64) ([]models.IdentityDocument, error)
}

type DefaultService struct {
	Documents documentRepo.DocumentRepository
	Profiles  profileRepo.ProfileRepository
	Providers providerRepo.ProviderProfileRepository
	Storage   storage.Service
	Logger    *zap.Logger
}

func NewService(
	documents documentRepo.DocumentRepository,
	profiles profileRepo.ProfileRepository,
	providers providerRepo.ProviderProfileRepository,
	store storage.Service,
	logger *zap.Logger,
) *DefaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultService{
		Documents: documents,
		Profiles:  profiles,
		Providers: providers,
		Storage:   store,
		Logger:    logger,
	}
}

var _ Service = (*DefaultService)(nil)

func (s *DefaultService) Upload(ctx context.Context, r io.Reader, fileName, mimeType string, size int64) (*models.FileRef, error) {
	ref := models.FileRef{
		FileName:   fileName,
		FileSize:   size,
		MimeType:   mimeType,
		UploadedAt: time.Now(),
	}
	if err := ValidateFileRef(ref); err != nil {
		return nil, err
	}
	url, _, err := s.Storage.UploadFile(ctx, r, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	ref.URL = url
	return &ref, nil
}

func (s *DefaultService) SubmitDocument(ctx context.Context, req SubmitDocumentRequest) (*models.IdentityDocument, error) {
	switch req.Type {
	case models.DocumentNationalID, models.DocumentPassport, models.DocumentDriverLicense:
	default:
		return nil, &lifecycle.ValidationError{Field: "type", Message: fmt.Sprintf("unknown document type %q", req.Type)}
	}
	if len(req.Files) == 0 {
		return nil, &lifecycle.ValidationError{Field: "files", Message: "at least one file is required"}
	}
	for _, f := range req.Files {
		if err := ValidateFileRef(f); err != nil {
			return nil, err
		}
	}
	if _, err := s.Profiles.GetByID(req.ProfileID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile %s: %w", req.ProfileID, lifecycle.ErrNotFound)
		}
		return nil, err
	}

	now := time.Now()
	doc := &models.IdentityDocument{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Number:    strings.TrimSpace(req.Number),
		Country:   strings.ToUpper(strings.TrimSpace(req.Country)),
		Files:     req.Files,
		Status:    models.DocumentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Documents.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	err := s.Profiles.UpdateWithDocument(req.ProfileID, bson.M{"$set": bson.M{
		"verificationStatus": models.VerificationPending,
		"identityDocumentId": doc.ID,
		"updatedAt":          now,
	}})
	if err != nil {
		s.Logger.Warn("failed to flip profile to pending verification",
			zap.String("profileId", req.ProfileID), zap.Error(err))
	}

	s.Logger.Info("identity document submitted",
		zap.String("documentId", doc.ID),
		zap.String("userId", req.UserID),
		zap.String("type", string(req.Type)),
	)
	return doc, nil
}

func (s *DefaultService) ReviewDocument(ctx context.Context, documentID string, approve bool, note, reviewer string) (*models.IdentityDocument, error) {
	doc, err := s.Documents.GetByID(documentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("document %s: %w", documentID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	if doc.Status != models.DocumentPending {
		return nil, fmt.Errorf("document %s already reviewed as %s: %w", documentID, doc.Status, lifecycle.ErrInvalidTransition)
	}
	if !approve && strings.TrimSpace(note) == "" {
		return nil, &lifecycle.ValidationError{Field: "rejectNote", Message: "a rejection note is required"}
	}

	now := time.Now()
	status := models.DocumentApproved
	if !approve {
		status = models.DocumentRejected
	}
	set := bson.M{
		"status":     status,
		"reviewedBy": reviewer,
		"reviewedAt": now,
		"updatedAt":  now,
	}
	if !approve {
		set["rejectNote"] = strings.TrimSpace(note)
	}
	if err := s.Documents.UpdateWithDocument(documentID, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	s.propagateReview(doc, approve, now)

	doc.Status = status
	doc.ReviewedBy = reviewer
	doc.ReviewedAt = &now
	if !approve {
		doc.RejectNote = strings.TrimSpace(note)
	}
	doc.UpdatedAt = now
	s.Logger.Info("identity document reviewed",
		zap.String("documentId", documentID),
		zap.String("status", string(status)),
		zap.String("reviewer", reviewer),
	)
	return doc, nil
}

// propagateReview pushes the outcome into the base profile's verification
// status and the provider's verification gaps. Best effort: the review
// record itself is already committed.
func (s *DefaultService) propagateReview(doc *models.IdentityDocument, approved bool, now time.Time) {
	profileStatus := models.VerificationVerified
	if !approved {
		profileStatus = models.VerificationRejected
	}
	if p, err := s.Profiles.GetByUserID(doc.UserID); err == nil {
		err := s.Profiles.UpdateWithDocument(p.ID, bson.M{"$set": bson.M{
			"verificationStatus": profileStatus,
			"updatedAt":          now,
		}})
		if err != nil {
			s.Logger.Warn("failed to update profile verification status",
				zap.String("profileId", p.ID), zap.Error(err))
		}

		if provider, err := s.Providers.GetByProfileID(p.ID); err == nil {
			var gapUpdate bson.M
			if approved {
				gapUpdate = bson.M{"$pull": bson.M{"riskFactors.verificationGaps": identityGap}}
			} else {
				gapUpdate = bson.M{"$addToSet": bson.M{"riskFactors.verificationGaps": identityGap}}
			}
			if err := s.Providers.UpdateWithDocument(provider.ID, gapUpdate); err != nil {
				s.Logger.Warn("failed to update provider verification gaps",
					zap.String("providerId", provider.ID), zap.Error(err))
			}
		}
	}
}

func (s *DefaultService) ListUserDocuments(ctx context.Context, userID string) ([]models.IdentityDocument, error) {
	return s.Documents.ListByUser(userID)
}

func (s *DefaultService) ListPending(ctx context.Context, limit int64) ([]models.IdentityDocument, error) {
	return s.Documents.ListPending(limit)
}
