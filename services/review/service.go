// Package review records client ratings of providers and rolls them forward
// into the provider's performance metrics and risk inputs.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	providerRepo "trustwork/database/repository/provider"
	reviewRepo "trustwork/database/repository/review"
	"trustwork/models"
	"trustwork/services/lifecycle"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Ratings at or below this count against the provider's risk factors.
const negativeRatingCeiling = 2.0

const maxCommentLength = 2000

// CreateReviewRequest carries the fields of a new review.
type CreateReviewRequest struct {
	ProviderID string  `json:"providerId" binding:"required"`
	ClientID   string  `json:"clientId"`
	BookingRef string  `json:"bookingRef" binding:"required"`
	Rating     float64 `json:"rating" binding:"required"`
	Comment    string  `json:"comment"`
}

// Service is the review surface consumed by handlers.
type Service interface {
	// CreateReview validates and stores a review, one per booking ref, and
	// rolls the rating into the provider's metrics.
	CreateReview(ctx context.Context, req CreateReviewRequest) (*models.Review, error)
	// ListProviderReviews pages a provider's reviews.
	ListProviderReviews(ctx context.Context, providerID string, page, limit int64) ([]models.Review, error)
	// DeleteReview soft-deletes a review and recomputes the provider's
	// average rating without it.
	DeleteReview(ctx context.Context, id, actor string) error
}

type DefaultService struct {
	Reviews   reviewRepo.ReviewRepository
	Providers providerRepo.ProviderProfileRepository
	Logger    *zap.Logger
}

func NewService(reviews reviewRepo.ReviewRepository, providers providerRepo.ProviderProfileRepository, logger *zap.Logger) *DefaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultService{Reviews: reviews, Providers: providers, Logger: logger}
}

var _ Service = (*DefaultService)(nil)

func (r CreateReviewRequest) validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return &lifecycle.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if strings.TrimSpace(r.BookingRef) == "" {
		return &lifecycle.ValidationError{Field: "bookingRef", Message: "booking reference is required"}
	}
	if len(r.Comment) > maxCommentLength {
		return &lifecycle.ValidationError{Field: "comment", Message: fmt.Sprintf("comment exceeds %d characters", maxCommentLength)}
	}
	return nil
}

func (s *DefaultService) CreateReview(ctx context.Context, req CreateReviewRequest) (*models.Review, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.Providers.GetByID(req.ProviderID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", req.ProviderID, lifecycle.ErrNotFound)
		}
		return nil, err
	}
	if existing, err := s.Reviews.GetByBookingRef(req.BookingRef); err == nil && existing != nil {
		return nil, fmt.Errorf("booking %s is already reviewed: %w", req.BookingRef, lifecycle.ErrConflict)
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	rv := &models.Review{
		ID:         uuid.NewString(),
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		BookingRef: req.BookingRef,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  time.Now(),
	}
	if err := s.Reviews.Create(rv); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.rollForwardRating(req.ProviderID); err != nil {
		// The review itself is committed; the rollup catches up on the next one.
		s.Logger.Warn("failed to roll rating into provider metrics",
			zap.String("providerId", req.ProviderID), zap.Error(err))
	}
	if req.Rating <= negativeRatingCeiling {
		if err := s.Providers.IncrementRiskCounter(req.ProviderID, "negativeReviews"); err != nil {
			s.Logger.Warn("failed to count negative review",
				zap.String("providerId", req.ProviderID), zap.Error(err))
		}
	}

	s.Logger.Info("review created",
		zap.String("reviewId", rv.ID),
		zap.String("providerId", req.ProviderID),
		zap.Float64("rating", req.Rating),
	)
	return rv, nil
}

func (s *DefaultService) ListProviderReviews(ctx context.Context, providerID string, page, limit int64) ([]models.Review, error) {
	return s.Reviews.ListByProvider(providerID, page, limit)
}

func (s *DefaultService) DeleteReview(ctx context.Context, id, actor string) error {
	rv, err := s.Reviews.GetByID(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("review %s: %w", id, lifecycle.ErrNotFound)
		}
		return err
	}
	if err := s.Reviews.SoftDelete(id, actor); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if err := s.rollForwardRating(rv.ProviderID); err != nil {
		s.Logger.Warn("failed to recompute provider rating after delete",
			zap.String("providerId", rv.ProviderID), zap.Error(err))
	}
	return nil
}

// rollForwardRating recomputes averageRating from the store's aggregate so
// concurrent review writes converge on the same value.
func (s *DefaultService) rollForwardRating(providerID string) error {
	count, average, err := s.Reviews.ProviderRatingStats(providerID)
	if err != nil {
		return err
	}
	s.Logger.Debug("provider rating recomputed",
		zap.String("providerId", providerID),
		zap.Int64("reviews", count),
		zap.Float64("average", average),
	)
	return s.Providers.UpdateWithDocument(providerID, bson.M{"$set": bson.M{
		"metrics.averageRating": average,
		"updatedAt":             time.Now(),
	}})
}
