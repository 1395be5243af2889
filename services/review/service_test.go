package review

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

type memReviewRepo struct {
	byID map[string]*models.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{byID: map[string]*models.Review{}}
}

func (r *memReviewRepo) GetByID(id string) (*models.Review, error) {
	rv, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *rv
	return &cp, nil
}

func (r *memReviewRepo) GetByBookingRef(bookingRef string) (*models.Review, error) {
	for _, rv := range r.byID {
		if rv.BookingRef == bookingRef && !rv.IsDeleted {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", bookingRef, mongo.ErrNoDocuments)
}

func (r *memReviewRepo) Create(rv *models.Review) error {
	r.byID[rv.ID] = rv
	return nil
}

func (r *memReviewRepo) ListByProvider(providerID string, page, limit int64) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range r.byID {
		if rv.ProviderID == providerID && !rv.IsDeleted {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *memReviewRepo) SoftDelete(id, actor string) error {
	rv, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("review %s: %w", id, mongo.ErrNoDocuments)
	}
	now := time.Now()
	rv.IsDeleted = true
	rv.DeletedAt = &now
	rv.DeletedBy = actor
	return nil
}

func (r *memReviewRepo) ProviderRatingStats(providerID string) (int64, float64, error) {
	var count int64
	var sum float64
	for _, rv := range r.byID {
		if rv.ProviderID == providerID && !rv.IsDeleted {
			count++
			sum += rv.Rating
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, sum / float64(count), nil
}

// statsProviderRepo tracks metric writes and risk counter bumps.
type statsProviderRepo struct {
	providers    map[string]*models.ProviderProfile
	avgWrites    []float64
	riskCounters map[string]int
}

func newStatsProviderRepo(ps ...*models.ProviderProfile) *statsProviderRepo {
	r := &statsProviderRepo{
		providers:    map[string]*models.ProviderProfile{},
		riskCounters: map[string]int{},
	}
	for _, p := range ps {
		r.providers[p.ID] = p
	}
	return r
}

func (r *statsProviderRepo) GetByID(id string) (*models.ProviderProfile, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", id, mongo.ErrNoDocuments)
	}
	cp := *p
	return &cp, nil
}

func (r *statsProviderRepo) GetByProfileID(profileID string) (*models.ProviderProfile, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *statsProviderRepo) Create(p *models.ProviderProfile) error {
	r.providers[p.ID] = p
	return nil
}

func (r *statsProviderRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	p, ok := r.providers[id]
	if !ok {
		return fmt.Errorf("provider %s: %w", id, mongo.ErrNoDocuments)
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		if avg, ok := set["metrics.averageRating"].(float64); ok {
			p.Metrics.AverageRating = avg
			r.avgWrites = append(r.avgWrites, avg)
		}
	}
	return nil
}

func (r *statsProviderRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error) {
	if err := r.UpdateWithDocument(id, updateDoc); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *statsProviderRepo) IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error) {
	return r.GetByID(id)
}

func (r *statsProviderRepo) IncrementRiskCounter(id, counter string) error {
	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("provider %s: %w", id, mongo.ErrNoDocuments)
	}
	r.riskCounters[counter]++
	return nil
}

func (r *statsProviderRepo) List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *statsProviderRepo) ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *statsProviderRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	return map[models.RiskLevel]int64{}, nil
}

func newTestService() (*DefaultService, *memReviewRepo, *statsProviderRepo) {
	reviews := newMemReviewRepo()
	providers := newStatsProviderRepo(&models.ProviderProfile{ID: "prov-1", Status: models.ProviderActive})
	return NewService(reviews, providers, zap.NewNop()), reviews, providers
}

func TestCreateReviewRollsRatingForward(t *testing.T) {
	svc, _, providers := newTestService()
	ctx := context.Background()

	rv, err := svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1",
		ClientID:   "client-1",
		BookingRef: "bk-100",
		Rating:     4,
		Comment:    "  solid work  ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rv.ID)
	assert.Equal(t, "solid work", rv.Comment)
	assert.Equal(t, 4.0, providers.providers["prov-1"].Metrics.AverageRating)

	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1",
		ClientID:   "client-2",
		BookingRef: "bk-101",
		Rating:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, providers.providers["prov-1"].Metrics.AverageRating)
}

func TestCreateReviewOnePerBooking(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "client-1", BookingRef: "bk-1", Rating: 5,
	})
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "client-2", BookingRef: "bk-1", Rating: 1,
	})
	assert.ErrorIs(t, err, lifecycle.ErrConflict)
}

func TestCreateReviewLowRatingCountsAgainstProvider(t *testing.T) {
	svc, _, providers := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "client-1", BookingRef: "bk-1", Rating: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, providers.riskCounters["negativeReviews"])

	// A rating of 3 is above the ceiling and leaves the counter alone.
	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "client-2", BookingRef: "bk-2", Rating: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, providers.riskCounters["negativeReviews"])
}

func TestCreateReviewValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "c", BookingRef: "bk-1", Rating: 0,
	})
	var vErr *lifecycle.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rating", vErr.Field)

	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "c", BookingRef: "  ", Rating: 4,
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "bookingRef", vErr.Field)

	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "missing", ClientID: "c", BookingRef: "bk-1", Rating: 4,
	})
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestDeleteReviewRecomputesAverage(t *testing.T) {
	svc, _, providers := newTestService()
	ctx := context.Background()

	good, err := svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "c1", BookingRef: "bk-1", Rating: 5,
	})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, CreateReviewRequest{
		ProviderID: "prov-1", ClientID: "c2", BookingRef: "bk-2", Rating: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, providers.providers["prov-1"].Metrics.AverageRating)

	require.NoError(t, svc.DeleteReview(ctx, good.ID, "admin-1"))
	assert.Equal(t, 1.0, providers.providers["prov-1"].Metrics.AverageRating)

	assert.ErrorIs(t, svc.DeleteReview(ctx, "missing", "admin-1"), lifecycle.ErrNotFound)
}
