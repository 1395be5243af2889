package providerRepo

import (
	"time"

	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ProviderProfileRepository defines methods for provider-profile data access.
// Read methods exclude soft-deleted documents.
type ProviderProfileRepository interface {
	// GetByID retrieves a provider profile by its unique ID.
	GetByID(id string) (*models.ProviderProfile, error)
	// GetByProfileID retrieves the provider profile attached to a base profile.
	GetByProfileID(profileID string) (*models.ProviderProfile, error)
	// Create inserts a new provider profile record.
	Create(p *models.ProviderProfile) error
	// UpdateWithDocument patches a provider profile with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// ApplyUpdate applies an update document atomically and returns the updated
	// document. Guard fields are merged into the id filter so derived-state
	// writes only land when the observed counters are still current; a guard
	// miss surfaces as a wrapped mongo.ErrNoDocuments.
	ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error)
	// IncrementPenalties atomically bumps penaltiesCount, stamps lastPenaltyDate
	// and returns the post-increment document.
	IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error)
	// IncrementRiskCounter atomically bumps one numeric risk-factor counter
	// (recentComplaints or negativeReviews).
	IncrementRiskCounter(id, counter string) error
	// List retrieves provider profiles matching the filter with pagination.
	List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error)
	// ListOverdueAssessments retrieves providers whose nextAssessmentDate has passed.
	ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error)
	// CountByRiskLevel returns a risk-level -> count distribution.
	CountByRiskLevel() (map[models.RiskLevel]int64, error)
}
