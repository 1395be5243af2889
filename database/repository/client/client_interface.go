package clientRepo

import (
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ClientProfileRepository defines methods for client-profile data access.
// Read methods exclude soft-deleted documents.
type ClientProfileRepository interface {
	// GetByID retrieves a client profile by its unique ID.
	GetByID(id string) (*models.ClientProfile, error)
	// GetByProfileID retrieves the client profile attached to a base profile.
	GetByProfileID(profileID string) (*models.ClientProfile, error)
	// Create inserts a new client profile record.
	Create(c *models.ClientProfile) error
	// UpdateWithDocument patches a client profile with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// ApplyUpdate applies an update document atomically and returns the updated
	// document. Guard fields are merged into the id filter so derived-state
	// writes only land when the observed counters are still current; a guard
	// miss surfaces as a wrapped mongo.ErrNoDocuments.
	ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ClientProfile, error)
	// List retrieves client profiles matching the filter with pagination.
	List(filter bson.M, page, limit int64) ([]models.ClientProfile, error)
	// CountByRiskLevel returns a risk-level -> count distribution.
	CountByRiskLevel() (map[models.RiskLevel]int64, error)
}
