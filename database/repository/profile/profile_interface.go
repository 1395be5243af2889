package profileRepo

import (
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ProfileRepository defines methods for profile data access.
// Read methods exclude soft-deleted documents unless stated otherwise.
type ProfileRepository interface {
	// GetByID retrieves a profile by its unique ID.
	GetByID(id string) (*models.Profile, error)
	// GetByIDIncludeDeleted retrieves a profile regardless of its deletion flag.
	GetByIDIncludeDeleted(id string) (*models.Profile, error)
	// GetByUserID retrieves the profile owned by a user.
	GetByUserID(userID string) (*models.Profile, error)
	// Create inserts a new profile record.
	Create(profile *models.Profile) error
	// UpdateWithDocument patches a profile document with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// List retrieves profiles matching the filter with pagination.
	List(filter bson.M, page, limit int64) ([]models.Profile, error)
	// SetWarningCount writes the reconciled warning count for one profile.
	SetWarningCount(id string, count int) error
	// ClearWarningCounts zeroes the cached warning count on every profile
	// with a positive count that is not in activeIDs, returning how many
	// profiles were reset.
	ClearWarningCounts(activeIDs []string) (int64, error)
}
