package reviewRepo

import "trustwork/models"

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	// GetByID retrieves a review by its unique ID.
	GetByID(id string) (*models.Review, error)
	// GetByBookingRef retrieves the review attached to a booking, if any.
	GetByBookingRef(bookingRef string) (*models.Review, error)
	// Create inserts a new review record.
	Create(rv *models.Review) error
	// ListByProvider retrieves reviews for a provider with pagination.
	ListByProvider(providerID string, page, limit int64) ([]models.Review, error)
	// SoftDelete marks a review deleted.
	SoftDelete(id, actor string) error
	// ProviderRatingStats returns the count and mean rating of a provider's
	// non-deleted reviews.
	ProviderRatingStats(providerID string) (count int64, average float64, err error)
}
