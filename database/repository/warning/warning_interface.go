package warningRepo

import (
	"time"

	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// WarningFilter narrows warning listings. Zero values mean "any".
type WarningFilter struct {
	UserID    string
	ProfileID string
	Status    models.WarningStatus
	Severity  models.WarningSeverity
	Category  models.WarningCategory
	IssuedBy  string
	Since     time.Time
}

// IssuerCount is one row of the top-issuers rollup.
type IssuerCount struct {
	IssuerID string `bson:"_id" json:"issuerId"`
	Count    int64  `bson:"count" json:"count"`
}

// WarningRepository defines methods for warning data access.
type WarningRepository interface {
	// GetByID retrieves a warning by its unique ID.
	GetByID(id string) (*models.Warning, error)
	// Create inserts a new warning record.
	Create(w *models.Warning) error
	// UpdateWithDocument patches a warning with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// ApplyUpdate applies an update document atomically, optionally guarded by
	// extra filter fields, and returns the updated document.
	ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.Warning, error)
	// List retrieves warnings matching the filter with pagination.
	List(filter WarningFilter, page, limit int64) ([]models.Warning, error)
	// ExpireDue transitions every active warning whose expiry has passed to
	// expired in one bulk update and returns the number affected. Idempotent.
	ExpireDue(now time.Time) (int64, error)
	// DeleteExpiredBefore hard-deletes expired warnings whose expiry predates
	// the cutoff. Used only by retention cleanup.
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
	// CountActiveByProfile returns profileId -> active warning count across
	// all profiles, for counter reconciliation.
	CountActiveByProfile() (map[string]int, error)
	// CountsByField groups warnings by one of status/severity/category.
	CountsByField(field string) (map[string]int64, error)
	// TopIssuers returns the n actors who issued the most warnings.
	TopIssuers(n int64) ([]IssuerCount, error)
}
