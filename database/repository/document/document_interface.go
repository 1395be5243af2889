package documentRepo

import (
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DocumentRepository defines methods for identity-document data access.
type DocumentRepository interface {
	// GetByID retrieves a document by its unique ID.
	GetByID(id string) (*models.IdentityDocument, error)
	// Create inserts a new document record.
	Create(doc *models.IdentityDocument) error
	// UpdateWithDocument patches a document record with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// ListByUser retrieves all documents submitted by a user.
	ListByUser(userID string) ([]models.IdentityDocument, error)
	// ListPending retrieves documents awaiting review, oldest first.
	ListPending(limit int64) ([]models.IdentityDocument, error)
}
