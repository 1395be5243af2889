package userRepo

import (
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for account data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by email address.
	GetByEmail(email string) (*models.User, error)
	// GetByTokenHash retrieves the user whose stored token hash matches.
	GetByTokenHash(tokenHash string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// UpdateWithDocument patches a user document with the specified update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// Delete removes a user record by its ID.
	Delete(id string) error
	// GetAll retrieves all users (admin views).
	GetAll() ([]models.User, error)
}
