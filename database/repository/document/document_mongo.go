package documentRepo

import (
	"context"
	"fmt"
	"time"

	"trustwork/database"
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocumentRepo implements DocumentRepository using MongoDB.
type MongoDocumentRepo struct {
	coll *mongo.Collection
}

// NewMongoDocumentRepo creates a new instance of DocumentRepository using MongoDB.
func NewMongoDocumentRepo() DocumentRepository {
	return &MongoDocumentRepo{coll: database.Collection("identity_documents")}
}

func (r *MongoDocumentRepo) GetByID(id string) (*models.IdentityDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var doc models.IdentityDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to fetch document with id %s: %w", id, err)
	}
	return &doc, nil
}

func (r *MongoDocumentRepo) Create(doc *models.IdentityDocument) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *MongoDocumentRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update document with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("document with id %s not found", id)
	}
	return nil
}

func (r *MongoDocumentRepo) ListByUser(userID string) ([]models.IdentityDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)
	var docs []models.IdentityDocument
	for cursor.Next(ctx) {
		var d models.IdentityDocument
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, cursor.Err()
}

func (r *MongoDocumentRepo) ListPending(limit int64) ([]models.IdentityDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"status": models.DocumentPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	defer cursor.Close(ctx)
	var docs []models.IdentityDocument
	for cursor.Next(ctx) {
		var d models.IdentityDocument
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, cursor.Err()
}
