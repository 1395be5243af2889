package warningRepo

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

// MongoWarningRepo implements WarningRepository using MongoDB.
type MongoWarningRepo struct {
	coll *mongo.Collection
}

// NewMongoWarningRepo creates a new instance of WarningRepository using MongoDB.
func NewMongoWarningRepo() WarningRepository {
	return &MongoWarningRepo{coll: database.Collection("warnings")}
}

func (r *MongoWarningRepo) GetByID(id string) (*models.Warning, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var w models.Warning
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to fetch warning with id %s: %w", id, err)
	}
	return &w, nil
}

func (r *MongoWarningRepo) Create(w *models.Warning) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("failed to create warning: %w", err)
	}
	return nil
}

func (r *MongoWarningRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update warning with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("warning with id %s not found", id)
	}
	return nil
}

// ApplyUpdate runs a guarded FindOneAndUpdate. The guard fields are merged
// into the id filter so state-machine transitions only land when the current
// state still matches what the caller validated.
func (r *MongoWarningRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.Warning, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"id": id}
	for k, v := range guard {
		filter[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var w models.Warning
	if err := r.coll.FindOneAndUpdate(ctx, filter, updateDoc, opts).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to apply update to warning %s: %w", id, err)
	}
	return &w, nil
}

func (r *MongoWarningRepo) List(filter WarningFilter, page, limit int64) ([]models.Warning, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.ProfileID != "" {
		query["profileId"] = filter.ProfileID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.IssuedBy != "" {
		query["issuedBy"] = filter.IssuedBy
	}
	if !filter.Since.IsZero() {
		query["issuedAt"] = bson.M{"$gte": filter.Since}
	}
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "issuedAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	defer cursor.Close(ctx)
	var warnings []models.Warning
	for cursor.Next(ctx) {
		var w models.Warning
		if err := cursor.Decode(&w); err != nil {
			return nil, fmt.Errorf("failed to decode warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, cursor.Err()
}

// ExpireDue only touches documents still matching the active/past-due
// predicate, so overlapping sweep runs are idempotent rather than conflicting.
func (r *MongoWarningRepo) ExpireDue(now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	filter := bson.M{
		"status":    models.WarningActive,
		"expiresAt": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":    models.WarningExpired,
		"isActive":  false,
		"updatedAt": now,
	}}
	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire due warnings: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoWarningRepo) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	filter := bson.M{
		"status":    models.WarningExpired,
		"expiresAt": bson.M{"$lt": cutoff},
	}
	result, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired warnings: %w", err)
	}
	return result.DeletedCount, nil
}
