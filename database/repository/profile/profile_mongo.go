package profileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trustwork/database"
	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("duplicate profile")

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a new instance of ProfileRepository using MongoDB.
func NewMongoProfileRepo() ProfileRepository {
	return &MongoProfileRepo{coll: database.Collection("profiles")}
}

func (r *MongoProfileRepo) GetByID(id string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var profile models.Profile
	filter := bson.M{"id": id, "isDeleted": bson.M{"$ne": true}}
	if err := r.coll.FindOne(ctx, filter).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile with id %s: %w", id, err)
	}
	return &profile, nil
}

func (r *MongoProfileRepo) GetByIDIncludeDeleted(id string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var profile models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile with id %s: %w", id, err)
	}
	return &profile, nil
}

func (r *MongoProfileRepo) GetByUserID(userID string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var profile models.Profile
	filter := bson.M{"userId": userID, "isDeleted": bson.M{"$ne": true}}
	if err := r.coll.FindOne(ctx, filter).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

func (r *MongoProfileRepo) Create(profile *models.Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update profile with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile with id %s not found", id)
	}
	return nil
}

func (r *MongoProfileRepo) List(filter bson.M, page, limit int64) ([]models.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if filter == nil {
		filter = bson.M{}
	}
	filter["isDeleted"] = bson.M{"$ne": true}
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)
	var profiles []models.Profile
	for cursor.Next(ctx) {
		var p models.Profile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, cursor.Err()
}

func (r *MongoProfileRepo) SetWarningCount(id string, count int) error {
	return r.UpdateWithDocument(id, bson.M{"$set": bson.M{
		"warningsCount": count,
		"updatedAt":     time.Now(),
	}})
}

func (r *MongoProfileRepo) ClearWarningCounts(activeIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if activeIDs == nil {
		activeIDs = []string{}
	}
	filter := bson.M{
		"warningsCount": bson.M{"$gt": 0},
		"id":            bson.M{"$nin": activeIDs},
	}
	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"warningsCount": 0,
		"updatedAt":     time.Now(),
	}})
	if err != nil {
		return 0, fmt.Errorf("failed to clear stale warning counts: %w", err)
	}
	return result.ModifiedCount, nil
}
