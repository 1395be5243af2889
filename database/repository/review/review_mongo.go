package reviewRepo

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

// ErrDuplicate is returned when a booking already has a review.
var ErrDuplicate = errors.New("duplicate review")

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo creates a new instance of ReviewRepository using MongoDB.
func NewMongoReviewRepo() ReviewRepository {
	return &MongoReviewRepo{coll: database.Collection("reviews")}
}

func (r *MongoReviewRepo) GetByID(id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var rv models.Review
	filter := bson.M{"id": id, "isDeleted": bson.M{"$ne": true}}
	if err := r.coll.FindOne(ctx, filter).Decode(&rv); err != nil {
		return nil, fmt.Errorf("failed to fetch review with id %s: %w", id, err)
	}
	return &rv, nil
}

func (r *MongoReviewRepo) GetByBookingRef(bookingRef string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var rv models.Review
	filter := bson.M{"bookingRef": bookingRef, "isDeleted": bson.M{"$ne": true}}
	if err := r.coll.FindOne(ctx, filter).Decode(&rv); err != nil {
		return nil, fmt.Errorf("failed to fetch review for booking %s: %w", bookingRef, err)
	}
	return &rv, nil
}

func (r *MongoReviewRepo) Create(rv *models.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, rv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) ListByProvider(providerID string, page, limit int64) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	filter := bson.M{"providerId": providerID, "isDeleted": bson.M{"$ne": true}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)
	var reviews []models.Review
	for cursor.Next(ctx) {
		var rv models.Review
		if err := cursor.Decode(&rv); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, cursor.Err()
}

func (r *MongoReviewRepo) SoftDelete(id, actor string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedAt": now,
		"deletedBy": actor,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to delete review with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("review with id %s not found", id)
	}
	return nil
}

func (r *MongoReviewRepo) ProviderRatingStats(providerID string) (int64, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"providerId": providerID, "isDeleted": bson.M{"$ne": true}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate rating stats for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)
	if cursor.Next(ctx) {
		var row struct {
			Count   int64   `bson:"count"`
			Average float64 `bson:"average"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, 0, fmt.Errorf("failed to decode rating stats: %w", err)
		}
		return row.Count, row.Average, nil
	}
	return 0, 0, cursor.Err()
}
