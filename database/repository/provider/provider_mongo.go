package providerRepo

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
var ErrDuplicate = errors.New("duplicate provider profile")

// MongoProviderProfileRepo implements ProviderProfileRepository using MongoDB.
type MongoProviderProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderProfileRepo creates a new instance of ProviderProfileRepository using MongoDB.
func NewMongoProviderProfileRepo() ProviderProfileRepository {
	return &MongoProviderProfileRepo{coll: database.Collection("provider_profiles")}
}

func notDeleted(base bson.M) bson.M {
	base["isDeleted"] = bson.M{"$ne": true}
	return base
}

func (r *MongoProviderProfileRepo) GetByID(id string) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var p models.ProviderProfile
	if err := r.coll.FindOne(ctx, notDeleted(bson.M{"id": id})).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch provider profile with id %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoProviderProfileRepo) GetByProfileID(profileID string) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var p models.ProviderProfile
	if err := r.coll.FindOne(ctx, notDeleted(bson.M{"profileId": profileID})).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch provider profile for profile %s: %w", profileID, err)
	}
	return &p, nil
}

func (r *MongoProviderProfileRepo) Create(p *models.ProviderProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create provider profile: %w", err)
	}
	return nil
}

func (r *MongoProviderProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update provider profile with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("provider profile with id %s not found", id)
	}
	return nil
}

func (r *MongoProviderProfileRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := notDeleted(bson.M{"id": id})
	for k, v := range guard {
		filter[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.ProviderProfile
	err := r.coll.FindOneAndUpdate(ctx, filter, updateDoc, opts).Decode(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to apply update to provider profile %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoProviderProfileRepo) IncrementPenalties(id string, at time.Time) (*models.ProviderProfile, error) {
	return r.ApplyUpdate(id, nil, bson.M{
		"$inc": bson.M{"penaltiesCount": 1},
		"$set": bson.M{"lastPenaltyDate": at, "updatedAt": at},
	})
}

func (r *MongoProviderProfileRepo) IncrementRiskCounter(id, counter string) error {
	switch counter {
	case "recentComplaints", "negativeReviews":
	default:
		return fmt.Errorf("unknown risk counter %q", counter)
	}
	return r.UpdateWithDocument(id, bson.M{
		"$inc": bson.M{"riskFactors." + counter: 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (r *MongoProviderProfileRepo) List(filter bson.M, page, limit int64) ([]models.ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if filter == nil {
		filter = bson.M{}
	}
	filter = notDeleted(filter)
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
		return nil, fmt.Errorf("failed to list provider profiles: %w", err)
	}
	defer cursor.Close(ctx)
	var out []models.ProviderProfile
	for cursor.Next(ctx) {
		var p models.ProviderProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode provider profile: %w", err)
		}
		out = append(out, p)
	}
	return out, cursor.Err()
}

func (r *MongoProviderProfileRepo) ListOverdueAssessments(now time.Time) ([]models.ProviderProfile, error) {
	return r.List(bson.M{"nextAssessmentDate": bson.M{"$lt": now}}, 1, 500)
}

func (r *MongoProviderProfileRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isDeleted": bson.M{"$ne": true}}}},
		{{Key: "$group", Value: bson.M{"_id": "$riskLevel", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate provider risk levels: %w", err)
	}
	defer cursor.Close(ctx)
	out := make(map[models.RiskLevel]int64)
	for cursor.Next(ctx) {
		var row struct {
			Level models.RiskLevel `bson:"_id"`
			Count int64            `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode risk distribution row: %w", err)
		}
		out[row.Level] = row.Count
	}
	return out, cursor.Err()
}
