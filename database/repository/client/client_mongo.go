package clientRepo

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
var ErrDuplicate = errors.New("duplicate client profile")

// MongoClientProfileRepo implements ClientProfileRepository using MongoDB.
type MongoClientProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoClientProfileRepo creates a new instance of ClientProfileRepository using MongoDB.
func NewMongoClientProfileRepo() ClientProfileRepository {
	return &MongoClientProfileRepo{coll: database.Collection("client_profiles")}
}

func notDeleted(base bson.M) bson.M {
	base["isDeleted"] = bson.M{"$ne": true}
	return base
}

func (r *MongoClientProfileRepo) GetByID(id string) (*models.ClientProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var c models.ClientProfile
	if err := r.coll.FindOne(ctx, notDeleted(bson.M{"id": id})).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to fetch client profile with id %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoClientProfileRepo) GetByProfileID(profileID string) (*models.ClientProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var c models.ClientProfile
	if err := r.coll.FindOne(ctx, notDeleted(bson.M{"profileId": profileID})).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to fetch client profile for profile %s: %w", profileID, err)
	}
	return &c, nil
}

func (r *MongoClientProfileRepo) Create(c *models.ClientProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create client profile: %w", err)
	}
	return nil
}

func (r *MongoClientProfileRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update client profile with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("client profile with id %s not found", id)
	}
	return nil
}

func (r *MongoClientProfileRepo) ApplyUpdate(id string, guard bson.M, updateDoc bson.M) (*models.ClientProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := notDeleted(bson.M{"id": id})
	for k, v := range guard {
		filter[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.ClientProfile
	err := r.coll.FindOneAndUpdate(ctx, filter, updateDoc, opts).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to apply update to client profile %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoClientProfileRepo) List(filter bson.M, page, limit int64) ([]models.ClientProfile, error) {
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
		return nil, fmt.Errorf("failed to list client profiles: %w", err)
	}
	defer cursor.Close(ctx)
	var out []models.ClientProfile
	for cursor.Next(ctx) {
		var c models.ClientProfile
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode client profile: %w", err)
		}
		out = append(out, c)
	}
	return out, cursor.Err()
}

func (r *MongoClientProfileRepo) CountByRiskLevel() (map[models.RiskLevel]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isDeleted": bson.M{"$ne": true}}}},
		{{Key: "$group", Value: bson.M{"_id": "$riskLevel", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate client risk levels: %w", err)
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
