package warningRepo

import (
	"context"
	"fmt"
	"time"

	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CountActiveByProfile groups active warnings by profile for count reconciliation.
func (r *MongoWarningRepo) CountActiveByProfile() (map[string]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.WarningActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$profileId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate active warnings by profile: %w", err)
	}
	defer cursor.Close(ctx)
	out := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			ProfileID string `bson:"_id"`
			Count     int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode warning count row: %w", err)
		}
		out[row.ProfileID] = row.Count
	}
	return out, cursor.Err()
}

// CountsByField groups warnings by status, severity or category.
func (r *MongoWarningRepo) CountsByField(field string) (map[string]int64, error) {
	switch field {
	case "status", "severity", "category", "riskLevel":
	default:
		return nil, fmt.Errorf("unsupported grouping field %q", field)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate warnings by %s: %w", field, err)
	}
	defer cursor.Close(ctx)
	out := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode warning count row: %w", err)
		}
		out[row.Key] = row.Count
	}
	return out, cursor.Err()
}

// TopIssuers returns the actors who issued the most warnings, descending.
func (r *MongoWarningRepo) TopIssuers(n int64) ([]IssuerCount, error) {
	if n <= 0 {
		n = 10
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$issuedBy", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: n}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top issuers: %w", err)
	}
	defer cursor.Close(ctx)
	var out []IssuerCount
	for cursor.Next(ctx) {
		var row IssuerCount
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode issuer row: %w", err)
		}
		out = append(out, row)
	}
	return out, cursor.Err()
}
