package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ResetSessionPrefix = "resetSession:"

// ResetSession tracks an in-flight password reset. It lives only in Redis
// with a short TTL; nothing about the reset is persisted to the main store
// until the new password lands.
type ResetSession struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Code          string    `json:"code"`
	Attempts      int       `json:"attempts"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// SaveResetSession saves the reset session in Redis with a TTL.
func SaveResetSession(client *redis.Client, sessionID string, session ResetSession) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal reset session: %w", err)
	}
	ctx := context.Background()
	if err := client.Set(ctx, ResetSessionPrefix+sessionID, data, 10*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to save reset session: %w", err)
	}
	return nil
}

// GetResetSession retrieves the reset session from Redis.
func GetResetSession(client *redis.Client, sessionID string) (*ResetSession, error) {
	ctx := context.Background()
	data, err := client.Get(ctx, ResetSessionPrefix+sessionID).Result()
	if err != nil {
		return nil, err
	}
	var session ResetSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reset session: %w", err)
	}
	return &session, nil
}

// DeleteResetSession removes a reset session from Redis.
func DeleteResetSession(client *redis.Client, sessionID string) error {
	ctx := context.Background()
	return client.Del(ctx, ResetSessionPrefix+sessionID).Err()
}
