package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trustwork/models"
	"trustwork/services/scoring"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BookingOutcome is the terminal state of one client booking.
type BookingOutcome string

const (
	BookingCompleted BookingOutcome = "completed"
	BookingCancelled BookingOutcome = "cancelled"
	BookingDisputed  BookingOutcome = "disputed"
)

// UpdateTrustScore sets a client's trust score and recomputes the derived
// risk level in the same operation. Scores outside [0,100] are rejected, not
// clamped, because this is caller input rather than an internal computation.
func (e *Engine) UpdateTrustScore(ctx context.Context, clientID string, score int, actor string) (*models.ClientProfile, error) {
	if score < 0 || score > 100 {
		return nil, &ValidationError{Field: "trustScore", Message: "trust score must be within [0,100]"}
	}

	current, err := e.Clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, err
	}

	snapshot := *current
	snapshot.TrustScore = score
	level := clientRiskFor(&snapshot)
	updated, err := e.Clients.ApplyUpdate(clientID, nil, bson.M{"$set": bson.M{
		"trustScore": score,
		"riskLevel":  level,
		"updatedAt":  e.now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to update trust score: %w", err)
	}

	e.Logger.Info("trust score updated",
		zap.String("clientId", clientID),
		zap.Int("trustScore", score),
		zap.String("riskLevel", string(level)),
		zap.String("actor", actor),
	)
	return updated, nil
}

// RecordBookingOutcome bumps the client's booking counters atomically, then
// recomputes risk level and loyalty tier from the post-increment counters.
func (e *Engine) RecordBookingOutcome(ctx context.Context, clientID string, outcome BookingOutcome, amount float64) (*models.ClientProfile, error) {
	inc := bson.M{"bookings.total": 1}
	switch outcome {
	case BookingCompleted:
		inc["bookings.completed"] = 1
	case BookingCancelled:
		inc["bookings.cancelled"] = 1
	case BookingDisputed:
		inc["bookings.disputed"] = 1
	default:
		return nil, &ValidationError{Field: "outcome", Message: fmt.Sprintf("unknown booking outcome %q", outcome)}
	}
	if outcome == BookingCompleted && amount > 0 {
		inc["totalSpend"] = amount
	}
	update := bson.M{"$inc": inc, "$set": bson.M{"updatedAt": e.now()}}

	updated, err := e.Clients.ApplyUpdate(clientID, nil, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record booking outcome: %w", err)
	}

	level := clientRiskFor(updated)
	tier := loyaltyTierFor(updated.Bookings.Completed, updated.TotalSpend)
	if level != updated.RiskLevel || tier != updated.LoyaltyTier {
		// Recomputed state is valid for the counters we observed. A guard miss
		// means another outcome landed in between and its recompute supersedes
		// this one.
		recomputed, err := e.Clients.ApplyUpdate(clientID,
			bson.M{"bookings.total": updated.Bookings.Total},
			bson.M{"$set": bson.M{
				"riskLevel":   level,
				"loyaltyTier": tier,
				"updatedAt":   e.now(),
			}})
		switch {
		case err == nil:
			updated = recomputed
		case errors.Is(err, mongo.ErrNoDocuments):
			updated, err = e.Clients.GetByID(clientID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload client after booking outcome: %w", err)
			}
		default:
			return nil, fmt.Errorf("failed to persist recomputed client state: %w", err)
		}
	}
	return updated, nil
}

// SuspendClient appends a suspension episode and recomputes risk.
func (e *Engine) SuspendClient(ctx context.Context, clientID, reason string, durationDays int, actor string) (*models.ClientProfile, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "suspension reason is required"}
	}
	if durationDays <= 0 {
		return nil, &ValidationError{Field: "durationDays", Message: "suspension duration must be positive"}
	}

	suspension := models.Suspension{
		Date:         e.now(),
		Reason:       reason,
		DurationDays: durationDays,
	}
	updated, err := e.Clients.ApplyUpdate(clientID, nil, bson.M{
		"$push": bson.M{"suspensionHistory": suspension},
		"$set":  bson.M{"updatedAt": e.now()},
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to suspend client: %w", err)
	}

	e.Logger.Warn("client suspended",
		zap.String("clientId", clientID),
		zap.String("reason", reason),
		zap.Int("durationDays", durationDays),
		zap.String("actor", actor),
	)
	return updated, nil
}

// clientRiskFor derives a client's risk level from its current state. The
// trust-score thresholds act as a floor: a very low score is critical even
// when the behavioral counters are clean.
func clientRiskFor(c *models.ClientProfile) models.RiskLevel {
	behavioral := scoring.ClientRiskLevel(
		c.TrustScore,
		c.WarningsCount,
		c.DisputeRate(),
		c.CancellationRate(),
		c.Verification.Count(),
	)
	return models.MaxRiskLevel(scoring.TrustScoreRiskLevel(c.TrustScore), behavioral)
}

// loyaltyTierFor derives the loyalty tier from completed bookings and spend.
func loyaltyTierFor(completed int, spend float64) models.LoyaltyTier {
	switch {
	case completed >= 50 || spend >= 15000:
		return models.TierPlatinum
	case completed >= 25 || spend >= 5000:
		return models.TierGold
	case completed >= 10 || spend >= 1000:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}
