package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trustwork/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Penalty escalation thresholds. Escalation is monotone: this path never
// lowers risk; de-escalation only happens through an explicit assessment.
const (
	penaltyHighThreshold     = 3
	penaltyCriticalThreshold = 5
	highRiskMaxJobValue      = 2000
	criticalRiskMaxJobValue  = 500
)

// ApplyPenalty increments the provider's penalty counter atomically and
// escalates risk level and mitigation measures at the fixed thresholds.
func (e *Engine) ApplyPenalty(ctx context.Context, providerID, reason, actor string) (*models.ProviderProfile, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "penalty reason is required"}
	}

	// The $inc happens server-side, so two concurrent penalties both land.
	updated, err := e.Providers.IncrementPenalties(providerID, e.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", providerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to apply penalty: %w", err)
	}

	level, measures := escalationFor(updated.PenaltiesCount, updated.RiskLevel, updated.MitigationMeasures)
	if level != updated.RiskLevel || measures != updated.MitigationMeasures {
		// The escalation is derived from the count we observed, so it only
		// lands while that count is still current. A guard miss means a
		// concurrent penalty already escalated past us; its state wins.
		escalated, err := e.Providers.ApplyUpdate(providerID,
			bson.M{"penaltiesCount": updated.PenaltiesCount},
			bson.M{"$set": bson.M{
				"riskLevel":          level,
				"mitigationMeasures": measures,
				"updatedAt":          e.now(),
			}})
		switch {
		case err == nil:
			updated = escalated
		case errors.Is(err, mongo.ErrNoDocuments):
			updated, err = e.Providers.GetByID(providerID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload provider after penalty escalation: %w", err)
			}
		default:
			return nil, fmt.Errorf("failed to persist penalty escalation: %w", err)
		}
	}

	e.Logger.Info("penalty applied",
		zap.String("providerId", providerID),
		zap.String("actor", actor),
		zap.String("reason", reason),
		zap.Int("penaltiesCount", updated.PenaltiesCount),
		zap.String("riskLevel", string(updated.RiskLevel)),
	)
	return updated, nil
}

// escalationFor returns the risk level and mitigation measures mandated by a
// penalty count, never downgrading from the current level. Measures only
// accumulate on this path.
func escalationFor(penalties int, current models.RiskLevel, measures models.MitigationMeasures) (models.RiskLevel, models.MitigationMeasures) {
	level := current
	switch {
	case penalties >= penaltyCriticalThreshold:
		level = models.MaxRiskLevel(current, models.RiskCritical)
		measures.RequiresDeposit = true
		measures.RequiresSupervision = true
		measures.LimitedJobValue = true
		measures.MaxJobValue = criticalRiskMaxJobValue
		measures.FrequentCheckins = true
		measures.ClientConfirmationRequired = true
	case penalties >= penaltyHighThreshold:
		level = models.MaxRiskLevel(current, models.RiskHigh)
		measures.LimitedJobValue = true
		measures.MaxJobValue = highRiskMaxJobValue
		measures.FrequentCheckins = true
		measures.ClientConfirmationRequired = true
	}
	return level, measures
}

// SetProviderStatus applies an admin-directed operational status change. Any
// transition is allowed; the change is recorded with its reason.
func (e *Engine) SetProviderStatus(ctx context.Context, providerID string, status models.ProviderStatus, reason, actor string) (*models.ProviderProfile, error) {
	switch status {
	case models.ProviderProbationary, models.ProviderActive, models.ProviderSuspended:
	default:
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown provider status %q", status)}
	}

	current, err := e.Providers.GetByID(providerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", providerID, ErrNotFound)
		}
		return nil, err
	}
	if current.Status == status {
		return nil, fmt.Errorf("provider %s status is already %s: %w", providerID, status, ErrAlreadyInState)
	}

	updated, err := e.Providers.ApplyUpdate(providerID, nil, bson.M{"$set": bson.M{
		"status":       status,
		"statusReason": reason,
		"updatedAt":    e.now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to update provider status: %w", err)
	}

	e.Logger.Info("provider status changed",
		zap.String("providerId", providerID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
		zap.String("reason", reason),
		zap.String("actor", actor),
	)
	return updated, nil
}
