package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"trustwork/models"
	"trustwork/services/scoring"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	minAssessmentHorizonDays = 1
	maxAssessmentHorizonDays = 365
)

// UpdateRiskAssessment recomputes the provider's risk level from its current
// risk factors and stamps the assessment dates. Unlike the penalty path this
// is the one place risk may go down: an assessor-triggered recompute replaces
// the level rather than escalating it.
func (e *Engine) UpdateRiskAssessment(ctx context.Context, providerID, assessedBy string, horizonDays int) (*models.ProviderProfile, error) {
	if horizonDays < minAssessmentHorizonDays || horizonDays > maxAssessmentHorizonDays {
		return nil, &ValidationError{
			Field:   "horizonDays",
			Message: fmt.Sprintf("assessment horizon must be between %d and %d days", minAssessmentHorizonDays, maxAssessmentHorizonDays),
		}
	}
	if assessedBy == "" {
		return nil, &ValidationError{Field: "assessedBy", Message: "assessor id is required"}
	}

	current, err := e.Providers.GetByID(providerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", providerID, ErrNotFound)
		}
		return nil, err
	}

	score := scoring.ProviderRiskScore(current.RiskFactors)
	level := scoring.ProviderRiskLevelFromScore(score)
	measures := mitigationForLevel(level, current.MitigationMeasures)

	now := e.now()
	next := now.AddDate(0, 0, horizonDays)
	updated, err := e.Providers.ApplyUpdate(providerID, nil, bson.M{"$set": bson.M{
		"riskLevel":          level,
		"mitigationMeasures": measures,
		"lastRiskAssessment": now,
		"nextAssessmentDate": next,
		"assessedBy":         assessedBy,
		"updatedAt":          now,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to persist risk assessment: %w", err)
	}

	e.Logger.Info("risk assessment updated",
		zap.String("providerId", providerID),
		zap.String("assessedBy", assessedBy),
		zap.Int("riskScore", score),
		zap.String("riskLevel", string(level)),
		zap.Time("nextAssessmentDate", next),
	)
	return updated, nil
}

// ScheduleNextAssessment stamps only nextAssessmentDate, leaving risk state
// untouched. The narrower sibling of UpdateRiskAssessment.
func (e *Engine) ScheduleNextAssessment(ctx context.Context, providerID string, days int) (*models.ProviderProfile, error) {
	if days < minAssessmentHorizonDays || days > maxAssessmentHorizonDays {
		return nil, &ValidationError{
			Field:   "days",
			Message: fmt.Sprintf("assessment horizon must be between %d and %d days", minAssessmentHorizonDays, maxAssessmentHorizonDays),
		}
	}
	now := e.now()
	updated, err := e.Providers.ApplyUpdate(providerID, nil, bson.M{"$set": bson.M{
		"nextAssessmentDate": now.AddDate(0, 0, days),
		"updatedAt":          now,
	}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("provider %s: %w", providerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to schedule next assessment: %w", err)
	}
	return updated, nil
}

// BulkUpdateRiskAssessments runs UpdateRiskAssessment over many providers,
// collecting per-item outcomes instead of failing the whole batch.
func (e *Engine) BulkUpdateRiskAssessments(ctx context.Context, providerIDs []string, assessedBy string, horizonDays int) (*BulkResult, error) {
	if len(providerIDs) == 0 {
		return nil, &ValidationError{Field: "providerIds", Message: "at least one provider id is required"}
	}
	result := &BulkResult{TotalProcessed: len(providerIDs)}
	for _, id := range providerIDs {
		if _, err := e.UpdateRiskAssessment(ctx, id, assessedBy, horizonDays); err != nil {
			result.Failed++
			result.Results = append(result.Results, BulkItemResult{ID: id, Error: err.Error()})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, BulkItemResult{ID: id, Success: true})
	}
	return result, nil
}

// mitigationForLevel returns the measures mandated for a risk level. Lower
// levels shed constraints the level no longer requires.
func mitigationForLevel(level models.RiskLevel, current models.MitigationMeasures) models.MitigationMeasures {
	switch level {
	case models.RiskCritical:
		return models.MitigationMeasures{
			RequiresDeposit:            true,
			LimitedJobValue:            true,
			MaxJobValue:                criticalRiskMaxJobValue,
			RequiresSupervision:        true,
			FrequentCheckins:           true,
			ClientConfirmationRequired: true,
		}
	case models.RiskHigh:
		return models.MitigationMeasures{
			LimitedJobValue:            true,
			MaxJobValue:                highRiskMaxJobValue,
			FrequentCheckins:           true,
			ClientConfirmationRequired: true,
		}
	case models.RiskMedium:
		return models.MitigationMeasures{
			ClientConfirmationRequired: true,
		}
	default:
		return models.MitigationMeasures{}
	}
}
