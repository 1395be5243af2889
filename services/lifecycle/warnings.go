package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trustwork/models"
	"trustwork/services/scoring"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxEvidenceFiles = 10

// IssueWarningRequest carries everything needed to record a new warning.
type IssueWarningRequest struct {
	UserID    string                 `json:"userId"`
	ProfileID string                 `json:"profileId"`
	Category  models.WarningCategory `json:"category"`
	Severity  models.WarningSeverity `json:"severity"`
	Reason    string                 `json:"reason"`
	Details   string                 `json:"details,omitempty"`
	Evidence  []models.FileRef       `json:"evidence,omitempty"`
	IssuedBy  string                 `json:"issuedBy"`
}

func (r *IssueWarningRequest) validate() error {
	if r.UserID == "" {
		return &ValidationError{Field: "userId", Message: "user id is required"}
	}
	if r.ProfileID == "" {
		return &ValidationError{Field: "profileId", Message: "profile id is required"}
	}
	if r.IssuedBy == "" {
		return &ValidationError{Field: "issuedBy", Message: "issuer id is required"}
	}
	if strings.TrimSpace(r.Reason) == "" {
		return &ValidationError{Field: "reason", Message: "reason is required"}
	}
	switch r.Severity {
	case models.SeverityMinor, models.SeverityMajor, models.SeveritySevere:
	default:
		return &ValidationError{Field: "severity", Message: fmt.Sprintf("unknown severity %q", r.Severity)}
	}
	valid := false
	for _, c := range models.WarningCategories {
		if c == r.Category {
			valid = true
			break
		}
	}
	if !valid {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", r.Category)}
	}
	if len(r.Evidence) > maxEvidenceFiles {
		return &ValidationError{Field: "evidence", Message: fmt.Sprintf("at most %d evidence files allowed", maxEvidenceFiles)}
	}
	return nil
}

// IssueWarning records a new active warning against a user+profile pair.
// Expiry is computed from severity when not supplied: minor 90d, major 180d,
// severe 365d after issue.
func (e *Engine) IssueWarning(ctx context.Context, req IssueWarningRequest) (*models.Warning, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	// The target profile must exist and not be soft-deleted.
	if _, err := e.Profiles.GetByID(req.ProfileID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile %s: %w", req.ProfileID, ErrNotFound)
		}
		return nil, err
	}

	now := e.now()
	w := &models.Warning{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		ProfileID: req.ProfileID,
		Category:  req.Category,
		Severity:  req.Severity,
		Status:    models.WarningActive,
		RiskLevel: scoring.WarningRiskLevel(req.Severity, req.Category),
		Reason:    req.Reason,
		Details:   req.Details,
		Evidence:  req.Evidence,
		IsActive:  true,
		IssuedBy:  req.IssuedBy,
		IssuedAt:  now,
		ExpiresAt: now.Add(req.Severity.ExpiryDuration()),
		UpdatedAt: now,
	}
	if err := e.Warnings.Create(w); err != nil {
		return nil, fmt.Errorf("failed to create warning: %w", err)
	}

	e.Logger.Info("warning issued",
		zap.String("warningId", w.ID),
		zap.String("userId", w.UserID),
		zap.String("category", string(w.Category)),
		zap.String("severity", string(w.Severity)),
		zap.String("issuedBy", w.IssuedBy),
	)
	return w, nil
}

// AcknowledgeWarning records the warned user's acknowledgement. Acknowledging
// is orthogonal to status and settable exactly once.
func (e *Engine) AcknowledgeWarning(ctx context.Context, warningID, actor string) (*models.Warning, error) {
	w, err := e.getWarning(warningID)
	if err != nil {
		return nil, err
	}
	if w.Acknowledged() {
		return nil, fmt.Errorf("warning %s is already acknowledged: %w", warningID, ErrAlreadyInState)
	}

	now := e.now()
	// Guard on acknowledgedAt being unset so a concurrent acknowledge loses.
	updated, err := e.Warnings.ApplyUpdate(warningID,
		bson.M{"acknowledgedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"acknowledgedBy": actor,
			"acknowledgedAt": now,
			"updatedAt":      now,
		}},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("warning %s is already acknowledged: %w", warningID, ErrAlreadyInState)
		}
		return nil, fmt.Errorf("failed to acknowledge warning: %w", err)
	}
	return updated, nil
}

// ResolveWarning closes an active warning. Only active warnings resolve.
func (e *Engine) ResolveWarning(ctx context.Context, warningID, resolver, note string) (*models.Warning, error) {
	if resolver == "" {
		return nil, &ValidationError{Field: "resolver", Message: "resolver id is required"}
	}
	w, err := e.getWarning(warningID)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WarningActive {
		return nil, invalidTransition(string(w.Status), string(models.WarningResolved))
	}

	now := e.now()
	updated, err := e.Warnings.ApplyUpdate(warningID,
		bson.M{"status": models.WarningActive},
		bson.M{"$set": bson.M{
			"status":         models.WarningResolved,
			"isActive":       false,
			"resolvedBy":     resolver,
			"resolvedAt":     now,
			"resolutionNote": note,
			"updatedAt":      now,
		}},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, invalidTransition(string(w.Status), string(models.WarningResolved))
		}
		return nil, fmt.Errorf("failed to resolve warning: %w", err)
	}

	e.Logger.Info("warning resolved",
		zap.String("warningId", warningID),
		zap.String("resolvedBy", resolver),
	)
	return updated, nil
}

// ActivateWarning reactivates a resolved warning. Expired warnings are
// terminal: reactivating one is an invalid transition.
func (e *Engine) ActivateWarning(ctx context.Context, warningID, actor string) (*models.Warning, error) {
	w, err := e.getWarning(warningID)
	if err != nil {
		return nil, err
	}
	switch w.Status {
	case models.WarningActive:
		return nil, fmt.Errorf("warning %s is already active: %w", warningID, ErrAlreadyInState)
	case models.WarningExpired:
		return nil, invalidTransition(string(models.WarningExpired), string(models.WarningActive))
	}

	now := e.now()
	updated, err := e.Warnings.ApplyUpdate(warningID,
		bson.M{"status": models.WarningResolved},
		bson.M{"$set": bson.M{
			"status":    models.WarningActive,
			"isActive":  true,
			"updatedAt": now,
		}},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, invalidTransition(string(w.Status), string(models.WarningActive))
		}
		return nil, fmt.Errorf("failed to activate warning: %w", err)
	}

	e.Logger.Info("warning reactivated",
		zap.String("warningId", warningID),
		zap.String("actor", actor),
	)
	return updated, nil
}

// DeactivateWarning clears the isActive flag without resolving, for cases
// where a warning should stop counting against the user pending review.
func (e *Engine) DeactivateWarning(ctx context.Context, warningID, actor string) (*models.Warning, error) {
	w, err := e.getWarning(warningID)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WarningActive {
		return nil, invalidTransition(string(w.Status), "inactive")
	}
	if !w.IsActive {
		return nil, fmt.Errorf("warning %s is already inactive: %w", warningID, ErrAlreadyInState)
	}

	updated, err := e.Warnings.ApplyUpdate(warningID,
		bson.M{"isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": e.now()}},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("warning %s is already inactive: %w", warningID, ErrAlreadyInState)
		}
		return nil, fmt.Errorf("failed to deactivate warning: %w", err)
	}

	e.Logger.Info("warning deactivated",
		zap.String("warningId", warningID),
		zap.String("actor", actor),
	)
	return updated, nil
}

func (e *Engine) getWarning(id string) (*models.Warning, error) {
	w, err := e.Warnings.GetByID(id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("warning %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return w, nil
}
