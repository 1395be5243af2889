// Package lifecycle is the single write path for every derived field on
// providers, clients and warnings. Callers never set risk levels, mitigation
// measures or trust-derived state directly; they ask the engine to apply a
// mutation and the engine re-evaluates and persists the derived state.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	clientRepo "trustwork/database/repository/client"
	profileRepo "trustwork/database/repository/profile"
	providerRepo "trustwork/database/repository/provider"
	warningRepo "trustwork/database/repository/warning"
	"trustwork/models"

	"go.uber.org/zap"
)

// Engine orchestrates scoring and status transitions across entity kinds.
type Engine struct {
	Providers providerRepo.ProviderProfileRepository
	Clients   clientRepo.ClientProfileRepository
	Warnings  warningRepo.WarningRepository
	Profiles  profileRepo.ProfileRepository
	Logger    *zap.Logger

	// now is swapped out in tests.
	now func() time.Time
}

// NewEngine wires the engine. All repositories are required.
func NewEngine(
	providers providerRepo.ProviderProfileRepository,
	clients clientRepo.ClientProfileRepository,
	warnings warningRepo.WarningRepository,
	profiles profileRepo.ProfileRepository,
	logger *zap.Logger,
) (*Engine, error) {
	if providers == nil || clients == nil || warnings == nil || profiles == nil {
		return nil, fmt.Errorf("lifecycle engine initialization error: one or more repositories are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Providers: providers,
		Clients:   clients,
		Warnings:  warnings,
		Profiles:  profiles,
		Logger:    logger,
		now:       time.Now,
	}, nil
}

// BulkItemResult is one entry of a batch operation's per-item outcome list.
type BulkItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult summarizes a batch operation. Batches never fail wholesale on
// one bad id; each item carries its own outcome.
type BulkResult struct {
	TotalProcessed int              `json:"totalProcessed"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []BulkItemResult `json:"results"`
}

// Orchestrator is the mutation surface exposed to handlers and jobs.
type Orchestrator interface {
	// Provider penalty / risk path.
	ApplyPenalty(ctx context.Context, providerID, reason, actor string) (*models.ProviderProfile, error)
	UpdateRiskAssessment(ctx context.Context, providerID, assessedBy string, horizonDays int) (*models.ProviderProfile, error)
	ScheduleNextAssessment(ctx context.Context, providerID string, days int) (*models.ProviderProfile, error)
	BulkUpdateRiskAssessments(ctx context.Context, providerIDs []string, assessedBy string, horizonDays int) (*BulkResult, error)
	SetProviderStatus(ctx context.Context, providerID string, status models.ProviderStatus, reason, actor string) (*models.ProviderProfile, error)

	// Client trust path.
	UpdateTrustScore(ctx context.Context, clientID string, score int, actor string) (*models.ClientProfile, error)
	RecordBookingOutcome(ctx context.Context, clientID string, outcome BookingOutcome, amount float64) (*models.ClientProfile, error)
	SuspendClient(ctx context.Context, clientID, reason string, durationDays int, actor string) (*models.ClientProfile, error)

	// Warning state machine.
	IssueWarning(ctx context.Context, req IssueWarningRequest) (*models.Warning, error)
	AcknowledgeWarning(ctx context.Context, warningID, actor string) (*models.Warning, error)
	ResolveWarning(ctx context.Context, warningID, resolver, note string) (*models.Warning, error)
	ActivateWarning(ctx context.Context, warningID, actor string) (*models.Warning, error)
	DeactivateWarning(ctx context.Context, warningID, actor string) (*models.Warning, error)

	// Sweeps.
	ExpireOldWarnings(ctx context.Context) (int64, error)
	SyncWarningCounts(ctx context.Context) (int, error)
	CleanupExpiredWarnings(ctx context.Context, retention time.Duration) (int64, error)
}

var _ Orchestrator = (*Engine)(nil)
