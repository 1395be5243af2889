package report

import (
	"context"
	"fmt"
	"time"

	clientRepo "trustwork/database/repository/client"
	providerRepo "trustwork/database/repository/provider"
	warningRepo "trustwork/database/repository/warning"
	"trustwork/models"

	"go.uber.org/zap"
)

// StoreStats mirrors WarningStats but is computed by the store's aggregation
// pipelines instead of an in-memory slice, so it scales past one page of data.
type StoreStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	BySeverity map[string]int64 `json:"bySeverity"`
	ByCategory map[string]int64 `json:"byCategory"`
	TopIssuers []IssuerStat     `json:"topIssuers,omitempty"`
}

// Reporter answers administrative rollup queries against the repositories.
type Reporter struct {
	Warnings  warningRepo.WarningRepository
	Providers providerRepo.ProviderProfileRepository
	Clients   clientRepo.ClientProfileRepository
	Logger    *zap.Logger
}

func NewReporter(
	warnings warningRepo.WarningRepository,
	providers providerRepo.ProviderProfileRepository,
	clients clientRepo.ClientProfileRepository,
	logger *zap.Logger,
) *Reporter {
	return &Reporter{Warnings: warnings, Providers: providers, Clients: clients, Logger: logger}
}

// WarningStats aggregates warning counts by status, severity and category,
// plus the top issuers.
func (r *Reporter) WarningStats(ctx context.Context, topN int64) (*StoreStats, error) {
	byStatus, err := r.Warnings.CountsByField("status")
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings by status: %w", err)
	}
	bySeverity, err := r.Warnings.CountsByField("severity")
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings by severity: %w", err)
	}
	byCategory, err := r.Warnings.CountsByField("category")
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings by category: %w", err)
	}
	issuers, err := r.Warnings.TopIssuers(topN)
	if err != nil {
		return nil, fmt.Errorf("failed to rank warning issuers: %w", err)
	}

	stats := &StoreStats{
		ByStatus:   byStatus,
		BySeverity: bySeverity,
		ByCategory: byCategory,
	}
	for _, c := range byStatus {
		stats.Total += c
	}
	for _, ic := range issuers {
		stats.TopIssuers = append(stats.TopIssuers, IssuerStat{IssuerID: ic.IssuerID, Count: ic.Count})
	}
	return stats, nil
}

// ProviderRiskDistribution counts providers per risk level.
func (r *Reporter) ProviderRiskDistribution(ctx context.Context) (map[models.RiskLevel]int64, error) {
	dist, err := r.Providers.CountByRiskLevel()
	if err != nil {
		return nil, fmt.Errorf("failed to count providers by risk level: %w", err)
	}
	return dist, nil
}

// ClientRiskDistribution counts clients per risk level.
func (r *Reporter) ClientRiskDistribution(ctx context.Context) (map[models.RiskLevel]int64, error) {
	dist, err := r.Clients.CountByRiskLevel()
	if err != nil {
		return nil, fmt.Errorf("failed to count clients by risk level: %w", err)
	}
	return dist, nil
}

// OverdueAssessments lists providers whose nextAssessmentDate has passed.
func (r *Reporter) OverdueAssessments(ctx context.Context, now time.Time) ([]models.ProviderProfile, error) {
	overdue, err := r.Providers.ListOverdueAssessments(now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue assessments: %w", err)
	}
	r.Logger.Debug("overdue assessment scan", zap.Int("count", len(overdue)))
	return overdue, nil
}
