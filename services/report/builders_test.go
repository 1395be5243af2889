package report

import (
	"testing"
	"time"

	"trustwork/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedWarning(id, issuer string, daysToResolve int) models.Warning {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	resolved := issued.AddDate(0, 0, daysToResolve)
	return models.Warning{
		ID:         id,
		Category:   models.CategoryPolicyViolation,
		Severity:   models.SeverityMinor,
		Status:     models.WarningResolved,
		IssuedBy:   issuer,
		IssuedAt:   issued,
		ResolvedAt: &resolved,
	}
}

func TestBuildWarningStats(t *testing.T) {
	warnings := []models.Warning{
		resolvedWarning("w1", "admin-1", 4),
		resolvedWarning("w2", "admin-1", 10),
		{
			ID:       "w3",
			Category: models.CategorySafetyConcern,
			Severity: models.SeveritySevere,
			Status:   models.WarningActive,
			IssuedBy: "admin-2",
			IssuedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	stats := BuildWarningStats(warnings, 5)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[models.WarningResolved])
	assert.Equal(t, int64(1), stats.ByStatus[models.WarningActive])
	assert.Equal(t, int64(1), stats.BySeverity[models.SeveritySevere])
	assert.Equal(t, int64(1), stats.ByCategory[models.CategorySafetyConcern])
	assert.Equal(t, int64(2), stats.ResolvedCount)
	require.NotNil(t, stats.AvgDaysToResolution)
	assert.InDelta(t, 7.0, *stats.AvgDaysToResolution, 0.001)

	require.Len(t, stats.TopIssuers, 2)
	assert.Equal(t, IssuerStat{IssuerID: "admin-1", Count: 2}, stats.TopIssuers[0])
}

func TestAvgDaysToResolutionNilWhenUnresolved(t *testing.T) {
	warnings := []models.Warning{
		{ID: "w1", Status: models.WarningActive, IssuedAt: time.Now()},
	}
	assert.Nil(t, AvgDaysToResolution(warnings))
	assert.Nil(t, AvgDaysToResolution(nil))
}

func TestBuildTopIssuersLimitAndTieBreak(t *testing.T) {
	warnings := []models.Warning{
		{IssuedBy: "b"}, {IssuedBy: "a"}, {IssuedBy: "c"}, {IssuedBy: "c"},
	}
	top := BuildTopIssuers(warnings, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].IssuerID)
	// Equal counts order by issuer id.
	assert.Equal(t, "a", top[1].IssuerID)
}

func TestRiskDistributionsExcludeSoftDeleted(t *testing.T) {
	providers := []models.ProviderProfile{
		{ID: "p1", RiskLevel: models.RiskLow},
		{ID: "p2", RiskLevel: models.RiskHigh},
		{ID: "p3", RiskLevel: models.RiskHigh, SoftDelete: models.SoftDelete{IsDeleted: true}},
	}
	dist := BuildProviderRiskDistribution(providers)
	assert.Equal(t, int64(1), dist[models.RiskLow])
	assert.Equal(t, int64(1), dist[models.RiskHigh])

	clients := []models.ClientProfile{
		{ID: "c1", RiskLevel: models.RiskMedium},
		{ID: "c2", RiskLevel: models.RiskMedium, SoftDelete: models.SoftDelete{IsDeleted: true}},
	}
	cdist := BuildClientRiskDistribution(clients)
	assert.Equal(t, int64(1), cdist[models.RiskMedium])
}
