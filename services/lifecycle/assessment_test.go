package lifecycle

import (
	"context"
	"testing"
	"time"

	"trustwork/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRiskAssessmentRecomputesFromFactors(t *testing.T) {
	p := testProvider("p1")
	p.RiskFactors = models.RiskFactors{
		NewProvider:       true,
		LowCompletionRate: true, // score 45 -> medium
	}
	e := newTestEngine(newFakeProviderRepo(p), nil, nil, nil)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	updated, err := e.UpdateRiskAssessment(context.Background(), "p1", "assessor-1", 30)
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, updated.RiskLevel)
	assert.Equal(t, "assessor-1", updated.AssessedBy)
	require.NotNil(t, updated.LastRiskAssessment)
	assert.Equal(t, now, *updated.LastRiskAssessment)
	require.NotNil(t, updated.NextAssessmentDate)
	assert.Equal(t, now.AddDate(0, 0, 30), *updated.NextAssessmentDate)
}

func TestUpdateRiskAssessmentMayDeescalate(t *testing.T) {
	p := testProvider("p1")
	p.RiskLevel = models.RiskCritical
	p.MitigationMeasures = models.MitigationMeasures{RequiresDeposit: true, RequiresSupervision: true}
	// Clean factors: score 0 -> low.
	e := newTestEngine(newFakeProviderRepo(p), nil, nil, nil)

	updated, err := e.UpdateRiskAssessment(context.Background(), "p1", "assessor-1", 90)
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, updated.RiskLevel)
	assert.False(t, updated.MitigationMeasures.RequiresDeposit)
	assert.False(t, updated.MitigationMeasures.RequiresSupervision)
}

func TestUpdateRiskAssessmentHorizonBounds(t *testing.T) {
	e := newTestEngine(newFakeProviderRepo(testProvider("p1")), nil, nil, nil)

	_, err := e.UpdateRiskAssessment(context.Background(), "p1", "assessor-1", 0)
	assert.True(t, IsValidation(err))
	_, err = e.UpdateRiskAssessment(context.Background(), "p1", "assessor-1", 366)
	assert.True(t, IsValidation(err))
	_, err = e.UpdateRiskAssessment(context.Background(), "p1", "", 30)
	assert.True(t, IsValidation(err))
	_, err = e.UpdateRiskAssessment(context.Background(), "missing", "assessor-1", 30)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleNextAssessment(t *testing.T) {
	p := testProvider("p1")
	p.RiskLevel = models.RiskHigh
	e := newTestEngine(newFakeProviderRepo(p), nil, nil, nil)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	updated, err := e.ScheduleNextAssessment(context.Background(), "p1", 14)
	require.NoError(t, err)
	require.NotNil(t, updated.NextAssessmentDate)
	assert.Equal(t, now.AddDate(0, 0, 14), *updated.NextAssessmentDate)
	// Risk state is untouched by the narrow variant.
	assert.Equal(t, models.RiskHigh, updated.RiskLevel)
}

func TestScheduleNextAssessmentDatesShareOneInstant(t *testing.T) {
	p := testProvider("p1")
	e := newTestEngine(newFakeProviderRepo(p), nil, nil, nil)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	e.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	updated, err := e.ScheduleNextAssessment(context.Background(), "p1", 30)
	require.NoError(t, err)
	require.NotNil(t, updated.NextAssessmentDate)
	assert.Equal(t, updated.UpdatedAt.AddDate(0, 0, 30), *updated.NextAssessmentDate)
}

func TestBulkUpdateRiskAssessmentsPartialFailure(t *testing.T) {
	repo := newFakeProviderRepo(
		testProvider("p1"),
		testProvider("p2"),
		testProvider("p3"),
		testProvider("p4"),
	)
	e := newTestEngine(repo, nil, nil, nil)

	ids := []string{"p1", "p2", "missing", "p3", "p4"}
	result, err := e.BulkUpdateRiskAssessments(context.Background(), ids, "assessor-1", 30)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 1, result.Failed)

	var failed *BulkItemResult
	for i := range result.Results {
		if !result.Results[i].Success {
			failed = &result.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "missing", failed.ID)
	assert.NotEmpty(t, failed.Error)
}

func TestBulkUpdateRiskAssessmentsEmptyInput(t *testing.T) {
	e := newTestEngine(nil, nil, nil, nil)
	_, err := e.BulkUpdateRiskAssessments(context.Background(), nil, "assessor-1", 30)
	assert.True(t, IsValidation(err))
}
