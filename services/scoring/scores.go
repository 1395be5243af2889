// Package scoring holds the pure score primitives of the risk engine.
// Every function here is total on clamped inputs and touches no I/O.
package scoring

import (
	"trustwork/models"
)

// ClampScore bounds a score into [0,100]. Callers clamp before invoking the
// risk primitives; out-of-range inputs are never rejected.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TrustScoreRiskLevel maps a client trust score to a risk level.
// Thresholds: >=80 low, >=60 medium, >=30 high, else critical.
func TrustScoreRiskLevel(score int) models.RiskLevel {
	score = ClampScore(score)
	switch {
	case score >= 80:
		return models.RiskLow
	case score >= 60:
		return models.RiskMedium
	case score >= 30:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// ClientRiskLevel accumulates risk points from the trust score and behavioral
// counters, then buckets the total at 20/40/60.
func ClientRiskLevel(trustScore, warningsCount int, disputeRate, cancelRate float64, verifiedCount int) models.RiskLevel {
	trustScore = ClampScore(trustScore)

	points := 0
	switch {
	case trustScore < 30:
		points += 30
	case trustScore < 60:
		points += 20
	case trustScore < 80:
		points += 10
	}

	points += 10 * warningsCount

	switch {
	case disputeRate >= 0.20:
		points += 25
	case disputeRate >= 0.10:
		points += 10
	}
	switch {
	case cancelRate >= 0.30:
		points += 20
	case cancelRate >= 0.15:
		points += 10
	}

	// Up to 20 points for missing phone/email/address verification.
	missing := 3 - verifiedCount
	if missing < 0 {
		missing = 0
	}
	points += (missing * 20) / 3

	switch {
	case points >= 60:
		return models.RiskCritical
	case points >= 40:
		return models.RiskHigh
	case points >= 20:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// ProviderRiskScore turns raw risk factors into a 0..100 score.
func ProviderRiskScore(f models.RiskFactors) int {
	score := 0
	if f.NewProvider {
		score += 20
	}
	if f.LowCompletionRate {
		score += 25
	}
	if f.HighCancellationRate {
		score += 20
	}
	score += capped(5*f.RecentComplaints, 20)
	score += capped(10*len(f.VerificationGaps), 30)
	score += capped(3*f.NegativeReviews, 15)
	return ClampScore(score)
}

// ProviderRiskLevelFromScore buckets a provider risk score at 25/50/75.
func ProviderRiskLevelFromScore(score int) models.RiskLevel {
	score = ClampScore(score)
	switch {
	case score >= 75:
		return models.RiskCritical
	case score >= 50:
		return models.RiskHigh
	case score >= 25:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// elevatedCategories carry a multiplier on the severity base score: safety
// and harassment double it, fraud raises it by half.
var categoryMultipliers = map[models.WarningCategory]float64{
	models.CategorySafetyConcern: 2.0,
	models.CategoryHarassment:    2.0,
	models.CategoryFraud:         1.5,
}

// WarningRiskLevel rates a single warning from its severity and category.
// Base scores minor=1, major=3, severe=5, times the category multiplier,
// bucketed at 3/5/8.
func WarningRiskLevel(severity models.WarningSeverity, category models.WarningCategory) models.RiskLevel {
	base := 1.0
	switch severity {
	case models.SeverityMajor:
		base = 3.0
	case models.SeveritySevere:
		base = 5.0
	}
	if m, ok := categoryMultipliers[category]; ok {
		base *= m
	}
	switch {
	case base >= 8:
		return models.RiskCritical
	case base >= 5:
		return models.RiskHigh
	case base >= 3:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func capped(v, max int) int {
	if v > max {
		return max
	}
	return v
}
