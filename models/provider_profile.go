package models

import "time"

// RiskFactors are the raw signals the provider risk score is computed from.
type RiskFactors struct {
	NewProvider          bool     `bson:"newProvider" json:"newProvider"`
	LowCompletionRate    bool     `bson:"lowCompletionRate" json:"lowCompletionRate"`
	HighCancellationRate bool     `bson:"highCancellationRate" json:"highCancellationRate"`
	RecentComplaints     int      `bson:"recentComplaints" json:"recentComplaints"`
	VerificationGaps     []string `bson:"verificationGaps,omitempty" json:"verificationGaps,omitempty"`
	NegativeReviews      int      `bson:"negativeReviews" json:"negativeReviews"`
}

// MitigationMeasures are the constraints imposed on a risky provider.
type MitigationMeasures struct {
	RequiresDeposit            bool    `bson:"requiresDeposit" json:"requiresDeposit"`
	LimitedJobValue            bool    `bson:"limitedJobValue" json:"limitedJobValue"`
	MaxJobValue                float64 `bson:"maxJobValue" json:"maxJobValue,omitempty"`
	RequiresSupervision        bool    `bson:"requiresSupervision" json:"requiresSupervision"`
	FrequentCheckins           bool    `bson:"frequentCheckins" json:"frequentCheckins"`
	ClientConfirmationRequired bool    `bson:"clientConfirmationRequired" json:"clientConfirmationRequired"`
}

// PerformanceMetrics hold bounded operational numbers rolled forward per booking.
type PerformanceMetrics struct {
	CompletionRate      float64 `bson:"completionRate" json:"completionRate"`
	AverageRating       float64 `bson:"averageRating" json:"averageRating"`
	TotalJobs           int     `bson:"totalJobs" json:"totalJobs"`
	ResponseTimeMinutes float64 `bson:"responseTimeMinutes" json:"responseTimeMinutes"`
	CancellationRate    float64 `bson:"cancellationRate" json:"cancellationRate"`
	DisputeRate         float64 `bson:"disputeRate" json:"disputeRate"`
	ClientRetentionRate float64 `bson:"clientRetentionRate" json:"clientRetentionRate"`
}

// ProviderProfile is the provider-side extension of a Profile (1:1 by ProfileID).
type ProviderProfile struct {
	ID                 string             `bson:"id" json:"id"`
	ProfileID          string             `bson:"profileId" json:"profileId"`
	UserID             string             `bson:"userId" json:"userId"`
	Status             ProviderStatus     `bson:"status" json:"status"`
	StatusReason       string             `bson:"statusReason,omitempty" json:"statusReason,omitempty"`
	Available          bool               `bson:"available" json:"available"`
	RiskLevel          RiskLevel          `bson:"riskLevel" json:"riskLevel"`
	RiskFactors        RiskFactors        `bson:"riskFactors" json:"riskFactors"`
	MitigationMeasures MitigationMeasures `bson:"mitigationMeasures" json:"mitigationMeasures"`
	Metrics            PerformanceMetrics `bson:"metrics" json:"metrics"`
	PenaltiesCount     int                `bson:"penaltiesCount" json:"penaltiesCount"`
	LastPenaltyDate    *time.Time         `bson:"lastPenaltyDate,omitempty" json:"lastPenaltyDate,omitempty"`
	LastRiskAssessment *time.Time         `bson:"lastRiskAssessment,omitempty" json:"lastRiskAssessment,omitempty"`
	NextAssessmentDate *time.Time         `bson:"nextAssessmentDate,omitempty" json:"nextAssessmentDate,omitempty"`
	AssessedBy         string             `bson:"assessedBy,omitempty" json:"assessedBy,omitempty"`
	SoftDelete         `bson:",inline"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}
