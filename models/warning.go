package models

import "time"

// WarningCategory classifies what kind of infraction a warning records.
type WarningCategory string

const (
	CategoryPolicyViolation WarningCategory = "policy_violation"
	CategoryPoorPerformance WarningCategory = "poor_performance"
	CategorySafetyConcern   WarningCategory = "safety_concern"
	CategoryHarassment      WarningCategory = "harassment"
	CategoryFraud           WarningCategory = "fraud"
	CategoryUnprofessional  WarningCategory = "unprofessional_conduct"
	CategoryOther           WarningCategory = "other"
)

// WarningCategories lists every valid category, for input validation.
var WarningCategories = []WarningCategory{
	CategoryPolicyViolation,
	CategoryPoorPerformance,
	CategorySafetyConcern,
	CategoryHarassment,
	CategoryFraud,
	CategoryUnprofessional,
	CategoryOther,
}

// WarningSeverity grades a warning; it drives the auto-computed expiry.
type WarningSeverity string

const (
	SeverityMinor  WarningSeverity = "minor"
	SeverityMajor  WarningSeverity = "major"
	SeveritySevere WarningSeverity = "severe"
)

// WarningStatus is the lifecycle state of a warning.
type WarningStatus string

const (
	WarningActive   WarningStatus = "active"
	WarningResolved WarningStatus = "resolved"
	WarningExpired  WarningStatus = "expired"
)

// ExpiryDuration returns how long a warning of this severity stays active.
func (s WarningSeverity) ExpiryDuration() time.Duration {
	switch s {
	case SeverityMajor:
		return 180 * 24 * time.Hour
	case SeveritySevere:
		return 365 * 24 * time.Hour
	default:
		return 90 * 24 * time.Hour
	}
}

// Warning records an infraction issued against a user+profile pair.
// Content is immutable once the warning leaves the active state; all state
// changes go through acknowledge/resolve/activate/deactivate actions.
type Warning struct {
	ID             string          `bson:"id" json:"id"`
	UserID         string          `bson:"userId" json:"userId"`
	ProfileID      string          `bson:"profileId" json:"profileId"`
	Category       WarningCategory `bson:"category" json:"category"`
	Severity       WarningSeverity `bson:"severity" json:"severity"`
	Status         WarningStatus   `bson:"status" json:"status"`
	RiskLevel      RiskLevel       `bson:"riskLevel" json:"riskLevel"`
	Reason         string          `bson:"reason" json:"reason"`
	Details        string          `bson:"details,omitempty" json:"details,omitempty"`
	Evidence       []FileRef       `bson:"evidence,omitempty" json:"evidence,omitempty"`
	IsActive       bool            `bson:"isActive" json:"isActive"`
	IssuedBy       string          `bson:"issuedBy" json:"issuedBy"`
	IssuedAt       time.Time       `bson:"issuedAt" json:"issuedAt"`
	AcknowledgedBy string          `bson:"acknowledgedBy,omitempty" json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time      `bson:"acknowledgedAt,omitempty" json:"acknowledgedAt,omitempty"`
	ResolvedBy     string          `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time      `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolutionNote string          `bson:"resolutionNote,omitempty" json:"resolutionNote,omitempty"`
	ExpiresAt      time.Time       `bson:"expiresAt" json:"expiresAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// Acknowledged reports whether the warned user has acknowledged the warning.
func (w *Warning) Acknowledged() bool {
	return w.AcknowledgedAt != nil
}
