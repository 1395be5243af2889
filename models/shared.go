package models

import "time"

// Role identifies what a user can do on the platform.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleProvider   Role = "provider"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// RiskLevel summarizes how likely an entity is to cause a negative outcome.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank returns the ordinal position of the level (low < medium < high < critical).
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// AtLeast reports whether r is the same or a higher level than other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Rank() >= other.Rank()
}

// MaxRiskLevel returns the higher of the two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ProviderStatus is the operational state of a provider profile.
type ProviderStatus string

const (
	ProviderProbationary ProviderStatus = "probationary"
	ProviderActive       ProviderStatus = "active"
	ProviderSuspended    ProviderStatus = "suspended"
)

// LoyaltyTier is the client spend/behavior tier.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

// Location is a coarse profile location; Code is the indexed value.
type Location struct {
	Code    string `bson:"code" json:"code,omitempty"`
	City    string `bson:"city" json:"city,omitempty"`
	Country string `bson:"country" json:"country,omitempty"`
}

// Contact holds reachable endpoints for a profile. Phone is the primary contact.
type Contact struct {
	Phone          string `bson:"phone" json:"phone,omitempty"`
	AlternatePhone string `bson:"alternatePhone,omitempty" json:"alternatePhone,omitempty"`
	Email          string `bson:"email" json:"email,omitempty"`
}

// SoftDelete marks an entity inactive without removing the document.
type SoftDelete struct {
	IsDeleted bool       `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy string     `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
}
