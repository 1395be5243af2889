package models

import "time"

// BookingCounters track a client's booking history in aggregate.
type BookingCounters struct {
	Total     int `bson:"total" json:"total"`
	Completed int `bson:"completed" json:"completed"`
	Cancelled int `bson:"cancelled" json:"cancelled"`
	Disputed  int `bson:"disputed" json:"disputed"`
}

// ClientVerification holds which contact channels have been confirmed.
type ClientVerification struct {
	Phone   bool `bson:"phone" json:"phone"`
	Email   bool `bson:"email" json:"email"`
	Address bool `bson:"address" json:"address"`
}

// Count returns how many channels are verified.
func (v ClientVerification) Count() int {
	n := 0
	for _, ok := range []bool{v.Phone, v.Email, v.Address} {
		if ok {
			n++
		}
	}
	return n
}

// Suspension records one suspension episode on a client account.
type Suspension struct {
	Date         time.Time  `bson:"date" json:"date"`
	Reason       string     `bson:"reason" json:"reason"`
	DurationDays int        `bson:"durationDays" json:"durationDays"`
	ResolvedAt   *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// ClientProfile is the customer-side extension of a Profile (1:1 by ProfileID).
// TrustScore stays in [0,100]; RiskLevel is always recomputed from the score
// and the behavioral counters, never written directly by callers.
type ClientProfile struct {
	ID                string             `bson:"id" json:"id"`
	ProfileID         string             `bson:"profileId" json:"profileId"`
	UserID            string             `bson:"userId" json:"userId"`
	TrustScore        int                `bson:"trustScore" json:"trustScore"`
	RiskLevel         RiskLevel          `bson:"riskLevel" json:"riskLevel"`
	Bookings          BookingCounters    `bson:"bookings" json:"bookings"`
	TotalSpend        float64            `bson:"totalSpend" json:"totalSpend"`
	LoyaltyTier       LoyaltyTier        `bson:"loyaltyTier" json:"loyaltyTier"`
	Verification      ClientVerification `bson:"verification" json:"verification"`
	WarningsCount     int                `bson:"warningsCount" json:"warningsCount"`
	SuspensionHistory []Suspension       `bson:"suspensionHistory,omitempty" json:"suspensionHistory,omitempty"`
	SoftDelete        `bson:",inline"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// CancellationRate returns cancelled/total, 0 when the client has no bookings.
func (c *ClientProfile) CancellationRate() float64 {
	if c.Bookings.Total == 0 {
		return 0
	}
	return float64(c.Bookings.Cancelled) / float64(c.Bookings.Total)
}

// DisputeRate returns disputed/total, 0 when the client has no bookings.
func (c *ClientProfile) DisputeRate() float64 {
	if c.Bookings.Total == 0 {
		return 0
	}
	return float64(c.Bookings.Disputed) / float64(c.Bookings.Total)
}
