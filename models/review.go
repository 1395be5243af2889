package models

import "time"

// Review is a client's rating of a provider for one booking.
type Review struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"` // ProviderProfile.ID
	ClientID   string    `bson:"clientId" json:"clientId"`     // ClientProfile.ID
	BookingRef string    `bson:"bookingRef" json:"bookingRef"`
	Rating     float64   `bson:"rating" json:"rating"` // 1..5
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	SoftDelete `bson:",inline"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt,omitzero"`
}
