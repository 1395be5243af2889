package models

import "time"

// VerificationStatus tracks identity review progress for a profile.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Preferences are free-form user settings; their presence contributes to completeness.
type Preferences struct {
	Language      string `bson:"language,omitempty" json:"language,omitempty"`
	Notifications bool   `bson:"notifications" json:"notifications,omitempty"`
	Newsletter    bool   `bson:"newsletter" json:"newsletter,omitempty"`
}

// Profile is the role-scoped public face of a user.
type Profile struct {
	ID                 string             `bson:"id" json:"id"`
	UserID             string             `bson:"userId" json:"userId"`
	Role               Role               `bson:"role" json:"role"`
	Bio                string             `bson:"bio" json:"bio,omitempty"`
	Location           Location           `bson:"location" json:"location,omitzero"`
	Contact            Contact            `bson:"contact" json:"contact,omitzero"`
	IDNumber           string             `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
	IdentityDocumentID string             `bson:"identityDocumentId,omitempty" json:"identityDocumentId,omitempty"`
	SocialLinks        []string           `bson:"socialLinks,omitempty" json:"socialLinks,omitempty"`
	Preferences        *Preferences       `bson:"preferences,omitempty" json:"preferences,omitempty"`
	VerificationStatus VerificationStatus `bson:"verificationStatus" json:"verificationStatus,omitempty"`
	WarningsCount      int                `bson:"warningsCount" json:"warningsCount"`
	CompletenessScore  int                `bson:"completenessScore" json:"completenessScore"`
	SoftDelete         `bson:",inline"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}
