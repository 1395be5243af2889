package profile

import (
	"fmt"

	"trustwork/models"
)

// Actor identifies who is performing a profile mutation.
type Actor struct {
	UserID string
	Role   models.Role
}

// fieldPolicy declares, per mutable field, who may write it. Derived fields
// (completenessScore, warningsCount, verification outcomes computed by the
// engine) are deliberately absent: nothing outside this package writes them.
var fieldPolicy = map[string]struct {
	Owner bool // the owning user may write it
	Admin bool // admin and super_admin may write it
	Super bool // super_admin only
}{
	"bio":                {Owner: true, Admin: true},
	"location":           {Owner: true, Admin: true},
	"contact":            {Owner: true, Admin: true},
	"idNumber":           {Owner: true, Admin: true},
	"socialLinks":        {Owner: true, Admin: true},
	"preferences":        {Owner: true, Admin: true},
	"identityDocumentId": {Admin: true},
	"verificationStatus": {Admin: true},
	"role":               {Super: true},
}

// FieldPermissionError reports a write attempt on a field the actor cannot touch.
type FieldPermissionError struct {
	Field string
	Role  models.Role
}

func (e *FieldPermissionError) Error() string {
	return fmt.Sprintf("role %s may not modify field %s", e.Role, e.Field)
}

// mayWrite consults the policy table for one field.
func mayWrite(field string, actor Actor, ownerUserID string) bool {
	policy, known := fieldPolicy[field]
	if !known {
		return false
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		return policy.Super || policy.Admin || policy.Owner
	case models.RoleAdmin:
		return policy.Admin || policy.Owner
	default:
		return policy.Owner && actor.UserID == ownerUserID
	}
}

// ProfileUpdate carries the fields a caller wants to change. Nil means
// "leave untouched".
type ProfileUpdate struct {
	Bio                *string                    `json:"bio,omitempty"`
	Location           *models.Location           `json:"location,omitempty"`
	Contact            *models.Contact            `json:"contact,omitempty"`
	IDNumber           *string                    `json:"idNumber,omitempty"`
	SocialLinks        *[]string                  `json:"socialLinks,omitempty"`
	Preferences        *models.Preferences        `json:"preferences,omitempty"`
	IdentityDocumentID *string                    `json:"identityDocumentId,omitempty"`
	VerificationStatus *models.VerificationStatus `json:"verificationStatus,omitempty"`
	Role               *models.Role               `json:"role,omitempty"`
}

type fieldChange struct {
	name  string
	value interface{}
	apply func(*models.Profile)
}

// changes lists the fields actually set on the update, in policy-table terms.
func (u *ProfileUpdate) changes() []fieldChange {
	var out []fieldChange
	if u.Bio != nil {
		out = append(out, fieldChange{"bio", *u.Bio, func(p *models.Profile) { p.Bio = *u.Bio }})
	}
	if u.Location != nil {
		out = append(out, fieldChange{"location", *u.Location, func(p *models.Profile) { p.Location = *u.Location }})
	}
	if u.Contact != nil {
		out = append(out, fieldChange{"contact", *u.Contact, func(p *models.Profile) { p.Contact = *u.Contact }})
	}
	if u.IDNumber != nil {
		out = append(out, fieldChange{"idNumber", *u.IDNumber, func(p *models.Profile) { p.IDNumber = *u.IDNumber }})
	}
	if u.SocialLinks != nil {
		out = append(out, fieldChange{"socialLinks", *u.SocialLinks, func(p *models.Profile) { p.SocialLinks = *u.SocialLinks }})
	}
	if u.Preferences != nil {
		out = append(out, fieldChange{"preferences", *u.Preferences, func(p *models.Profile) { p.Preferences = u.Preferences }})
	}
	if u.IdentityDocumentID != nil {
		out = append(out, fieldChange{"identityDocumentId", *u.IdentityDocumentID, func(p *models.Profile) { p.IdentityDocumentID = *u.IdentityDocumentID }})
	}
	if u.VerificationStatus != nil {
		out = append(out, fieldChange{"verificationStatus", *u.VerificationStatus, func(p *models.Profile) { p.VerificationStatus = *u.VerificationStatus }})
	}
	if u.Role != nil {
		out = append(out, fieldChange{"role", *u.Role, func(p *models.Profile) { p.Role = *u.Role }})
	}
	return out
}
