package scoring

import (
	"strings"

	"trustwork/models"
)

// Completeness scores how fully a profile is filled in, 0..100.
// Weights: bio 15, location 25, primary contact 25, id number 20,
// social links 10, preferences 5.
func Completeness(p *models.Profile) int {
	if p == nil {
		return 0
	}
	score := 0
	if strings.TrimSpace(p.Bio) != "" {
		score += 15
	}
	if strings.TrimSpace(p.Location.Code) != "" {
		score += 25
	}
	if strings.TrimSpace(p.Contact.Phone) != "" {
		score += 25
	}
	if strings.TrimSpace(p.IDNumber) != "" {
		score += 20
	}
	if len(p.SocialLinks) > 0 {
		score += 10
	}
	if p.Preferences != nil {
		score += 5
	}
	return ClampScore(score)
}
