package match

import "github.com/raphaelgruber/circlemap/internal/models"

// Verification checklist weights. They sum to 100.
const (
	weightIdentity = 25
	weightLinkedIn = 20
	weightSources  = 15
	weightActive   = 15
	weightPhoto    = 10
	weightMutual   = 15

	minSources = 3
)

// Verification scores how much of a profile has been confirmed, 0-100.
// A seeded confidence score (from a LinkedIn-verified overlay) acts as a floor.
func Verification(d *models.DeepProfile) int {
	v := d.Verification
	score := 0
	if v.IdentityConfirmed {
		score += weightIdentity
	}
	if v.LinkedInVerified {
		score += weightLinkedIn
	}
	if len(v.Sources) >= minSources {
		score += weightSources
	}
	if v.RecentlyActive {
		score += weightActive
	}
	if v.PhotoMatched {
		score += weightPhoto
	}
	if v.MutualConfirmed {
		score += weightMutual
	}
	if v.ConfidenceScore > score {
		score = v.ConfidenceScore
	}
	if score > 100 {
		score = 100
	}
	return score
}
