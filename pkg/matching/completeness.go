package matching

import "github.com/Ramsey-B/lily/pkg/models"

// Completeness counts the canonical fields of a listing that hold a known value
func Completeness(l *models.Listing) int {
	score := 0
	for _, f := range models.Fields {
		if !models.IsMissing(l.Get(f)) {
			score++
		}
	}
	return score
}
