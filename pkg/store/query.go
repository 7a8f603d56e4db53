package store

import (
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/lily/pkg/matching"
	"github.com/Ramsey-B/lily/pkg/models"
)

// Summary is the dashboard view of the stored listings
type Summary struct {
	TypeDistribution  map[string]int `json:"typeDistribution"`
	StateDistribution map[string]int `json:"stateDistribution"`
	Total             int            `json:"total"`
}

// Summarize counts listings by type and state
func Summarize(listings []*models.Listing) Summary {
	return Summary{
		TypeDistribution:  models.Distribution(listings, models.FieldType),
		StateDistribution: models.Distribution(listings, models.FieldState),
		Total:             len(listings),
	}
}

// Search returns listings whose name, type or address contains q, case
// insensitively, closest business name first. An empty q matches everything in
// stored order. limit <= 0 means no limit.
func Search(listings []*models.Listing, q string, limit int) []*models.Listing {
	query := strings.ToLower(strings.TrimSpace(q))

	results := listings
	if query != "" {
		results = ectolinq.Filter(listings, func(l *models.Listing) bool {
			return containsFold(l.BusinessName, query) ||
				containsFold(l.Type, query) ||
				containsFold(l.Address, query)
		})

		scorer := matching.NewScorer()
		scores := make(map[*models.Listing]float64, len(results))
		for _, l := range results {
			scores[l] = scorer.NameSimilarity(query, l.BusinessName)
		}
		sort.SliceStable(results, func(i, j int) bool {
			return scores[results[i]] > scores[results[j]]
		})
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func containsFold(value, query string) bool {
	if models.IsMissing(value) {
		return false
	}
	return strings.Contains(strings.ToLower(value), query)
}
