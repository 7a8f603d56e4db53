package matching

import "strings"

const (
	winklerPrefix = 4
	winklerScale  = 0.1
)

// Scorer ranks business names against a search query
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// NameSimilarity scores query against a business name in [0, 1]: the better
// of the whole-name and best-single-word Jaro-Winkler similarities
func (s *Scorer) NameSimilarity(query, name string) float64 {
	query, name = strings.ToLower(query), strings.ToLower(name)
	return max(s.JaroWinkler(query, name), s.BestTokenMatch(query, name))
}

// JaroWinkler is Jaro similarity boosted by a common prefix of up to four runes
func (s *Scorer) JaroWinkler(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	jaro := jaro(ar, br)

	prefix := 0
	for prefix < winklerPrefix && prefix < len(ar) && prefix < len(br) && ar[prefix] == br[prefix] {
		prefix++
	}
	return jaro + float64(prefix)*winklerScale*(1-jaro)
}

// Jaro returns the Jaro similarity of a and b compared rune by rune
func (s *Scorer) Jaro(a, b string) float64 {
	return jaro([]rune(a), []rune(b))
}

func jaro(a, b []rune) float64 {
	if string(a) == string(b) {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(max(len(a), len(b))/2-1, 0)
	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))

	matches := 0
	for i, r := range a {
		for j := max(0, i-window); j < min(len(b), i+window+1); j++ {
			if !matchedB[j] && b[j] == r {
				matchedA[i], matchedB[j] = true, true
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return 0
	}

	// count matched runes that appear in a different order
	half, j := 0, 0
	for i, r := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if r != b[j] {
			half++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(half)/2)/m) / 3
}

// BestTokenMatch returns the highest Jaro-Winkler similarity between query and
// any whitespace separated word of text
func (s *Scorer) BestTokenMatch(query, text string) float64 {
	best := 0.0
	for _, word := range strings.Fields(text) {
		best = max(best, s.JaroWinkler(query, word))
	}
	return best
}
