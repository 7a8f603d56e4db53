// Package matching computes the keys and scores used to group and rank listings
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/normalizers"
)

var stopWordsRe = regexp.MustCompile(`\b(funeral|home|services|inc|llc)\b`)

// KeySeparator joins the name and address halves of a matching key
const KeySeparator = "|"

// Key returns the fuzzy duplicate key of a listing:
// normalized business name, a pipe, then the first line of the address
func Key(l *models.Listing) string {
	return KeyName(l.BusinessName) + KeySeparator + KeyAddress(l.Address)
}

// KeyName lower-cases a business name, folds accents, drops punctuation and
// the generic words funeral, home, services, inc and llc
func KeyName(name string) string {
	s := normalizers.FoldAccents(strings.ToLower(name))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	s = stopWordsRe.ReplaceAllString(s, " ")
	return normalizers.CollapseWhitespace(s)
}

// KeyAddress returns the first comma segment of the lower-cased address
func KeyAddress(address string) string {
	s := normalizers.CollapseWhitespace(strings.ToLower(address))
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}
