// Package normalizers holds the field canonicalizers applied to listings.
// Every canonicalizer is total: any string in, a canonical string out.
package normalizers

import (
	"strings"
	"sync"
	"unicode"

	"github.com/Ramsey-B/lily/pkg/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer canonicalizes one field value
type Normalizer func(string) string

var (
	mu     sync.RWMutex
	byName = map[string]Normalizer{
		"lowercase":           strings.ToLower,
		"trim":                strings.TrimSpace,
		"collapse_whitespace": CollapseWhitespace,
		"fold_accents":        FoldAccents,
		"digits_only":         DigitsOnly,
		"sentinel":            Sentinel,
		"business_name":       NormalizeBusinessName,
		"address":             NormalizeAddress,
		"state":               NormalizeState,
		"city":                NormalizeCity,
		"phone":               NormalizePhone,
		"email":               NormalizeEmail,
		"website":             NormalizeWebsite,
		"social_media":        NormalizeSocialMedia,
	}
)

// Register installs fn under name, replacing any previous canonicalizer
func Register(name string, fn Normalizer) {
	mu.Lock()
	defer mu.Unlock()
	byName[name] = fn
}

func Get(name string) (Normalizer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := byName[name]
	return fn, ok
}

// ApplyChain runs the named canonicalizers left to right. Unknown names are skipped.
func ApplyChain(value string, names ...string) string {
	for _, name := range names {
		if fn, ok := Get(name); ok {
			value = fn(value)
		}
	}
	return value
}

// CollapseWhitespace trims and replaces every whitespace run with a single space
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var accentFolder = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// FoldAccents strips combining marks (Élodie -> Elodie)
func FoldAccents(s string) string {
	t := accentFolder.Get().(transform.Transformer)
	defer accentFolder.Put(t)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// DigitsOnly keeps the ASCII digits of s after folding full-width forms
// (５ -> 5). Digits from other scripts are dropped.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, width.Fold.String(s))
}

var nullSpellings = map[string]bool{"none": true, "null": true, "nil": true, "n/a": true, "na": true}

// Sentinel trims a pass-through value and maps blanks and null spellings to models.NotAvailable
func Sentinel(s string) string {
	v := strings.TrimSpace(s)
	if models.IsMissing(v) || nullSpellings[strings.ToLower(v)] {
		return models.NotAvailable
	}
	return v
}
