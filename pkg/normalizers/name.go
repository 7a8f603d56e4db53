package normalizers

import (
	"regexp"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	fnrlRe        = regexp.MustCompile(`(?i)\bfnrl\b`)
	svcRe         = regexp.MustCompile(`(?i)\bsvcs?\b`)
	memRe         = regexp.MustCompile(`(?i)\bmem\b`)
	legalSuffixRe = regexp.MustCompile(`(?i)\b(inc|llc|ltd|co|corporation|company)\b`)
	settledRe     = regexp.MustCompile(`(?i)funeral home|mortuary`)
	funeralRe     = regexp.MustCompile(`(?i)funeral`)
	cremationRe   = regexp.MustCompile(`(?i)cremation`)
	homeEndRe     = regexp.MustCompile(`(?i)\bhome$`)
	servicesEndRe = regexp.MustCompile(`(?i)\bservices$`)
)

// NormalizeBusinessName title-cases a business name, expands the common
// abbreviations (Fnrl, Svc, Mem) and completes bare "... Funeral" and
// "... Cremation" names. Unknown names become models.UnknownBusiness.
func NormalizeBusinessName(s string) string {
	name := strings.TrimSpace(s)
	if models.IsMissing(name) {
		return models.UnknownBusiness
	}

	caser := cases.Title(language.Und)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	name = strings.Join(words, " ")

	name = fnrlRe.ReplaceAllString(name, "Funeral")
	name = svcRe.ReplaceAllString(name, "Services")
	name = memRe.ReplaceAllString(name, "Memorial")

	if legalSuffixRe.MatchString(name) || settledRe.MatchString(name) {
		return name
	}

	switch {
	case funeralRe.MatchString(name):
		if !homeEndRe.MatchString(name) {
			name += " Home"
		}
	case cremationRe.MatchString(name):
		if !servicesEndRe.MatchString(name) {
			name += " Services"
		}
	}

	return name
}
