package normalizers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
)

var (
	emailRe     = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	emailFullRe = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	websiteRe   = regexp.MustCompile(`(?i)^https?://[a-z0-9.-]+\.[a-z]{2,}(:\d+)?([/?#]\S*)?$`)
)

// NormalizePhone formats a US phone number as (AAA) BBB-CCCC.
// Numbers with fewer than ten digits are returned trimmed and unformatted.
func NormalizePhone(s string) string {
	phone := strings.TrimSpace(s)
	if models.IsMissing(phone) {
		return models.NotAvailable
	}

	digits := DigitsOnly(phone)
	if len(digits) < 10 {
		return phone
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}

	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

// NormalizeEmail lower-cases an email address, pulling the first address out
// of surrounding text when needed
func NormalizeEmail(s string) string {
	email := strings.ToLower(strings.TrimSpace(s))
	if models.IsMissing(email) {
		return models.NotAvailable
	}
	email = strings.TrimPrefix(email, "mailto:")

	if emailFullRe.MatchString(email) {
		return email
	}
	if m := emailRe.FindString(email); m != "" {
		return m
	}
	return models.NotAvailable
}

// NormalizeWebsite returns an absolute http(s) URL without trailing slashes
func NormalizeWebsite(s string) string {
	url := strings.TrimSpace(s)
	if models.IsMissing(url) {
		return models.NotAvailable
	}

	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		url = "http://" + url
	}
	url = strings.TrimRight(url, "/")

	if !websiteRe.MatchString(url) {
		return models.NotAvailable
	}
	return url
}
