package normalizers

import (
	"regexp"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
)

// stateNameList is ordered so that extraction is deterministic
var stateNameList = []struct {
	name string
	code string
}{
	{"alabama", "AL"}, {"alaska", "AK"}, {"arizona", "AZ"}, {"arkansas", "AR"},
	{"california", "CA"}, {"colorado", "CO"}, {"connecticut", "CT"}, {"delaware", "DE"},
	{"florida", "FL"}, {"georgia", "GA"}, {"hawaii", "HI"}, {"idaho", "ID"},
	{"illinois", "IL"}, {"indiana", "IN"}, {"iowa", "IA"}, {"kansas", "KS"},
	{"kentucky", "KY"}, {"louisiana", "LA"}, {"maine", "ME"}, {"maryland", "MD"},
	{"massachusetts", "MA"}, {"michigan", "MI"}, {"minnesota", "MN"}, {"mississippi", "MS"},
	{"missouri", "MO"}, {"montana", "MT"}, {"nebraska", "NE"}, {"nevada", "NV"},
	{"new hampshire", "NH"}, {"new jersey", "NJ"}, {"new mexico", "NM"}, {"new york", "NY"},
	{"north carolina", "NC"}, {"north dakota", "ND"}, {"ohio", "OH"}, {"oklahoma", "OK"},
	{"oregon", "OR"}, {"pennsylvania", "PA"}, {"rhode island", "RI"}, {"south carolina", "SC"},
	{"south dakota", "SD"}, {"tennessee", "TN"}, {"texas", "TX"}, {"utah", "UT"},
	{"vermont", "VT"}, {"virginia", "VA"}, {"washington", "WA"}, {"west virginia", "WV"},
	{"wisconsin", "WI"}, {"wyoming", "WY"}, {"district of columbia", "DC"},
}

var (
	stateNames     = make(map[string]string, len(stateNameList))
	stateCodes     = make(map[string]bool, len(stateNameList))
	stateNameRes   = make([]*regexp.Regexp, len(stateNameList))
	stateBeforeZip = regexp.MustCompile(`,\s*([A-Z]{2})\s*\d{5}`)
	stateBeforeSep = regexp.MustCompile(`,\s*([A-Z]{2}),`)
	cityBeforeCode = regexp.MustCompile(`,\s*([^,]+),\s*([A-Z]{2})\b`)
)

func init() {
	for i, s := range stateNameList {
		stateNames[s.name] = s.code
		stateCodes[s.code] = true
		stateNameRes[i] = regexp.MustCompile(`,\s*` + s.name + `\b`)
	}
}

// IsStateCode reports whether s is a two-letter US postal code (50 states and DC)
func IsStateCode(s string) bool {
	return len(s) == 2 && stateCodes[s]
}

// NormalizeState maps a state code or full state name to its postal code.
// Anything else becomes models.NotAvailable.
func NormalizeState(s string) string {
	v := strings.TrimSpace(strings.ReplaceAll(s, ".", ""))
	if models.IsMissing(v) {
		return models.NotAvailable
	}
	if len(v) == 2 {
		if code := strings.ToUpper(v); IsStateCode(code) {
			return code
		}
		return models.NotAvailable
	}
	if code, ok := stateNames[strings.ToLower(CollapseWhitespace(v))]; ok {
		return code
	}
	return models.NotAvailable
}

// NormalizeCity collapses whitespace and maps blanks to models.NotAvailable
func NormalizeCity(s string) string {
	v := CollapseWhitespace(s)
	if models.IsMissing(v) {
		return models.NotAvailable
	}
	return v
}

// ExtractState finds the state in a formatted address: a code before a zip,
// then a code between commas, then a full state name after a comma.
func ExtractState(address string) string {
	if models.IsMissing(address) {
		return models.NotAvailable
	}

	for _, re := range []*regexp.Regexp{stateBeforeZip, stateBeforeSep} {
		for _, m := range re.FindAllStringSubmatch(address, -1) {
			if stateCodes[m[1]] {
				return m[1]
			}
		}
	}

	// the right-most state name wins: "Washington, District of Columbia" is DC
	lower := strings.ToLower(address)
	best, bestAt := "", -1
	for i, re := range stateNameRes {
		locs := re.FindAllStringIndex(lower, -1)
		if len(locs) == 0 {
			continue
		}
		if at := locs[len(locs)-1][0]; at > bestAt {
			best, bestAt = stateNameList[i].code, at
		}
	}
	if best != "" {
		return best
	}

	if parts, ok := ParseAddress(address); ok && parts.State != "" {
		return parts.State
	}

	return models.NotAvailable
}

// ExtractCity takes the comma segment before the state code, falling back to
// the second-to-last comma segment.
func ExtractCity(address string) string {
	if models.IsMissing(address) {
		return models.NotAvailable
	}

	for _, m := range cityBeforeCode.FindAllStringSubmatch(address, -1) {
		if stateCodes[m[2]] {
			if city := strings.TrimSpace(m[1]); city != "" {
				return city
			}
		}
	}

	parts := strings.Split(address, ",")
	if len(parts) >= 2 {
		if city := strings.TrimSpace(parts[len(parts)-2]); city != "" {
			return city
		}
	}

	return models.NotAvailable
}
