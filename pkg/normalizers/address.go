package normalizers

import (
	"regexp"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
)

// AddressParts is a US street address broken into its grammar components
type AddressParts struct {
	Number          string `json:"number,omitempty"`
	PreDirectional  string `json:"pre_directional,omitempty"`
	StreetName      string `json:"street_name,omitempty"`
	StreetSuffix    string `json:"street_suffix,omitempty"`
	PostDirectional string `json:"post_directional,omitempty"`
	UnitType        string `json:"unit_type,omitempty"`
	UnitID          string `json:"unit_id,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Zip             string `json:"zip,omitempty"`
}

var (
	zipRe         = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	houseNumberRe = regexp.MustCompile(`^\d+[A-Za-z]?(-\d+[A-Za-z]?)?$`)
	hashUnitRe    = regexp.MustCompile(`^#\s*([A-Za-z0-9-]+)$`)
)

var countries = map[string]bool{
	"us": true, "usa": true, "u.s.": true, "u.s.a.": true, "united states": true, "united states of america": true,
}

var directionals = map[string]bool{
	"n": true, "s": true, "e": true, "w": true, "ne": true, "nw": true, "se": true, "sw": true,
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
}

var streetSuffixes = map[string]bool{
	"alley": true, "aly": true, "ave": true, "av": true, "avenue": true, "bend": true, "blvd": true,
	"boulevard": true, "byp": true, "bypass": true, "cir": true, "circle": true, "ct": true,
	"court": true, "cove": true, "cv": true, "crossing": true, "xing": true, "dr": true,
	"drive": true, "expy": true, "expressway": true, "fwy": true, "freeway": true, "hwy": true,
	"highway": true, "ln": true, "lane": true, "loop": true, "pike": true, "pkwy": true,
	"parkway": true, "pl": true, "place": true, "plz": true, "plaza": true, "rd": true,
	"road": true, "row": true, "run": true, "sq": true, "square": true, "st": true,
	"street": true, "ter": true, "terrace": true, "trl": true, "trail": true, "tpke": true,
	"turnpike": true, "way": true, "walk": true,
}

var unitDesignators = map[string]bool{
	"apt": true, "apartment": true, "bldg": true, "building": true, "dept": true,
	"fl": true, "floor": true, "lot": true, "rm": true, "room": true, "ste": true,
	"suite": true, "unit": true, "spc": true, "space": true,
}

func isDirectional(tok string) bool {
	return directionals[strings.ToLower(strings.TrimSuffix(tok, "."))]
}

func isStreetSuffix(tok string) bool {
	return streetSuffixes[strings.ToLower(strings.TrimSuffix(tok, "."))]
}

func isUnitDesignator(tok string) bool {
	return unitDesignators[strings.ToLower(strings.TrimSuffix(tok, "."))]
}

// ParseAddress tags a free-form US address. It reports false when the input
// does not look like an address it can rebuild without losing text.
func ParseAddress(s string) (AddressParts, bool) {
	var parts AddressParts

	segments := splitSegments(s)
	if len(segments) == 0 {
		return parts, false
	}
	if countries[strings.ToLower(segments[len(segments)-1])] {
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return parts, false
	}

	// state and zip close the address, possibly sharing a segment with the city
	last := strings.Fields(segments[len(segments)-1])
	last, parts.Zip = takeZip(last)
	last, parts.State = takeState(last)
	if parts.State == "" && parts.Zip != "" && len(last) == 0 && len(segments) > 1 {
		segments = segments[:len(segments)-1]
		last, parts.State = takeState(strings.Fields(segments[len(segments)-1]))
	}
	segments[len(segments)-1] = strings.Join(last, " ")
	if segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	hasTail := parts.State != "" || parts.Zip != ""

	if len(segments) == 0 {
		return parts, hasTail
	}

	// a single remaining segment holds the street line and city together
	if len(segments) == 1 {
		tokens := strings.Fields(segments[0])
		street := parts
		rest, ok := parseStreet(tokens, &street, true)
		if !ok {
			if !hasTail || !isCityTokens(tokens) {
				return parts, false
			}
			parts.City = strings.Join(tokens, " ")
			return parts, true
		}
		street.City = strings.Join(rest, " ")
		return street, true
	}

	rest, ok := parseStreet(strings.Fields(segments[0]), &parts, false)
	if !ok || len(rest) > 0 {
		return parts, false
	}

	middle := segments[1:]
	city := middle[len(middle)-1]
	var probe AddressParts
	if hasTail || !parseUnit(strings.Fields(city), &probe) {
		parts.City = city
		middle = middle[:len(middle)-1]
	}
	for _, seg := range middle {
		if parts.UnitType != "" || !parseUnit(strings.Fields(seg), &parts) {
			return parts, false
		}
	}

	return parts, true
}

// parseStreet consumes the street line from tokens. When withCity is set the
// street must end in a recognizable suffix (or unit) so the trailing tokens can
// be handed back as the city.
func parseStreet(tokens []string, parts *AddressParts, withCity bool) ([]string, bool) {
	if len(tokens) == 0 {
		return nil, false
	}

	i := 0
	if houseNumberRe.MatchString(tokens[0]) {
		parts.Number = tokens[0]
		i++
	} else if withCity {
		return nil, false
	}

	if i < len(tokens)-1 && isDirectional(tokens[i]) {
		parts.PreDirectional = tokens[i]
		i++
	}

	// street name runs to the last suffix before any unit designator
	end := len(tokens)
	for j := i; j < len(tokens); j++ {
		if isUnitDesignator(tokens[j]) || strings.HasPrefix(tokens[j], "#") {
			end = j
			break
		}
	}

	suffixAt := -1
	for j := end - 1; j > i; j-- {
		if isStreetSuffix(tokens[j]) {
			suffixAt = j
			break
		}
	}

	var rest []string
	switch {
	case suffixAt > i:
		parts.StreetName = strings.Join(tokens[i:suffixAt], " ")
		parts.StreetSuffix = tokens[suffixAt]
		next := suffixAt + 1
		if next < end && isDirectional(tokens[next]) && (withCity && next < end-1 || !withCity && next == end-1) {
			parts.PostDirectional = tokens[next]
			next++
		}
		if withCity {
			rest = tokens[next:end]
		} else if next < end {
			parts.StreetName = strings.Join(tokens[i:end], " ")
			parts.StreetSuffix = ""
			parts.PostDirectional = ""
		}
	case withCity && end == len(tokens):
		return nil, false
	default:
		parts.StreetName = strings.Join(tokens[i:end], " ")
	}

	if parts.StreetName == "" && parts.Number == "" {
		return nil, false
	}

	if end < len(tokens) {
		unitTokens := tokens[end:]
		if withCity {
			// unit designator and its identifier, then the city
			n := 2
			if strings.HasPrefix(unitTokens[0], "#") && len(unitTokens[0]) > 1 {
				n = 1
			}
			if len(unitTokens) < n {
				return nil, false
			}
			if !parseUnit(unitTokens[:n], parts) {
				return nil, false
			}
			rest = unitTokens[n:]
		} else if !parseUnit(unitTokens, parts) {
			return nil, false
		}
	}

	return rest, true
}

func parseUnit(tokens []string, parts *AddressParts) bool {
	switch len(tokens) {
	case 1:
		if m := hashUnitRe.FindStringSubmatch(tokens[0]); m != nil {
			parts.UnitType = "#"
			parts.UnitID = m[1]
			return true
		}
	case 2:
		if tokens[0] == "#" {
			parts.UnitType = "#"
			parts.UnitID = tokens[1]
			return true
		}
		if isUnitDesignator(tokens[0]) {
			parts.UnitType = tokens[0]
			parts.UnitID = tokens[1]
			return true
		}
	}
	return false
}

func takeZip(tokens []string) ([]string, string) {
	if len(tokens) > 0 && zipRe.MatchString(tokens[len(tokens)-1]) {
		return tokens[:len(tokens)-1], tokens[len(tokens)-1]
	}
	return tokens, ""
}

// takeState removes a trailing state code or full state name
func takeState(tokens []string) ([]string, string) {
	if len(tokens) == 0 {
		return tokens, ""
	}
	lastTok := strings.TrimSuffix(tokens[len(tokens)-1], ".")
	if code := strings.ToUpper(lastTok); IsStateCode(code) {
		return tokens[:len(tokens)-1], code
	}
	// longest full name first: "west virginia" before "virginia"
	for n := 4; n >= 1; n-- {
		if n > len(tokens) {
			continue
		}
		name := strings.ToLower(strings.Join(tokens[len(tokens)-n:], " "))
		if code, ok := stateNames[name]; ok {
			return tokens[:len(tokens)-n], code
		}
	}
	return tokens, ""
}

func isCityTokens(tokens []string) bool {
	for _, t := range tokens {
		for _, r := range t {
			if r >= '0' && r <= '9' {
				return false
			}
		}
	}
	return len(tokens) > 0
}

func splitSegments(s string) []string {
	raw := strings.Split(s, ",")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		seg = CollapseWhitespace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// Street returns the street line without unit
func (p AddressParts) Street() string {
	return joinNonEmpty(" ", p.Number, p.PreDirectional, p.StreetName, p.StreetSuffix, p.PostDirectional)
}

// Unit returns the unit designator and identifier
func (p AddressParts) Unit() string {
	if p.UnitType == "" || p.UnitID == "" {
		return ""
	}
	if p.UnitType == "#" {
		return "#" + p.UnitID
	}
	return p.UnitType + " " + p.UnitID
}

// String rebuilds the address as "<street>, <unit>, <city>, <state> <zip>" omitting empty segments
func (p AddressParts) String() string {
	return joinNonEmpty(", ", p.Street(), p.Unit(), p.City, joinNonEmpty(" ", p.State, p.Zip))
}

func joinNonEmpty(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// NormalizeAddress parses and rebuilds an address. Unparseable input is
// returned trimmed; unknown input becomes models.NotAvailable.
func NormalizeAddress(s string) string {
	address := strings.TrimSpace(s)
	if models.IsMissing(address) {
		return models.NotAvailable
	}

	parts, ok := ParseAddress(address)
	if !ok {
		return address
	}
	rebuilt := parts.String()
	if rebuilt == "" {
		return address
	}
	return rebuilt
}
