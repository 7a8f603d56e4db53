package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrUnknownField is returned when a synonym points at a field that is not canonical
var ErrUnknownField = errors.New("unknown canonical field")

// DefaultSynonyms maps lower-cased source column spellings to canonical fields
var DefaultSynonyms = map[string]models.Field{
	"business name": models.FieldBusinessName,
	"business_name": models.FieldBusinessName,
	"businessname":  models.FieldBusinessName,
	"name":          models.FieldBusinessName,
	"company":       models.FieldBusinessName,
	"company name":  models.FieldBusinessName,

	"type":          models.FieldType,
	"business type": models.FieldType,
	"business_type": models.FieldType,
	"category":      models.FieldType,

	"address":      models.FieldAddress,
	"full address": models.FieldAddress,
	"full_address": models.FieldAddress,
	"location":     models.FieldAddress,

	"phone":        models.FieldPhone,
	"phone number": models.FieldPhone,
	"phone_number": models.FieldPhone,
	"telephone":    models.FieldPhone,
	"tel":          models.FieldPhone,

	"email":         models.FieldEmail,
	"email address": models.FieldEmail,
	"email_address": models.FieldEmail,
	"contact email": models.FieldEmail,

	"website":     models.FieldWebsite,
	"web":         models.FieldWebsite,
	"url":         models.FieldWebsite,
	"web address": models.FieldWebsite,
	"web_address": models.FieldWebsite,

	"contact":         models.FieldContactPerson,
	"contact person":  models.FieldContactPerson,
	"contact_person":  models.FieldContactPerson,
	"primary contact": models.FieldContactPerson,

	"social":       models.FieldSocialMedia,
	"social media": models.FieldSocialMedia,
	"social_media": models.FieldSocialMedia,
	"social links": models.FieldSocialMedia,
	"social_links": models.FieldSocialMedia,

	"size":          models.FieldSize,
	"business size": models.FieldSize,
	"company size":  models.FieldSize,
	"employees":     models.FieldSize,

	"rating":        models.FieldRating,
	"google rating": models.FieldRating,
	"google_rating": models.FieldRating,
	"review rating": models.FieldRating,
	"stars":         models.FieldRating,

	"state":    models.FieldState,
	"st":       models.FieldState,
	"province": models.FieldState,

	"city":     models.FieldCity,
	"town":     models.FieldCity,
	"locality": models.FieldCity,

	"source":      models.FieldSource,
	"data source": models.FieldSource,
	"data_source": models.FieldSource,
}

// synonymFile is the YAML layout of an extra synonyms file:
//
//	synonyms:
//	  funeral home name: Business Name
//	  zip state: State
type synonymFile struct {
	Synonyms map[string]string `yaml:"synonyms"`
}

// LoadSynonyms reads extra column synonyms from a YAML file
func LoadSynonyms(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var file synonymFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	return file.Synonyms, nil
}

// mergeSynonyms returns the default table extended with extra. Extra entries
// must target a canonical header (case-insensitive).
func mergeSynonyms(extra map[string]string) (map[string]models.Field, error) {
	merged := make(map[string]models.Field, len(DefaultSynonyms)+len(extra))
	for k, v := range DefaultSynonyms {
		merged[k] = v
	}
	for _, f := range models.Fields {
		merged[strings.ToLower(string(f))] = f
	}

	for spelling, target := range extra {
		field, ok := canonicalField(target)
		if !ok {
			return nil, fmt.Errorf("%w: %q (synonym %q)", ErrUnknownField, target, spelling)
		}
		merged[normalizeColumn(spelling)] = field
	}

	return merged, nil
}

func canonicalField(name string) (models.Field, bool) {
	for _, f := range models.Fields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, true
		}
	}
	return "", false
}

func normalizeColumn(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
