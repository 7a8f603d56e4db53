package models

import "strings"

// NotAvailable is the sentinel stored in any canonical field whose value is unknown
const NotAvailable = "N/A"

// UnknownBusiness replaces a missing business name
const UnknownBusiness = "Unknown Business"

// Field is a canonical listing field. Its value is the export header.
type Field string

const (
	FieldBusinessName  Field = "Business Name"
	FieldType          Field = "Type"
	FieldAddress       Field = "Address"
	FieldPhone         Field = "Phone"
	FieldEmail         Field = "Email"
	FieldWebsite       Field = "Website"
	FieldContactPerson Field = "Contact Person"
	FieldSocialMedia   Field = "Social Media"
	FieldSize          Field = "Size"
	FieldRating        Field = "Rating"
	FieldState         Field = "State"
	FieldCity          Field = "City"
	FieldSource        Field = "Source"
)

// Fields lists every canonical field in export order
var Fields = []Field{
	FieldBusinessName,
	FieldType,
	FieldAddress,
	FieldPhone,
	FieldEmail,
	FieldWebsite,
	FieldContactPerson,
	FieldSocialMedia,
	FieldSize,
	FieldRating,
	FieldState,
	FieldCity,
	FieldSource,
}

// Headers returns the export header row
func Headers() []string {
	headers := make([]string, len(Fields))
	for i, f := range Fields {
		headers[i] = string(f)
	}
	return headers
}

// Key returns the field's JSON and column name, e.g. "business_name"
func (f Field) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(f)), " ", "_")
}

// IsField reports whether name is exactly a canonical header
func IsField(name string) bool {
	for _, f := range Fields {
		if string(f) == name {
			return true
		}
	}
	return false
}

// IsMissing reports whether a cell value counts as unknown
func IsMissing(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" || v == NotAvailable {
		return true
	}
	return strings.EqualFold(v, "nan")
}

// Listing is a canonical funeral-service business record
type Listing struct {
	BusinessName  string `json:"business_name" db:"business_name"`
	Type          string `json:"type" db:"type"`
	Address       string `json:"address" db:"address"`
	Phone         string `json:"phone" db:"phone"`
	Email         string `json:"email" db:"email"`
	Website       string `json:"website" db:"website"`
	ContactPerson string `json:"contact_person" db:"contact_person"`
	SocialMedia   string `json:"social_media" db:"social_media"`
	Size          string `json:"size" db:"size"`
	Rating        string `json:"rating" db:"rating"`
	State         string `json:"state" db:"state"`
	City          string `json:"city" db:"city"`
	Source        string `json:"source" db:"source"`
}

// NewListing returns a listing with every field set to NotAvailable
func NewListing() *Listing {
	l := &Listing{}
	for _, f := range Fields {
		l.Set(f, NotAvailable)
	}
	return l
}

func (l *Listing) ref(f Field) *string {
	switch f {
	case FieldBusinessName:
		return &l.BusinessName
	case FieldType:
		return &l.Type
	case FieldAddress:
		return &l.Address
	case FieldPhone:
		return &l.Phone
	case FieldEmail:
		return &l.Email
	case FieldWebsite:
		return &l.Website
	case FieldContactPerson:
		return &l.ContactPerson
	case FieldSocialMedia:
		return &l.SocialMedia
	case FieldSize:
		return &l.Size
	case FieldRating:
		return &l.Rating
	case FieldState:
		return &l.State
	case FieldCity:
		return &l.City
	case FieldSource:
		return &l.Source
	}
	return nil
}

// Get returns the value of a canonical field, or "" for an unknown field
func (l *Listing) Get(f Field) string {
	if p := l.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns a canonical field. Unknown fields are ignored.
func (l *Listing) Set(f Field, value string) {
	if p := l.ref(f); p != nil {
		*p = value
	}
}

// Row returns the field values in export order
func (l *Listing) Row() []string {
	row := make([]string, len(Fields))
	for i, f := range Fields {
		row[i] = l.Get(f)
	}
	return row
}

// Map returns the listing keyed by export header
func (l *Listing) Map() map[string]any {
	m := make(map[string]any, len(Fields))
	for _, f := range Fields {
		m[string(f)] = l.Get(f)
	}
	return m
}

// Document returns the listing keyed by JSON key with unknown values as nil
func (l *Listing) Document() map[string]any {
	m := make(map[string]any, len(Fields))
	for _, f := range Fields {
		if v := l.Get(f); !IsMissing(v) {
			m[f.Key()] = v
		} else {
			m[f.Key()] = nil
		}
	}
	return m
}

// Clone returns a copy of the listing
func (l *Listing) Clone() *Listing {
	c := *l
	return &c
}

// ListingFromRow builds a listing from a header-aligned row. Missing cells become NotAvailable.
func ListingFromRow(headers, row []string) *Listing {
	l := NewListing()
	for i, h := range headers {
		if i >= len(row) {
			break
		}
		if IsMissing(row[i]) {
			continue
		}
		l.Set(Field(h), strings.TrimSpace(row[i]))
	}
	return l
}
