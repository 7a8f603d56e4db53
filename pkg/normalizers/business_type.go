package normalizers

import (
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
)

// Business types assigned by InferType
const (
	TypeCremation      = "Cremation Service"
	TypeHybrid         = "Hybrid (Funeral & Memorial)"
	TypeMemorial       = "Memorial Service"
	TypeMortuary       = "Mortuary"
	TypeCemetery       = "Cemetery"
	TypeChapel         = "Funeral Chapel"
	TypeFuneralHome    = "Funeral Home"
	TypeFuneralDefault = "Funeral Services"
)

// InferType returns current when it is known, otherwise a type derived from
// keywords in the business name. Earlier keywords win.
func InferType(current, businessName string) string {
	if !models.IsMissing(current) {
		return current
	}

	name := strings.ToLower(businessName)
	switch {
	case strings.Contains(name, "cremation"), strings.Contains(name, "crematory"):
		return TypeCremation
	case strings.Contains(name, "memorial"):
		if strings.Contains(name, "funeral") {
			return TypeHybrid
		}
		return TypeMemorial
	case strings.Contains(name, "mortuary"):
		return TypeMortuary
	case strings.Contains(name, "cemetery"):
		return TypeCemetery
	case strings.Contains(name, "chapel"):
		return TypeChapel
	case strings.Contains(name, "funeral"):
		return TypeFuneralHome
	default:
		return TypeFuneralDefault
	}
}

// NormalizeSocialMedia keeps a known social media value and fills the sentinel otherwise
func NormalizeSocialMedia(s string) string {
	return Sentinel(s)
}
