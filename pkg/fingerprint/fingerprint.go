package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Ramsey-B/lily/pkg/models"
)

// Generate creates a deterministic fingerprint for flat record data.
// The fingerprint is a SHA256 hash of the canonicalized JSON.
func Generate(data map[string]any) string {
	hash := sha256.Sum256([]byte(canonicalize(data)))
	return hex.EncodeToString(hash[:])
}

// Listing fingerprints every canonical field of a listing. Two listings share
// a fingerprint only when they are identical field for field.
func Listing(l *models.Listing) string {
	return Generate(l.Map())
}

// canonicalize writes the map with sorted keys
func canonicalize(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		keyJSON, _ := json.Marshal(k)
		valueJSON, _ := json.Marshal(data[k])
		b.Write(keyJSON)
		b.WriteString(":")
		b.Write(valueJSON)
	}
	b.WriteString("}")
	return b.String()
}
