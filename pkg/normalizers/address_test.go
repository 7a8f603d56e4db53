package normalizers

import (
	"testing"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("should tag a comma separated address", func(t *testing.T) {
		parts, ok := ParseAddress("100 N Main St, Suite 4, Springfield, IL 62701")
		require.True(t, ok)
		assert.Equal(t, AddressParts{
			Number:         "100",
			PreDirectional: "N",
			StreetName:     "Main",
			StreetSuffix:   "St",
			UnitType:       "Suite",
			UnitID:         "4",
			City:           "Springfield",
			State:          "IL",
			Zip:            "62701",
		}, parts)
	})

	t.Run("should split the city from a single line address", func(t *testing.T) {
		parts, ok := ParseAddress("123 main street springfield il 62701")
		require.True(t, ok)
		assert.Equal(t, "123", parts.Number)
		assert.Equal(t, "main", parts.StreetName)
		assert.Equal(t, "street", parts.StreetSuffix)
		assert.Equal(t, "springfield", parts.City)
		assert.Equal(t, "IL", parts.State)
		assert.Equal(t, "62701", parts.Zip)
	})

	t.Run("should map a full state name", func(t *testing.T) {
		parts, ok := ParseAddress("9 Elm Rd, Charleston, West Virginia 25301")
		require.True(t, ok)
		assert.Equal(t, "WV", parts.State)
		assert.Equal(t, "Charleston", parts.City)
	})

	t.Run("should reject free text", func(t *testing.T) {
		_, ok := ParseAddress("Near the old mill")
		assert.False(t, ok)
	})
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "123 Main St, Springfield, IL 62701", "123 Main St, Springfield, IL 62701"},
		{"single line", "123 main street springfield il 62701", "123 main street, springfield, IL 62701"},
		{"unit moves to its own segment", "123 Main St Suite 100, Springfield, Illinois 62701", "123 Main St, Suite 100, Springfield, IL 62701"},
		{"hash unit", "55 Oak Ave #2, Austin, TX 78701", "55 Oak Ave, #2, Austin, TX 78701"},
		{"zip in its own segment", "7 Pine Dr, Dallas, TX, 75201", "7 Pine Dr, Dallas, TX 75201"},
		{"country dropped", "7 Pine Dr, Dallas, TX 75201, USA", "7 Pine Dr, Dallas, TX 75201"},
		{"street without suffix", "350 Broadway, New York, NY 10013", "350 Broadway, New York, NY 10013"},
		{"city and state only", "Springfield IL", "Springfield, IL"},
		{"extra whitespace", "  12   Elm  St ,  Salem ,  OR   97301 ", "12 Elm St, Salem, OR 97301"},
		{"unparseable kept", "  Near the old mill ", "Near the old mill"},
		{"missing", "", models.NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAddress(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeAddress(got))
		})
	}
}

func TestExtractState(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123 Main St, Springfield, IL 62701", "IL"},
		{"1 A St, Austin, TX, USA", "TX"},
		{"5 Elm Rd, Richmond, virginia", "VA"},
		{"5 Elm Rd, Charleston, West Virginia", "WV"},
		{"1 Capitol St, Washington, District of Columbia", "DC"},
		{"Nowhere in particular", models.NotAvailable},
		{models.NotAvailable, models.NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractState(tt.input))
		})
	}
}

func TestExtractCity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123 Main St, Springfield, IL 62701", "Springfield"},
		{"123 Main St, Suite 100, Springfield, IL 62701", "Springfield"},
		{"Foo, Bar, Baz", "Bar"},
		{"Nowhere", models.NotAvailable},
		{"", models.NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractCity(tt.input))
		})
	}
}

func TestIsStateCode(t *testing.T) {
	assert.True(t, IsStateCode("OH"))
	assert.True(t, IsStateCode("DC"))
	assert.False(t, IsStateCode("oh"))
	assert.False(t, IsStateCode("ZZ"))
	assert.False(t, IsStateCode("OHIO"))
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "IL", NormalizeState("il"))
	assert.Equal(t, "TX", NormalizeState(" Texas "))
	assert.Equal(t, "NY", NormalizeState("new   york"))
	assert.Equal(t, "DC", NormalizeState("D.C."))
	assert.Equal(t, models.NotAvailable, NormalizeState("ZZ"))
	assert.Equal(t, models.NotAvailable, NormalizeState("Narnia"))
	assert.Equal(t, models.NotAvailable, NormalizeState(""))
}
