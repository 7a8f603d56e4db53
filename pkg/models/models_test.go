package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "N/A", "nan", "NaN"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "Nancy", "n/a"} {
		assert.False(t, IsMissing(v), v)
	}
}

func TestIsField(t *testing.T) {
	assert.True(t, IsField("Business Name"))
	assert.True(t, IsField("Social Media"))
	assert.False(t, IsField("business name"))
	assert.False(t, IsField("Notes"))
}

func TestField_Key(t *testing.T) {
	assert.Equal(t, "business_name", FieldBusinessName.Key())
	assert.Equal(t, "social_media", FieldSocialMedia.Key())
	assert.Equal(t, "state", FieldState.Key())
}

func TestListing(t *testing.T) {
	t.Run("should start with every field unknown", func(t *testing.T) {
		l := NewListing()
		for _, f := range Fields {
			assert.Equal(t, NotAvailable, l.Get(f))
		}
	})

	t.Run("should render unknown values as nil in documents", func(t *testing.T) {
		l := NewListing()
		l.BusinessName = "Oak Funeral Home"

		doc := l.Document()
		assert.Len(t, doc, len(Fields))
		assert.Equal(t, "Oak Funeral Home", doc["business_name"])
		assert.Nil(t, doc["phone"])
	})

	t.Run("should rebuild a listing from its row", func(t *testing.T) {
		l := NewListing()
		l.BusinessName = "Oak Funeral Home"
		l.State = "OH"

		rebuilt := ListingFromRow(Headers(), l.Row())
		assert.Equal(t, l, rebuilt)
	})

	t.Run("should ignore short rows and unknown headers", func(t *testing.T) {
		l := ListingFromRow([]string{"Business Name", "Favorite Color", "State"}, []string{"Elm Mortuary", "blue"})
		assert.Equal(t, "Elm Mortuary", l.BusinessName)
		assert.Equal(t, NotAvailable, l.State)
	})

	t.Run("should copy on clone", func(t *testing.T) {
		l := NewListing()
		c := l.Clone()
		c.City = "Dayton"
		assert.Equal(t, NotAvailable, l.City)
	})
}

func TestNewRawTable(t *testing.T) {
	table := NewRawTable(
		[]string{"\ufeffName ", "Phone", "Name", ""},
		[][]string{
			{" Oak ", "", "Shadow", "x"},
			{"", " "},
			{"Elm"},
		},
	)

	assert.Equal(t, []string{"Name", "Phone", "Name", ""}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, RawRecord{"Name": "Oak"}, table.Rows[0])
	assert.Equal(t, RawRecord{"Name": "Elm"}, table.Rows[1])

	var nilTable *RawTable
	assert.Zero(t, nilTable.Len())
}

func TestSummarize(t *testing.T) {
	a := NewListing()
	a.BusinessName = "A"
	a.State = "OH"
	b := NewListing()
	b.BusinessName = "B"
	b.State = "OH"
	b.Type = "Mortuary"

	var stats Stats
	Summarize(&stats, []*Listing{a, b})

	assert.Equal(t, 2, stats.OutputRows)
	assert.Equal(t, map[string]int{"OH": 2}, stats.ByState)
	assert.Equal(t, map[string]int{"Mortuary": 1}, stats.ByType)
	assert.Empty(t, stats.BySource)
	assert.InDelta(t, 100.0, stats.FieldCompleteness["Business Name"], 0.001)
	assert.InDelta(t, 50.0, stats.FieldCompleteness["Type"], 0.001)
	assert.InDelta(t, 5.0/26.0*100, stats.Completeness, 0.001)

	var empty Stats
	Summarize(&empty, nil)
	assert.Zero(t, empty.Completeness)
	assert.Len(t, empty.FieldCompleteness, len(Fields))
}
