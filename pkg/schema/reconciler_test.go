package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T, extra map[string]string) *Reconciler {
	t.Helper()
	r, err := NewReconciler(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}), extra)
	require.NoError(t, err)
	return r
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("should rename synonyms and fill missing fields", func(t *testing.T) {
		table := models.NewRawTable(
			[]string{"Company Name", "Telephone", "Web", "Favorite Color"},
			[][]string{{"Oak Funeral Home", "555 111 2222", "oak.com", "blue"}},
		)

		result := newTestReconciler(t, nil).Reconcile(ctx, table)

		require.Len(t, result.Listings, 1)
		l := result.Listings[0]
		assert.Equal(t, "Oak Funeral Home", l.BusinessName)
		assert.Equal(t, "555 111 2222", l.Phone)
		assert.Equal(t, "oak.com", l.Website)
		assert.Equal(t, models.NotAvailable, l.Address)

		assert.Equal(t, 3, result.Renamed)
		assert.Equal(t, []string{"Favorite Color"}, result.Dropped)
		assert.Len(t, result.Added, len(models.Fields)-3)
		assert.NotContains(t, result.Added, models.FieldPhone)
		assert.Contains(t, result.Added, models.FieldState)
	})

	t.Run("should not count canonical headers as renamed", func(t *testing.T) {
		table := models.NewRawTable(models.Headers(), nil)
		result := newTestReconciler(t, nil).Reconcile(ctx, table)
		assert.Zero(t, result.Renamed)
		assert.Empty(t, result.Added)
		assert.Empty(t, result.Listings)
	})

	t.Run("should match spellings case and space insensitively", func(t *testing.T) {
		table := models.NewRawTable([]string{"  PHONE   NUMBER "}, [][]string{{"555"}})
		result := newTestReconciler(t, nil).Reconcile(ctx, table)
		assert.Equal(t, "555", result.Listings[0].Phone)
	})

	t.Run("should prefer the canonical column on collision", func(t *testing.T) {
		table := models.NewRawTable(
			[]string{"Name", "Business Name"},
			[][]string{
				{"Synonym Value", "Canonical Value"},
				{"Synonym Value", ""},
			},
		)
		result := newTestReconciler(t, nil).Reconcile(ctx, table)
		require.Len(t, result.Listings, 2)
		assert.Equal(t, "Canonical Value", result.Listings[0].BusinessName)
		assert.Equal(t, "Synonym Value", result.Listings[1].BusinessName)
	})

	t.Run("should take the first non-empty synonym in source order", func(t *testing.T) {
		table := models.NewRawTable(
			[]string{"Tel", "Telephone"},
			[][]string{{"", "555-000-1111"}, {"555-222-3333", "555-000-1111"}},
		)
		result := newTestReconciler(t, nil).Reconcile(ctx, table)
		assert.Equal(t, "555-000-1111", result.Listings[0].Phone)
		assert.Equal(t, "555-222-3333", result.Listings[1].Phone)
	})

	t.Run("should handle a nil table", func(t *testing.T) {
		result := newTestReconciler(t, nil).Reconcile(ctx, nil)
		assert.Empty(t, result.Listings)
		assert.Equal(t, models.Fields, result.Added)
	})

	t.Run("should use extra synonyms", func(t *testing.T) {
		table := models.NewRawTable([]string{"Parlor"}, [][]string{{"Elm Mortuary"}})
		result := newTestReconciler(t, map[string]string{"parlor": "business name"}).Reconcile(ctx, table)
		assert.Equal(t, "Elm Mortuary", result.Listings[0].BusinessName)
		assert.Empty(t, result.Dropped)
	})
}

func TestNewReconciler(t *testing.T) {
	t.Run("should reject synonyms for unknown fields", func(t *testing.T) {
		_, err := NewReconciler(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}), map[string]string{"x": "Favorite Color"})
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestLoadSynonyms(t *testing.T) {
	t.Run("should read a YAML synonyms file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "synonyms.yaml")
		require.NoError(t, os.WriteFile(path, []byte("synonyms:\n  funeral home name: Business Name\n  zip state: State\n"), 0o644))

		extra, err := LoadSynonyms(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"funeral home name": "Business Name", "zip state": "State"}, extra)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := LoadSynonyms(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("should fail on malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("synonyms: [unclosed"), 0o644))
		_, err := LoadSynonyms(path)
		assert.Error(t, err)
	})
}
