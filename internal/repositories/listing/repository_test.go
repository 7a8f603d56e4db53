package listing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/lily/pkg/database"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func testListing(name, state string) *models.Listing {
	l := models.NewListing()
	l.BusinessName = name
	l.State = state
	return l
}

func TestInsertQuery(t *testing.T) {
	query, args := insertQuery("run-1", 10, []*models.Listing{
		testListing("Oak Funeral Home", "OH"),
		testListing("Elm Mortuary", "TX"),
	})

	assert.True(t, strings.HasPrefix(query, "INSERT INTO listings (fingerprint, position, run_id, business_name, type,"))
	assert.Contains(t, query, "ON CONFLICT (fingerprint) DO UPDATE SET position = EXCLUDED.position")
	assert.Contains(t, query, "source = EXCLUDED.source")
	assert.Contains(t, query, "$32")

	perRow := 3 + len(models.Fields)
	require.Len(t, args, 2*perRow)
	assert.Equal(t, 10, args[1])
	assert.Equal(t, "run-1", args[2])
	assert.Equal(t, "Oak Funeral Home", args[3])
	assert.Equal(t, 11, args[perRow+1])
	assert.Equal(t, "Elm Mortuary", args[perRow+3])
}

func TestFieldColumns(t *testing.T) {
	assert.Len(t, fieldColumns, len(models.Fields))
	assert.Equal(t, "business_name", fieldColumns[0])
	assert.Contains(t, fieldColumns, "contact_person")
	assert.Contains(t, fieldColumns, "social_media")
}

func getTestDB(t *testing.T) *database.DatabaseInstance {
	t.Helper()
	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("DB_HOST not set")
	}

	cfg := database.Config{
		Host:     host,
		Port:     "5432",
		UserName: os.Getenv("DB_USER_NAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     "lily",
		SSLMode:  "disable",
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}

	db, err := database.Open(context.Background(), cfg, getTestLogger())
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "pg")
	require.NoError(t, database.NewMigrator(migrations, cfg.Name, getTestLogger()).Up(context.Background(), db.DB))
	return db
}

func TestRepository_ReplaceAll(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := NewRepository(db, getTestLogger())
	ctx := context.Background()

	t.Run("should store listings in order", func(t *testing.T) {
		listings := []*models.Listing{testListing("Zeta Funeral Home", "OH"), testListing("Alpha Mortuary", "TX")}
		require.NoError(t, repo.ReplaceAll(ctx, "run-1", listings))

		stored, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, listings[0], stored[0])
		assert.Equal(t, listings[1], stored[1])
	})

	t.Run("should replace the previous run", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, "run-2", []*models.Listing{testListing("Only Home", "CA")}))

		stored, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Only Home", stored[0].BusinessName)
	})

	t.Run("should accept an empty run", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, "run-3", nil))
		stored, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}
