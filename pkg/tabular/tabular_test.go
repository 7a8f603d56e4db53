package tabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func sampleListings() []*models.Listing {
	a := models.NewListing()
	a.BusinessName = "Abc Funeral Home"
	a.Type = "Funeral Home"
	a.State = "IL"
	a.Address = "1 Main St, Springfield, IL 62701"

	b := models.NewListing()
	b.BusinessName = "Peace Cremation Services"
	b.Type = "Cremation Service"
	b.State = "TX"

	c := models.NewListing()
	c.BusinessName = "Rose Hill Cemetery"
	c.Type = "Hybrid (Funeral & Memorial) Of The Greater Area"

	return []*models.Listing{a, b, c}
}

func TestRead(t *testing.T) {
	t.Run("should read a comma separated file with ragged rows", func(t *testing.T) {
		input := "\ufeffName,Phone,City\nAbc,555-123-4567,Springfield\nXyz,,\nShort\n"
		table, err := Read(strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"Name", "Phone", "City"}, table.Columns)
		require.Equal(t, 3, table.Len())
		assert.Equal(t, models.RawRecord{"Name": "Abc", "Phone": "555-123-4567", "City": "Springfield"}, table.Rows[0])
		assert.Equal(t, models.RawRecord{"Name": "Xyz"}, table.Rows[1])
		assert.Equal(t, models.RawRecord{"Name": "Short"}, table.Rows[2])
	})

	t.Run("should sniff a tab delimiter", func(t *testing.T) {
		table, err := Read(strings.NewReader("Name\tPhone\nAbc\t555\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Phone"}, table.Columns)
		assert.Equal(t, "555", table.Rows[0]["Phone"])
	})

	t.Run("should return an empty table for an empty file", func(t *testing.T) {
		table, err := Read(strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, table.Len())
	})
}

func TestLoader_Load(t *testing.T) {
	t.Run("should fail for a missing file", func(t *testing.T) {
		_, err := NewLoader(newTestLogger()).Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("should load a file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.csv")
		require.NoError(t, os.WriteFile(path, []byte("Business Name,Phone\nAbc,555\n"), 0o644))

		table, err := NewLoader(newTestLogger()).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})
}

func TestWriteCSV(t *testing.T) {
	t.Run("should round trip through ReadListings", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out", "clean.csv")

		listings := sampleListings()
		require.NoError(t, WriteCSV(context.Background(), path, listings))

		read, err := ReadListings(path)
		require.NoError(t, err)
		assert.Equal(t, listings, read)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files must not be left behind")
	})

	t.Run("should write the canonical header for no rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, WriteCSV(context.Background(), path, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, strings.Join(models.Headers(), ",")+"\n", string(data))
	})

	t.Run("should fail when the target is a directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "taken")
		require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

		err := WriteCSV(context.Background(), target, sampleListings())
		assert.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file must be removed on failure")
	})
}

func TestPlanSheets(t *testing.T) {
	plans := PlanSheets(sampleListings())

	names := make([]string, len(plans))
	for i, p := range plans {
		names[i] = p.Name
		assert.LessOrEqual(t, len([]rune(p.Name)), 31)
	}

	assert.Equal(t, []string{
		"All Data",
		"State - IL",
		"State - TX",
		"Type - Cremation Service",
		"Type - Funeral Home",
		"Type - Hybrid (Funeral & Memori",
	}, names)
	assert.Len(t, plans[0].Listings, 3)
	assert.Len(t, plans[1].Listings, 1)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Type - A-B", SheetName("Type - A/B"))
	assert.Equal(t, 31, len([]rune(SheetName(strings.Repeat("x", 40)))))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteXLSX(context.Background(), path, sampleListings()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Business Name", workbook.GetCellValue("All Data", "A1"))
	assert.NotEmpty(t, workbook.GetCellValue("All Data", "A2"))
}

func TestRenderReport(t *testing.T) {
	stats := models.Stats{InputRows: 5, ExactDuplicates: 1, FuzzyDuplicates: 1}
	models.Summarize(&stats, sampleListings())

	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, stats))

	out := buf.String()
	assert.Contains(t, out, "Total Businesses: 3\n")
	assert.Contains(t, out, "Input rows: 5\n")
	assert.Contains(t, out, "Breakdown by State:\nIL: 1\nTX: 1\n")
	assert.Contains(t, out, "Business Name: 100.0%\n")
	assert.Contains(t, out, "Email: 0.0%\n")
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, WriteReport(context.Background(), path, models.Stats{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Funeral Services Data Collection Summary"))
}
