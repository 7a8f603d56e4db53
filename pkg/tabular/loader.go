// Package tabular reads source files and writes the cleaned dataset
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/jfyne/csvd"
	"github.com/pkg/errors"
)

// Loader reads a delimited file into a raw table. The delimiter is sniffed
// from the content, so comma, semicolon, tab and pipe files all load.
type Loader struct {
	logger ectologger.Logger
}

// NewLoader creates a new loader
func NewLoader(logger ectologger.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the file at path. The first row is the header. An empty file
// yields an empty table.
func (l *Loader) Load(ctx context.Context, path string) (*models.RawTable, error) {
	ctx, span := tracing.StartSpan(ctx, "tabular.Loader.Load")
	defer span.End()

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	table, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	l.logger.WithContext(ctx).WithFields(map[string]any{
		"path":    path,
		"columns": len(table.Columns),
		"rows":    table.Len(),
	}).Info("Loaded input file")

	return table, nil
}

// Read parses delimited content from r
func Read(r io.Reader) (*models.RawTable, error) {
	reader := csvd.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &models.RawTable{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read records")
	}

	return models.NewRawTable(header, rows), nil
}

// ReadListings loads a cleaned dataset written by WriteCSV
func ReadListings(path string) ([]*models.Listing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}

	var listings []*models.Listing
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "unable to read record")
		}
		listings = append(listings, models.ListingFromRow(header, row))
	}

	return listings, nil
}
