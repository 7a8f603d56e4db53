package listing

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/database"
	"github.com/Ramsey-B/lily/pkg/fingerprint"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/jmoiron/sqlx"
)

const table = "listings"

// batchSize bounds the rows per insert statement (postgres allows 65535 parameters)
const batchSize = 500

// fieldColumns are the listing columns in canonical field order
var fieldColumns = ectolinq.Map(models.Fields, models.Field.Key)

// Repository persists cleaned listings in postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new listing repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceAll swaps the stored listings for the output of run runID in a
// single transaction
func (r *Repository) ReplaceAll(ctx context.Context, runID string, listings []*models.Listing) error {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.ReplaceAll")
	defer span.End()

	err := database.WithTx(ctx, r.db, r.logger, func(tx *sqlx.Tx) error {
		query, args := database.NewDeleteBuilder().DeleteFrom(table).Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		for start := 0; start < len(listings); start += batchSize {
			end := min(start+batchSize, len(listings))
			query, args := insertQuery(runID, start, listings[start:end])
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("run_id", runID).Error("Failed to replace listings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store listings")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"count":  len(listings),
	}).Info("Stored listings")
	return nil
}

// insertQuery builds one upsert for listings, numbering positions from offset
func insertQuery(runID string, offset int, listings []*models.Listing) (string, []any) {
	ib := database.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(append([]string{"fingerprint", "position", "run_id"}, fieldColumns...)...)
	for i, l := range listings {
		values := []any{fingerprint.Listing(l), offset + i, runID}
		for _, f := range models.Fields {
			values = append(values, l.Get(f))
		}
		ib.Values(values...)
	}
	database.Upsert(ib, []string{"fingerprint"}, append([]string{"position", "run_id"}, fieldColumns...)...)
	return ib.Build()
}

// List returns every stored listing in pipeline output order
func (r *Repository) List(ctx context.Context) ([]*models.Listing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(fieldColumns...)
	sb.From(table)
	sb.OrderBy("position")

	query, args := sb.Build()
	var listings []*models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list listings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list listings")
	}

	return listings, nil
}

// Ping reports whether the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
