// Package schema maps heterogeneous source columns onto the canonical listing schema
package schema

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
)

// Reconciler renames source columns to canonical fields using a synonym table
type Reconciler struct {
	synonyms map[string]models.Field
	logger   ectologger.Logger
}

// Result is the outcome of reconciling a raw table
type Result struct {
	Listings []*models.Listing
	// Renamed counts source columns whose spelling differed from the canonical header
	Renamed int
	// Added lists canonical fields no source column supplied
	Added []models.Field
	// Dropped lists source columns with no canonical field
	Dropped []string
}

// NewReconciler creates a reconciler with the default synonyms plus extra
// (spelling -> canonical header)
func NewReconciler(logger ectologger.Logger, extra map[string]string) (*Reconciler, error) {
	synonyms, err := mergeSynonyms(extra)
	if err != nil {
		return nil, err
	}
	return &Reconciler{synonyms: synonyms, logger: logger}, nil
}

// columnPlan lists, per canonical field, the source columns that feed it in priority order
type columnPlan map[models.Field][]string

func (r *Reconciler) plan(columns []string) (columnPlan, int, []string) {
	plan := make(columnPlan)
	renamed := 0
	var dropped []string

	for _, col := range columns {
		field, ok := r.synonyms[normalizeColumn(col)]
		if !ok {
			dropped = append(dropped, col)
			continue
		}
		if models.IsField(col) {
			// exact canonical spelling outranks synonyms
			plan[field] = append([]string{col}, plan[field]...)
			continue
		}
		if !ectolinq.Contains(plan[field], col) {
			plan[field] = append(plan[field], col)
		}
		renamed++
	}

	return plan, renamed, dropped
}

// Reconcile converts every raw row into a listing. Values are copied verbatim;
// fields without a source value hold models.NotAvailable.
func (r *Reconciler) Reconcile(ctx context.Context, table *models.RawTable) *Result {
	ctx, span := tracing.StartSpan(ctx, "schema.Reconciler.Reconcile")
	defer span.End()

	result := &Result{Listings: make([]*models.Listing, 0, table.Len())}
	if table == nil {
		result.Added = models.Fields
		return result
	}

	plan, renamed, dropped := r.plan(table.Columns)
	result.Renamed = renamed
	result.Dropped = dropped
	result.Added = ectolinq.Filter(models.Fields, func(f models.Field) bool {
		return len(plan[f]) == 0
	})

	for _, row := range table.Rows {
		l := models.NewListing()
		for field, cols := range plan {
			for _, col := range cols {
				if v, ok := row[col]; ok && v != "" {
					l.Set(field, v)
					break
				}
			}
		}
		result.Listings = append(result.Listings, l)
	}

	log := r.logger.WithContext(ctx)
	if renamed > 0 {
		log.WithFields(map[string]any{
			"renamed": renamed,
		}).Infof("Renamed %d columns to canonical headers", renamed)
	}
	if len(result.Added) > 0 {
		log.WithField("fields", result.Added).Debug("Added missing canonical columns")
	}
	if len(dropped) > 0 {
		log.WithField("columns", dropped).Debug("Dropped unmapped source columns")
	}

	return result
}
