package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/normalizers"
	"github.com/Ramsey-B/lily/pkg/tracing"
)

// fieldStep canonicalizes one field with a chain of registered normalizers
type fieldStep struct {
	field       models.Field
	normalizers []string
}

// canonicalSteps run in order on every row. Address precedes State and City
// so the fallbacks read the rebuilt address.
var canonicalSteps = []fieldStep{
	{models.FieldBusinessName, []string{"business_name"}},
	{models.FieldAddress, []string{"address"}},
	{models.FieldState, []string{"state"}},
	{models.FieldCity, []string{"city"}},
	{models.FieldPhone, []string{"phone"}},
	{models.FieldEmail, []string{"email"}},
	{models.FieldWebsite, []string{"website"}},
	{models.FieldType, []string{"sentinel"}},
	{models.FieldContactPerson, []string{"collapse_whitespace", "sentinel"}},
	{models.FieldSize, []string{"sentinel"}},
	{models.FieldRating, []string{"sentinel"}},
	{models.FieldSource, []string{"sentinel"}},
}

// RowFailure records a canonicalizer that panicked on one row. The field keeps
// its previous value.
type RowFailure struct {
	Row   int
	Field models.Field
	Err   string
}

// canonicalize rewrites every listing in place. Rows are independent, so they
// may be spread over workers; output order always matches input order.
func (p *Pipeline) canonicalize(ctx context.Context, listings []*models.Listing) ([]*models.Listing, []RowFailure) {
	_, span := tracing.StartSpan(ctx, "pipeline.Pipeline.canonicalize")
	defer span.End()

	perRow := make([][]RowFailure, len(listings))

	if p.config.Workers <= 1 || len(listings) < 2 {
		for i, l := range listings {
			perRow[i] = CanonicalizeListing(i, l)
		}
	} else {
		rows := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < min(p.config.Workers, len(listings)); w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range rows {
					perRow[i] = CanonicalizeListing(i, listings[i])
				}
			}()
		}
		for i := range listings {
			rows <- i
		}
		close(rows)
		wg.Wait()
	}

	var failures []RowFailure
	for _, f := range perRow {
		failures = append(failures, f...)
	}
	return listings, failures
}

// CanonicalizeListing applies every field canonicalizer to l, then derives a
// missing State or City from the address
func CanonicalizeListing(row int, l *models.Listing) []RowFailure {
	var failures []RowFailure
	apply := func(field models.Field, fn func(string) string) {
		if err := safeSet(l, field, fn); err != nil {
			failures = append(failures, RowFailure{Row: row, Field: field, Err: err.Error()})
		}
	}

	for _, step := range canonicalSteps {
		chain := step.normalizers
		apply(step.field, func(v string) string { return normalizers.ApplyChain(v, chain...) })
	}

	if models.IsMissing(l.State) {
		apply(models.FieldState, func(string) string { return normalizers.ExtractState(l.Address) })
	}
	if models.IsMissing(l.City) {
		apply(models.FieldCity, func(string) string { return normalizers.ExtractCity(l.Address) })
	}

	return failures
}

// safeSet replaces a field with fn(value). A panic leaves the field unchanged.
func safeSet(l *models.Listing, field models.Field, fn func(string) string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("canonicalizer panicked: %v", r)
		}
	}()
	l.Set(field, fn(l.Get(field)))
	return nil
}

func countRows(failures []RowFailure) int {
	rows := make(map[int]bool)
	for _, f := range failures {
		rows[f.Row] = true
	}
	return len(rows)
}
