package tabular

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/pkg/errors"
)

// WriteReport writes a plain text summary of a run
func WriteReport(ctx context.Context, path string, stats models.Stats) error {
	_, span := tracing.StartSpan(ctx, "tabular.WriteReport")
	defer span.End()

	return writeAtomic(path, func(tmp *os.File) error {
		return errors.Wrap(RenderReport(tmp, stats), "failed to write report")
	})
}

// RenderReport writes the summary: totals, breakdowns by state and type (largest
// first), then overall and per-field completeness
func RenderReport(w io.Writer, stats models.Stats) error {
	p := &reportPrinter{w: w}

	p.printf("Funeral Services Data Collection Summary\n")
	p.printf("=====================================\n\n")
	p.printf("Total Businesses: %d\n\n", stats.OutputRows)

	p.printf("Pipeline:\n")
	p.printf("Input rows: %d\n", stats.InputRows)
	p.printf("Exact duplicates removed: %d\n", stats.ExactDuplicates)
	p.printf("Fuzzy duplicates removed: %d\n", stats.FuzzyDuplicates)
	p.printf("Rows with canonicalization failures: %d\n\n", stats.FailedRows)

	p.printf("Breakdown by State:\n")
	p.counts(stats.ByState)
	p.printf("\n")

	p.printf("Breakdown by Business Type:\n")
	p.counts(stats.ByType)
	p.printf("\n")

	p.printf("Data Completeness:\n")
	p.printf("Overall completeness: %.1f%%\n", stats.Completeness)
	p.printf("\nColumn-wise completeness:\n")
	for _, f := range models.Fields {
		p.printf("%s: %.1f%%\n", f, stats.FieldCompleteness[string(f)])
	}

	return p.err
}

type reportPrinter struct {
	w   io.Writer
	err error
}

func (p *reportPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *reportPrinter) counts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		p.printf("%s: %d\n", k, counts[k])
	}
}
