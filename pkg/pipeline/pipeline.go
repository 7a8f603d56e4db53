// Package pipeline runs the listing cleanup stages in order:
// reconcile, canonicalize, dedup, type inference, social media fill.
package pipeline

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	appctx "github.com/Ramsey-B/lily/pkg/context"
	"github.com/Ramsey-B/lily/pkg/dedup"
	"github.com/Ramsey-B/lily/pkg/events"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/normalizers"
	"github.com/Ramsey-B/lily/pkg/schema"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/google/uuid"
)

// Stage names reported in events
const (
	StageLoad         = "load"
	StageReconcile    = "reconcile"
	StageCanonicalize = "canonicalize"
	StageDedup        = "dedup"
	StageInferType    = "infer_type"
	StageSocialMedia  = "social_media"
)

// Loader reads an input file into a raw table
type Loader interface {
	Load(ctx context.Context, path string) (*models.RawTable, error)
}

// Config controls pipeline execution
type Config struct {
	// Workers bounds the goroutines canonicalizing rows. 1 runs inline.
	Workers int
}

// DefaultConfig returns a single-worker configuration
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// Pipeline orchestrates a batch cleanup run
type Pipeline struct {
	reconciler *schema.Reconciler
	resolver   *dedup.Resolver
	loader     Loader
	sink       events.Sink
	logger     ectologger.Logger
	config     Config
}

// NewPipeline creates a new pipeline. A nil sink discards events.
func NewPipeline(reconciler *schema.Reconciler, resolver *dedup.Resolver, loader Loader, sink events.Sink, logger ectologger.Logger, config Config) *Pipeline {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if sink == nil {
		sink = events.MultiSink{}
	}
	return &Pipeline{
		reconciler: reconciler,
		resolver:   resolver,
		loader:     loader,
		sink:       sink,
		logger:     logger,
		config:     config,
	}
}

// RunFile loads path and runs the pipeline over it. A file that cannot be
// loaded is reported and the run continues with no rows.
func (p *Pipeline) RunFile(ctx context.Context, path string) *models.Result {
	runID := uuid.NewString()
	ctx = appctx.WithRunID(ctx, runID)

	table, err := p.loader.Load(ctx, path)
	if err != nil {
		p.logger.WithContext(ctx).WithFields(appctx.Fields(ctx)).WithError(err).WithField("path", path).Error("Failed to load input, continuing with no data")
		p.emit(ctx, events.NewEvent(events.EventTypeLoadFailed, runID).
			WithStage(StageLoad).
			WithData("path", path).
			WithData("error", err.Error()))
		table = &models.RawTable{}
	}

	return p.run(ctx, runID, table)
}

// Run runs the pipeline over an already loaded table
func (p *Pipeline) Run(ctx context.Context, table *models.RawTable) *models.Result {
	runID := uuid.NewString()
	return p.run(appctx.WithRunID(ctx, runID), runID, table)
}

func (p *Pipeline) run(ctx context.Context, runID string, table *models.RawTable) *models.Result {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	started := time.Now()
	stats := models.Stats{RunID: runID, InputRows: table.Len()}
	p.emit(ctx, events.NewEvent(events.EventTypePipelineStarted, runID).WithData("rows", stats.InputRows))

	reconciled := p.reconciler.Reconcile(ctx, table)
	stats.RenamedColumns = reconciled.Renamed
	stats.AddedColumns = len(reconciled.Added)
	p.stageCompleted(ctx, runID, StageReconcile, len(reconciled.Listings), map[string]any{
		"renamed_columns": reconciled.Renamed,
		"added_columns":   len(reconciled.Added),
	})

	listings, failures := p.canonicalize(ctx, reconciled.Listings)
	stats.FailedRows = countRows(failures)
	for _, f := range failures {
		p.emit(ctx, events.NewEvent(events.EventTypeRowFailed, runID).
			WithStage(StageCanonicalize).
			WithData("row", f.Row).
			WithData("field", string(f.Field)).
			WithData("error", f.Err))
	}
	p.stageCompleted(ctx, runID, StageCanonicalize, len(listings), map[string]any{
		"failed_rows": stats.FailedRows,
	})

	resolved := p.resolver.Resolve(ctx, listings)
	listings = resolved.Listings
	stats.ExactDuplicates = resolved.ExactRemoved
	stats.FuzzyDuplicates = resolved.FuzzyRemoved
	p.stageCompleted(ctx, runID, StageDedup, len(listings), map[string]any{
		"exact_removed": resolved.ExactRemoved,
		"fuzzy_removed": resolved.FuzzyRemoved,
	})

	stats.TypesInferred = InferTypes(listings)
	p.stageCompleted(ctx, runID, StageInferType, len(listings), map[string]any{
		"inferred": stats.TypesInferred,
	})

	FillSocialMedia(listings)
	p.stageCompleted(ctx, runID, StageSocialMedia, len(listings), nil)

	models.Summarize(&stats, listings)

	p.emit(ctx, events.NewEvent(events.EventTypePipelineCompleted, runID).
		WithData("input_rows", stats.InputRows).
		WithData("output_rows", stats.OutputRows).
		WithData("duration_seconds", time.Since(started).Seconds()))

	return &models.Result{Listings: listings, Stats: stats}
}

// InferTypes fills unknown types from the business name and returns how many were filled
func InferTypes(listings []*models.Listing) int {
	inferred := 0
	for _, l := range listings {
		if !models.IsMissing(l.Type) {
			continue
		}
		l.Type = normalizers.InferType(l.Type, l.BusinessName)
		inferred++
	}
	return inferred
}

// FillSocialMedia guarantees the social media field is present
func FillSocialMedia(listings []*models.Listing) {
	for _, l := range listings {
		l.SocialMedia = normalizers.NormalizeSocialMedia(l.SocialMedia)
	}
}

func (p *Pipeline) stageCompleted(ctx context.Context, runID, stage string, rows int, data map[string]any) {
	event := events.NewEvent(events.EventTypeStageCompleted, runID).WithStage(stage).WithData("rows", rows)
	for k, v := range data {
		event.WithData(k, v)
	}
	p.emit(ctx, event)
}

func (p *Pipeline) emit(ctx context.Context, event *events.Event) {
	if err := p.sink.Emit(ctx, event); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("event_type", event.EventType).Warn("Failed to emit pipeline event")
	}
}
