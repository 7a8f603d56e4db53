package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/Ramsey-B/lily/config"
	"github.com/Ramsey-B/lily/internal/repositories/listing"
	"github.com/Ramsey-B/lily/pkg/cache"
	"github.com/Ramsey-B/lily/pkg/database"
	"github.com/Ramsey-B/lily/pkg/dedup"
	"github.com/Ramsey-B/lily/pkg/events"
	"github.com/Ramsey-B/lily/pkg/kafka"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/pipeline"
	"github.com/Ramsey-B/lily/pkg/schema"
	"github.com/Ramsey-B/lily/pkg/tabular"
	"github.com/spf13/cobra"
)

const timestampLayout = "20060102_150405"

type runFlags struct {
	input     string
	outputDir string
	noXLSX    bool
	noReport  bool
}

// exportPlan selects which artifacts a run writes
type exportPlan struct {
	dir    string
	stamp  string
	csv    bool
	xlsx   bool
	report bool
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean an input file and write the processed dataset, workbook and report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.run(ctx, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input file (default INPUT_FILE)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "output directory (default OUTPUT_DIR)")
	cmd.Flags().BoolVar(&flags.noXLSX, "no-xlsx", false, "skip the Excel workbook")
	cmd.Flags().BoolVar(&flags.noReport, "no-report", false, "skip the summary report")
	return cmd
}

func (a *app) run(ctx context.Context, flags *runFlags) error {
	defer a.setupTracing(ctx)()

	input := a.cfg.InputFile
	if flags.input != "" {
		input = flags.input
	}
	plan := exportPlan{
		dir:    a.cfg.OutputDir,
		stamp:  time.Now().Format(timestampLayout),
		csv:    a.cfg.ExportCSV,
		xlsx:   a.cfg.ExportXLSX && !flags.noXLSX,
		report: a.cfg.ExportReport && !flags.noReport,
	}
	if flags.outputDir != "" {
		plan.dir = flags.outputDir
	}

	var extra map[string]string
	if a.cfg.SynonymsFile != "" {
		loaded, err := schema.LoadSynonyms(a.cfg.SynonymsFile)
		if err != nil {
			return err
		}
		extra = loaded
	}
	reconciler, err := schema.NewReconciler(a.logger, extra)
	if err != nil {
		return err
	}

	sink := events.MultiSink{events.NewLoggerSink(a.logger), metrics.NewSink()}
	var emitter *events.Emitter
	if a.cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafkaConfig(a.cfg), a.logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, a.logger)
		sink = append(sink, emitter)
	}

	p := pipeline.NewPipeline(
		reconciler,
		dedup.NewResolver(a.logger),
		tabular.NewLoader(a.logger),
		sink,
		a.logger,
		pipeline.Config{Workers: a.cfg.PipelineWorkers},
	)
	result := p.RunFile(ctx, input)

	written, err := export(ctx, plan, result)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).Error("Export failed")
		return err
	}
	for _, path := range written {
		a.logger.WithContext(ctx).WithField("path", path).Info("Wrote output")
	}

	if a.cfg.DatabaseEnabled() {
		if err := a.persist(ctx, result); err != nil {
			a.logger.WithContext(ctx).WithError(err).Error("Failed to persist listings")
		}
	}

	if emitter != nil && a.cfg.KafkaPublishListings {
		// publish failures are logged by the emitter
		_ = emitter.EmitListings(ctx, result.Stats.RunID, result.Listings)
	}

	a.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id":      result.Stats.RunID,
		"input_rows":  result.Stats.InputRows,
		"output_rows": result.Stats.OutputRows,
		"duplicates":  result.Stats.ExactDuplicates + result.Stats.FuzzyDuplicates,
	}).Info("Pipeline finished")
	return nil
}

// export writes the selected artifacts and returns their paths
func export(ctx context.Context, plan exportPlan, result *models.Result) ([]string, error) {
	var written []string

	if plan.csv {
		path := filepath.Join(plan.dir, fmt.Sprintf("processed_data_%s.csv", plan.stamp))
		if err := tabular.WriteCSV(ctx, path, result.Listings); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if plan.xlsx {
		path := filepath.Join(plan.dir, fmt.Sprintf("funeral_services_data_%s.xlsx", plan.stamp))
		if err := tabular.WriteXLSX(ctx, path, result.Listings); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if plan.report {
		path := filepath.Join(plan.dir, fmt.Sprintf("summary_report_%s.txt", plan.stamp))
		if err := tabular.WriteReport(ctx, path, result.Stats); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// persist replaces the stored listings with this run's output
func (a *app) persist(ctx context.Context, result *models.Result) error {
	db, err := database.Open(ctx, databaseConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrator(a.cfg.DatabaseMigrationFolderPath, a.cfg.DatabaseName, a.logger).Up(ctx, db.DB); err != nil {
		return err
	}

	if err := listing.NewRepository(db, a.logger).ReplaceAll(ctx, result.Stats.RunID, result.Listings); err != nil {
		return err
	}

	if a.cfg.RedisEnabled() {
		statsCache := cache.NewStatsCache(cache.Config{
			Addr:     a.cfg.RedisAddr(),
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		}, a.logger)
		defer statsCache.Close()
		if err := statsCache.Invalidate(ctx); err != nil {
			a.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate cached stats")
		}
	}
	return nil
}

func kafkaConfig(cfg config.Config) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}
}

func databaseConfig(cfg config.Config) database.Config {
	return database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}
}
