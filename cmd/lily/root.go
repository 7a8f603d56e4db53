package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/lily/config"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app carries what every subcommand needs
type app struct {
	cfg    config.Config
	logger ectologger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lily",
		Short:         "Clean, deduplicate and serve funeral-service business listings",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	root.AddCommand(newRunCmd(a), newServeCmd(a))
	return root
}

// newLogger builds the zap-backed logger. PRETTY_LOGS switches to the console encoder.
func newLogger(cfg config.Config) (ectologger.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapConfig.Level = level
	zapConfig.InitialFields = map[string]any{"app": cfg.AppName}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

// setupTracing installs the tracer provider and returns its shutdown
func (a *app) setupTracing(ctx context.Context) func() {
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: a.cfg.AppName,
		Enabled:     a.cfg.TracingEnabled,
		Endpoint:    a.cfg.TracingEndpoint,
		Protocol:    a.cfg.TracingProtocol,
		Insecure:    a.cfg.TracingInsecure,
	})
	if err != nil {
		a.logger.WithError(err).Warn("Tracing disabled, exporter setup failed")
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			a.logger.WithError(err).Warn("Failed to flush traces")
		}
	}
}
