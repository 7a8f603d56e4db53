package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ramsey-B/lily/internal/repositories/listing"
	"github.com/Ramsey-B/lily/pkg/cache"
	"github.com/Ramsey-B/lily/pkg/database"
	listingroutes "github.com/Ramsey-B/lily/pkg/routes/listing"
	"github.com/Ramsey-B/lily/pkg/server"
	"github.com/Ramsey-B/lily/pkg/startup"
	"github.com/Ramsey-B/lily/pkg/store"
	"github.com/spf13/cobra"
)

var errNoData = errors.New("no data source: set DB_HOST, DATA_FILE or --data")

func newServeCmd(a *app) *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaned listings over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if dataFile == "" {
				dataFile = a.cfg.DataFile
			}
			return a.serve(ctx, dataFile)
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "cleaned CSV to serve when no database is configured (default DATA_FILE)")
	return cmd
}

func (a *app) serve(ctx context.Context, dataFile string) error {
	defer a.setupTracing(ctx)()

	deps := startup.NewStartup(a.logger, a.cfg.StartupMaxAttempts)

	var (
		reader     store.Reader
		repo       *listing.Repository
		statsCache *cache.StatsCache
	)

	switch {
	case a.cfg.DatabaseEnabled():
		var db *database.DatabaseInstance
		deps.AddDependency(startup.Dependency{
			Name: "database",
			StartFn: func(ctx context.Context) error {
				opened, err := database.Open(ctx, databaseConfig(a.cfg), a.logger)
				if err != nil {
					return err
				}
				db = opened
				repo = listing.NewRepository(db, a.logger)
				return nil
			},
			StopFn: func(context.Context) error { return db.Close() },
		})
		deps.AddDependency(startup.Dependency{
			Name:  "migrations",
			Needs: []string{"database"},
			StartFn: func(ctx context.Context) error {
				return database.NewMigrator(a.cfg.DatabaseMigrationFolderPath, a.cfg.DatabaseName, a.logger).Up(ctx, db.DB)
			},
		})
	case dataFile != "":
		memory, err := store.LoadFile(dataFile)
		if err != nil {
			return err
		}
		reader = memory
		a.logger.WithField("path", dataFile).Info("Serving listings from file")
	default:
		return errNoData
	}

	if a.cfg.RedisEnabled() {
		statsCache = cache.NewStatsCache(cache.Config{
			Addr:     a.cfg.RedisAddr(),
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
			TTL:      a.cfg.RedisTTL,
		}, a.logger)
		deps.AddDependency(startup.Dependency{
			Name:    "redis",
			StartFn: statsCache.Ping,
			StopFn:  func(context.Context) error { return statsCache.Close() },
		})
	}

	if err := deps.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = deps.Stop(stopCtx)
	}()

	if repo != nil {
		reader = repo
	}

	var statsCacheRoute listingroutes.StatsCache
	if statsCache != nil {
		statsCacheRoute = statsCache
	}

	srv := server.New(server.Options{
		AppName:      a.cfg.AppName,
		Version:      version,
		Port:         a.cfg.Port,
		ReadTimeout:  time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second,
	}, reader, statsCacheRoute, a.logger)

	if repo != nil {
		srv.Health().AddCheck("database", repo)
	}
	if statsCache != nil {
		srv.Health().AddCheck("redis", statsCache)
	}

	return srv.Start(ctx)
}
