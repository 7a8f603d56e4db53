package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
)

// migrateLog routes golang-migrate output to the debug log
type migrateLog struct {
	logger ectologger.Logger
}

func (l migrateLog) Printf(format string, v ...any) {
	l.logger.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

func (migrateLog) Verbose() bool { return false }

// Migrator applies the numbered SQL files in Folder to one database
type Migrator struct {
	Folder   string
	Database string
	logger   ectologger.Logger
}

func NewMigrator(folder, database string, logger ectologger.Logger) *Migrator {
	return &Migrator{Folder: folder, Database: database, logger: logger}
}

// Up applies every pending up migration. A database already at the latest
// version is not an error.
func (m *Migrator) Up(ctx context.Context, db *sqlx.DB) error {
	folder, err := filepath.Abs(m.Folder)
	if err != nil {
		return pkgerrors.Wrapf(err, "resolve migration folder %s", m.Folder)
	}
	latest, err := LatestVersion(folder)
	if err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "acquire migration connection")
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{DatabaseName: m.Database})
	if err != nil {
		_ = conn.Close()
		return pkgerrors.Wrap(err, "create migration driver")
	}

	runner, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(folder), m.Database, driver)
	if err != nil {
		_ = driver.Close()
		return pkgerrors.Wrap(err, "load migrations")
	}
	defer runner.Close()
	runner.Log = migrateLog{logger: m.logger}

	log := m.logger.WithContext(ctx).WithFields(map[string]any{"database": m.Database, "latest": latest})
	err = runner.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("Schema is up to date")
		return nil
	}
	if err != nil {
		version, dirty, _ := runner.Version()
		log.WithError(err).WithFields(map[string]any{"version": version, "dirty": dirty}).Error("Migration failed")
		return err
	}
	log.Info("Schema migrated")
	return nil
}

// LatestVersion returns the highest numbered *.up.sql file in folder
func LatestVersion(folder string) (int, error) {
	files, err := filepath.Glob(filepath.Join(folder, "*.up.sql"))
	if err != nil {
		return 0, err
	}

	latest := -1
	for _, f := range files {
		prefix, _, ok := strings.Cut(filepath.Base(f), "_")
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(prefix); err == nil && v > latest {
			latest = v
		}
	}
	if latest < 0 {
		return 0, fmt.Errorf("no migrations in %s", folder)
	}
	return latest, nil
}
