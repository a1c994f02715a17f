// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under migrations/ with
// golang-migrate.
//
// The API server calls [RunUp] before it opens its pool so the users.account
// table always matches the code. accountctl exposes the same operations plus
// [Status] and [RunDown] for operators.
package migration

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty is returned when a previous migration failed midway.
var ErrDirty = errors.New("migration: database is dirty")

// # Operations

// RunUp applies every pending migration. An up-to-date schema is not an error.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	return withMigrator(dsn, migrationsPath, logger, func(migrator *migrate.Migrate, from uint) error {
		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(from)))
				return nil
			}
			return fmt.Errorf("migration: up failed: %w", err)
		}
		return reportVersion(migrator, logger, from)
	})
}

/*
RunDown reverts the most recent migrations.

Parameters:
  - dsn: string
  - migrationsPath: string
  - steps: int (must be positive; reverting everything is not offered)
  - logger: *slog.Logger

Returns:
  - error: Invalid steps, dirty schema or a failing down file
*/
func RunDown(dsn string, migrationsPath string, steps int, logger *slog.Logger) error {
	if steps < 1 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}

	return withMigrator(dsn, migrationsPath, logger, func(migrator *migrate.Migrate, from uint) error {
		if err := migrator.Steps(-steps); err != nil {
			return fmt.Errorf("migration: down %d failed: %w", steps, err)
		}
		return reportVersion(migrator, logger, from)
	})
}

// Status reports the applied schema version and whether it is dirty.
// A database that never ran a migration reports version 0.
func Status(dsn string, migrationsPath string) (version uint, dirty bool, err error) {
	migrator, err := open(dsn, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer migrator.Close()

	return currentVersion(migrator)
}

// # Internals

func open(dsn, migrationsPath string) (*migrate.Migrate, error) {
	migrator, err := migrate.New("file://"+migrationsPath, convertToPgx5DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	return migrator, nil
}

// withMigrator opens a migrator, refuses dirty schemas and always closes.
func withMigrator(dsn, migrationsPath string, logger *slog.Logger, run func(*migrate.Migrate, uint) error) error {
	migrator, err := open(dsn, migrationsPath)
	if err != nil {
		return err
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if err := errors.Join(sourceError, dbError); err != nil {
			logger.Error("migration_close_failed", slog.Any("error", err))
		}
	}()

	migrator.Log = &migrateLogger{
		logger:  logger,
		verbose: logger.Enabled(stdctx.Background(), slog.LevelDebug),
	}

	version, dirty, err := currentVersion(migrator)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w at version %d (force the version after fixing it by hand)", ErrDirty, version)
	}

	logger.Info("migration_started", slog.Uint64("current_version", uint64(version)))
	return run(migrator, version)
}

func currentVersion(migrator *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return version, dirty, nil
}

func reportVersion(migrator *migrate.Migrate, logger *slog.Logger, from uint) error {
	to, _, err := currentVersion(migrator)
	if err != nil {
		return err
	}
	logger.Info("migration_successful",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return nil
}

// convertToPgx5DSN rewrites postgres:// URLs to the pgx5:// scheme that the
// golang-migrate pgx driver registers. Keyword DSNs pass through unchanged.
func convertToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate output through slog at debug level.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
