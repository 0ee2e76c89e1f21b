// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

//go:embed schema.sql
var schemaFS embed.FS

//go:embed migrations/*.sql
var companyFS embed.FS

// memoryPath selects a private in-memory database.
const memoryPath = ":memory:"

// Config controls how the company database is opened.
type Config struct {
	// Path is the database file, or ":memory:". A file path must be
	// absolute, end in .db and live in an existing directory.
	Path string

	// Migrations holds YYYYMMDDHHMMSS_comment.sql scripts. Nil means the
	// embedded company schema.
	Migrations fs.FS

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// SkipMigrations opens the file as it is.
	SkipMigrations bool

	// MigrationTimeout bounds the whole migration run. Default: 90s.
	MigrationTimeout time.Duration

	// AppVersion is stamped into the config table when the bookkeeping
	// tables are first created. Empty leaves it blank.
	AppVersion string

	// RequiredSchemaVersion, when non-zero, must equal the recorded
	// schema.version once migrations have run.
	RequiredSchemaVersion int
}

func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Migrations == nil {
		cfg.Migrations = CompanyMigrations()
	}
	if cfg.MigrationTimeout == 0 {
		cfg.MigrationTimeout = 90 * time.Second
	}
	return cfg
}

// CompanyMigrations returns the embedded scripts that create the
// departments, roles and employees tables.
func CompanyMigrations() fs.FS {
	sub, err := fs.Sub(companyFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// LatestSchemaVersion is the id of the newest embedded migration, the
// schema.version a fully migrated company database reports.
func LatestSchemaVersion() int {
	list, err := listMigrationFiles(CompanyMigrations(), slog.Default())
	if err != nil || len(list) == 0 {
		return 0
	}
	return list[len(list)-1].ID
}

// Open connects to an existing database file (or a fresh in-memory one)
// and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	cfg = cfg.defaults()
	if cfg.Path == memoryPath {
		cfg.Logger.Info("opening database", "mode", "memory")
		return connect(ctx, cfg, memoryPragmas)
	}

	exists, err := inspectPath(cfg.Path)
	if err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("%s: database file not found", cfg.Path)
	}
	cfg.Logger.Info("opening database", "mode", "file", "path", cfg.Path)
	return connect(ctx, cfg, persistentPragmas)
}

// Create makes a new database file with the full schema. It refuses to
// touch a file that is already there.
func Create(ctx context.Context, cfg Config) error {
	cfg = cfg.defaults()
	if cfg.Path == memoryPath {
		return errors.New("create: an in-memory database has no file")
	}

	exists, err := inspectPath(cfg.Path)
	if err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%s: file already exists", cfg.Path)
	}

	cfg.Logger.Info("creating database", "path", cfg.Path)
	db, err := connect(ctx, cfg, persistentPragmas)
	if err != nil {
		return err
	}
	return db.Close()
}

// Ensure is Open, creating the file first when it does not exist. It is
// what the command uses on every start.
func Ensure(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.Path != memoryPath {
		exists, err := inspectPath(cfg.Path)
		if err != nil {
			return nil, err
		} else if !exists {
			if err := Create(ctx, cfg); err != nil {
				return nil, err
			}
		}
	}
	return Open(ctx, cfg)
}

// connect opens the pool, migrates, and checks the schema version. The
// handle is closed again on any failure.
func connect(ctx context.Context, cfg Config, pragmas []pragma) (_ *sql.DB, err error) {
	dsn := buildDSN(cfg.Path, pragmas)
	cfg.Logger.Debug("sql.Open", "driver", driverName, "dsn", dsn)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// an in-memory database lives only as long as its single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	if !cfg.SkipMigrations {
		migCtx, cancel := context.WithTimeout(ctx, cfg.MigrationTimeout)
		defer cancel()
		if err := migrate(migCtx, db, cfg); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.RequiredSchemaVersion != 0 {
		if err := checkSchemaVersion(ctx, db, cfg.RequiredSchemaVersion); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func checkSchemaVersion(ctx context.Context, db *sql.DB, want int) error {
	got, err := fetchSchemaVersion(ctx, db)
	switch {
	case err != nil:
		return fmt.Errorf("schema version: %w", err)
	case got == nil:
		return errors.New("schema version: database not initialized")
	case *got != want:
		return fmt.Errorf("schema version mismatch: required %d, found %d", want, *got)
	}
	return nil
}

// inspectPath applies the file path rules and reports whether a regular
// file is already there.
func inspectPath(path string) (exists bool, err error) {
	if !filepath.IsAbs(path) {
		return false, fmt.Errorf("%s: database path must be absolute", path)
	} else if filepath.Ext(path) != ".db" {
		return false, fmt.Errorf("%s: expected .db extension", path)
	}

	if dir, err := os.Stat(filepath.Dir(path)); err != nil || !dir.IsDir() {
		return false, fmt.Errorf("%s: parent directory does not exist", filepath.Dir(path))
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	} else if info.IsDir() {
		return false, fmt.Errorf("%s: path is a directory", path)
	}
	return true, nil
}

// fetchSchemaVersion reads config.schema.version. A nil version means the
// bookkeeping tables have not been created yet.
func fetchSchemaVersion(ctx context.Context, db *sql.DB) (*int, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = 'schema.version'`).Scan(&value)
	if isNoSuchTable(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("fetch schema.version: %w", err)
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid schema.version %q: %w", value, err)
	}
	return &v, nil
}

// isNoSuchTable matches the message both drivers use for a missing table.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
