// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// migration is one YYYYMMDDHHMMSS_comment.sql script.
type migration struct {
	ID      int
	Comment string
	Name    string
}

var reMigrationName = regexp.MustCompile(`^(\d{14})_(.+)\.sql$`)

// migrator applies the bookkeeping schema and the company migrations to
// one database. Every step runs in its own transaction.
type migrator struct {
	db     *sql.DB
	fsys   fs.FS
	logger *slog.Logger
	now    func() time.Time
}

func newMigrator(db *sql.DB, cfg Config) *migrator {
	return &migrator{
		db:     db,
		fsys:   cfg.Migrations,
		logger: cfg.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// migrate brings the database up to date. The bookkeeping tables are created
// on first use, then every migration not yet recorded is applied in order.
func migrate(ctx context.Context, db *sql.DB, cfg Config) error {
	m := newMigrator(db, cfg)

	version, err := fetchSchemaVersion(ctx, db)
	if err != nil {
		return err
	} else if version == nil {
		m.logger.Debug("initializing bookkeeping tables")
		if err := m.bootstrap(ctx, cfg.AppVersion); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	pending, err := m.pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.Debug("schema is current")
		return nil
	}
	for _, mig := range pending {
		m.logger.Info("applying migration", "name", mig.Name)
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("apply %s: %w", mig.Name, err)
		}
	}
	return nil
}

// bootstrap runs schema.sql and stamps the config keys. A file that already
// holds the company tables from an older tool keeps its rows.
func (m *migrator) bootstrap(ctx context.Context, appVersion string) error {
	script, err := fs.ReadFile(schemaFS, "schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}

	ts := m.now().Unix()
	return m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("exec schema.sql: %w", err)
		}
		// schema.sql is recorded as migration 0
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO schema_migrations (id, comment, path, applied_at, created_at, updated_at)
			VALUES (0, 'init', 'schema.sql', ?, ?, ?)`, ts, ts, ts); err != nil {
			return fmt.Errorf("record init: %w", err)
		}
		if _, err := setConfig(ctx, tx, "db.created_at", strconv.FormatInt(ts, 10), ts); err != nil {
			return err
		}
		if appVersion == "" {
			return nil
		}
		_, err := setConfig(ctx, tx, "app.version", appVersion, ts)
		return err
	})
}

// pending returns the migrations that schema_migrations has no record of.
func (m *migrator) pending(ctx context.Context) ([]migration, error) {
	all, err := listMigrationFiles(m.fsys, m.logger)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	applied, err := fetchAppliedNames(ctx, m.db)
	if err != nil {
		return nil, fmt.Errorf("fetch applied: %w", err)
	}
	return slices.DeleteFunc(all, func(mig migration) bool {
		return applied[mig.Name]
	}), nil
}

// apply runs one migration and moves schema.version to its id.
func (m *migrator) apply(ctx context.Context, mig migration) error {
	script, err := fs.ReadFile(m.fsys, mig.Name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	ts := m.now().Unix()
	return m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schema_migrations (id, comment, path, applied_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`, mig.ID, mig.Comment, mig.Name, ts, ts, ts); err != nil {
			return fmt.Errorf("record: %w", err)
		}
		n, err := setConfig(ctx, tx, "schema.version", strconv.Itoa(mig.ID), ts)
		if err != nil {
			return err
		} else if n != 1 {
			return fmt.Errorf("schema.version update affected %d rows, expected 1", n)
		}
		return nil
	})
}

func (m *migrator) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// setConfig updates one config key and reports the rows touched.
func setConfig(ctx context.Context, tx *sql.Tx, key, value string, ts int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE config SET value = ?, updated_at = ? WHERE key = ?`, value, ts, key)
	if err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set %s: rows affected: %w", key, err)
	}
	return n, nil
}

// fetchAppliedNames returns the file names already recorded in schema_migrations.
func fetchAppliedNames(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.QueryContext(ctx, `SELECT path FROM schema_migrations`)
	if isNoSuchTable(err) {
		return applied, nil
	} else if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// listMigrationFiles returns the migrations in fsys ordered by id. Files and
// directories that do not match the naming pattern are skipped; two files
// sharing an id are an error.
func listMigrationFiles(fsys fs.FS, logger *slog.Logger) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var list []migration
	byID := make(map[int]string)
	for _, e := range entries {
		match := reMigrationName.FindStringSubmatch(e.Name())
		if e.IsDir() || match == nil {
			logger.Debug("skipping non-migration file", "name", e.Name())
			continue
		}

		id, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration id in %q: %w", e.Name(), err)
		}
		if prev, ok := byID[id]; ok {
			return nil, fmt.Errorf("duplicate migration ID %d: %q and %q", id, prev, e.Name())
		}
		byID[id] = e.Name()

		list = append(list, migration{ID: id, Comment: match[2], Name: e.Name()})
	}

	slices.SortFunc(list, func(a, b migration) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}
