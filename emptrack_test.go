// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack_test

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/mdhender/emptrack"
	_ "modernc.org/sqlite"
)

//go:embed testdata/valid
var validFS embed.FS

//go:embed testdata/invalid/*.sql
var invalidFS embed.FS

func subFS(t *testing.T, fsys fs.FS, dir string) fs.FS {
	t.Helper()
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		t.Fatalf("fs.Sub(%s): %v", dir, err)
	}
	return sub
}

// mustOpen opens cfg and closes the handle when the test ends.
func mustOpen(t *testing.T, cfg emptrack.Config) *sql.DB {
	t.Helper()
	db, err := emptrack.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open(%s): %v", cfg.Path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// scalar runs a single-value query.
func scalar[T any](t *testing.T, db *sql.DB, query string, args ...any) T {
	t.Helper()
	var v T
	if err := db.QueryRow(query, args...).Scan(&v); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return v
}

func hasTable(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	return scalar[int](t, db, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name) == 1
}

func configValue(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	return scalar[string](t, db, `SELECT value FROM config WHERE key = ?`, key)
}

// TestOpen_Memory tests that an in-memory database gets the company and
// bookkeeping tables and reports the latest schema version.
func TestOpen_Memory(t *testing.T) {
	db := mustOpen(t, emptrack.Config{Path: ":memory:"})

	for _, name := range []string{"departments", "roles", "employees", "schema_migrations", "config"} {
		if !hasTable(t, db, name) {
			t.Errorf("table %s: missing", name)
		}
	}
	if got, want := configValue(t, db, "schema.version"), emptrack.LatestSchemaVersion(); got != strconv.Itoa(want) {
		t.Errorf("schema.version: want %d, got %s", want, got)
	}
}

// TestOpen_Memory_Private tests that two in-memory opens do not see each
// other's rows.
func TestOpen_Memory_Private(t *testing.T) {
	a := mustOpen(t, emptrack.Config{Path: ":memory:"})
	b := mustOpen(t, emptrack.Config{Path: ":memory:"})

	if _, err := a.Exec(`INSERT INTO departments (name) VALUES ('Sales')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n := scalar[int](t, b, `SELECT COUNT(*) FROM departments`); n != 0 {
		t.Errorf("second database: want 0 departments, got %d", n)
	}
}

// TestOpen_CustomMigrations tests a caller supplied migration set. The
// README in the directory is not a migration and is skipped.
func TestOpen_CustomMigrations(t *testing.T) {
	db := mustOpen(t, emptrack.Config{
		Path:       ":memory:",
		Migrations: subFS(t, validFS, "testdata/valid"),
	})

	// init + 2 migrations
	if n := scalar[int](t, db, `SELECT COUNT(*) FROM schema_migrations`); n != 3 {
		t.Errorf("schema_migrations: want 3 rows, got %d", n)
	}
	if got := configValue(t, db, "schema.version"); got != "20240702090000" {
		t.Errorf("schema.version: want 20240702090000, got %s", got)
	}
	if !hasTable(t, db, "locations") {
		t.Error("locations: missing")
	}
	if hasTable(t, db, "employees") {
		t.Error("employees: created without the company migrations")
	}
}

// TestOpen_AppVersion tests the metadata stamped on first initialization.
func TestOpen_AppVersion(t *testing.T) {
	db := mustOpen(t, emptrack.Config{Path: ":memory:", AppVersion: "1.2.3-test"})

	if got := configValue(t, db, "app.version"); got != "1.2.3-test" {
		t.Errorf("app.version: want 1.2.3-test, got %q", got)
	}
	if configValue(t, db, "db.created_at") == "" {
		t.Error("db.created_at: not set")
	}
}

// TestCreate tests that Create makes a file Open can reuse, and only once.
func TestCreate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "company.db")

	if err := emptrack.Create(ctx, emptrack.Config{Path: path}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := emptrack.Create(ctx, emptrack.Config{Path: path}); err == nil {
		t.Error("second Create: want error for existing file")
	}

	db := mustOpen(t, emptrack.Config{Path: path})
	if !hasTable(t, db, "employees") {
		t.Error("employees: missing")
	}
}

// TestCreate_InvalidPaths tests the file path rules.
func TestCreate_InvalidPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "folder.db"), 0o755); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		path string
	}{
		{"relative", "relative/company.db"},
		{"no extension", filepath.Join(dir, "company")},
		{"missing parent", filepath.Join(dir, "nonexistent", "company.db")},
		{"directory", filepath.Join(dir, "folder.db")},
		{"memory", ":memory:"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := emptrack.Create(context.Background(), emptrack.Config{Path: tc.path}); err == nil {
				t.Errorf("Create(%q): want error", tc.path)
			}
		})
	}
}

// TestOpen_MissingFile tests that Open does not create files.
func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company.db")

	if _, err := emptrack.Open(context.Background(), emptrack.Config{Path: path}); err == nil {
		t.Fatal("Open: want error for missing file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Open created %s", path)
	}
}

// TestEnsure tests that Ensure creates the file on first run and keeps its
// rows on the next.
func TestEnsure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "company.db")

	db, err := emptrack.Ensure(ctx, emptrack.Config{Path: path})
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO departments (name) VALUES (?)`, "Engineering"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = emptrack.Ensure(ctx, emptrack.Config{
		Path:                  path,
		RequiredSchemaVersion: emptrack.LatestSchemaVersion(),
	})
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	defer db.Close()

	if name := scalar[string](t, db, `SELECT name FROM departments`); name != "Engineering" {
		t.Errorf("department: want Engineering, got %q", name)
	}
	// init + company, nothing applied twice
	if n := scalar[int](t, db, `SELECT COUNT(*) FROM schema_migrations`); n != 2 {
		t.Errorf("schema_migrations: want 2 rows, got %d", n)
	}
}

// TestEnsure_LegacyFile tests a file that already has the company tables
// but none of the bookkeeping tables.
func TestEnsure_LegacyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "company.db")

	raw, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := raw.ExecContext(ctx, `
		CREATE TABLE departments (id INTEGER PRIMARY KEY, name TEXT);
		CREATE TABLE roles (id INTEGER PRIMARY KEY, title TEXT, salary REAL, department_id INTEGER);
		CREATE TABLE employees (id INTEGER PRIMARY KEY, first_name TEXT, last_name TEXT, role_id INTEGER, manager_id INTEGER);
		INSERT INTO departments (name) VALUES ('Sales');
	`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	raw.Close()

	db, err := emptrack.Ensure(ctx, emptrack.Config{Path: path})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	defer db.Close()

	if n := scalar[int](t, db, `SELECT COUNT(*) FROM departments`); n != 1 {
		t.Errorf("departments: want the legacy row, got %d rows", n)
	}
	if !hasTable(t, db, "schema_migrations") {
		t.Error("schema_migrations: missing")
	}
}

// TestOpen_Failures tests configurations that must not open.
func TestOpen_Failures(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  emptrack.Config
	}{
		{"duplicate migration id", emptrack.Config{Path: ":memory:", Migrations: subFS(t, invalidFS, "testdata/invalid")}},
		{"migration timeout", emptrack.Config{Path: ":memory:", MigrationTimeout: time.Nanosecond}},
		{"schema version mismatch", emptrack.Config{Path: ":memory:", RequiredSchemaVersion: 1}},
		{"uninitialized with required version", emptrack.Config{Path: ":memory:", SkipMigrations: true, RequiredSchemaVersion: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, err := emptrack.Open(context.Background(), tc.cfg)
			if err == nil {
				db.Close()
				t.Fatal("Open: want error")
			}
		})
	}
}

// TestOpen_SkipMigrations tests that pending migrations stay pending.
func TestOpen_SkipMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company.db")
	if err := emptrack.Create(context.Background(), emptrack.Config{Path: path}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	db := mustOpen(t, emptrack.Config{
		Path:           path,
		Migrations:     subFS(t, validFS, "testdata/valid"),
		SkipMigrations: true,
	})
	if hasTable(t, db, "locations") {
		t.Error("locations: created with migrations skipped")
	}
}
