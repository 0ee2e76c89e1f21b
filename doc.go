// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package emptrack keeps a small company dataset of departments, roles and
// employees in a single SQLite file.
//
// The package owns the database lifecycle and the fixed set of statements
// the interactive menu runs against it:
//   - Open, Create and Ensure bootstrap the file and apply embedded migrations
//   - Store executes one parameterized statement at a time
//   - the catalog methods on Store wrap the view, lookup and write statements
//
// # Basic Usage
//
//	db, err := emptrack.Ensure(ctx, emptrack.Config{
//	    Path:                  "/home/me/company.db",
//	    RequiredSchemaVersion: emptrack.LatestSchemaVersion(),
//	})
//	if err != nil {
//	    return err
//	}
//	store := emptrack.NewStore(db, logger)
//	defer store.Close()
//
// # Driver Support
//
// Two SQLite drivers are supported via build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// The application must import the driver; cmd/emptrack does this for both.
//
// # Schema
//
// The package's init script creates the bookkeeping tables (schema_migrations,
// config). The domain tables are created by the embedded migrations with
// CREATE TABLE IF NOT EXISTS, so a file written by an older tool that already
// has them opens without error.
//
// Foreign keys are enabled on every connection. Inserting a role for a missing
// department or an employee with an unknown manager fails with
// ErrInvalidReference instead of storing an orphaned row.
package emptrack
