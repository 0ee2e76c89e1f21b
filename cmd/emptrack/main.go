// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command emptrack is an interactive menu for viewing and editing the
// departments, roles and employees kept in company.db.
//
// Run it with no arguments to use ./company.db, creating it on first run:
//
//	emptrack
//
// Optional settings:
//
//   - --db, EMPTRACK_DB: database file (default company.db)
//   - --log-level, EMPTRACK_LOG_LEVEL: debug, info, warn or error (default warn)
//
// Logs go to stderr; the menu uses stdin and stdout. When stdin is not a
// terminal the menu reads one answer per line, so it can be scripted.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "emptrack: %v\n", err)
		os.Exit(1)
	}
}
