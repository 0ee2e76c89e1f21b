// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build mattn

package emptrack

import (
	"net/url"
)

// driverName is the name github.com/mattn/go-sqlite3 registers with database/sql.
const driverName = "sqlite3"

// pragma represents a SQLite connection option.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory databases (tests, scratch runs).
var memoryPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
	{name: "_journal_mode", value: "MEMORY"},
	{name: "_synchronous", value: "OFF"},
}

// persistentPragmas are used for the company database file.
var persistentPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
	{name: "_journal_mode", value: "WAL"},
	{name: "_synchronous", value: "NORMAL"},
}

// buildDSN constructs a DSN for github.com/mattn/go-sqlite3, which takes
// each option as its own query parameter.
func buildDSN(path string, pragmas []pragma) string {
	query := url.Values{}
	base := "file:" + path
	if path == memoryPath {
		base = "file::memory:"
	}
	for _, p := range pragmas {
		query.Set(p.name, p.value)
	}
	return base + "?" + query.Encode()
}
