// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build !mattn

package emptrack

import (
	"fmt"
	"net/url"
)

// driverName is the name modernc.org/sqlite registers with database/sql.
const driverName = "sqlite"

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory databases (tests, scratch runs).
var memoryPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
	{name: "journal_mode", value: "MEMORY"},
	{name: "synchronous", value: "OFF"},
	{name: "temp_store", value: "MEMORY"},
}

// persistentPragmas are used for the company database file. foreign_keys
// must stay ON; the catalog relies on it to reject orphaned references.
var persistentPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
	{name: "journal_mode", value: "WAL"},
	{name: "synchronous", value: "NORMAL"},
}

// buildDSN constructs a DSN for modernc.org/sqlite, which takes every
// pragma as a repeated _pragma=name(value) query parameter.
func buildDSN(path string, pragmas []pragma) string {
	query := url.Values{}
	base := "file:" + path
	if path == memoryPath {
		base = "file::memory:"
	}
	for _, p := range pragmas {
		query.Add("_pragma", fmt.Sprintf("%s(%s)", p.name, p.value))
	}
	return base + "?" + query.Encode()
}
