// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrInvalidReference is returned when a write names a department, role
	// or manager that does not exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNotFound is returned when an update matches no row.
	ErrNotFound = errors.New("not found")
)

// Row maps column names to values for a single result row.
type Row map[string]any

// RowSet is the result of a read. Columns keeps the select-list order.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Result acknowledges a write.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Store runs one parameterized statement at a time against the database.
// It owns the handle; callers release it with Close.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database. Uses slog.Default() if logger is nil.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Close releases the database handle. Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Query runs a read statement and collects every row.
func (s *Store) Query(ctx context.Context, stmt string, args ...any) (*RowSet, error) {
	if s.db == nil {
		return nil, sql.ErrConnDone
	}
	s.logger.Debug("query", "stmt", compact(stmt), "args", len(args))

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, mapStorageError("query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: columns: %w", err)
	}

	set := &RowSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStorageError("query", err)
	}

	return set, nil
}

// Exec runs a write statement.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) (Result, error) {
	if s.db == nil {
		return Result{}, sql.ErrConnDone
	}
	s.logger.Debug("exec", "stmt", compact(stmt), "args", len(args))

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, mapStorageError("exec", err)
	}

	var result Result
	if result.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, fmt.Errorf("exec: rows affected: %w", err)
	}
	// not every driver reports an id for UPDATE
	result.LastInsertID, _ = res.LastInsertId()
	return result, nil
}

// mapStorageError folds foreign key failures into ErrInvalidReference.
// Both drivers report them with the same SQLite message.
func mapStorageError(op string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// compact collapses whitespace so statements log on one line.
func compact(stmt string) string {
	return strings.Join(strings.Fields(stmt), " ")
}
