// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package menu runs the interactive department, role and employee menu.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mdhender/emptrack"
)

// Catalog is the storage surface the menu needs. *emptrack.Store satisfies it.
type Catalog interface {
	ViewDepartments(ctx context.Context) (*emptrack.RowSet, error)
	ViewRoles(ctx context.Context) (*emptrack.RowSet, error)
	ViewEmployees(ctx context.Context) (*emptrack.RowSet, error)

	Departments(ctx context.Context) ([]emptrack.Department, error)
	Roles(ctx context.Context) ([]emptrack.Role, error)
	Employees(ctx context.Context) ([]emptrack.Employee, error)

	AddDepartment(ctx context.Context, name string) (int64, error)
	AddRole(ctx context.Context, title string, salary float64, departmentID int64) (int64, error)
	AddEmployee(ctx context.Context, firstName, lastName string, roleID int64, managerID *int64) (int64, error)
	UpdateEmployeeRole(ctx context.Context, employeeID, roleID int64) error
}

const (
	menuMessage = "What would you like to do?"
	farewell    = "Goodbye!"
)

// action is one menu entry. A nil run means Exit.
type action struct {
	label string
	run   func(m *Menu, ctx context.Context) error
}

// actions is the menu in display order. Scripted harnesses match on these
// labels, so they must not change.
var actions = []action{
	{label: "View all departments", run: (*Menu).viewDepartments},
	{label: "View all roles", run: (*Menu).viewRoles},
	{label: "View all employees", run: (*Menu).viewEmployees},
	{label: "Add a department", run: (*Menu).addDepartment},
	{label: "Add a role", run: (*Menu).addRole},
	{label: "Add an employee", run: (*Menu).addEmployee},
	{label: "Update an employee role", run: (*Menu).updateEmployeeRole},
	{label: "Exit"},
}

// Choices returns the menu labels in display order.
func Choices() []string {
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.label
	}
	return labels
}

// Menu routes menu selections to their handlers. It borrows the catalog;
// the caller owns and closes it.
type Menu struct {
	catalog Catalog
	prompt  Prompter
	out     io.Writer
	logger  *slog.Logger
}

// New returns a menu. Uses slog.Default() if logger is nil.
func New(catalog Catalog, prompt Prompter, out io.Writer, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{
		catalog: catalog,
		prompt:  prompt,
		out:     out,
		logger:  logger,
	}
}

// Run shows the menu until the user picks Exit, interrupts, or input ends,
// then prints the farewell. Failed actions are reported and the menu is
// shown again. Only prompter failures are returned.
func (m *Menu) Run(ctx context.Context) error {
	choices := Choices()

	for ctx.Err() == nil {
		index, err := m.prompt.Select(menuMessage, choices)
		if errors.Is(err, ErrInterrupted) {
			break
		} else if err != nil {
			return fmt.Errorf("menu: %w", err)
		}

		if index < 0 || index >= len(actions) {
			fmt.Fprintln(m.out, "Invalid action.")
			continue
		}

		a := actions[index]
		if a.run == nil {
			break
		}

		m.logger.Debug("menu action", "action", a.label)
		if err := a.run(m, ctx); err != nil {
			if errors.Is(err, ErrInterrupted) {
				break
			}
			if !isStorageError(err) {
				return fmt.Errorf("%s: %w", a.label, err)
			}
			m.report(a.label, err)
		}
	}

	fmt.Fprintln(m.out, farewell)
	return nil
}

// storageError marks failures that came back from the catalog.
type storageError struct {
	err error
}

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func isStorageError(err error) bool {
	var se *storageError
	return errors.As(err, &se)
}

// stored tags a catalog error so Run reports it instead of stopping.
func stored(err error) error {
	if err == nil {
		return nil
	}
	return &storageError{err: err}
}

func (m *Menu) report(label string, err error) {
	m.logger.Error("action failed", "action", label, "err", err)
	if errors.Is(err, emptrack.ErrInvalidReference) {
		fmt.Fprintln(m.out, "Error: the referenced department, role or manager does not exist.")
		return
	}
	fmt.Fprintf(m.out, "Error: %v\n", err)
}
