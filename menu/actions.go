// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package menu

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mdhender/emptrack"
)

var (
	errSalary    = errors.New("Please enter a valid number for salary.")
	errManagerID = errors.New("Please enter a valid number for manager ID.")
)

// validateSalary accepts any finite decimal number.
func validateSalary(answer string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errSalary
	}
	return nil
}

// validateManagerID accepts an empty answer or an integer.
func validateManagerID(answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	if _, err := strconv.ParseInt(answer, 10, 64); err != nil {
		return errManagerID
	}
	return nil
}

// choose asks until the prompter returns an index inside options.
func (m *Menu) choose(message string, options []string) (int, error) {
	for {
		index, err := m.prompt.Select(message, options)
		if err != nil {
			return -1, err
		}
		if index >= 0 && index < len(options) {
			return index, nil
		}
	}
}

func (m *Menu) show(set *emptrack.RowSet, err error) error {
	if err != nil {
		return stored(err)
	}
	return renderTable(m.out, set)
}

func (m *Menu) viewDepartments(ctx context.Context) error {
	return m.show(m.catalog.ViewDepartments(ctx))
}

func (m *Menu) viewRoles(ctx context.Context) error {
	return m.show(m.catalog.ViewRoles(ctx))
}

func (m *Menu) viewEmployees(ctx context.Context) error {
	return m.show(m.catalog.ViewEmployees(ctx))
}

func (m *Menu) addDepartment(ctx context.Context) error {
	name, err := m.prompt.Input("Enter the department name:", nil)
	if err != nil {
		return err
	}

	if _, err := m.catalog.AddDepartment(ctx, name); err != nil {
		return stored(err)
	}
	fmt.Fprintf(m.out, "Department \"%s\" added.\n", name)
	return nil
}

func (m *Menu) addRole(ctx context.Context) error {
	departments, err := m.catalog.Departments(ctx)
	if err != nil {
		return stored(err)
	}
	if len(departments) == 0 {
		fmt.Fprintln(m.out, "No departments found. Add a department first.")
		return nil
	}
	names := make([]string, len(departments))
	for i, d := range departments {
		names[i] = d.Name
	}

	title, err := m.prompt.Input("Enter the role title:", nil)
	if err != nil {
		return err
	}
	salaryText, err := m.prompt.Input("Enter the role salary:", validateSalary)
	if err != nil {
		return err
	}
	index, err := m.choose("Select the department for the role:", names)
	if err != nil {
		return err
	}

	// already validated
	salary, _ := strconv.ParseFloat(strings.TrimSpace(salaryText), 64)
	if _, err := m.catalog.AddRole(ctx, title, salary, departments[index].ID); err != nil {
		return stored(err)
	}
	fmt.Fprintf(m.out, "Role \"%s\" added.\n", title)
	return nil
}

func (m *Menu) addEmployee(ctx context.Context) error {
	roles, err := m.catalog.Roles(ctx)
	if err != nil {
		return stored(err)
	}
	if len(roles) == 0 {
		fmt.Fprintln(m.out, "No roles found. Add a role first.")
		return nil
	}

	firstName, err := m.prompt.Input("Enter the employee's first name:", nil)
	if err != nil {
		return err
	}
	lastName, err := m.prompt.Input("Enter the employee's last name:", nil)
	if err != nil {
		return err
	}
	index, err := m.choose("Select the employee's role:", roleTitles(roles))
	if err != nil {
		return err
	}
	managerText, err := m.prompt.Input("Enter the employee's manager ID (if applicable):", validateManagerID)
	if err != nil {
		return err
	}

	var managerID *int64
	if managerText = strings.TrimSpace(managerText); managerText != "" {
		id, _ := strconv.ParseInt(managerText, 10, 64)
		managerID = &id
	}

	if _, err := m.catalog.AddEmployee(ctx, firstName, lastName, roles[index].ID, managerID); err != nil {
		return stored(err)
	}
	fmt.Fprintf(m.out, "Employee \"%s %s\" added.\n", firstName, lastName)
	return nil
}

func (m *Menu) updateEmployeeRole(ctx context.Context) error {
	employees, err := m.catalog.Employees(ctx)
	if err != nil {
		return stored(err)
	}
	roles, err := m.catalog.Roles(ctx)
	if err != nil {
		return stored(err)
	}
	if len(employees) == 0 {
		fmt.Fprintln(m.out, "No employees found. Add an employee first.")
		return nil
	}
	if len(roles) == 0 {
		fmt.Fprintln(m.out, "No roles found. Add a role first.")
		return nil
	}

	names := make([]string, len(employees))
	for i, e := range employees {
		names[i] = e.FullName()
	}

	employee, err := m.choose("Select the employee you want to update:", names)
	if err != nil {
		return err
	}
	role, err := m.choose("Select the new role for the employee:", roleTitles(roles))
	if err != nil {
		return err
	}

	if err := m.catalog.UpdateEmployeeRole(ctx, employees[employee].ID, roles[role].ID); err != nil {
		return stored(err)
	}
	fmt.Fprintln(m.out, "Employee role updated successfully.")
	return nil
}

func roleTitles(roles []emptrack.Role) []string {
	titles := make([]string, len(roles))
	for i, r := range roles {
		titles[i] = r.Title
	}
	return titles
}
