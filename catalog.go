// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package emptrack

import (
	"context"
	"fmt"
	"strconv"
)

// Department is a named organizational unit.
type Department struct {
	ID   int64
	Name string
}

// Role is a job title with a salary, belonging to one department.
type Role struct {
	ID           int64
	Title        string
	Salary       float64
	DepartmentID int64
}

// Employee holds one role and optionally reports to a manager.
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	RoleID    int64
	ManagerID *int64
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ManagerFallback is shown in the manager column when an employee has none.
const ManagerFallback = "N/A"

const (
	viewDepartmentsSQL = `SELECT id, name FROM departments ORDER BY id`

	viewRolesSQL = `
		SELECT roles.id, roles.title, roles.salary, departments.name AS department
		FROM roles
		INNER JOIN departments ON roles.department_id = departments.id
		ORDER BY roles.id`

	// the separator and the fallback are part of the statement, not data
	viewEmployeesSQL = `
		SELECT employees.id, employees.first_name, employees.last_name,
		       roles.title, departments.name AS department, roles.salary,
		       IFNULL(managers.first_name || ' ' || managers.last_name, '` + ManagerFallback + `') AS manager
		FROM employees
		INNER JOIN roles ON employees.role_id = roles.id
		INNER JOIN departments ON roles.department_id = departments.id
		LEFT JOIN employees AS managers ON employees.manager_id = managers.id
		ORDER BY employees.id`

	listRolesSQL     = `SELECT id, title, salary, department_id FROM roles ORDER BY id`
	listEmployeesSQL = `SELECT id, first_name, last_name, role_id, manager_id FROM employees ORDER BY id`

	insertDepartmentSQL   = `INSERT INTO departments (name) VALUES (?)`
	insertRoleSQL         = `INSERT INTO roles (title, salary, department_id) VALUES (?, ?, ?)`
	insertEmployeeSQL     = `INSERT INTO employees (first_name, last_name, role_id, manager_id) VALUES (?, ?, ?, ?)`
	updateEmployeeRoleSQL = `UPDATE employees SET role_id = ? WHERE id = ?`
)

// ViewDepartments returns every department.
func (s *Store) ViewDepartments(ctx context.Context) (*RowSet, error) {
	return s.Query(ctx, viewDepartmentsSQL)
}

// ViewRoles returns every role joined to its department name.
func (s *Store) ViewRoles(ctx context.Context) (*RowSet, error) {
	return s.Query(ctx, viewRolesSQL)
}

// ViewEmployees returns every employee with role, department, salary and
// manager name (ManagerFallback when there is none).
func (s *Store) ViewEmployees(ctx context.Context) (*RowSet, error) {
	return s.Query(ctx, viewEmployeesSQL)
}

// Departments lists departments for selection prompts.
func (s *Store) Departments(ctx context.Context) ([]Department, error) {
	set, err := s.Query(ctx, viewDepartmentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	list := make([]Department, 0, len(set.Rows))
	for _, row := range set.Rows {
		list = append(list, Department{
			ID:   asInt64(row["id"]),
			Name: asString(row["name"]),
		})
	}
	return list, nil
}

// Roles lists roles for selection prompts.
func (s *Store) Roles(ctx context.Context) ([]Role, error) {
	set, err := s.Query(ctx, listRolesSQL)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	list := make([]Role, 0, len(set.Rows))
	for _, row := range set.Rows {
		list = append(list, Role{
			ID:           asInt64(row["id"]),
			Title:        asString(row["title"]),
			Salary:       asFloat64(row["salary"]),
			DepartmentID: asInt64(row["department_id"]),
		})
	}
	return list, nil
}

// Employees lists employees for selection prompts.
func (s *Store) Employees(ctx context.Context) ([]Employee, error) {
	set, err := s.Query(ctx, listEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	list := make([]Employee, 0, len(set.Rows))
	for _, row := range set.Rows {
		e := Employee{
			ID:        asInt64(row["id"]),
			FirstName: asString(row["first_name"]),
			LastName:  asString(row["last_name"]),
			RoleID:    asInt64(row["role_id"]),
		}
		if v := row["manager_id"]; v != nil {
			id := asInt64(v)
			e.ManagerID = &id
		}
		list = append(list, e)
	}
	return list, nil
}

// AddDepartment inserts a department and returns its id.
func (s *Store) AddDepartment(ctx context.Context, name string) (int64, error) {
	res, err := s.Exec(ctx, insertDepartmentSQL, name)
	if err != nil {
		return 0, fmt.Errorf("add department: %w", err)
	}
	return res.LastInsertID, nil
}

// AddRole inserts a role and returns its id.
func (s *Store) AddRole(ctx context.Context, title string, salary float64, departmentID int64) (int64, error) {
	res, err := s.Exec(ctx, insertRoleSQL, title, salary, departmentID)
	if err != nil {
		return 0, fmt.Errorf("add role: %w", err)
	}
	return res.LastInsertID, nil
}

// AddEmployee inserts an employee and returns its id. A nil managerID is
// stored as NULL.
func (s *Store) AddEmployee(ctx context.Context, firstName, lastName string, roleID int64, managerID *int64) (int64, error) {
	var manager any
	if managerID != nil {
		manager = *managerID
	}
	res, err := s.Exec(ctx, insertEmployeeSQL, firstName, lastName, roleID, manager)
	if err != nil {
		return 0, fmt.Errorf("add employee: %w", err)
	}
	return res.LastInsertID, nil
}

// UpdateEmployeeRole moves one employee to a different role.
func (s *Store) UpdateEmployeeRole(ctx context.Context, employeeID, roleID int64) error {
	res, err := s.Exec(ctx, updateEmployeeRoleSQL, roleID, employeeID)
	if err != nil {
		return fmt.Errorf("update employee role: %w", err)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("update employee role: employee %d: %w", employeeID, ErrNotFound)
	}
	return nil
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	}
	return 0
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	}
	return 0
}
