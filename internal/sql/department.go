package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/antonio-alexander/go-hr-service/internal/data"

	"github.com/pkg/errors"
)

func departmentsRead(ctx context.Context, e execer, criteria string, args ...interface{}) ([]*data.Department, error) {
	var departmentRows []departmentRow

	rows, err := e.QueryContext(ctx, departmentQuery(criteria), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		row, err := departmentRowScan(rows.Scan)
		if err != nil {
			return nil, err
		}
		departmentRows = append(departmentRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return departmentsFromRows(departmentRows), nil
}

func departmentRead(ctx context.Context, e execer, criteria string, args ...interface{}) (*data.Department, error) {
	departments, err := departmentsRead(ctx, e, criteria, args...)
	if err != nil {
		return nil, err
	}
	if len(departments) <= 0 {
		return nil, nil
	}
	return departments[0], nil
}

// departmentSave persists the department row, its manager and members and
// then replaces both relationships; it must be executed within a transaction
// since relationships are deleted before they're inserted
func departmentSave(ctx context.Context, e execer, department *data.Department) error {
	//department
	if department.ID == 0 {
		query := fmt.Sprintf("INSERT INTO %s (name) VALUES (?);", tableDepartments)
		result, err := e.ExecContext(ctx, query, department.Name)
		if err != nil {
			return errors.Wrap(err, "department insert")
		}
		if department.ID, err = result.LastInsertId(); err != nil {
			return errors.Wrap(err, "department insert")
		}
	} else {
		query := fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ?;", tableDepartments)
		if _, err := e.ExecContext(ctx, query, department.Name, department.ID); err != nil {
			return errors.Wrap(err, "department update")
		}
	}

	//manager and members
	if department.Manager != nil {
		manager, err := employeeSave(ctx, e, department.Manager)
		if err != nil {
			return errors.Wrap(err, "manager save")
		}
		department.Manager = manager
	}
	members, saved := make([]*data.Employee, 0, len(department.Employees)), make(map[int64]struct{})
	for _, employee := range department.Employees {
		if employee == nil {
			return errors.New("member save: employee is nil")
		}
		if _, found := saved[employee.ID]; found && employee.ID != 0 {
			continue
		}
		employee, err := employeeSave(ctx, e, employee)
		if err != nil {
			return errors.Wrap(err, "member save")
		}
		saved[employee.ID] = struct{}{}
		members = append(members, employee)
	}
	department.Employees = members

	//manager relationship, an employee can only manage a single department
	var managerId int64
	if department.Manager != nil {
		managerId = department.Manager.ID
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE department_id = ? OR employee_id = ?;",
		tableDepartmentManagers)
	if _, err := e.ExecContext(ctx, query, department.ID, managerId); err != nil {
		return errors.Wrap(err, "manager relationship delete")
	}
	if department.Manager != nil {
		query := fmt.Sprintf("INSERT INTO %s (department_id, employee_id) VALUES (?, ?);",
			tableDepartmentManagers)
		if _, err := e.ExecContext(ctx, query, department.ID, managerId); err != nil {
			return errors.Wrap(err, "manager relationship insert")
		}
	}

	//member relationships, an employee can only be a member of a single department
	employeeIds := department.EmployeeIds()
	parameters, args := placeholders(employeeIds)
	query = fmt.Sprintf("DELETE FROM %s WHERE department_id = ? OR employee_id IN (%s);",
		tableDepartmentEmployees, parameters)
	if _, err := e.ExecContext(ctx, query, append([]interface{}{department.ID}, args...)...); err != nil {
		return errors.Wrap(err, "member relationships delete")
	}
	for _, employeeId := range employeeIds {
		query := fmt.Sprintf("INSERT INTO %s (department_id, employee_id) VALUES (?, ?);",
			tableDepartmentEmployees)
		if _, err := e.ExecContext(ctx, query, department.ID, employeeId); err != nil {
			return errors.Wrap(err, "member relationship insert")
		}
	}
	return nil
}

func departmentDelete(ctx context.Context, e execer, id int64) error {
	for _, query := range []string{
		fmt.Sprintf("DELETE FROM %s WHERE department_id = ?;", tableDepartmentManagers),
		fmt.Sprintf("DELETE FROM %s WHERE department_id = ?;", tableDepartmentEmployees),
		fmt.Sprintf("DELETE FROM %s WHERE id = ?;", tableDepartments),
	} {
		if _, err := e.ExecContext(ctx, query, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *mySql) DepartmentsRead(ctx context.Context) ([]*data.Department, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	departments, err := departmentsRead(ctx, s.DB, "")
	return departments, errors.Wrap(err, "departments read")
}

func (s *mySql) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	department, err := departmentRead(ctx, s.DB, "WHERE d.id = ?", id)
	return department, errors.Wrapf(err, "department read (%d)", id)
}

func (s *mySql) DepartmentReadByName(ctx context.Context, name string) (*data.Department, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	department, err := departmentRead(ctx, s.DB, "WHERE d.name = ?", name)
	return department, errors.Wrap(err, "department read by name")
}

func (s *mySql) DepartmentSave(ctx context.Context, department *data.Department) (*data.Department, error) {
	if department == nil {
		return nil, errors.New("department save: department is nil")
	}
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	department = department.Copy()
	if err := withTx(ctx, s.DB, func(tx *sql.Tx) error {
		return departmentSave(ctx, tx, department)
	}); err != nil {
		return nil, errors.Wrap(err, "department save")
	}
	s.Trace(ctx, "saved department: %d", department.ID)
	return department, nil
}

func (s *mySql) DepartmentDelete(ctx context.Context, department *data.Department) error {
	if department == nil {
		return errors.New("department delete: department is nil")
	}
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	if err := withTx(ctx, s.DB, func(tx *sql.Tx) error {
		return departmentDelete(ctx, tx, department.ID)
	}); err != nil {
		return errors.Wrapf(err, "department delete (%d)", department.ID)
	}
	s.Trace(ctx, "deleted department: %d", department.ID)
	return nil
}
