package sql

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-hr-service/internal/data"

	"github.com/pkg/errors"
)

func employeesRead(ctx context.Context, e execer, search employeeSearch) ([]*data.Employee, error) {
	var employees []*data.Employee

	criteria, args := employeeCriteria(search)
	query := fmt.Sprintf(`SELECT id, first_name, last_name, position, is_full_time
		FROM %s %s ORDER BY id;`, tableEmployees, criteria)
	rows, err := e.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func employeeRead(ctx context.Context, e execer, search employeeSearch) (*data.Employee, error) {
	employees, err := employeesRead(ctx, e, search)
	if err != nil {
		return nil, err
	}
	if len(employees) <= 0 {
		return nil, nil
	}
	return employees[0], nil
}

// employeeSave inserts the employee if it has no id (and captures the
// generated id) or updates the row with its id
func employeeSave(ctx context.Context, e execer, employee *data.Employee) (*data.Employee, error) {
	employee = employee.Copy()
	if employee.ID == 0 {
		query := fmt.Sprintf(`INSERT INTO %s (first_name, last_name, position, is_full_time)
			VALUES (?, ?, ?, ?);`, tableEmployees)
		result, err := e.ExecContext(ctx, query, employee.FirstName,
			employee.LastName, employee.Position, employee.FullTime)
		if err != nil {
			return nil, err
		}
		if employee.ID, err = result.LastInsertId(); err != nil {
			return nil, err
		}
		return employee, nil
	}
	query := fmt.Sprintf(`UPDATE %s SET first_name = ?, last_name = ?, position = ?,
		is_full_time = ? WHERE id = ?;`, tableEmployees)
	if _, err := e.ExecContext(ctx, query, employee.FirstName, employee.LastName,
		employee.Position, employee.FullTime, employee.ID); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *mySql) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employees, err := employeesRead(ctx, s.DB, employeeSearch{})
	return employees, errors.Wrap(err, "employees read")
}

func (s *mySql) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employee, err := employeeRead(ctx, s.DB, employeeSearch{Id: &id})
	return employee, errors.Wrapf(err, "employee read (%d)", id)
}

func (s *mySql) EmployeeReadByFirstName(ctx context.Context, firstName string) (*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employee, err := employeeRead(ctx, s.DB, employeeSearch{FirstName: &firstName})
	return employee, errors.Wrap(err, "employee read by first name")
}

func (s *mySql) EmployeesReadByPosition(ctx context.Context, position string) ([]*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employees, err := employeesRead(ctx, s.DB, employeeSearch{
		EmployeeSearch: data.EmployeeSearch{Position: &position},
	})
	return employees, errors.Wrap(err, "employees read by position")
}

func (s *mySql) EmployeesReadByFullTime(ctx context.Context, fullTime bool) ([]*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employees, err := employeesRead(ctx, s.DB, employeeSearch{
		EmployeeSearch: data.EmployeeSearch{FullTime: &fullTime},
	})
	return employees, errors.Wrap(err, "employees read by full time")
}

func (s *mySql) EmployeesReadByPositionAndFullTime(ctx context.Context, position string, fullTime bool) ([]*data.Employee, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employees, err := employeesRead(ctx, s.DB, employeeSearch{
		EmployeeSearch: data.EmployeeSearch{
			Position: &position,
			FullTime: &fullTime,
		},
	})
	return employees, errors.Wrap(err, "employees read by position and full time")
}

func (s *mySql) EmployeeSave(ctx context.Context, employee *data.Employee) (*data.Employee, error) {
	if employee == nil {
		return nil, errors.New("employee save: employee is nil")
	}
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	employee, err := employeeSave(ctx, s.DB, employee)
	if err != nil {
		return nil, errors.Wrap(err, "employee save")
	}
	s.Trace(ctx, "saved employee: %d", employee.ID)
	return employee, nil
}

func (s *mySql) EmployeeDelete(ctx context.Context, employee *data.Employee) error {
	if employee == nil {
		return errors.New("employee delete: employee is nil")
	}
	ctx, cancel := s.queryContext(ctx)
	defer cancel()
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, tableEmployees)
	if _, err := s.ExecContext(ctx, query, employee.ID); err != nil {
		return errors.Wrapf(err, "employee delete (%d)", employee.ID)
	}
	s.Trace(ctx, "deleted employee: %d", employee.ID)
	return nil
}
