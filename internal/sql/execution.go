package sql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/antonio-alexander/go-hr-service/internal/data"
)

const departmentSelect string = `SELECT d.id, d.name,
		m.id, m.first_name, m.last_name, m.position, m.is_full_time,
		e.id, e.first_name, e.last_name, e.position, e.is_full_time
	FROM ` + tableDepartments + ` d
	LEFT JOIN ` + tableDepartmentManagers + ` dm ON dm.department_id = d.id
	LEFT JOIN ` + tableEmployees + ` m ON m.id = dm.employee_id
	LEFT JOIN ` + tableDepartmentEmployees + ` de ON de.department_id = d.id
	LEFT JOIN ` + tableEmployees + ` e ON e.id = de.employee_id`

type employeeSearch struct {
	data.EmployeeSearch
	Id        *int64
	FirstName *string
}

func employeeCriteria(search employeeSearch) (string, []interface{}) {
	var args []interface{}
	var criteria []string

	if search.Id != nil {
		args = append(args, *search.Id)
		criteria = append(criteria, "id = ?")
	}
	if search.FirstName != nil {
		args = append(args, *search.FirstName)
		criteria = append(criteria, "first_name = ?")
	}
	if search.Position != nil {
		args = append(args, *search.Position)
		criteria = append(criteria, "position = ?")
	}
	if search.FullTime != nil {
		args = append(args, *search.FullTime)
		criteria = append(criteria, "is_full_time = ?")
	}
	if len(criteria) <= 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(criteria, " AND "), args
}

func employeeScan(scanFx func(...interface{}) error) (*data.Employee, error) {
	employee := new(data.Employee)
	if err := scanFx(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Position,
		&employee.FullTime,
	); err != nil {
		return nil, err
	}
	return employee, nil
}

// nullEmployee holds the employee columns produced by a LEFT JOIN, all
// of them are null when there's nothing to join
type nullEmployee struct {
	Id        sql.NullInt64
	FirstName sql.NullString
	LastName  sql.NullString
	Position  sql.NullString
	FullTime  sql.NullBool
}

func (n nullEmployee) employee() *data.Employee {
	if !n.Id.Valid {
		return nil
	}
	return &data.Employee{
		ID:        n.Id.Int64,
		FirstName: n.FirstName.String,
		LastName:  n.LastName.String,
		Position:  n.Position.String,
		FullTime:  n.FullTime.Bool,
	}
}

// departmentRow is a single (flat) row of departmentSelect
type departmentRow struct {
	DepartmentId   int64
	DepartmentName string
	Manager        nullEmployee
	Employee       nullEmployee
}

func departmentRowScan(scanFx func(...interface{}) error) (departmentRow, error) {
	var row departmentRow

	err := scanFx(
		&row.DepartmentId,
		&row.DepartmentName,
		&row.Manager.Id,
		&row.Manager.FirstName,
		&row.Manager.LastName,
		&row.Manager.Position,
		&row.Manager.FullTime,
		&row.Employee.Id,
		&row.Employee.FirstName,
		&row.Employee.LastName,
		&row.Employee.Position,
		&row.Employee.FullTime,
	)
	return row, err
}

// departmentFromRows folds the rows of a single department into one
// department: id, name and manager come from the first row and members are
// collected from every row, skipping rows without a member
func departmentFromRows(rows []departmentRow) *data.Department {
	if len(rows) <= 0 {
		return nil
	}
	department := &data.Department{
		ID:        rows[0].DepartmentId,
		Name:      rows[0].DepartmentName,
		Manager:   rows[0].Manager.employee(),
		Employees: []*data.Employee{},
	}
	members := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		employee := row.Employee.employee()
		if employee == nil {
			continue
		}
		if _, found := members[employee.ID]; found {
			continue
		}
		members[employee.ID] = struct{}{}
		department.Employees = append(department.Employees, employee)
	}
	return department
}

// departmentsFromRows groups rows by department id and folds each group,
// rows of the same department must be contiguous
func departmentsFromRows(rows []departmentRow) []*data.Department {
	var departments []*data.Department

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].DepartmentId == rows[start].DepartmentId {
			end++
		}
		departments = append(departments, departmentFromRows(rows[start:end]))
		start = end
	}
	return departments
}

// placeholders returns the placeholders and args for an IN clause, an
// empty list is replaced with 0 (an id that's never generated) so the
// clause matches nothing
func placeholders(ids []int64) (string, []interface{}) {
	if len(ids) <= 0 {
		return "?", []interface{}{int64(0)}
	}
	parameters := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		parameters = append(parameters, "?")
		args = append(args, id)
	}
	return strings.Join(parameters, ","), args
}

func departmentQuery(criteria string) string {
	return fmt.Sprintf("%s %s ORDER BY d.id, e.id;", departmentSelect, criteria)
}
