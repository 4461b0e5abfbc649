package logic

import (
	"context"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/sql"
	"github.com/antonio-alexander/go-hr-service/internal/utilities"

	"github.com/pkg/errors"
)

type Logic interface {
	DepartmentsRead(ctx context.Context) ([]*data.Department, error)
	DepartmentRead(ctx context.Context, id int64) (*data.Department, error)
	DepartmentEmployeesRead(ctx context.Context, id int64, search data.DepartmentEmployeeSearch) ([]*data.Employee, error)
	DepartmentCreate(ctx context.Context, name string) (*data.Department, error)
	DepartmentUpdate(ctx context.Context, id int64, department *data.Department) (*data.Department, error)
	DepartmentDelete(ctx context.Context, id int64) error
	EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employeeCreate data.EmployeeCreate) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee *data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
}

type logic struct {
	sync.RWMutex
	utilities.Logger
	employees   sql.Employees
	departments sql.Departments
	config      struct {
		mutateDisabled bool
	}
}

// NewLogic accepts a sql.Sql (or a separate sql.Employees and
// sql.Departments) and an optional utilities.Logger
func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{Logger: utilities.NewNoopLogger()}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case sql.Sql:
			l.employees, l.departments = v, v
		case sql.Employees:
			l.employees = v
		case sql.Departments:
			l.departments = v
		case utilities.Logger:
			l.Logger = v
		}
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	for _, key := range []string{"MUTATE_DISABLED", "LOGIC_MUTATE_DISABLED"} {
		if mutateDisabled, ok := envs[key]; ok && mutateDisabled != "" {
			b, err := strconv.ParseBool(mutateDisabled)
			if err != nil {
				return errors.Wrap(err, key)
			}
			l.config.mutateDisabled = b
		}
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.RLock()
	defer l.RUnlock()

	if l.employees == nil || l.departments == nil {
		return errors.New("logic: store not provided")
	}
	if l.config.mutateDisabled {
		l.Info(ctx, "mutation disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.mutateDisabled
}

func (l *logic) departmentRead(ctx context.Context, id int64) (*data.Department, error) {
	department, err := l.departments.DepartmentRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, errDepartmentNotFound(id)
	}
	return department, nil
}

func (l *logic) DepartmentsRead(ctx context.Context) ([]*data.Department, error) {
	departments, err := l.departments.DepartmentsRead(ctx)
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []*data.Department{}
	}
	return departments, nil
}

func (l *logic) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	return l.departmentRead(ctx, id)
}

func (l *logic) DepartmentEmployeesRead(ctx context.Context, id int64, search data.DepartmentEmployeeSearch) ([]*data.Employee, error) {
	department, err := l.departmentRead(ctx, id)
	if err != nil {
		return nil, err
	}
	return search.Filter(department.Employees), nil
}

func (l *logic) DepartmentCreate(ctx context.Context, name string) (*data.Department, error) {
	if l.mutateDisabled() {
		return nil, ErrMutationDisabled
	}
	existing, err := l.departments.DepartmentReadByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errDepartmentAlreadyExists(name)
	}
	department, err := l.departments.DepartmentSave(ctx, &data.Department{
		Name:      name,
		Employees: []*data.Employee{},
	})
	if err != nil {
		return nil, err
	}
	l.Debug(ctx, "created department %q (%d)", department.Name, department.ID)
	return department, nil
}

// DepartmentUpdate overwrites the name and members of the department, the
// manager is only overwritten when one is provided
func (l *logic) DepartmentUpdate(ctx context.Context, id int64, department *data.Department) (*data.Department, error) {
	if l.mutateDisabled() {
		return nil, ErrMutationDisabled
	}
	if department == nil {
		return nil, errors.New("department is nil")
	}
	existing, err := l.departmentRead(ctx, id)
	if err != nil {
		return nil, err
	}
	update := department.Copy()
	existing.Name = update.Name
	if update.Manager != nil {
		existing.Manager = update.Manager
	}
	existing.Employees = update.Employees
	saved, err := l.departments.DepartmentSave(ctx, existing)
	if err != nil {
		return nil, err
	}
	l.Debug(ctx, "updated department %d", id)
	return saved, nil
}

func (l *logic) DepartmentDelete(ctx context.Context, id int64) error {
	if l.mutateDisabled() {
		return ErrMutationDisabled
	}
	department, err := l.departmentRead(ctx, id)
	if err != nil {
		return err
	}
	if err := l.departments.DepartmentDelete(ctx, department); err != nil {
		return err
	}
	l.Debug(ctx, "deleted department %d", id)
	return nil
}

func (l *logic) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var employees []*data.Employee
	var err error

	switch {
	case search.Position != nil && search.FullTime != nil:
		employees, err = l.employees.EmployeesReadByPositionAndFullTime(ctx, *search.Position, *search.FullTime)
	case search.Position != nil:
		employees, err = l.employees.EmployeesReadByPosition(ctx, *search.Position)
	case search.FullTime != nil:
		employees, err = l.employees.EmployeesReadByFullTime(ctx, *search.FullTime)
	default:
		employees, err = l.employees.EmployeesRead(ctx)
	}
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []*data.Employee{}
	}
	return employees, nil
}

func (l *logic) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	employee, err := l.employees.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, errEmployeeNotFound(id)
	}
	return employee, nil
}

func (l *logic) EmployeeCreate(ctx context.Context, employeeCreate data.EmployeeCreate) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, ErrMutationDisabled
	}
	employee, err := l.employees.EmployeeSave(ctx, &data.Employee{
		FirstName: employeeCreate.FirstName,
		LastName:  employeeCreate.LastName,
		Position:  employeeCreate.Position,
		FullTime:  employeeCreate.FullTime,
	})
	if err != nil {
		return nil, err
	}
	l.Debug(ctx, "created employee %d", employee.ID)
	return employee, nil
}

func (l *logic) EmployeeUpdate(ctx context.Context, id int64, employee *data.Employee) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, ErrMutationDisabled
	}
	if employee == nil {
		return nil, errors.New("employee is nil")
	}
	existing, err := l.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.FirstName = employee.FirstName
	existing.LastName = employee.LastName
	existing.Position = employee.Position
	existing.FullTime = employee.FullTime
	return l.employees.EmployeeSave(ctx, existing)
}

func (l *logic) EmployeeDelete(ctx context.Context, id int64) error {
	if l.mutateDisabled() {
		return ErrMutationDisabled
	}
	employee, err := l.EmployeeRead(ctx, id)
	if err != nil {
		return err
	}
	if err := l.employees.EmployeeDelete(ctx, employee); err != nil {
		return err
	}
	l.Debug(ctx, "deleted employee %d", id)
	return nil
}
