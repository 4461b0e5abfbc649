package logic_test

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/logic"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	envs = map[string]string{
		"LOGIC_MUTATE_DISABLED": "false",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

// memory is an in-memory store, it records the last employee query so
// filter routing can be verified
type memory struct {
	sync.Mutex
	lastQuery   string
	nextId      int64
	employees   map[int64]*data.Employee
	departments map[int64]*data.Department
}

func newMemory() *memory {
	return &memory{
		employees:   make(map[int64]*data.Employee),
		departments: make(map[int64]*data.Department),
	}
}

func (m *memory) id() int64 {
	m.nextId++
	return m.nextId
}

func (m *memory) employeesWhere(query string, fx func(*data.Employee) bool) []*data.Employee {
	var employees []*data.Employee

	m.lastQuery = query
	for _, employee := range m.employees {
		if fx(employee) {
			employees = append(employees, employee.Copy())
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees
}

func (m *memory) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employeesWhere("all", func(*data.Employee) bool { return true }), nil
}

func (m *memory) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employees[id].Copy(), nil
}

func (m *memory) EmployeeReadByFirstName(ctx context.Context, firstName string) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	employees := m.employeesWhere("first_name", func(e *data.Employee) bool { return e.FirstName == firstName })
	if len(employees) <= 0 {
		return nil, nil
	}
	return employees[0], nil
}

func (m *memory) EmployeesReadByPosition(ctx context.Context, position string) ([]*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employeesWhere("position", func(e *data.Employee) bool { return e.Position == position }), nil
}

func (m *memory) EmployeesReadByFullTime(ctx context.Context, fullTime bool) ([]*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employeesWhere("full_time", func(e *data.Employee) bool { return e.FullTime == fullTime }), nil
}

func (m *memory) EmployeesReadByPositionAndFullTime(ctx context.Context, position string, fullTime bool) ([]*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employeesWhere("position_full_time", func(e *data.Employee) bool {
		return e.Position == position && e.FullTime == fullTime
	}), nil
}

func (m *memory) employeeSave(employee *data.Employee) *data.Employee {
	employee = employee.Copy()
	if employee.ID == 0 {
		employee.ID = m.id()
	}
	m.employees[employee.ID] = employee.Copy()
	return employee
}

func (m *memory) EmployeeSave(ctx context.Context, employee *data.Employee) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()
	return m.employeeSave(employee), nil
}

func (m *memory) EmployeeDelete(ctx context.Context, employee *data.Employee) error {
	m.Lock()
	defer m.Unlock()
	delete(m.employees, employee.ID)
	return nil
}

func (m *memory) DepartmentsRead(ctx context.Context) ([]*data.Department, error) {
	m.Lock()
	defer m.Unlock()
	var departments []*data.Department
	for _, department := range m.departments {
		departments = append(departments, department.Copy())
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].ID < departments[j].ID })
	return departments, nil
}

func (m *memory) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	m.Lock()
	defer m.Unlock()
	return m.departments[id].Copy(), nil
}

func (m *memory) DepartmentReadByName(ctx context.Context, name string) (*data.Department, error) {
	m.Lock()
	defer m.Unlock()
	for _, department := range m.departments {
		if department.Name == name {
			return department.Copy(), nil
		}
	}
	return nil, nil
}

func (m *memory) DepartmentSave(ctx context.Context, department *data.Department) (*data.Department, error) {
	m.Lock()
	defer m.Unlock()
	department = department.Copy()
	if department.ID == 0 {
		department.ID = m.id()
	}
	if department.Manager != nil {
		department.Manager = m.employeeSave(department.Manager)
	}
	for i, employee := range department.Employees {
		department.Employees[i] = m.employeeSave(employee)
	}
	m.departments[department.ID] = department.Copy()
	return department, nil
}

func (m *memory) DepartmentDelete(ctx context.Context, department *data.Department) error {
	m.Lock()
	defer m.Unlock()
	delete(m.departments, department.ID)
	return nil
}

type logicTest struct {
	store *memory
	logic interface {
		internal.Configurer
		internal.Opener
	}
	logic.Logic
}

func newLogicTest() *logicTest {
	store := newMemory()
	logic := logic.NewLogic(store)
	return &logicTest{
		store: store,
		logic: logic,
		Logic: logic,
	}
}

func (l *logicTest) TestDepartments(t *testing.T) {
	ctx := context.TODO()

	// create
	accounting, err := l.DepartmentCreate(ctx, "Accounting")
	assert.Nil(t, err)
	if !assert.NotNil(t, accounting) {
		return
	}
	assert.NotZero(t, accounting.ID)
	assert.Equal(t, "Accounting", accounting.Name)
	assert.Nil(t, accounting.Manager)
	assert.Empty(t, accounting.Employees)

	// create with a name that's taken
	department, err := l.DepartmentCreate(ctx, "Accounting")
	assert.True(t, errors.Is(err, logic.ErrDepartmentAlreadyExists))
	assert.Nil(t, department)

	// read
	department, err = l.DepartmentRead(ctx, accounting.ID)
	assert.Nil(t, err)
	assert.Equal(t, accounting, department)
	departments, err := l.DepartmentsRead(ctx)
	assert.Nil(t, err)
	assert.Equal(t, []*data.Department{accounting}, departments)

	// update with a manager and members
	manager := &data.Employee{FirstName: "Ada", LastName: "Lovelace", Position: "Manager", FullTime: true}
	updated, err := l.DepartmentUpdate(ctx, accounting.ID, &data.Department{
		Name:    "Finance",
		Manager: manager,
		Employees: []*data.Employee{
			{FirstName: "Bob", LastName: "Builder", Position: "Clerk", FullTime: true},
			{FirstName: "Cat", LastName: "Stevens", Position: "Clerk"},
		},
	})
	assert.Nil(t, err)
	if !assert.NotNil(t, updated) || !assert.NotNil(t, updated.Manager) {
		return
	}
	assert.Equal(t, accounting.ID, updated.ID)
	assert.Equal(t, "Finance", updated.Name)
	assert.NotZero(t, updated.Manager.ID)
	assert.Len(t, updated.Employees, 2)

	// member filters
	fullTime, partTime := true, false
	employees, err := l.DepartmentEmployeesRead(ctx, accounting.ID, data.DepartmentEmployeeSearch{})
	assert.Nil(t, err)
	assert.Len(t, employees, 2)
	employees, err = l.DepartmentEmployeesRead(ctx, accounting.ID, data.DepartmentEmployeeSearch{FullTime: &fullTime})
	assert.Nil(t, err)
	if assert.Len(t, employees, 1) {
		assert.Equal(t, "Bob", employees[0].FirstName)
	}
	employees, err = l.DepartmentEmployeesRead(ctx, accounting.ID, data.DepartmentEmployeeSearch{FullTime: &partTime})
	assert.Nil(t, err)
	if assert.Len(t, employees, 1) {
		assert.Equal(t, "Cat", employees[0].FirstName)
	}

	// update without a manager keeps the manager, members are replaced
	updatedAgain, err := l.DepartmentUpdate(ctx, accounting.ID, &data.Department{
		Name:      "Finance",
		Employees: []*data.Employee{},
	})
	assert.Nil(t, err)
	if assert.NotNil(t, updatedAgain) {
		assert.Equal(t, updated.Manager, updatedAgain.Manager)
		assert.Empty(t, updatedAgain.Employees)
	}

	// delete
	err = l.DepartmentDelete(ctx, accounting.ID)
	assert.Nil(t, err)
	_, err = l.DepartmentRead(ctx, accounting.ID)
	assert.True(t, errors.Is(err, logic.ErrDepartmentNotFound))
	err = l.DepartmentDelete(ctx, accounting.ID)
	assert.True(t, errors.Is(err, logic.ErrDepartmentNotFound))

	// the manager outlives the department
	employee, err := l.EmployeeRead(ctx, updated.Manager.ID)
	assert.Nil(t, err)
	assert.Equal(t, updated.Manager, employee)
}

func (l *logicTest) TestDepartmentsNotFound(t *testing.T) {
	ctx := context.TODO()
	const id int64 = 9999

	department, err := l.DepartmentRead(ctx, id)
	assert.True(t, errors.Is(err, logic.ErrDepartmentNotFound))
	assert.Contains(t, err.Error(), "9999")
	assert.Nil(t, department)
	employees, err := l.DepartmentEmployeesRead(ctx, id, data.DepartmentEmployeeSearch{})
	assert.True(t, errors.Is(err, logic.ErrDepartmentNotFound))
	assert.Nil(t, employees)
	department, err = l.DepartmentUpdate(ctx, id, &data.Department{Name: "Nothing"})
	assert.True(t, errors.Is(err, logic.ErrDepartmentNotFound))
	assert.Nil(t, department)
}

func (l *logicTest) TestEmployees(t *testing.T) {
	ctx := context.TODO()
	position := internal.GenerateId()

	created, err := l.EmployeeCreate(ctx, data.EmployeeCreate{
		FirstName: "Dee",
		LastName:  "Dee",
		Position:  position,
		FullTime:  true,
	})
	assert.Nil(t, err)
	if !assert.NotNil(t, created) {
		return
	}
	assert.NotZero(t, created.ID)

	employee, err := l.EmployeeRead(ctx, created.ID)
	assert.Nil(t, err)
	assert.Equal(t, created, employee)

	// each combination of filters routes to its own query
	fullTime := true
	for _, c := range []struct {
		search data.EmployeeSearch
		query  string
	}{
		{data.EmployeeSearch{}, "all"},
		{data.EmployeeSearch{Position: &position}, "position"},
		{data.EmployeeSearch{FullTime: &fullTime}, "full_time"},
		{data.EmployeeSearch{Position: &position, FullTime: &fullTime}, "position_full_time"},
	} {
		employees, err := l.EmployeesRead(ctx, c.search)
		assert.Nil(t, err)
		assert.Contains(t, employees, created)
		assert.Equal(t, c.query, l.store.lastQuery)
	}

	updated, err := l.EmployeeUpdate(ctx, created.ID, &data.Employee{
		FirstName: "Dum",
		LastName:  "Dum",
		Position:  position,
		FullTime:  false,
	})
	assert.Nil(t, err)
	assert.Equal(t, &data.Employee{
		ID:        created.ID,
		FirstName: "Dum",
		LastName:  "Dum",
		Position:  position,
	}, updated)
	employees, err := l.EmployeesRead(ctx, data.EmployeeSearch{Position: &position, FullTime: &fullTime})
	assert.Nil(t, err)
	assert.Empty(t, employees)
	assert.NotNil(t, employees)

	err = l.EmployeeDelete(ctx, created.ID)
	assert.Nil(t, err)
	_, err = l.EmployeeRead(ctx, created.ID)
	assert.True(t, errors.Is(err, logic.ErrEmployeeNotFound))
	err = l.EmployeeDelete(ctx, created.ID)
	assert.True(t, errors.Is(err, logic.ErrEmployeeNotFound))
	_, err = l.EmployeeUpdate(ctx, created.ID, &data.Employee{})
	assert.True(t, errors.Is(err, logic.ErrEmployeeNotFound))
}

func testLogic(t *testing.T) {
	c := newLogicTest()

	ctx := context.TODO()
	err := c.logic.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure logicTest")
	}
	err = c.logic.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open logicTest")
	}
	defer func() {
		_ = c.logic.Close(ctx)
	}()
	t.Run("Departments", c.TestDepartments)
	t.Run("Departments Not Found", c.TestDepartmentsNotFound)
	t.Run("Employees", c.TestEmployees)
}

func TestLogic(t *testing.T) {
	testLogic(t)
}

func TestLogicMutateDisabled(t *testing.T) {
	ctx := context.TODO()
	c := newLogicTest()

	err := c.logic.Configure(map[string]string{"LOGIC_MUTATE_DISABLED": "true"})
	assert.Nil(t, err)
	err = c.logic.Open(ctx)
	assert.Nil(t, err)

	_, err = c.DepartmentCreate(ctx, "Accounting")
	assert.True(t, errors.Is(err, logic.ErrMutationDisabled))
	_, err = c.EmployeeCreate(ctx, data.EmployeeCreate{FirstName: "A", LastName: "B", Position: "C"})
	assert.True(t, errors.Is(err, logic.ErrMutationDisabled))
	err = c.EmployeeDelete(ctx, 1)
	assert.True(t, errors.Is(err, logic.ErrMutationDisabled))
	departments, err := c.DepartmentsRead(ctx)
	assert.Nil(t, err)
	assert.Empty(t, departments)

	err = c.logic.Configure(map[string]string{"LOGIC_MUTATE_DISABLED": "maybe"})
	assert.NotNil(t, err)
}

func TestLogicOpenWithoutStore(t *testing.T) {
	l := logic.NewLogic()
	assert.NotNil(t, l.Open(context.TODO()))
}
