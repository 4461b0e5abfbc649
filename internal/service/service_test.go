package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/logic"
	"github.com/antonio-alexander/go-hr-service/internal/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	envs = map[string]string{
		"SERVICE_ADDRESS":                "localhost",
		"SERVICE_PORT":                   "8089",
		"SERVICE_SHUTDOWN_TIMEOUT":       "5",
		"SERVICE_CORS_ALLOW_CREDENTIALS": "",
		"SERVICE_CORS_ALLOWED_ORIGINS":   "",
		"SERVICE_CORS_ALLOWED_METHODS":   "",
		"SERVICE_CORS_DISABLED":          "",
		"SERVICE_CORS_DEBUG":             "",
		"SERVICE_TIMERS_ENABLED":         "true",
	}
)

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

// fakeLogic keeps departments and employees in memory
type fakeLogic struct {
	sync.Mutex
	nextId      int64
	departments map[int64]*data.Department
	employees   map[int64]*data.Employee
}

func newFakeLogic() *fakeLogic {
	return &fakeLogic{
		departments: make(map[int64]*data.Department),
		employees:   make(map[int64]*data.Employee),
	}
}

func (f *fakeLogic) id() int64 {
	f.nextId++
	return f.nextId
}

func (f *fakeLogic) DepartmentsRead(ctx context.Context) ([]*data.Department, error) {
	f.Lock()
	defer f.Unlock()
	departments := []*data.Department{}
	for _, department := range f.departments {
		departments = append(departments, department.Copy())
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].ID < departments[j].ID })
	return departments, nil
}

func (f *fakeLogic) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	f.Lock()
	defer f.Unlock()
	department, found := f.departments[id]
	if !found {
		return nil, errors.Wrapf(logic.ErrDepartmentNotFound, "id: %d", id)
	}
	return department.Copy(), nil
}

func (f *fakeLogic) DepartmentEmployeesRead(ctx context.Context, id int64, search data.DepartmentEmployeeSearch) ([]*data.Employee, error) {
	department, err := f.DepartmentRead(ctx, id)
	if err != nil {
		return nil, err
	}
	return search.Filter(department.Employees), nil
}

func (f *fakeLogic) DepartmentCreate(ctx context.Context, name string) (*data.Department, error) {
	f.Lock()
	defer f.Unlock()
	for _, department := range f.departments {
		if department.Name == name {
			return nil, errors.Wrapf(logic.ErrDepartmentAlreadyExists, "name: %q", name)
		}
	}
	department := &data.Department{ID: f.id(), Name: name, Employees: []*data.Employee{}}
	f.departments[department.ID] = department
	return department.Copy(), nil
}

func (f *fakeLogic) DepartmentUpdate(ctx context.Context, id int64, department *data.Department) (*data.Department, error) {
	f.Lock()
	defer f.Unlock()
	existing, found := f.departments[id]
	if !found {
		return nil, errors.Wrapf(logic.ErrDepartmentNotFound, "id: %d", id)
	}
	existing.Name = department.Name
	if department.Manager != nil {
		existing.Manager = department.Manager.Copy()
	}
	existing.Employees = department.Copy().Employees
	return existing.Copy(), nil
}

func (f *fakeLogic) DepartmentDelete(ctx context.Context, id int64) error {
	f.Lock()
	defer f.Unlock()
	if _, found := f.departments[id]; !found {
		return errors.Wrapf(logic.ErrDepartmentNotFound, "id: %d", id)
	}
	delete(f.departments, id)
	return nil
}

func (f *fakeLogic) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	f.Lock()
	defer f.Unlock()
	employees := []*data.Employee{}
	for _, employee := range f.employees {
		if search.Position != nil && employee.Position != *search.Position {
			continue
		}
		if search.FullTime != nil && employee.FullTime != *search.FullTime {
			continue
		}
		employees = append(employees, employee.Copy())
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (f *fakeLogic) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	f.Lock()
	defer f.Unlock()
	employee, found := f.employees[id]
	if !found {
		return nil, errors.Wrapf(logic.ErrEmployeeNotFound, "id: %d", id)
	}
	return employee.Copy(), nil
}

func (f *fakeLogic) EmployeeCreate(ctx context.Context, employeeCreate data.EmployeeCreate) (*data.Employee, error) {
	f.Lock()
	defer f.Unlock()
	employee := &data.Employee{
		ID:        f.id(),
		FirstName: employeeCreate.FirstName,
		LastName:  employeeCreate.LastName,
		Position:  employeeCreate.Position,
		FullTime:  employeeCreate.FullTime,
	}
	f.employees[employee.ID] = employee
	return employee.Copy(), nil
}

func (f *fakeLogic) EmployeeUpdate(ctx context.Context, id int64, employee *data.Employee) (*data.Employee, error) {
	f.Lock()
	defer f.Unlock()
	if _, found := f.employees[id]; !found {
		return nil, errors.Wrapf(logic.ErrEmployeeNotFound, "id: %d", id)
	}
	employee = employee.Copy()
	employee.ID = id
	f.employees[id] = employee
	return employee.Copy(), nil
}

func (f *fakeLogic) EmployeeDelete(ctx context.Context, id int64) error {
	f.Lock()
	defer f.Unlock()
	if _, found := f.employees[id]; !found {
		return errors.Wrapf(logic.ErrEmployeeNotFound, "id: %d", id)
	}
	delete(f.employees, id)
	return nil
}

type serviceTest struct {
	service interface {
		internal.Configurer
		internal.Opener
	}
	client  *http.Client
	address string
}

func newServiceTest(parameters ...any) *serviceTest {
	return &serviceTest{
		service: service.NewService(parameters...),
		client:  &http.Client{},
	}
}

func (s *serviceTest) Configure(envs map[string]string) error {
	if err := s.service.Configure(envs); err != nil {
		return err
	}
	s.address = "http://" + envs["SERVICE_ADDRESS"]
	if port := envs["SERVICE_PORT"]; port != "" {
		s.address += ":" + port
	}
	return nil
}

func (s *serviceTest) TestDepartments(t *testing.T) {
	var response data.Response

	// create department
	uriDepartments := s.address + data.RouteDepartments
	_, err := internal.DoRequest(s.client, uriDepartments, http.MethodPost,
		&data.DepartmentCreate{Name: "Accounting"}, &response)
	assert.Nil(t, err)
	departmentCreated := response.Department
	if !assert.NotNil(t, departmentCreated) {
		return
	}
	assert.NotZero(t, departmentCreated.ID)
	assert.Equal(t, "Accounting", departmentCreated.Name)

	// create department again
	_, err = internal.DoRequest(s.client, uriDepartments, http.MethodPost,
		&data.DepartmentCreate{Name: "Accounting"})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}

	// create department without a name
	_, err = internal.DoRequest(s.client, uriDepartments, http.MethodPost,
		&data.DepartmentCreate{})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}

	// read department
	uriDepartment := fmt.Sprintf(s.address+data.RouteDepartmentsIdf, departmentCreated.ID)
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodGet, nil, &response)
	assert.Nil(t, err)
	assert.Equal(t, departmentCreated, response.Department)

	// read departments
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriDepartments, http.MethodGet, nil, &response)
	assert.Nil(t, err)
	assert.Contains(t, response.Departments, departmentCreated)

	// read department employees without members
	uriDepartmentEmployees := fmt.Sprintf(s.address+data.RouteDepartmentsIdEmployeesf, departmentCreated.ID)
	bytes, err := internal.DoRequest(s.client, uriDepartmentEmployees, http.MethodGet, nil)
	assert.Nil(t, err)
	assert.Contains(t, string(bytes), `"employees":[]`)

	// update department with a null member
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodPut, &data.Department{
		Name:      "Finance",
		Employees: []*data.Employee{nil},
	})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}

	// update department
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodPut, &data.Department{
		Name:    "Finance",
		Manager: &data.Employee{ID: 1, FirstName: "Ada", LastName: "Lovelace", Position: "Manager", FullTime: true},
		Employees: []*data.Employee{
			{ID: 2, FirstName: "Bob", LastName: "Builder", Position: "Clerk", FullTime: true},
			{ID: 3, FirstName: "Cat", LastName: "Stevens", Position: "Clerk"},
		},
	}, &response)
	assert.Nil(t, err)
	if assert.NotNil(t, response.Department) {
		assert.Equal(t, "Finance", response.Department.Name)
		assert.NotNil(t, response.Department.Manager)
		assert.Len(t, response.Department.Employees, 2)
	}

	// read department employees
	fullTime := true
	search := data.DepartmentEmployeeSearch{FullTime: &fullTime}
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriDepartmentEmployees, http.MethodGet, search.ToParams(), &response)
	assert.Nil(t, err)
	if assert.Len(t, response.Employees, 1) {
		assert.Equal(t, "Bob", response.Employees[0].FirstName)
	}
	_, err = internal.DoRequest(s.client, uriDepartmentEmployees, http.MethodGet,
		url.Values{data.ParameterFullTime: []string{"sometimes"}})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}

	// delete department
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodDelete, nil)
	assert.Nil(t, err)
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodGet, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "404")
	}
	_, err = internal.DoRequest(s.client, uriDepartment, http.MethodDelete, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "404")
	}

	// invalid id
	_, err = internal.DoRequest(s.client, s.address+data.RouteDepartments+"/abc", http.MethodGet, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}
}

func (s *serviceTest) TestEmployees(t *testing.T) {
	var response data.Response

	// create employee
	uriEmployees := s.address + data.RouteEmployees
	_, err := internal.DoRequest(s.client, uriEmployees, http.MethodPost, &data.EmployeeCreate{
		FirstName: "Dee",
		LastName:  "Dee",
		Position:  "Developer",
		FullTime:  true,
	}, &response)
	assert.Nil(t, err)
	employeeCreated := response.Employee
	if !assert.NotNil(t, employeeCreated) {
		return
	}
	assert.NotZero(t, employeeCreated.ID)

	// create employee without a position
	_, err = internal.DoRequest(s.client, uriEmployees, http.MethodPost, &data.EmployeeCreate{
		FirstName: "Dee",
		LastName:  "Dee",
	})
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "400")
	}

	// read employee
	uriEmployee := fmt.Sprintf(s.address+data.RouteEmployeesIdf, employeeCreated.ID)
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriEmployee, http.MethodGet, nil, &response)
	assert.Nil(t, err)
	assert.Equal(t, employeeCreated, response.Employee)

	// read employees
	position, partTime := "Developer", false
	search := data.EmployeeSearch{Position: &position}
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriEmployees, http.MethodGet, search.ToParams(), &response)
	assert.Nil(t, err)
	assert.Equal(t, []*data.Employee{employeeCreated}, response.Employees)
	search.FullTime = &partTime
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriEmployees, http.MethodGet, search.ToParams(), &response)
	assert.Nil(t, err)
	assert.Empty(t, response.Employees)

	// update employee
	response = data.Response{}
	_, err = internal.DoRequest(s.client, uriEmployee, http.MethodPut, &data.EmployeeCreate{
		FirstName: "Dum",
		LastName:  "Dum",
		Position:  "Developer",
	}, &response)
	assert.Nil(t, err)
	assert.Equal(t, &data.Employee{
		ID:        employeeCreated.ID,
		FirstName: "Dum",
		LastName:  "Dum",
		Position:  "Developer",
	}, response.Employee)

	// delete employee
	_, err = internal.DoRequest(s.client, uriEmployee, http.MethodDelete, nil)
	assert.Nil(t, err)
	_, err = internal.DoRequest(s.client, uriEmployee, http.MethodGet, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "404")
	}

	// method not allowed
	_, err = internal.DoRequest(s.client, uriEmployees, http.MethodPatch, nil)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "405")
	}
}

func (s *serviceTest) TestCorrelationId(t *testing.T) {
	request, err := http.NewRequest(http.MethodGet, s.address+data.RouteEmployees, nil)
	if !assert.Nil(t, err) {
		return
	}
	request.Header.Set(data.HeaderCorrelationId, "abc-123")
	response, err := s.client.Do(request)
	if !assert.Nil(t, err) {
		return
	}
	defer response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "abc-123", response.Header.Get(data.HeaderCorrelationId))

	response, err = s.client.Get(s.address + data.RouteEmployees)
	if !assert.Nil(t, err) {
		return
	}
	defer response.Body.Close()
	assert.NotEmpty(t, response.Header.Get(data.HeaderCorrelationId))
}

func (s *serviceTest) TestTimers(t *testing.T) {
	var timers data.Timers

	_, err := internal.DoRequest(s.client, s.address+data.RouteTimers, http.MethodGet, nil, &timers)
	assert.Nil(t, err)
	assert.Contains(t, timers.Totals, "employees_read")

	_, err = internal.DoRequest(s.client, s.address+data.RouteTimers, http.MethodDelete, nil)
	assert.Nil(t, err)
	timers = data.Timers{}
	_, err = internal.DoRequest(s.client, s.address+data.RouteTimers, http.MethodGet, nil, &timers)
	assert.Nil(t, err)
	assert.Empty(t, timers.Totals)
}

func testService(t *testing.T) {
	c := newServiceTest(newFakeLogic())

	ctx := context.TODO()
	err := c.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure testService")
	}
	err = c.service.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open testService")
	}
	defer func() {
		if err := c.service.Close(ctx); err != nil {
			t.Logf("error while closing testService: %s", err)
		}
	}()
	t.Run("Departments", c.TestDepartments)
	t.Run("Employees", c.TestEmployees)
	t.Run("Correlation Id", c.TestCorrelationId)
	t.Run("Timers", c.TestTimers)
}

func TestService(t *testing.T) {
	testService(t)
}

func TestServiceOpenWithoutLogic(t *testing.T) {
	s := service.NewService()
	assert.NotNil(t, s.Open(context.TODO()))
}
