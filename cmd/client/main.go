package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/client"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/utilities"

	"github.com/pkg/errors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	args := os.Args[1:]
	envs, err := internal.Envs(os.Getenv("ENV_FILE"))
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

// employeeSearch builds a search from POSITION and FULL_TIME, unset
// variables aren't used as filters
func employeeSearch(envs map[string]string) (data.EmployeeSearch, error) {
	var search data.EmployeeSearch

	if position, ok := envs["POSITION"]; ok {
		search.Position = &position
	}
	if s := envs["FULL_TIME"]; s != "" {
		fullTime, err := strconv.ParseBool(s)
		if err != nil {
			return search, errors.Wrap(err, "FULL_TIME")
		}
		search.FullTime = &fullTime
	}
	return search, nil
}

func employeeCreate(envs map[string]string) data.EmployeeCreate {
	fullTime, _ := strconv.ParseBool(envs["FULL_TIME"])
	return data.EmployeeCreate{
		FirstName: envs["FIRST_NAME"],
		LastName:  envs["LAST_NAME"],
		Position:  envs["POSITION"],
		FullTime:  fullTime,
	}
}

// departmentUpdate builds the update from NAME, MANAGER_ID and EMPLOYEE_IDS
// (comma separated), the employees are read so they're sent in full
func departmentUpdate(ctx context.Context, c client.Client, envs map[string]string) (*data.Department, error) {
	department := &data.Department{
		Name:      envs["NAME"],
		Employees: []*data.Employee{},
	}
	if s := envs["MANAGER_ID"]; s != "" {
		managerId, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "MANAGER_ID")
		}
		if department.Manager, err = c.EmployeeRead(ctx, managerId); err != nil {
			return nil, err
		}
	}
	for _, s := range strings.Split(envs["EMPLOYEE_IDS"], ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		employeeId, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "EMPLOYEE_IDS")
		}
		employee, err := c.EmployeeRead(ctx, employeeId)
		if err != nil {
			return nil, err
		}
		department.Employees = append(department.Employees, employee)
	}
	return department, nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	fmt.Printf("client: go-hr-service v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	//create logger
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//create client
	client := client.NewClient(logger)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// execute command
	ctx, command := internal.CtxWithCorrelationId(context.Background(), ""), envs["COMMAND"]
	id, _ := strconv.ParseInt(envs["ID"], 10, 64)
	switch command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "departments_read":
		departments, err := client.DepartmentsRead(ctx)
		if err != nil {
			return err
		}
		return printJson(departments)
	case "department_read":
		department, err := client.DepartmentRead(ctx, id)
		if err != nil {
			return err
		}
		return printJson(department)
	case "department_employees_read":
		search, err := employeeSearch(envs)
		if err != nil {
			return err
		}
		employees, err := client.DepartmentEmployeesRead(ctx, id,
			data.DepartmentEmployeeSearch{FullTime: search.FullTime})
		if err != nil {
			return err
		}
		return printJson(employees)
	case "department_create":
		department, err := client.DepartmentCreate(ctx, envs["NAME"])
		if err != nil {
			return err
		}
		return printJson(department)
	case "department_update":
		department, err := departmentUpdate(ctx, client, envs)
		if err != nil {
			return err
		}
		if department, err = client.DepartmentUpdate(ctx, id, department); err != nil {
			return err
		}
		return printJson(department)
	case "department_delete":
		return client.DepartmentDelete(ctx, id)
	case "employees_read":
		search, err := employeeSearch(envs)
		if err != nil {
			return err
		}
		employees, err := client.EmployeesRead(ctx, search)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		employee, err := client.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_create":
		employee, err := client.EmployeeCreate(ctx, employeeCreate(envs))
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_update":
		employee, err := client.EmployeeUpdate(ctx, id, employeeCreate(envs))
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_delete":
		return client.EmployeeDelete(ctx, id)
	case "timers_read":
		timers, err := client.TimersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(timers)
	case "timers_clear":
		return client.TimersClear(ctx)
	}
}
