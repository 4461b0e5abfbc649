package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

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

func envInt(envs map[string]string, key string, defaultValue int) int {
	if i, err := strconv.Atoi(envs[key]); err == nil && i > 0 {
		return i
	}
	return defaultValue
}

// scenarioReshuffle has every client repeatedly move random employees
// into a random department; once stopped, every employee must belong to
// at most one department and manage at most one department
func scenarioReshuffle(ctx context.Context, envs map[string]string, logger utilities.Logger,
	clients ...client.Client) error {
	const correlationId string = "scenario_reshuffle"
	const minClients int = 2

	var wg sync.WaitGroup
	var updates, failures atomic.Int64

	nDepartments := envInt(envs, "SCENARIO_DEPARTMENTS", 3)
	nEmployees := envInt(envs, "SCENARIO_EMPLOYEES", 10)
	updateInterval := time.Duration(envInt(envs, "SCENARIO_UPDATE_INTERVAL", 1)) * time.Second
	scenarioDuration := time.Duration(envInt(envs, "SCENARIO_DURATION", 10)) * time.Second
	if len(clients) < minClients {
		return errors.New("not enough clients provided")
	}

	//generate context
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)

	// create departments and employees using the first client
	var departments []*data.Department
	var employees []*data.Employee
	defer func() {
		for _, department := range departments {
			_ = clients[0].DepartmentDelete(ctx, department.ID)
		}
		for _, employee := range employees {
			_ = clients[0].EmployeeDelete(ctx, employee.ID)
		}
		logger.Info(ctx, "deleted %d departments and %d employees", len(departments), len(employees))
	}()
	for i := range nDepartments {
		department, err := clients[0].DepartmentCreate(ctx,
			fmt.Sprintf("%s_%d_%s", correlationId, i, internal.GenerateId()[:8]))
		if err != nil {
			return err
		}
		departments = append(departments, department)
	}
	for i := range nEmployees {
		employee, err := clients[0].EmployeeCreate(ctx, data.EmployeeCreate{
			FirstName: internal.GenerateId()[:14],
			LastName:  internal.GenerateId()[:16],
			Position:  fmt.Sprintf("position_%d", i%3),
			FullTime:  i%2 == 0,
		})
		if err != nil {
			return err
		}
		employees = append(employees, employee)
	}
	logger.Info(ctx, "created %d departments and %d employees", len(departments), len(employees))

	//generate start/stop channels
	start, stop := make(chan struct{}), make(chan struct{})

	//create writer go routines
	for i, c := range clients {
		wg.Add(1)
		go func(ctx context.Context, clientNumber int, client client.Client) {
			defer wg.Done()

			ctx = internal.CtxWithCorrelationId(ctx,
				fmt.Sprintf("%s_%d", correlationId, clientNumber))
			reshuffleFx := func(ctx context.Context) error {
				department := departments[rand.IntN(len(departments))]
				update := &data.Department{
					Name:      department.Name,
					Manager:   employees[rand.IntN(len(employees))],
					Employees: []*data.Employee{},
				}
				for _, j := range rand.Perm(len(employees))[:rand.IntN(len(employees))] {
					if employees[j].ID != update.Manager.ID {
						update.Employees = append(update.Employees, employees[j])
					}
				}
				_, err := client.DepartmentUpdate(ctx, department.ID, update)
				return err
			}
			tUpdate := time.NewTicker(updateInterval)
			defer tUpdate.Stop()
			<-start
			for {
				select {
				case <-stop:
					return
				case <-tUpdate.C:
					updates.Add(1)
					if err := reshuffleFx(ctx); err != nil {
						failures.Add(1)
						logger.Debug(ctx, "error while updating department: %s", err)
					}
				}
			}
		}(ctx, i, c)
	}

	//start the go routines
	close(start)

	//allow go routines to run
	select {
	case <-ctx.Done():
	case <-time.After(scenarioDuration):
	}

	//stop go routines
	close(stop)
	wg.Wait()
	logger.Info(ctx, "executed %d department updates (%d failed)", updates.Load(), failures.Load())

	//verify that every employee belongs to a single department
	members, managers := make(map[int64]int64), make(map[int64]int64)
	for _, department := range departments {
		department, err := clients[0].DepartmentRead(ctx, department.ID)
		if err != nil {
			return err
		}
		if department.Manager != nil {
			if other, found := managers[department.Manager.ID]; found {
				return errors.Errorf("employee %d manages departments %d and %d",
					department.Manager.ID, other, department.ID)
			}
			managers[department.Manager.ID] = department.ID
		}
		for _, employee := range department.Employees {
			if other, found := members[employee.ID]; found {
				return errors.Errorf("employee %d is a member of departments %d and %d",
					employee.ID, other, department.ID)
			}
			members[employee.ID] = department.ID
		}
	}
	logger.Info(ctx, "verified %d members and %d managers", len(members), len(managers))
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	var clients []client.Client
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create logger
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}

	//print version info
	logger.Info(ctx, "scenarios: go-hr-service v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	nClients := envInt(envs, "N_CLIENTS", 2)
	for range nClients {
		//create client
		client := client.NewClient(logger)
		if err := client.Configure(envs); err != nil {
			return err
		}
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing client: %s", err)
			}
		}()
		clients = append(clients, client)
	}

	// execute scenario
	var err error
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		return errors.Errorf("unsupported scenario: %s", scenario)
	case "reshuffle":
		logger.Info(ctx, "executing %s scenario", scenario)
		if err = scenarioReshuffle(ctx, envs, logger, clients...); err != nil {
			logger.Error(ctx, "error while executing %s scenario: %s", scenario, err)
		}
	}
	cancel()
	wg.Wait()
	return err
}
