package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/logic"
	"github.com/antonio-alexander/go-hr-service/internal/utilities"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const defaultShutdownTimeout = 10 * time.Second

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

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
	}
	ctx      context.Context
	cancel   context.CancelFunc
	router   *mux.Router
	server   *http.Server
	validate *validator.Validate
	timers   utilities.Timers
	utilities.Logger
	logic.Logic
}

// NewService accepts a logic.Logic, a utilities.Logger and a
// utilities.Timers as parameters
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
} {
	router := mux.NewRouter()
	s := &service{
		router: router,
		server: &http.Server{
			Handler: router,
		},
		validate: validator.New(),
		timers:   utilities.NewTimers(),
		Logger:   utilities.NewNoopLogger(),
	}
	s.config.shutdownTimeout = defaultShutdownTimeout
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.Logic = p
		case utilities.Timers:
			s.timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	return s
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	if !s.config.corsDisabled {
		s.server.Handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			Debug:            s.config.corsDebug,
		}).Handler(s.router)
	}
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		close(started)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: here we're accounting for a situation where the server closes unexpectedly
		// but quickly (within a second of starting); this allows us to respond to errors such as
		// the port being already used
		return err
	case <-time.After(time.Second):
		s.Info(s.ctx, "started server: %s", s.server.Addr)
		return nil
	}
}

// requestContext attaches the request's correlation id (or a new one) to
// the context and echoes it back in the response
func (s *service) requestContext(writer http.ResponseWriter, request *http.Request) context.Context {
	ctx := internal.CtxWithCorrelationId(request.Context(), getCorrelationId(request))
	writer.Header().Set(data.HeaderCorrelationId, internal.CorrelationIdFromCtx(ctx))
	return ctx
}

// startTimer starts a timer for group if timers are enabled, the returned
// function stops it
func (s *service) startTimer(ctx context.Context, group string) func() {
	if !s.config.timersEnabled {
		return func() {}
	}
	index := s.timers.Start(group)
	return func() {
		s.Trace(ctx, "%s took %v", group, s.timers.Stop(group, index))
	}
}

func (s *service) respond(ctx context.Context, writer http.ResponseWriter, operation string, err error, status int, item any) {
	if err := handleResponse(writer, err, status, item); err != nil {
		s.Debug(ctx, "%s failed: %s", operation, err)
		return
	}
	s.Trace(ctx, "executed %s", operation)
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-hr-service\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

func (s *service) endpointDepartmentsRead(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "departments_read")()
	departments, err := s.DepartmentsRead(ctx)
	s.respond(ctx, writer, "departments_read", err, http.StatusOK, &data.Response{
		Departments: departments,
	})
}

func (s *service) endpointDepartmentCreate(writer http.ResponseWriter, request *http.Request) {
	var departmentCreate data.DepartmentCreate

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "department_create")()
	if err := decodeRequest(s.validate, request, &departmentCreate); err != nil {
		s.respond(ctx, writer, "department_create", err, 0, nil)
		return
	}
	department, err := s.DepartmentCreate(ctx, departmentCreate.Name)
	s.respond(ctx, writer, "department_create", err, http.StatusCreated, &data.Response{
		Department: department,
	})
}

func (s *service) endpointDepartmentRead(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "department_read")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.respond(ctx, writer, "department_read", err, 0, nil)
		return
	}
	department, err := s.DepartmentRead(ctx, id)
	s.respond(ctx, writer, "department_read", err, http.StatusOK, &data.Response{
		Department: department,
	})
}

func (s *service) endpointDepartmentUpdate(writer http.ResponseWriter, request *http.Request) {
	var department data.Department

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "department_update")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.respond(ctx, writer, "department_update", err, 0, nil)
		return
	}
	if err := decodeRequest(s.validate, request, &department); err != nil {
		s.respond(ctx, writer, "department_update", err, 0, nil)
		return
	}
	departmentUpdated, err := s.DepartmentUpdate(ctx, id, &department)
	s.respond(ctx, writer, "department_update", err, http.StatusOK, &data.Response{
		Department: departmentUpdated,
	})
}

func (s *service) endpointDepartmentDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "department_delete")()
	id, err := idFromPath(mux.Vars(request))
	if err == nil {
		err = s.DepartmentDelete(ctx, id)
	}
	s.respond(ctx, writer, "department_delete", err, http.StatusNoContent, nil)
}

func (s *service) endpointDepartmentEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	var search data.DepartmentEmployeeSearch

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "department_employees_read")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.respond(ctx, writer, "department_employees_read", err, 0, nil)
		return
	}
	if err := search.FromParams(request.URL.Query()); err != nil {
		s.respond(ctx, writer, "department_employees_read", badRequest(err), 0, nil)
		return
	}
	employees, err := s.DepartmentEmployeesRead(ctx, id, search)
	s.respond(ctx, writer, "department_employees_read", err, http.StatusOK, &data.Response{
		Employees: employees,
	})
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	var search data.EmployeeSearch

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employees_read")()
	if err := search.FromParams(request.URL.Query()); err != nil {
		s.respond(ctx, writer, "employees_read", badRequest(err), 0, nil)
		return
	}
	employees, err := s.EmployeesRead(ctx, search)
	s.respond(ctx, writer, "employees_read", err, http.StatusOK, &data.Response{
		Employees: employees,
	})
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	var employeeCreate data.EmployeeCreate

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_create")()
	if err := decodeRequest(s.validate, request, &employeeCreate); err != nil {
		s.respond(ctx, writer, "employee_create", err, 0, nil)
		return
	}
	employee, err := s.EmployeeCreate(ctx, employeeCreate)
	s.respond(ctx, writer, "employee_create", err, http.StatusCreated, &data.Response{
		Employee: employee,
	})
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_read")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.respond(ctx, writer, "employee_read", err, 0, nil)
		return
	}
	employee, err := s.EmployeeRead(ctx, id)
	s.respond(ctx, writer, "employee_read", err, http.StatusOK, &data.Response{
		Employee: employee,
	})
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	var employeeUpdate data.EmployeeCreate

	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_update")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.respond(ctx, writer, "employee_update", err, 0, nil)
		return
	}
	if err := decodeRequest(s.validate, request, &employeeUpdate); err != nil {
		s.respond(ctx, writer, "employee_update", err, 0, nil)
		return
	}
	employee, err := s.EmployeeUpdate(ctx, id, &data.Employee{
		FirstName: employeeUpdate.FirstName,
		LastName:  employeeUpdate.LastName,
		Position:  employeeUpdate.Position,
		FullTime:  employeeUpdate.FullTime,
	})
	s.respond(ctx, writer, "employee_update", err, http.StatusOK, &data.Response{
		Employee: employee,
	})
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	defer s.startTimer(ctx, "employee_delete")()
	id, err := idFromPath(mux.Vars(request))
	if err == nil {
		err = s.EmployeeDelete(ctx, id)
	}
	s.respond(ctx, writer, "employee_delete", err, http.StatusNoContent, nil)
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	s.respond(ctx, writer, "timers_read", nil, http.StatusOK, s.timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.requestContext(writer, request)
	s.timers.Clear()
	s.respond(ctx, writer, "timers_clear", nil, http.StatusNoContent, nil)
}

func (s *service) buildRoutes() {
	s.router.HandleFunc("/", s.endpointDefault())
	s.router.HandleFunc(data.RouteDepartments, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointDepartmentsRead(w, r)
		case http.MethodPost:
			s.endpointDepartmentCreate(w, r)
		}
	})
	s.router.HandleFunc(data.RouteDepartmentsId, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointDepartmentRead(w, r)
		case http.MethodPut:
			s.endpointDepartmentUpdate(w, r)
		case http.MethodDelete:
			s.endpointDepartmentDelete(w, r)
		}
	})
	s.router.HandleFunc(data.RouteDepartmentsIdEmployees, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointDepartmentEmployeesRead(w, r)
		}
	})
	s.router.HandleFunc(data.RouteEmployees, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeesRead(w, r)
		case http.MethodPost:
			s.endpointEmployeeCreate(w, r)
		}
	})
	s.router.HandleFunc(data.RouteEmployeesId, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointEmployeeRead(w, r)
		case http.MethodPut:
			s.endpointEmployeeUpdate(w, r)
		case http.MethodDelete:
			s.endpointEmployeeDelete(w, r)
		}
	})
	s.router.HandleFunc(data.RouteTimers, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			s.endpointTimersRead(w, r)
		case http.MethodDelete:
			s.endpointTimersClear(w, r)
		}
	})
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods := envs["SERVICE_CORS_ALLOWED_METHODS"]; allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders := envs["SERVICE_CORS_ALLOWED_HEADERS"]; allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.Logic == nil {
		return errors.New("service: logic not provided")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	s.buildRoutes()
	if err := s.launchServer(); err != nil {
		s.cancel()
		return err
	}
	return nil
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.Wait()
	return nil
}
