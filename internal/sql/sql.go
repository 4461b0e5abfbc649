package sql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	databaseIsolation         = sql.LevelSerializable
	tableDepartments          = "departments"
	tableEmployees            = "employees"
	tableDepartmentManagers   = "department_managers"
	tableDepartmentEmployees  = "department_employees"
	defaultConnectTimeout     = 30 * time.Second
	defaultMaxConnectInterval = 5 * time.Second
)

// Employees is the store for individual employee rows, reads that expect a
// single employee return nil (without an error) when it doesn't exist
type Employees interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeReadByFirstName(ctx context.Context, firstName string) (*data.Employee, error)
	EmployeesReadByPosition(ctx context.Context, position string) ([]*data.Employee, error)
	EmployeesReadByFullTime(ctx context.Context, fullTime bool) ([]*data.Employee, error)
	EmployeesReadByPositionAndFullTime(ctx context.Context, position string, fullTime bool) ([]*data.Employee, error)
	EmployeeSave(ctx context.Context, employee *data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, employee *data.Employee) error
}

// Departments loads and persists the department aggregate (department,
// manager and members) as a single unit
type Departments interface {
	DepartmentsRead(ctx context.Context) ([]*data.Department, error)
	DepartmentRead(ctx context.Context, id int64) (*data.Department, error)
	DepartmentReadByName(ctx context.Context, name string) (*data.Department, error)
	DepartmentSave(ctx context.Context, department *data.Department) (*data.Department, error)
	DepartmentDelete(ctx context.Context, department *data.Department) error
}

type Sql interface {
	Employees
	Departments
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type mySql struct {
	sync.RWMutex
	config struct {
		Hostname       string        `json:"hostname"`
		Port           string        `json:"port"`
		Username       string        `json:"username"`
		Password       string        `json:"password"`
		Database       string        `json:"database"`
		ConnectTimeout time.Duration `json:"connect_timeout"`
		QueryTimeout   time.Duration `json:"query_timeout"`
		ParseTime      bool          `json:"parse_time"`
	}
	*sql.DB
	utilities.Logger
	opened   bool
	injected bool
}

// NewMySql creates the store; a utilities.Logger and an already opened
// *sql.DB can be provided as parameters
func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	m := &mySql{Logger: utilities.NewNoopLogger()}
	m.config.ConnectTimeout = defaultConnectTimeout
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		case *sql.DB:
			m.DB, m.injected = v, true
		}
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if queryTimeout := envs["DATABASE_QUERY_TIMEOUT"]; queryTimeout != "" {
		i, err := strconv.ParseInt(queryTimeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "DATABASE_QUERY_TIMEOUT")
		}
		s.config.QueryTimeout = time.Duration(i) * time.Second
	}
	if connectTimeout := envs["DATABASE_CONNECT_TIMEOUT"]; connectTimeout != "" {
		i, err := strconv.ParseInt(connectTimeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "DATABASE_CONNECT_TIMEOUT")
		}
		s.config.ConnectTimeout = time.Duration(i) * time.Second
	}
	if _, ok := envs["DATABASE_PARSE_TIME"]; ok {
		s.config.ParseTime, _ = strconv.ParseBool(envs["DATABASE_PARSE_TIME"])
	}
	return nil
}

func (s *mySql) mysqlConfig() *mysql.Config {
	config := mysql.NewConfig()
	config.User = s.config.Username
	config.Passwd = s.config.Password
	config.Net = "tcp"
	config.Addr = net.JoinHostPort(s.config.Hostname, s.config.Port)
	config.DBName = s.config.Database
	config.ParseTime = s.config.ParseTime
	return config
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	if !s.injected {
		connector, err := mysql.NewConnector(s.mysqlConfig())
		if err != nil {
			return err
		}
		s.DB = sql.OpenDB(connector)
	}
	exponentialBackOff := backoff.NewExponentialBackOff()
	exponentialBackOff.MaxInterval = defaultMaxConnectInterval
	if _, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := s.PingContext(ctx); err != nil {
			s.Debug(ctx, "unable to ping database, retrying: %s", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(exponentialBackOff),
		backoff.WithMaxElapsedTime(s.config.ConnectTimeout),
	); err != nil {
		if !s.injected {
			_ = s.DB.Close()
		}
		return errors.Wrap(err, "unable to connect to database")
	}
	s.opened = true
	s.Info(ctx, "connected to database: %s", s.config.Database)
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	s.opened = false
	return nil
}

func (s *mySql) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.QueryTimeout)
}

// withTx runs fx inside a single transaction, the transaction is committed
// only if fx succeeds and is rolled back on error or panic
func withTx(ctx context.Context, db *sql.DB, fx func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: databaseIsolation})
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
				err = errors.Wrapf(err, "rollback failed: %s", e)
			}
			return
		}
		err = errors.Wrap(tx.Commit(), "unable to commit transaction")
	}()
	return fx(tx)
}
