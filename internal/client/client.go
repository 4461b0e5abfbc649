package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-hr-service/internal"
	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/utilities"

	"github.com/pkg/errors"
)

type Client interface {
	DepartmentsRead(ctx context.Context) ([]*data.Department, error)
	DepartmentRead(ctx context.Context, id int64) (*data.Department, error)
	DepartmentEmployeesRead(ctx context.Context, id int64, search data.DepartmentEmployeeSearch) ([]*data.Employee, error)
	DepartmentCreate(ctx context.Context, name string) (*data.Department, error)
	DepartmentUpdate(ctx context.Context, id int64, department *data.Department) (*data.Department, error)
	DepartmentDelete(ctx context.Context, id int64) error
	EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeCreate(ctx context.Context, employeeCreate data.EmployeeCreate) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.EmployeeCreate) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
	TimersRead(ctx context.Context) (*data.Timers, error)
	TimersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol   string
		address    string
		port       string
		timeout    int64
		sslCaFile  string
		sslCrtFile string
		sslKeyFile string
	}
	address string
	utilities.Logger
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{
		Client: &http.Client{},
		Logger: utilities.NewNoopLogger(),
	}
	c.config.protocol = "http"
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *client) doRequest(ctx context.Context, uri, method string, item any) ([]byte, error) {
	var body io.Reader

	switch d := item.(type) {
	case url.Values:
		if encoded := d.Encode(); encoded != "" {
			uri = uri + "?" + encoded
		}
	case nil:
	default:
		byts, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(byts)
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return nil, err
	}
	bytes, err := io.ReadAll(response.Body)
	defer response.Body.Close()
	if err != nil {
		return nil, err
	}
	switch response.StatusCode {
	default:
		err := responseError(response.StatusCode, bytes)
		c.Debug(ctx, "%s %s: %s", method, uri, err)
		return nil, err
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return bytes, nil
	}
}

func (c *client) doResponse(ctx context.Context, uri, method string, item any) (*data.Response, error) {
	bytes, err := c.doRequest(ctx, uri, method, item)
	if err != nil {
		return nil, err
	}
	response := &data.Response{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok {
		c.config.port = port
	}
	if protocol := envs["CLIENT_PROTOCOL"]; protocol != "" {
		c.config.protocol = protocol
	}
	if timeout := envs["CLIENT_TIMEOUT"]; timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "CLIENT_TIMEOUT")
		}
		c.config.timeout = i
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	c.Debug(ctx, "client configured for %s", c.address)
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) DepartmentsRead(ctx context.Context) ([]*data.Department, error) {
	response, err := c.doResponse(ctx, c.address+data.RouteDepartments, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return response.Departments, nil
}

func (c *client) DepartmentRead(ctx context.Context, id int64) (*data.Department, error) {
	uri := fmt.Sprintf(c.address+data.RouteDepartmentsIdf, id)
	response, err := c.doResponse(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return response.Department, nil
}

func (c *client) DepartmentEmployeesRead(ctx context.Context, id int64, search data.DepartmentEmployeeSearch) ([]*data.Employee, error) {
	uri := fmt.Sprintf(c.address+data.RouteDepartmentsIdEmployeesf, id)
	response, err := c.doResponse(ctx, uri, http.MethodGet, search.ToParams())
	if err != nil {
		return nil, err
	}
	return response.Employees, nil
}

func (c *client) DepartmentCreate(ctx context.Context, name string) (*data.Department, error) {
	response, err := c.doResponse(ctx, c.address+data.RouteDepartments, http.MethodPost,
		&data.DepartmentCreate{Name: name})
	if err != nil {
		return nil, err
	}
	return response.Department, nil
}

func (c *client) DepartmentUpdate(ctx context.Context, id int64, department *data.Department) (*data.Department, error) {
	uri := fmt.Sprintf(c.address+data.RouteDepartmentsIdf, id)
	response, err := c.doResponse(ctx, uri, http.MethodPut, department)
	if err != nil {
		return nil, err
	}
	return response.Department, nil
}

func (c *client) DepartmentDelete(ctx context.Context, id int64) error {
	uri := fmt.Sprintf(c.address+data.RouteDepartmentsIdf, id)
	_, err := c.doRequest(ctx, uri, http.MethodDelete, nil)
	return err
}

func (c *client) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	response, err := c.doResponse(ctx, c.address+data.RouteEmployees, http.MethodGet, search.ToParams())
	if err != nil {
		return nil, err
	}
	return response.Employees, nil
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	response, err := c.doResponse(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return response.Employee, nil
}

func (c *client) EmployeeCreate(ctx context.Context, employeeCreate data.EmployeeCreate) (*data.Employee, error) {
	response, err := c.doResponse(ctx, c.address+data.RouteEmployees, http.MethodPost, &employeeCreate)
	if err != nil {
		return nil, err
	}
	return response.Employee, nil
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, employee data.EmployeeCreate) (*data.Employee, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	response, err := c.doResponse(ctx, uri, http.MethodPut, &employee)
	if err != nil {
		return nil, err
	}
	return response.Employee, nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) error {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	_, err := c.doRequest(ctx, uri, http.MethodDelete, nil)
	return err
}

func (c *client) TimersRead(ctx context.Context) (*data.Timers, error) {
	bytes, err := c.doRequest(ctx, c.address+data.RouteTimers, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	timers := &data.Timers{}
	if err := json.Unmarshal(bytes, timers); err != nil {
		return nil, err
	}
	return timers, nil
}

func (c *client) TimersClear(ctx context.Context) error {
	_, err := c.doRequest(ctx, c.address+data.RouteTimers, http.MethodDelete, nil)
	return err
}
