package data

const (
	RouteDepartments             string = "/departments"
	RouteDepartmentsId           string = RouteDepartments + "/{" + PathId + "}"
	RouteDepartmentsIdf          string = RouteDepartments + "/%d"
	RouteDepartmentsIdEmployees  string = RouteDepartmentsId + "/employees"
	RouteDepartmentsIdEmployeesf string = RouteDepartmentsIdf + "/employees"
	RouteEmployees               string = "/employees"
	RouteEmployeesId             string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf            string = RouteEmployees + "/%d"
	RouteTimers                  string = "/timers"
)

const PathId string = "id"

const (
	ParameterPosition string = "position"
	ParameterFullTime string = "fullTime"
)

const HeaderCorrelationId string = "Correlation-Id"

// Response wraps every successful body; list fields are always encoded so
// an empty list reads as [] rather than a missing key
type Response struct {
	Department  *Department   `json:"department,omitempty"`
	Departments []*Department `json:"departments"`
	Employee    *Employee     `json:"employee,omitempty"`
	Employees   []*Employee   `json:"employees"`
}

type Error struct {
	Error string `json:"error"`
}

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}
