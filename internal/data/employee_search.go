package data

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// EmployeeSearch filters employees; a nil field means the filter
// was not requested (as opposed to a false/empty value)
type EmployeeSearch struct {
	Position *string `json:"position,omitempty"`
	FullTime *bool   `json:"full_time,omitempty"`
}

func (e *EmployeeSearch) ToParams() url.Values {
	params := make(url.Values)
	if e.Position != nil {
		params.Set(ParameterPosition, *e.Position)
	}
	if e.FullTime != nil {
		params.Set(ParameterFullTime, strconv.FormatBool(*e.FullTime))
	}
	return params
}

func (e *EmployeeSearch) FromParams(params url.Values) error {
	for key, value := range params {
		if len(value) <= 0 {
			continue
		}
		switch strings.ToLower(key) {
		case strings.ToLower(ParameterPosition):
			position := value[0]
			e.Position = &position
		case strings.ToLower(ParameterFullTime):
			fullTime, err := strconv.ParseBool(value[0])
			if err != nil {
				return errors.Wrapf(err, "invalid %s", ParameterFullTime)
			}
			e.FullTime = &fullTime
		}
	}
	return nil
}

// DepartmentEmployeeSearch filters the members of a single department
type DepartmentEmployeeSearch struct {
	FullTime *bool `json:"full_time,omitempty"`
}

func (d *DepartmentEmployeeSearch) ToParams() url.Values {
	params := make(url.Values)
	if d.FullTime != nil {
		params.Set(ParameterFullTime, strconv.FormatBool(*d.FullTime))
	}
	return params
}

func (d *DepartmentEmployeeSearch) FromParams(params url.Values) error {
	search := EmployeeSearch{}
	if err := search.FromParams(params); err != nil {
		return err
	}
	d.FullTime = search.FullTime
	return nil
}

func (d *DepartmentEmployeeSearch) Filter(employees []*Employee) []*Employee {
	filtered := make([]*Employee, 0, len(employees))
	for _, employee := range employees {
		if d.FullTime != nil && employee.FullTime != *d.FullTime {
			continue
		}
		filtered = append(filtered, employee)
	}
	return filtered
}
