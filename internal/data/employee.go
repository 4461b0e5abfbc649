package data

type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	FullTime  bool   `json:"full_time"`
}

// EmployeeCreate holds the fields required to hire a new employee, the id
// is assigned by the store
type EmployeeCreate struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Position  string `json:"position" validate:"required"`
	FullTime  bool   `json:"full_time"`
}

func (e *Employee) Copy() *Employee {
	if e == nil {
		return nil
	}
	employee := &Employee{}
	*employee = *e
	return employee
}
