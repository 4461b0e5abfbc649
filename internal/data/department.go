package data

// Department is the aggregate of a department row, its (optional) manager
// and its members; manager and members are complete employees
type Department struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name" validate:"required"`
	Manager   *Employee   `json:"manager,omitempty"`
	Employees []*Employee `json:"employees" validate:"dive,required"`
}

type DepartmentCreate struct {
	Name string `json:"name" validate:"required"`
}

func (d *Department) Copy() *Department {
	if d == nil {
		return nil
	}
	department := &Department{
		ID:        d.ID,
		Name:      d.Name,
		Manager:   d.Manager.Copy(),
		Employees: make([]*Employee, 0, len(d.Employees)),
	}
	for _, employee := range d.Employees {
		department.Employees = append(department.Employees, employee.Copy())
	}
	return department
}

func (d *Department) EmployeeIds() []int64 {
	ids := make([]int64, 0, len(d.Employees))
	for _, employee := range d.Employees {
		ids = append(ids, employee.ID)
	}
	return ids
}
