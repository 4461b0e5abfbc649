package logic

import "github.com/pkg/errors"

var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrDepartmentAlreadyExists = errors.New("department already exists")
	ErrMutationDisabled        = errors.New("mutation disabled")
)

func errDepartmentNotFound(id int64) error {
	return errors.Wrapf(ErrDepartmentNotFound, "id: %d", id)
}

func errEmployeeNotFound(id int64) error {
	return errors.Wrapf(ErrEmployeeNotFound, "id: %d", id)
}

func errDepartmentAlreadyExists(name string) error {
	return errors.Wrapf(ErrDepartmentAlreadyExists, "name: %q", name)
}
