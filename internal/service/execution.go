package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-hr-service/internal/data"
	"github.com/antonio-alexander/go-hr-service/internal/logic"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// requestError marks errors caused by the request itself (path, query or
// body) so they're returned as a bad request
type requestError struct {
	error
}

func (r requestError) Unwrap() error {
	return r.error
}

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return requestError{err}
}

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, badRequest(errors.Wrapf(err, "invalid %s", data.PathId))
	}
	return id, nil
}

func getCorrelationId(request *http.Request) string {
	return request.Header.Get(data.HeaderCorrelationId)
}

// decodeRequest reads the body into item and validates it
func decodeRequest(validate *validator.Validate, request *http.Request, item any) error {
	bytes, err := io.ReadAll(request.Body)
	defer request.Body.Close()
	if err != nil {
		return badRequest(err)
	}
	if err := json.Unmarshal(bytes, item); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(item); err != nil {
		return badRequest(err)
	}
	return nil
}

func errorStatus(err error) int {
	var r requestError

	switch {
	default:
		return http.StatusInternalServerError
	case errors.Is(err, logic.ErrDepartmentNotFound),
		errors.Is(err, logic.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrDepartmentAlreadyExists),
		errors.As(err, &r):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrMutationDisabled):
		return http.StatusMethodNotAllowed
	}
}

// handleResponse writes item as json with the given status, on error the
// status is derived from the error and the body is data.Error; a nil item
// writes no body
func handleResponse(writer http.ResponseWriter, err error, status int, item any) error {
	var bytes []byte

	if err != nil {
		status = errorStatus(err)
		item = &data.Error{Error: err.Error()}
	}
	if item == nil {
		writer.WriteHeader(status)
		return err
	}
	bytes, e := json.Marshal(item)
	if e != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return e
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	if _, e := writer.Write(bytes); e != nil {
		return e
	}
	return err
}
