package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string            `json:"status"`
	AppCode    int64             `json:"code"`
	ErrorText  string            `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}

	return e.Err.Error()
}

// RenderErr writes e with its HTTP status mirrored in the code field unless
// a more specific code was set.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.AppCode == 0 {
		e.AppCode = int64(e.HTTPStatusCode)
	}
	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

// ErrBadRequest renders ozzo validation errors as 422 with per-field messages.
func ErrBadRequest(err error) *Err {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return ErrValidation(verrs)
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(verrs validation.Errors) *Err {
	fields := make(map[string]string, len(verrs))
	for field, err := range verrs {
		if err == nil {
			continue
		}
		fields[field] = err.Error()
	}

	return &Err{
		Err:            verrs,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "The given data was invalid.",
		Errors:         fields,
	}
}

func ErrNotFound(resource, field string, value interface{}) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, field, value)

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthenticated.",
		ErrorText:      err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Invalid credentials.",
		ErrorText:      "email or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Forbidden.",
		ErrorText:      err.Error(),
	}
}

// ErrConflict uses the error text as the message shown to the caller.
func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
	}
}
