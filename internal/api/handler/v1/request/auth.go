package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
)

var (
	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")

	// regexp2 handles the look-aheads the stdlib engine lacks.
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

func validPassword(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	ok, err := passwordExp.MatchString(s)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	req.Email = strings.TrimSpace(req.Email)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *CreateUserRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Email, validation.Required, validation.Length(1, 255), is.Email),
		validation.Field(&req.Password, validation.Required, validation.By(validPassword)),
	)
}

// UpdateUserRequest keeps the current password when Password is empty.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *UpdateUserRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Email, validation.Required, validation.Length(1, 255), is.Email),
		validation.Field(&req.Password, validation.By(validPassword)),
	)
}

type PlanRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Detail      string `json:"detail"`
}

func (req *PlanRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.DisplayName, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Detail, validation.Required),
	)
}
