package request

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

const PNGDataURLPrefix = "data:image/png;base64,"

var (
	errNotPNGDataURL = errors.New("must be a PNG data URL")

	pinExp = regexp.MustCompile(`^[0-9]{6}$`)
)

type SubmitFormRequest struct {
	UserIdentifier string                 `json:"user_identifier"`
	Answers        map[string]interface{} `json:"answers"`
}

func (req *SubmitFormRequest) Validate() error {
	req.UserIdentifier = strings.TrimSpace(req.UserIdentifier)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserIdentifier, validation.Length(0, 255)),
		validation.Field(&req.Answers, validation.NotNil),
	)
}

type SubmitWishRequest struct {
	Message   string `json:"message"`
	ImageData string `json:"image_data"`
}

func (req *SubmitWishRequest) Validate() error {
	req.Message = strings.TrimSpace(req.Message)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Message, validation.Required, validation.Length(3, 1000)),
		validation.Field(&req.ImageData, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if s != "" && !strings.HasPrefix(s, PNGDataURLPrefix) {
				return errNotPNGDataURL
			}

			return nil
		})),
	)
}

type SpinRequest struct {
	Pin string `json:"pin"`
}

func (req *SpinRequest) Validate() error {
	req.Pin = strings.TrimSpace(req.Pin)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Pin, validation.Required, validation.Match(pinExp).Error("must be a 6 digit PIN")),
	)
}
