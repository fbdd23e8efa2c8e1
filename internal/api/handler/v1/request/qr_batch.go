package request

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var httpURLExp = regexp.MustCompile(`^https?://\S+$`)

// CreateQrBatchRequest leaves layout fields nil when the caller wants the
// defaults.
type CreateQrBatchRequest struct {
	Quantity   int      `json:"quantity"`
	BaseURL    string   `json:"base_url"`
	PageFormat string   `json:"page_format"`
	MarginMM   *float64 `json:"margin_mm"`
	GapMM      *float64 `json:"gap_mm"`
	Cols       *int     `json:"cols"`
	Rows       *int     `json:"rows"`
	SizeMode   string   `json:"size_mode"`
	SizePreset string   `json:"size_preset"`
	SizeMM     *float64 `json:"size_mm"`
}

func (req *CreateQrBatchRequest) Validate(maxQuantity int) error {
	req.BaseURL = strings.TrimSpace(req.BaseURL)
	req.PageFormat = strings.ToUpper(strings.TrimSpace(req.PageFormat))
	req.SizeMode = strings.ToLower(strings.TrimSpace(req.SizeMode))
	req.SizePreset = strings.ToUpper(strings.TrimSpace(req.SizePreset))

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(maxQuantity)),
		validation.Field(&req.BaseURL, validation.Required, validation.Length(1, 2048),
			validation.Match(httpURLExp).Error("must be a valid http or https URL")),
		validation.Field(&req.PageFormat, validation.In("A4", "LETTER")),
		validation.Field(&req.MarginMM, validation.Min(0.0), validation.Max(50.0)),
		validation.Field(&req.GapMM, validation.Min(0.0), validation.Max(50.0)),
		validation.Field(&req.Cols, validation.Min(1), validation.Max(20)),
		validation.Field(&req.Rows, validation.Min(1), validation.Max(20)),
		validation.Field(&req.SizeMode, validation.In("preset", "custom")),
	)
}
