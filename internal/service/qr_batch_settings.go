package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

const (
	defaultPageFormat = "A4"
	defaultMarginMM   = 8.0
	defaultGapMM      = 4.0
	defaultCols       = 4
	defaultRows       = 6
	defaultSizeMode   = "preset"
	defaultSizePreset = "M"

	sizeModeCustom = "custom"
	minCustomSize  = 18.0
	maxCustomSize  = 80.0
)

// SizePresets maps a preset name to its code edge in millimetres.
var SizePresets = map[string]float64{
	"S": 25.0,
	"M": 30.0,
	"L": 40.0,
}

type pageSize struct {
	width, height float64
}

var pageSizes = map[string]pageSize{
	"A4":     {width: 210.0, height: 297.0},
	"LETTER": {width: 215.9, height: 279.4},
}

// BatchSettingsInput holds the raw request values. Nil and empty fields
// take the defaults.
type BatchSettingsInput struct {
	Quantity   int
	BaseURL    string
	PageFormat string
	MarginMM   *float64
	GapMM      *float64
	Cols       *int
	Rows       *int
	SizeMode   string
	SizePreset string
	SizeMM     *float64
}

func DefaultBatchSettings() domain.BatchDefaults {
	return domain.BatchDefaults{
		PageFormat: defaultPageFormat,
		MarginMM:   defaultMarginMM,
		GapMM:      defaultGapMM,
		Cols:       defaultCols,
		Rows:       defaultRows,
		SizeMode:   defaultSizeMode,
		SizePreset: defaultSizePreset,
		SizeMM:     SizePresets[defaultSizePreset],
	}
}

// NormalizeBatchSettings fills in defaults, resolves the code size and
// checks that the grid fits the page.
func NormalizeBatchSettings(in BatchSettingsInput) (domain.BatchSettings, error) {
	settings := domain.BatchSettings{
		Quantity:   in.Quantity,
		BaseURL:    strings.TrimSpace(in.BaseURL),
		PageFormat: strings.ToUpper(strings.TrimSpace(in.PageFormat)),
		MarginMM:   defaultMarginMM,
		GapMM:      defaultGapMM,
		Cols:       defaultCols,
		Rows:       defaultRows,
		SizeMode:   strings.ToLower(strings.TrimSpace(in.SizeMode)),
	}
	if settings.PageFormat == "" {
		settings.PageFormat = defaultPageFormat
	}
	if settings.SizeMode == "" {
		settings.SizeMode = defaultSizeMode
	}
	if in.MarginMM != nil {
		settings.MarginMM = *in.MarginMM
	}
	if in.GapMM != nil {
		settings.GapMM = *in.GapMM
	}
	if in.Cols != nil {
		settings.Cols = *in.Cols
	}
	if in.Rows != nil {
		settings.Rows = *in.Rows
	}

	size, err := resolveSize(settings.SizeMode, in)
	if err != nil {
		return domain.BatchSettings{}, err
	}
	settings.SizeMM = size

	if err = checkFitsPage(settings); err != nil {
		return domain.BatchSettings{}, err
	}

	return settings, nil
}

func resolveSize(mode string, in BatchSettingsInput) (float64, error) {
	if mode == sizeModeCustom {
		if in.SizeMM == nil {
			return 0, validation.Errors{
				"size_mm": errors.New("The size_mm field is required when size_mode is custom."),
			}
		}
		if *in.SizeMM < minCustomSize || *in.SizeMM > maxCustomSize {
			return 0, validation.Errors{
				"size_mm": fmt.Errorf("must be between %.0f and %.0f", minCustomSize, maxCustomSize),
			}
		}

		return *in.SizeMM, nil
	}

	preset := strings.ToUpper(strings.TrimSpace(in.SizePreset))
	if preset == "" {
		preset = defaultSizePreset
	}
	size, ok := SizePresets[preset]
	if !ok {
		return 0, validation.Errors{"size_preset": errors.New("Invalid size preset.")}
	}

	return size, nil
}

func checkFitsPage(s domain.BatchSettings) error {
	page, ok := pageSizes[s.PageFormat]
	if !ok {
		return validation.Errors{"page_format": errors.New("Unsupported page format.")}
	}

	width := s.MarginMM*2 + float64(s.Cols)*s.SizeMM + float64(max(0, s.Cols-1))*s.GapMM
	height := s.MarginMM*2 + float64(s.Rows)*s.SizeMM + float64(max(0, s.Rows-1))*s.GapMM

	if width > page.width {
		return validation.Errors{"cols": fmt.Errorf(
			"Layout width %.2fmm exceeds %s width %.2fmm. Reduce cols/size/gap/margin.",
			width, s.PageFormat, page.width,
		)}
	}
	if height > page.height {
		return validation.Errors{"rows": fmt.Errorf(
			"Layout height %.2fmm exceeds %s height %.2fmm. Reduce rows/size/gap/margin.",
			height, s.PageFormat, page.height,
		)}
	}

	return nil
}
